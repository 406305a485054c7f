// Package subscription contains the HTTP handlers for the
// (channel, student) subscription relation.
package subscription

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aanand-mishra/channels-api/internal/http/middleware"
	"github.com/aanand-mishra/channels-api/internal/storage"
	"github.com/aanand-mishra/channels-api/internal/types"
	"github.com/aanand-mishra/channels-api/internal/utils/request"
	"github.com/aanand-mishra/channels-api/internal/utils/response"
)

// Store is what the subscription handlers need from storage.
type Store interface {
	storage.Subscriptions
	GetChannelByID(ctx context.Context, id int64) (types.Channel, error)
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)
}

// GetList handles GET /subscriptions/.
//
// Optional query parameters channel_id and student_id narrow the list;
// skip and limit page it when no filter is given.
func GetList(st storage.Subscriptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			filter types.SubscriptionFilter
			err    error
		)

		if filter.ChannelID, err = request.OptionalInt64(r, "channel_id"); err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if filter.StudentID, err = request.OptionalInt64(r, "student_id"); err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if filter.Skip, filter.Limit, err = request.Pagination(r); err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		subs, err := st.ListSubscriptions(r.Context(), filter)
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		_ = response.WriteJSON(w, http.StatusOK, subs)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /subscriptions/. Requires a bearer token.
//
// Request body:
//
//	{ "channel_id": 1, "student_id": 7 }
//
// Checks, in order:
//  1. the caller is the subscribing student  → 403
//  2. the pair does not already exist        → 400
//  3. the channel exists                     → 404
//  4. the student exists                     → 404
// ─────────────────────────────────────────────────────────────────────────────
func New(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in types.SubscriptionCreate
		if err := request.Bind(r, &in); err != nil {
			response.BadRequest(w, err)
			return
		}

		if !isCaller(r, in.StudentID) {
			response.Error(w, http.StatusForbidden, "Permission denied")
			return
		}

		_, err := st.GetSubscription(r.Context(), in.ChannelID, in.StudentID)
		switch {
		case err == nil:
			response.Error(w, http.StatusBadRequest, "Already subscribed")
			return
		case !errors.Is(err, storage.ErrNotFound):
			response.InternalError(w, r, err)
			return
		}

		if _, err := st.GetChannelByID(r.Context(), in.ChannelID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "Channel with specified ID does not exist")
				return
			}
			response.InternalError(w, r, err)
			return
		}

		if _, err := st.GetStudentByID(r.Context(), in.StudentID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "Student with specified ID does not exist")
				return
			}
			response.InternalError(w, r, err)
			return
		}

		sub, err := st.Subscribe(r.Context(), in.ChannelID, in.StudentID)
		if errors.Is(err, storage.ErrAlreadyExists) {
			response.Error(w, http.StatusBadRequest, "Already subscribed")
			return
		}
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		log.Ctx(r.Context()).Info().
			Int64("channel_id", sub.ChannelID).
			Int64("student_id", sub.StudentID).
			Msg("subscribed")
		_ = response.WriteJSON(w, http.StatusCreated, sub)
	}
}

// Delete handles DELETE /subscriptions/?channel_id=&student_id=.
// Requires a bearer token. 403 unless the caller is student_id, 404 if
// the pair does not exist, 204 on success.
func Delete(st storage.Subscriptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID, err := request.RequiredInt64(r, "channel_id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		studentID, err := request.RequiredInt64(r, "student_id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		if !isCaller(r, studentID) {
			response.Error(w, http.StatusForbidden, "Permission denied")
			return
		}

		err = st.Unsubscribe(r.Context(), channelID, studentID)
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "No such entry found in database")
			return
		}
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		log.Ctx(r.Context()).Info().
			Int64("channel_id", channelID).
			Int64("student_id", studentID).
			Msg("unsubscribed")
		response.NoContent(w)
	}
}

func isCaller(r *http.Request, studentID int64) bool {
	caller, ok := middleware.CurrentStudent(r.Context())
	return ok && caller.StudentID == studentID
}
