// Package channel contains the HTTP handlers for channels, the things
// students subscribe to.
package channel

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aanand-mishra/channels-api/internal/storage"
	"github.com/aanand-mishra/channels-api/internal/types"
	"github.com/aanand-mishra/channels-api/internal/utils/request"
	"github.com/aanand-mishra/channels-api/internal/utils/response"
)

const msgNameExists = "Channel name already exists"

// New handles POST /channels/. Requires a bearer token.
func New(st storage.Channels) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in types.ChannelCreate
		if err := request.Bind(r, &in); err != nil {
			response.BadRequest(w, err)
			return
		}

		taken, err := st.ChannelNameTaken(r.Context(), in.Name)
		if err != nil {
			response.InternalError(w, r, err)
			return
		}
		if taken {
			response.Error(w, http.StatusBadRequest, msgNameExists)
			return
		}

		created, err := st.CreateChannel(r.Context(), in)
		if errors.Is(err, storage.ErrAlreadyExists) {
			response.Error(w, http.StatusBadRequest, msgNameExists)
			return
		}
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		log.Ctx(r.Context()).Info().Int64("channel_id", created.ID).Msg("channel created")
		_ = response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /channels/{id}.
func GetByID(st storage.Channels) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		ch, err := st.GetChannelByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(w, http.StatusNotFound, fmt.Sprintf("Channel with id %d could not be found", id))
			return
		}
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		_ = response.WriteJSON(w, http.StatusOK, ch)
	}
}

// GetList handles GET /channels/?skip=&limit=.
func GetList(st storage.Channels) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, limit, err := request.Pagination(r)
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		channels, err := st.GetChannels(r.Context(), skip, limit)
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		_ = response.WriteJSON(w, http.StatusOK, channels)
	}
}
