// Package student contains the HTTP handlers for the Student resource.
//
// Handlers are built by factory functions that receive their
// dependencies and return an http.HandlerFunc:
//
//	r.Post("/", student.New(storage))
//
// New(storage) runs once at startup; the returned closure runs on every
// request.
package student

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aanand-mishra/channels-api/internal/auth"
	"github.com/aanand-mishra/channels-api/internal/http/middleware"
	"github.com/aanand-mishra/channels-api/internal/storage"
	"github.com/aanand-mishra/channels-api/internal/types"
	"github.com/aanand-mishra/channels-api/internal/utils/request"
	"github.com/aanand-mishra/channels-api/internal/utils/response"
)

const (
	msgEmailExists     = "Email already exists"
	msgMatriculeExists = "Matricule already exists"
	msgPermission      = "Permission denied"

	// msgConflict is returned when the unique index rejects a write that
	// passed the email and matricule checks.
	msgConflict = "Email or matricule already exists"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students/ (signup).
//
// Request body:
//
//	{ "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
//	  "matricule": "M001", "password": "s3cretpass" }
//
// 201 with the created student. 400 on a malformed body, a failed
// validation, or an email/matricule already in use.
// ─────────────────────────────────────────────────────────────────────────────
func New(st storage.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		var in types.StudentCreate
		if err := request.Bind(r, &in); err != nil {
			response.BadRequest(w, err)
			return
		}

		taken, err := st.EmailTaken(r.Context(), in.Email, 0)
		if err != nil {
			response.InternalError(w, r, err)
			return
		}
		if taken {
			response.Error(w, http.StatusBadRequest, msgEmailExists)
			return
		}

		taken, err = st.MatriculeTaken(r.Context(), in.Matricule, 0)
		if err != nil {
			response.InternalError(w, r, err)
			return
		}
		if taken {
			response.Error(w, http.StatusBadRequest, msgMatriculeExists)
			return
		}

		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		created, err := st.CreateStudent(r.Context(), in, hash)
		if errors.Is(err, storage.ErrAlreadyExists) {
			response.Error(w, http.StatusBadRequest, msgConflict)
			return
		}
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		logger.Info().Int64("student_id", created.ID).Msg("student created")
		_ = response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /students/{id}.
//
// 200 with the student and the channels they follow, 404 if unknown.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(st storage.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		student, err := st.GetStudentExtra(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(w, http.StatusNotFound,
				fmt.Sprintf("Student with id %d could not be found", id))
			return
		}
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		_ = response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /students/?skip=&limit=.
func GetList(st storage.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, limit, err := request.Pagination(r)
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		students, err := st.GetStudents(r.Context(), skip, limit)
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		_ = response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /students/{id}. Requires a bearer token.
//
// Checks, in order:
//  1. the student exists                          → 404
//  2. the caller is that student                  → 403
//  3. a new email is not used by another student  → 400
//  4. a new matricule likewise                    → 400
//
// Omitted fields keep their stored value.
// ─────────────────────────────────────────────────────────────────────────────
func Update(st storage.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		var in types.StudentUpdate
		if err := request.Bind(r, &in); err != nil {
			response.BadRequest(w, err)
			return
		}

		if !authorizeOwner(w, r, st, id) {
			return
		}

		if in.Email != nil {
			taken, err := st.EmailTaken(r.Context(), *in.Email, id)
			if err != nil {
				response.InternalError(w, r, err)
				return
			}
			if taken {
				response.Error(w, http.StatusBadRequest, msgEmailExists)
				return
			}
		}

		if in.Matricule != nil {
			taken, err := st.MatriculeTaken(r.Context(), *in.Matricule, id)
			if err != nil {
				response.InternalError(w, r, err)
				return
			}
			if taken {
				response.Error(w, http.StatusBadRequest, msgMatriculeExists)
				return
			}
		}

		var hash string
		if in.Password != nil {
			if hash, err = auth.HashPassword(*in.Password); err != nil {
				response.InternalError(w, r, err)
				return
			}
		}

		updated, err := st.UpdateStudent(r.Context(), id, in, hash)
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			response.Error(w, http.StatusBadRequest, msgConflict)
			return
		case errors.Is(err, storage.ErrNotFound):
			response.Error(w, http.StatusNotFound, fmt.Sprintf("No student with ID %d", id))
			return
		case err != nil:
			response.InternalError(w, r, err)
			return
		}

		log.Ctx(r.Context()).Info().Int64("student_id", id).Msg("student updated")
		_ = response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /students/{id}. Requires a bearer token; the
// same 404-then-403 checks as Update apply. 204 on success.
func Delete(st storage.Students) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		if !authorizeOwner(w, r, st, id) {
			return
		}

		err = st.DeleteStudent(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(w, http.StatusNotFound, fmt.Sprintf("No student with ID %d", id))
			return
		}
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		log.Ctx(r.Context()).Info().Int64("student_id", id).Msg("student deleted")
		response.NoContent(w)
	}
}

// authorizeOwner writes 404 if student id does not exist and 403 if the
// caller is someone else. It reports whether the request may proceed.
func authorizeOwner(w http.ResponseWriter, r *http.Request, st storage.Students, id int64) bool {
	_, err := st.GetStudentByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		response.Error(w, http.StatusNotFound, fmt.Sprintf("No student with ID %d", id))
		return false
	}
	if err != nil {
		response.InternalError(w, r, err)
		return false
	}

	caller, ok := middleware.CurrentStudent(r.Context())
	if !ok || caller.StudentID != id {
		response.Error(w, http.StatusForbidden, msgPermission)
		return false
	}
	return true
}
