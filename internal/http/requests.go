package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yify/yify-api/internal/domain"
	"github.com/yify/yify-api/internal/repository"
)

type requestCreateRequest struct {
	Name string `json:"name"`
}

func (r requestCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 500)),
	)
}

type requestResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

type requestEnvelope struct {
	Message string          `json:"message"`
	Data    requestResponse `json:"data"`
}

type requestListEnvelope struct {
	Message string            `json:"message"`
	Data    []requestResponse `json:"data"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req requestCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	// A wish for a movie that is already in the catalogue is pointless.
	if _, err := s.repo.Movies.GetByName(r.Context(), req.Name); err == nil {
		s.respondError(w, http.StatusConflict, "CONFLICT", "Movie is already available")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.respondAppError(w, err, "create request movie lookup")
		return
	}

	user := currentUser(r)
	request, err := s.repo.Requests.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "Movie has already been requested")
			return
		}
		s.respondAppError(w, err, "create request")
		return
	}

	s.respondJSON(w, http.StatusCreated, requestEnvelope{
		Message: "Movie requested successfully!",
		Data:    toRequestResponse(request),
	})
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	requests, err := s.repo.Requests.List(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		s.respondAppError(w, err, "list requests")
		return
	}

	out := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, toRequestResponse(request))
	}
	s.respondJSON(w, http.StatusOK, requestListEnvelope{
		Message: "Requests fetched successfully!",
		Data:    out,
	})
}

func (s *Server) handleListMyRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	user := currentUser(r)
	requests, err := s.repo.Requests.ListByUser(r.Context(), user.ID, limit, offset)
	if err != nil {
		s.respondAppError(w, err, "list my requests")
		return
	}

	out := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, toRequestResponse(request))
	}
	s.respondJSON(w, http.StatusOK, requestListEnvelope{
		Message: "Requests fetched successfully!",
		Data:    out,
	})
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	request, err := s.repo.Requests.GetByID(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		s.respondAppError(w, err, "get request")
		return
	}
	s.respondJSON(w, http.StatusOK, requestEnvelope{
		Message: "Request details fetched successfully!",
		Data:    toRequestResponse(request),
	})
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	request, err := s.repo.Requests.GetByID(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		s.respondAppError(w, err, "delete request lookup")
		return
	}
	if request.UserID != currentUser(r).ID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only the user who requested the movie can delete the request")
		return
	}
	if err := s.repo.Requests.Delete(r.Context(), request.ID); err != nil {
		s.respondAppError(w, err, "delete request")
		return
	}
	s.respondJSON(w, http.StatusOK, messageEnvelope{Message: "Request deleted successfully!"})
}

func toRequestResponse(request domain.Request) requestResponse {
	return requestResponse{
		ID:         request.ID,
		UserID:     request.UserID,
		Name:       request.Name,
		CreatedAt:  request.CreatedAt,
		ModifiedAt: request.ModifiedAt,
	}
}
