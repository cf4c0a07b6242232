package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yify/yify-api/internal/domain"
	"github.com/yify/yify-api/internal/repository"
)

type movieCreateRequest struct {
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Description *string        `json:"description"`
	Extra       map[string]any `json:"extra"`
}

func (r movieCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Year, validation.Required, validation.Min(1000), validation.Max(9999)),
	)
}

type movieUpdateRequest struct {
	Name        *string        `json:"name"`
	Year        *int           `json:"year"`
	Description *string        `json:"description"`
	Extra       map[string]any `json:"extra"`
}

func (r movieUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 500)),
		validation.Field(&r.Year, validation.Min(1000), validation.Max(9999)),
	)
}

type ratingsSummary struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

type movieResponse struct {
	ID          string         `json:"id"`
	AddedBy     string         `json:"added_by"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Description *string        `json:"description"`
	Extra       map[string]any `json:"extra"`
	Ratings     ratingsSummary `json:"ratings"`
	CreatedAt   time.Time      `json:"created_at"`
	ModifiedAt  time.Time      `json:"modified_at"`
}

type movieEnvelope struct {
	Message string        `json:"message"`
	Data    movieResponse `json:"data"`
}

type movieListEnvelope struct {
	Message string          `json:"message"`
	Data    []movieResponse `json:"data"`
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	user := currentUser(r)
	movie, err := s.repo.Movies.Create(r.Context(), repository.MovieCreateParams{
		AddedBy:     user.ID,
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Extra:       req.Extra,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "Movie with this name already exists")
			return
		}
		s.respondAppError(w, err, "create movie")
		return
	}

	s.respondJSON(w, http.StatusCreated, movieEnvelope{
		Message: "Movie added successfully!",
		Data:    toMovieResponse(movie),
	})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	movies, err := s.repo.Movies.List(r.Context(), limit, offset)
	if err != nil {
		s.respondAppError(w, err, "list movies")
		return
	}
	s.respondJSON(w, http.StatusOK, movieListEnvelope{
		Message: "Movies fetched successfully!",
		Data:    toMovieResponses(movies),
	})
}

func (s *Server) handleListMyMovies(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	user := currentUser(r)
	movies, err := s.repo.Movies.ListByUser(r.Context(), user.ID, limit, offset)
	if err != nil {
		s.respondAppError(w, err, "list my movies")
		return
	}
	s.respondJSON(w, http.StatusOK, movieListEnvelope{
		Message: "Movies fetched successfully!",
		Data:    toMovieResponses(movies),
	})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.repo.Movies.GetByID(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		s.respondAppError(w, err, "get movie")
		return
	}
	s.respondJSON(w, http.StatusOK, movieEnvelope{
		Message: "Movie details fetched successfully!",
		Data:    toMovieResponse(movie),
	})
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.Name == nil && req.Year == nil && req.Description == nil && req.Extra == nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "No fields to update")
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		s.respondAppError(w, err, "update movie lookup")
		return
	}
	if movie.AddedBy != currentUser(r).ID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only the user who added the movie can modify it")
		return
	}

	updated, err := s.repo.Movies.Update(r.Context(), movie.ID, repository.MovieUpdateParams{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Extra:       req.Extra,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "Movie with this name already exists")
			return
		}
		s.respondAppError(w, err, "update movie")
		return
	}

	s.respondJSON(w, http.StatusOK, movieEnvelope{
		Message: "Movie updated successfully!",
		Data:    toMovieResponse(updated),
	})
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.repo.Movies.GetByID(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		s.respondAppError(w, err, "delete movie lookup")
		return
	}
	if movie.AddedBy != currentUser(r).ID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only the user who added the movie can delete it")
		return
	}
	if err := s.repo.Movies.Delete(r.Context(), movie.ID); err != nil {
		s.respondAppError(w, err, "delete movie")
		return
	}
	s.respondJSON(w, http.StatusOK, messageEnvelope{Message: "Movie deleted successfully!"})
}

func toMovieResponse(movie domain.Movie) movieResponse {
	extra := movie.Extra
	if extra == nil {
		extra = map[string]any{}
	}
	return movieResponse{
		ID:          movie.ID,
		AddedBy:     movie.AddedBy,
		Name:        movie.Name,
		Year:        movie.Year,
		Description: movie.Description,
		Extra:       extra,
		Ratings: ratingsSummary{
			Count:   movie.Stats.Count,
			Average: movie.Stats.Average(),
		},
		CreatedAt:  movie.CreatedAt,
		ModifiedAt: movie.ModifiedAt,
	}
}

func toMovieResponses(movies []domain.Movie) []movieResponse {
	out := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		out = append(out, toMovieResponse(movie))
	}
	return out
}

// parsePagination reads limit/offset query parameters; bad or missing values
// fall back to defaults and the repository clamps the upper bound.
func parsePagination(r *http.Request) (limit, offset int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
