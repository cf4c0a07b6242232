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

type ratingSubmitRequest struct {
	Value  *float64 `json:"value"`
	Review *string  `json:"review"`
}

func (r ratingSubmitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Value, validation.NotNil, validation.Min(0.0), validation.Max(10.0)),
	)
}

type ratingResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MovieID    string    `json:"movie_id"`
	Value      float64   `json:"value"`
	Review     *string   `json:"review"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

type ratingEnvelope struct {
	Message string         `json:"message"`
	Data    ratingResponse `json:"data"`
	Ratings ratingsSummary `json:"ratings"`
}

type movieRatingResponse struct {
	ratingResponse
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type movieRatingListEnvelope struct {
	Message string                `json:"message"`
	Data    []movieRatingResponse `json:"data"`
}

type userRatingResponse struct {
	ratingResponse
	MovieName string `json:"movie_name"`
	MovieYear int    `json:"movie_year"`
}

type userRatingListEnvelope struct {
	Message string               `json:"message"`
	Data    []userRatingResponse `json:"data"`
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	var req ratingSubmitRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	user := currentUser(r)
	rating, stats, err := s.repo.Ratings.Submit(r.Context(), repository.RatingSubmitParams{
		MovieID: chi.URLParam(r, "movieID"),
		UserID:  user.ID,
		Value:   *req.Value,
		Review:  req.Review,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "You have already rated this movie")
			return
		}
		s.respondAppError(w, err, "submit rating")
		return
	}

	s.respondJSON(w, http.StatusCreated, ratingEnvelope{
		Message: "Rating added successfully!",
		Data:    toRatingResponse(rating),
		Ratings: ratingsSummary{Count: stats.Count, Average: stats.Average()},
	})
}

func (s *Server) handleListMovieRatings(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "movieID")
	if _, err := s.repo.Movies.GetByID(r.Context(), movieID); err != nil {
		s.respondAppError(w, err, "list movie ratings lookup")
		return
	}

	limit, offset := parsePagination(r)
	ratings, err := s.repo.Ratings.ListByMovie(r.Context(), movieID, limit, offset)
	if err != nil {
		s.respondAppError(w, err, "list movie ratings")
		return
	}

	out := make([]movieRatingResponse, 0, len(ratings))
	for _, mr := range ratings {
		out = append(out, movieRatingResponse{
			ratingResponse: toRatingResponse(mr.Rating),
			FirstName:      mr.FirstName,
			LastName:       mr.LastName,
		})
	}
	s.respondJSON(w, http.StatusOK, movieRatingListEnvelope{
		Message: "Ratings fetched successfully!",
		Data:    out,
	})
}

func (s *Server) handleListMyRatings(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	user := currentUser(r)
	ratings, err := s.repo.Ratings.ListByUser(r.Context(), user.ID, limit, offset)
	if err != nil {
		s.respondAppError(w, err, "list my ratings")
		return
	}

	out := make([]userRatingResponse, 0, len(ratings))
	for _, ur := range ratings {
		out = append(out, userRatingResponse{
			ratingResponse: toRatingResponse(ur.Rating),
			MovieName:      ur.MovieName,
			MovieYear:      ur.MovieYear,
		})
	}
	s.respondJSON(w, http.StatusOK, userRatingListEnvelope{
		Message: "Ratings fetched successfully!",
		Data:    out,
	})
}

func toRatingResponse(rating domain.Rating) ratingResponse {
	return ratingResponse{
		ID:         rating.ID,
		UserID:     rating.UserID,
		MovieID:    rating.MovieID,
		Value:      rating.Value,
		Review:     rating.Review,
		CreatedAt:  rating.CreatedAt,
		ModifiedAt: rating.ModifiedAt,
	}
}
