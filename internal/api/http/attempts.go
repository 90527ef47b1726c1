package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edusync-lms/edusync/internal/assessment"
	"github.com/edusync-lms/edusync/internal/auth"
)

// POST /{assessmentID}/SubmitAssessment {score, answers}
// Best-effort from the player's side; the server still validates the target.
func SubmitAssessmentHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		assessmentID := chi.URLParam(r, "assessmentID")
		var req struct {
			Score   float64     `json:"score"`
			Answers map[int]int `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Answers == nil {
			req.Answers = map[int]int{}
		}
		res, err := store.SubmitAttempt(r.Context(), assessmentID, s.UserID, req.Score, req.Answers)
		if err != nil {
			if errors.Is(err, assessment.ErrNoAssessment) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "submit attempt", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// GET /student/results
func StudentResultsHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		results, err := store.ListStudentResults(r.Context(), s.UserID)
		if err != nil {
			http.Error(w, "list results", http.StatusInternalServerError)
			return
		}
		if results == nil {
			results = []assessment.StudentResult{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}
