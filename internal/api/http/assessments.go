package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edusync-lms/edusync/internal/assessment"
	"github.com/edusync-lms/edusync/internal/auth"
	"github.com/edusync-lms/edusync/internal/course"
)

// GET /Assessments/{courseID}
// The questions field stays an opaque JSON string; the player parses it.
func GetAssessmentHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		a, err := store.GetAssessment(r.Context(), courseID)
		if err != nil {
			if errors.Is(err, assessment.ErrNoAssessment) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "fetch assessment", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /Assessments/{courseID}/CreateAssessment {title, maxscore, questions}
// The client's maxscore is ignored; the stored value is derived from the
// document so it can never go stale.
func CreateAssessmentHandler(store assessment.Store, courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, courses, courseID) {
			return
		}
		var req struct {
			Title     string  `json:"title" validate:"required"`
			MaxScore  float64 `json:"maxscore"`
			Questions string  `json:"questions" validate:"required"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		if _, err := store.GetAssessment(r.Context(), courseID); err == nil {
			http.Error(w, "assessment already exists for this course", http.StatusConflict)
			return
		} else if !errors.Is(err, assessment.ErrNoAssessment) {
			http.Error(w, "fetch assessment", http.StatusInternalServerError)
			return
		}
		a, err := store.CreateAssessment(r.Context(), courseID, req.Title, req.Questions)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// PUT /Assessments/{courseID}/UpdateAssessment {title, questions}
func UpdateAssessmentHandler(store assessment.Store, courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, courses, courseID) {
			return
		}
		var req struct {
			Title     string `json:"title" validate:"required"`
			Questions string `json:"questions" validate:"required"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		a, err := store.UpdateAssessment(r.Context(), courseID, req.Title, req.Questions)
		if err != nil {
			if errors.Is(err, assessment.ErrNoAssessment) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// requireCourseOwner writes the response and returns false unless the
// session user owns the course.
func requireCourseOwner(w http.ResponseWriter, r *http.Request, courses *course.SQLStore, courseID string) bool {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	c, err := courses.Get(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return false
		}
		http.Error(w, "fetch course", http.StatusInternalServerError)
		return false
	}
	if c.InstructorID != s.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}
