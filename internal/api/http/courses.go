package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edusync-lms/edusync/internal/auth"
	"github.com/edusync-lms/edusync/internal/course"
)

// POST /CreateCourse {title, description, courseGroupId?}
func CreateCourseHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
			GroupID     string `json:"courseGroupId"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		if req.GroupID != "" && !requireGroupOwner(w, r, courses, req.GroupID) {
			return
		}
		c, err := courses.Create(r.Context(), s.UserID, req.GroupID, req.Title, req.Description)
		if err != nil {
			http.Error(w, "create course", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// PUT /UpdateCourse/{courseID} {title, description}
func UpdateCourseHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, courses, courseID) {
			return
		}
		var req struct {
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		c, err := courses.Update(r.Context(), courseID, req.Title, req.Description)
		if err != nil {
			http.Error(w, "update course", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DELETE /DeleteCourse/{courseID}
// Cascades to content, enrollments, the assessment and its results.
func DeleteCourseHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, courses, courseID) {
			return
		}
		if err := courses.Delete(r.Context(), courseID); err != nil {
			http.Error(w, "delete course", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /Course/{courseID}
func GetCourseHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := courses.Get(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			if errors.Is(err, course.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "fetch course", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// GET /AllCourses
func AllCoursesHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := courses.ListAll(r.Context())
		if err != nil {
			http.Error(w, "list courses", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []course.Course{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /MyCourses — the instructor's own courses.
func MyCoursesHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		list, err := courses.ListByInstructor(r.Context(), s.UserID)
		if err != nil {
			http.Error(w, "list courses", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []course.Course{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /Course/{courseID}/Enroll
func EnrollHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		e, err := courses.Enroll(r.Context(), chi.URLParam(r, "courseID"), s.UserID)
		if err != nil {
			switch {
			case errors.Is(err, course.ErrNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, course.ErrAlreadyEnrolled):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "enroll", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

// GET /MyEnrollments
func MyEnrollmentsHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		list, err := courses.ListEnrollments(r.Context(), s.UserID)
		if err != nil {
			http.Error(w, "list enrollments", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []course.Enrollment{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /Instructor/Analytics
func InstructorAnalyticsHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		rows, err := courses.InstructorAnalytics(r.Context(), s.UserID)
		if err != nil {
			http.Error(w, "analytics", http.StatusInternalServerError)
			return
		}
		if rows == nil {
			rows = []course.AnalyticsRow{}
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
