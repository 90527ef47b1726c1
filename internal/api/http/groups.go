package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edusync-lms/edusync/internal/auth"
	"github.com/edusync-lms/edusync/internal/course"
)

// POST /CreateCourseGroup {title, description}
func CreateCourseGroupHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		g, err := courses.CreateGroup(r.Context(), s.UserID, req.Title, req.Description)
		if err != nil {
			http.Error(w, "create course group", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

// GET /CourseGroup/{groupID}
func GetCourseGroupHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := courses.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
		if err != nil {
			if errors.Is(err, course.ErrGroupNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "fetch course group", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// GET /CourseGroup/{groupID}/Courses
func CourseGroupCoursesHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := courses.ListByGroup(r.Context(), chi.URLParam(r, "groupID"))
		if err != nil {
			if errors.Is(err, course.ErrGroupNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "list group courses", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []course.Course{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// PUT /UpdateCourseGroup/{groupID} {title, description}
func UpdateCourseGroupHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")
		if !requireGroupOwner(w, r, courses, groupID) {
			return
		}
		var req struct {
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		g, err := courses.UpdateGroup(r.Context(), groupID, req.Title, req.Description)
		if err != nil {
			http.Error(w, "update course group", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// DELETE /DeleteCourseGroup/{groupID}
// Member courses survive, ungrouped.
func DeleteCourseGroupHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")
		if !requireGroupOwner(w, r, courses, groupID) {
			return
		}
		if err := courses.DeleteGroup(r.Context(), groupID); err != nil {
			http.Error(w, "delete course group", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /MyCourseGroups
func MyCourseGroupsHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		list, err := courses.ListGroupsByInstructor(r.Context(), s.UserID)
		if err != nil {
			http.Error(w, "list course groups", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []course.Group{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// requireGroupOwner writes the response and returns false unless the session
// user owns the group.
func requireGroupOwner(w http.ResponseWriter, r *http.Request, courses *course.SQLStore, groupID string) bool {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	g, err := courses.GetGroup(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, course.ErrGroupNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return false
		}
		http.Error(w, "fetch course group", http.StatusInternalServerError)
		return false
	}
	if g.InstructorID != s.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}
