package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edusync-lms/edusync/internal/content"
	"github.com/edusync-lms/edusync/internal/course"
)

// POST /Course/{courseID}/CreateContent {title, shortDescription, contentType}
func CreateContentHandler(contents *content.SQLStore, courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, courses, courseID) {
			return
		}
		var req struct {
			Title            string `json:"title" validate:"required"`
			ShortDescription string `json:"shortDescription"`
			ContentType      string `json:"contentType"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		c, err := contents.Create(r.Context(), courseID, req.Title, req.ShortDescription, req.ContentType)
		if err != nil {
			http.Error(w, "create content", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// GET /Content/{contentID}
func GetContentHandler(contents *content.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := contents.Get(r.Context(), chi.URLParam(r, "contentID"))
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "fetch content", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// GET /Course/{courseID}/GetCourseAllMedia
func CourseMediaHandler(contents *content.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := contents.ListByCourse(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			http.Error(w, "list content", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []content.Content{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// DELETE /CourseContent/{contentID}
func DeleteContentHandler(contents *content.SQLStore, courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := chi.URLParam(r, "contentID")
		c, err := contents.Get(r.Context(), contentID)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "fetch content", http.StatusInternalServerError)
			return
		}
		if !requireCourseOwner(w, r, courses, c.CourseID) {
			return
		}
		if err := contents.Delete(r.Context(), contentID); err != nil {
			http.Error(w, "delete content", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
