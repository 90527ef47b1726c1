package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/edusync-lms/edusync/internal/assessment"
	"github.com/edusync-lms/edusync/internal/telemetry"
)

// Telemetry endpoints are fire-and-forget: the player never waits on them,
// so they acknowledge with 202 and a failed sink is only logged.

// POST /AssessmentEvents/QuestionAnswered
func QuestionAnsweredHandler(sink telemetry.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev assessment.QuestionAnsweredEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := sink.Record(r.Context(), "QuestionAnswered", ev.AssessmentID, ev); err != nil {
			log.Printf("record question answered event: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// POST /AssessmentEvents/AssessmentCompleted
func AssessmentCompletedHandler(sink telemetry.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev assessment.AssessmentCompletedEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := sink.Record(r.Context(), "AssessmentCompleted", ev.AssessmentID, ev); err != nil {
			log.Printf("record assessment completed event: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}
}
