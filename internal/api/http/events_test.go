package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeSink struct {
	typs []string
	keys []string
	err  error
}

func (f *fakeSink) Record(_ context.Context, typ, key string, _ any) error {
	f.typs = append(f.typs, typ)
	f.keys = append(f.keys, key)
	return f.err
}

func TestQuestionAnsweredHandler(t *testing.T) {
	sink := &fakeSink{}
	h := QuestionAnsweredHandler(sink)

	body := `{"assessmentId": "asm-1", "courseId": "c1", "questionIndex": 2, "selectedOption": 1, "isCorrect": true, "questionMarks": 3}`
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/AssessmentEvents/QuestionAnswered", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if len(sink.typs) != 1 || sink.typs[0] != "QuestionAnswered" || sink.keys[0] != "asm-1" {
		t.Fatalf("recorded = %v %v", sink.typs, sink.keys)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/AssessmentEvents/QuestionAnswered", strings.NewReader("{broken")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 on bad json", rec.Code)
	}
}

func TestAssessmentCompletedHandlerSinkFailureStillAccepted(t *testing.T) {
	sink := &fakeSink{err: errors.New("broker down")}
	h := AssessmentCompletedHandler(sink)

	body := `{"assessmentId": "asm-1", "courseId": "c1", "totalQuestions": 2, "correctAnswers": 1, "score": 2, "maxScore": 5}`
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/AssessmentEvents/AssessmentCompleted", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 even when the sink fails", rec.Code)
	}
}
