package assessment

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNoAssessment means the course has no assessment attached (or the stored
// id is unknown). Handlers map it to 404; the player maps it to the
// no-assessment state.
var ErrNoAssessment = errors.New("assessment not found")

// Assessment is the stored record: the document travels as one opaque JSON
// blob in QuestionsJSON, exactly as the authoring editor serialized it.
type Assessment struct {
	ID            string  `json:"assessmentId"`
	CourseID      string  `json:"courseId"`
	Title         string  `json:"assessmentTitle"`
	MaxScore      float64 `json:"maxScore"`
	QuestionsJSON string  `json:"questions"`
	CreatedAt     int64   `json:"createdAt,omitempty"`
	UpdatedAt     int64   `json:"updatedAt,omitempty"`
}

// Result is one finished attempt.
type Result struct {
	ID           string         `json:"resultId"`
	AssessmentID string         `json:"assessmentId"`
	UserID       string         `json:"userId"`
	Score        float64        `json:"score"`
	Answers      map[int]int    `json:"answers"`
	AttemptCount int            `json:"attemptCount"`
	AttemptedOn  time.Time      `json:"attemptedOn"`
}

// StudentResult is the row shape of the student results view.
type StudentResult struct {
	CourseTitle     string    `json:"courseTitle"`
	AssessmentTitle string    `json:"assessmentTitle"`
	Score           float64   `json:"score"`
	MaximumScore    float64   `json:"maximumScore"`
	AttemptCount    int       `json:"attemptCount"`
	AttemptedOn     time.Time `json:"attemptedOn"`
}

// Store persists assessments and attempt results. At most one assessment per
// course; max score is recomputed from the document on every write, never
// trusted from the caller.
type Store interface {
	GetAssessment(ctx context.Context, courseID string) (Assessment, error)
	GetAssessmentByID(ctx context.Context, id string) (Assessment, error)
	CreateAssessment(ctx context.Context, courseID, title, questionsJSON string) (Assessment, error)
	UpdateAssessment(ctx context.Context, courseID, title, questionsJSON string) (Assessment, error)
	DeleteAssessment(ctx context.Context, courseID string) error

	SubmitAttempt(ctx context.Context, assessmentID, userID string, score float64, answers map[int]int) (Result, error)
	ListStudentResults(ctx context.Context, userID string) ([]StudentResult, error)
}

// SaveAssessment exports the builder's current state for courseID: update
// when an assessment already exists, create otherwise. The builder list is
// the source of truth; a failed call leaves it untouched.
func SaveAssessment(ctx context.Context, store Store, courseID string, b *Builder) (Assessment, error) {
	if strings.TrimSpace(b.Title()) == "" {
		return Assessment{}, errors.New("assessment title required")
	}
	if b.Timer() <= 0 {
		return Assessment{}, errors.New("time limit required")
	}
	if b.Len() == 0 {
		return Assessment{}, errors.New("at least one question required")
	}
	raw, err := b.Serialize()
	if err != nil {
		return Assessment{}, err
	}
	_, err = store.GetAssessment(ctx, courseID)
	switch {
	case err == nil:
		return store.UpdateAssessment(ctx, courseID, b.Title(), raw)
	case errors.Is(err, ErrNoAssessment):
		return store.CreateAssessment(ctx, courseID, b.Title(), raw)
	default:
		return Assessment{}, err
	}
}
