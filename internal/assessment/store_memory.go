package assessment

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a Store for tests and single-process offline use.
type MemoryStore struct {
	mu           sync.RWMutex
	byCourse     map[string]Assessment
	byID         map[string]Assessment
	results      map[string][]Result // key: userID
	courseTitles map[string]string
}

func NewInMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCourse:     map[string]Assessment{},
		byID:         map[string]Assessment{},
		results:      map[string][]Result{},
		courseTitles: map[string]string{},
	}
}

func (m *MemoryStore) GetAssessment(ctx context.Context, courseID string) (Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byCourse[courseID]
	if !ok {
		return Assessment{}, ErrNoAssessment
	}
	return a, nil
}

func (m *MemoryStore) GetAssessmentByID(ctx context.Context, id string) (Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return Assessment{}, ErrNoAssessment
	}
	return a, nil
}

func (m *MemoryStore) CreateAssessment(ctx context.Context, courseID, title, questionsJSON string) (Assessment, error) {
	maxScore, err := deriveMaxScore(questionsJSON)
	if err != nil {
		return Assessment{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a := Assessment{
		ID:            uuid.NewString(),
		CourseID:      courseID,
		Title:         title,
		MaxScore:      maxScore,
		QuestionsJSON: questionsJSON,
		CreatedAt:     time.Now().Unix(),
	}
	m.byCourse[courseID] = a
	m.byID[a.ID] = a
	return a, nil
}

func (m *MemoryStore) UpdateAssessment(ctx context.Context, courseID, title, questionsJSON string) (Assessment, error) {
	maxScore, err := deriveMaxScore(questionsJSON)
	if err != nil {
		return Assessment{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byCourse[courseID]
	if !ok {
		return Assessment{}, ErrNoAssessment
	}
	a.Title = title
	a.MaxScore = maxScore
	a.QuestionsJSON = questionsJSON
	a.UpdatedAt = time.Now().Unix()
	m.byCourse[courseID] = a
	m.byID[a.ID] = a
	return a, nil
}

func (m *MemoryStore) DeleteAssessment(ctx context.Context, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byCourse[courseID]; ok {
		delete(m.byID, a.ID)
		delete(m.byCourse, courseID)
	}
	return nil
}

func (m *MemoryStore) SubmitAttempt(ctx context.Context, assessmentID, userID string, score float64, answers map[int]int) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[assessmentID]; !ok {
		return Result{}, ErrNoAssessment
	}
	if _, err := json.Marshal(answers); err != nil {
		return Result{}, err
	}
	prior := 0
	for _, r := range m.results[userID] {
		if r.AssessmentID == assessmentID {
			prior++
		}
	}
	r := Result{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		UserID:       userID,
		Score:        score,
		Answers:      answers,
		AttemptCount: prior + 1,
		AttemptedOn:  time.Now().UTC(),
	}
	m.results[userID] = append(m.results[userID], r)
	return r, nil
}

func (m *MemoryStore) ListStudentResults(ctx context.Context, userID string) ([]StudentResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []StudentResult
	for _, r := range m.results[userID] {
		a := m.byID[r.AssessmentID]
		out = append(out, StudentResult{
			CourseTitle:     m.courseTitles[a.CourseID],
			AssessmentTitle: a.Title,
			Score:           r.Score,
			MaximumScore:    a.MaxScore,
			AttemptCount:    r.AttemptCount,
			AttemptedOn:     r.AttemptedOn,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptedOn.After(out[j].AttemptedOn) })
	return out, nil
}

// SetCourseTitle backfills the course title used by the results view.
func (m *MemoryStore) SetCourseTitle(courseID, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courseTitles[courseID] = title
}
