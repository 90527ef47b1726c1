package assessment

import (
	"context"
	"testing"
)

func readyBuilder(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder()
	b.SetTitle("Quiz")
	b.SetTimer(15)
	if err := b.AddOrUpdateQuestion(draftN("one")); err != nil {
		t.Fatalf("add: %v", err)
	}
	return b
}

func TestSaveAssessmentPreconditions(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	b := readyBuilder(t)
	b.SetTitle("   ")
	if _, err := SaveAssessment(ctx, store, "c1", b); err == nil {
		t.Fatal("blank title must be rejected")
	}

	b = readyBuilder(t)
	b.SetTimer(0)
	if _, err := SaveAssessment(ctx, store, "c1", b); err == nil {
		t.Fatal("zero time limit must be rejected")
	}

	b = NewBuilder()
	b.SetTitle("Quiz")
	b.SetTimer(15)
	if _, err := SaveAssessment(ctx, store, "c1", b); err == nil {
		t.Fatal("empty question list must be rejected")
	}

	if _, err := store.GetAssessment(ctx, "c1"); err != ErrNoAssessment {
		t.Fatalf("rejected saves must not persist anything, got %v", err)
	}
}

func TestSaveAssessmentCreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	b := readyBuilder(t)

	created, err := SaveAssessment(ctx, store, "c1", b)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CourseID != "c1" || created.MaxScore != 2 {
		t.Fatalf("created = %+v", created)
	}

	if err := b.AddOrUpdateQuestion(draftN("two")); err != nil {
		t.Fatalf("add: %v", err)
	}
	updated, err := SaveAssessment(ctx, store, "c1", b)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatal("saving again must update the existing row, not create a second one")
	}
	if updated.MaxScore != 4 {
		t.Fatalf("maxScore = %v, want 4 recomputed on update", updated.MaxScore)
	}
}

func TestCreateAssessmentDerivesMaxScore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	// The blob carries a stale maxScore; the store must recompute from the
	// questions, not trust it.
	raw := `{
  "assessmentTitle": "Quiz",
  "assessmentTimer": "10",
  "maxScore": 9999,
  "questions": [
    {"question": "q", "options": ["a", "b", "c", "d"], "correct": 0, "marks": 4}
  ]
}`
	a, err := store.CreateAssessment(ctx, "c1", "Quiz", raw)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.MaxScore != 4 {
		t.Fatalf("maxScore = %v, want 4", a.MaxScore)
	}

	if _, err := store.CreateAssessment(ctx, "c2", "Quiz", "{broken"); err == nil {
		t.Fatal("an unparseable document must be rejected at write time")
	}
	bad := `{"assessmentTitle": "Quiz", "questions": [{"question": "q", "options": ["a","b","c","d"], "correct": 7, "marks": 1}]}`
	if _, err := store.CreateAssessment(ctx, "c2", "Quiz", bad); err == nil {
		t.Fatal("an invalid question must be rejected at write time")
	}
}

func TestSubmitAttemptCountsPerAssessment(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	store.SetCourseTitle("c1", "Biology 101")

	a, err := SaveAssessment(ctx, store, "c1", readyBuilder(t))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := store.SubmitAttempt(ctx, "nope", "u1", 1, nil); err != ErrNoAssessment {
		t.Fatalf("unknown assessment: got %v, want ErrNoAssessment", err)
	}

	r1, err := store.SubmitAttempt(ctx, a.ID, "u1", 2, map[int]int{0: 1})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	r2, err := store.SubmitAttempt(ctx, a.ID, "u1", 0, map[int]int{0: 3})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r1.AttemptCount != 1 || r2.AttemptCount != 2 {
		t.Fatalf("attempt counts = %d, %d; want 1, 2", r1.AttemptCount, r2.AttemptCount)
	}

	other, err := store.SubmitAttempt(ctx, a.ID, "u2", 2, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if other.AttemptCount != 1 {
		t.Fatalf("per-user count leaked across users: %d", other.AttemptCount)
	}

	results, err := store.ListStudentResults(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.CourseTitle != "Biology 101" || r.AssessmentTitle != "Quiz" || r.MaximumScore != 2 {
			t.Fatalf("result row = %+v", r)
		}
	}
}
