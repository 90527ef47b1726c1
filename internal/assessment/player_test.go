package assessment

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordingSink captures telemetry and attempt deliveries for assertions.
type recordingSink struct {
	mu        sync.Mutex
	answered  []QuestionAnsweredEvent
	completed []AssessmentCompletedEvent
	submits   []submittedAttempt
}

type submittedAttempt struct {
	assessmentID string
	score        float64
	answers      map[int]int
}

func (s *recordingSink) QuestionAnswered(_ context.Context, ev QuestionAnsweredEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answered = append(s.answered, ev)
	return nil
}

func (s *recordingSink) AssessmentCompleted(_ context.Context, ev AssessmentCompletedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, ev)
	return nil
}

func (s *recordingSink) SubmitAttempt(_ context.Context, assessmentID string, score float64, answers map[int]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits = append(s.submits, submittedAttempt{assessmentID, score, answers})
	return nil
}

func (s *recordingSink) counts() (answered, completed, submits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answered), len(s.completed), len(s.submits)
}

// waitAnswered polls for the fire-and-forget per-answer event.
func (s *recordingSink) waitAnswered(t *testing.T, n int) []QuestionAnsweredEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		if len(s.answered) >= n {
			out := append([]QuestionAnsweredEvent(nil), s.answered...)
			s.mu.Unlock()
			return out
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d answered events", n)
	return nil
}

func testAssessment(t *testing.T, timer Minutes, qs ...Question) Assessment {
	t.Helper()
	raw, err := (Document{Title: "Quiz", Timer: timer, Questions: qs}).Marshal()
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	return Assessment{ID: "asm-1", CourseID: "course-1", Title: "Quiz", QuestionsJSON: raw}
}

func q4(text string, correct int, marks float64) Question {
	return Question{Text: text, Options: [4]string{"a", "b", "c", "d"}, Correct: correct, Marks: marks}
}

func newTestPlayer(sink *recordingSink) *Player {
	return NewPlayer(PlayerConfig{
		CourseID:  "course-1",
		Telemetry: sink,
		Attempts:  sink,
		Logf:      func(string, ...any) {},
	})
}

func TestLoadBadDocumentMeansNoAssessment(t *testing.T) {
	for name, raw := range map[string]string{
		"invalid json":   "{broken",
		"no questions":   `{"assessmentTitle": "Quiz", "assessmentTimer": "10", "questions": []}`,
		"null questions": `{"assessmentTitle": "Quiz", "assessmentTimer": "10"}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := newTestPlayer(&recordingSink{})
			p.Load(Assessment{ID: "x", QuestionsJSON: raw})
			if p.State() != StateNoAssessment {
				t.Fatalf("state = %v, want no-assessment", p.State())
			}
		})
	}
}

func TestLoadFromMissingAssessment(t *testing.T) {
	p := newTestPlayer(&recordingSink{})
	src := sourceFunc(func(context.Context, string) (Assessment, error) {
		return Assessment{}, ErrNoAssessment
	})
	if err := p.LoadFrom(context.Background(), src); err != nil {
		t.Fatalf("a missing assessment is not an error: %v", err)
	}
	if p.State() != StateNoAssessment {
		t.Fatalf("state = %v, want no-assessment", p.State())
	}
}

type sourceFunc func(ctx context.Context, courseID string) (Assessment, error)

func (f sourceFunc) FetchAssessment(ctx context.Context, courseID string) (Assessment, error) {
	return f(ctx, courseID)
}

func TestAnswerFlowToSummary(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPlayer(sink)
	p.Load(testAssessment(t, 10,
		q4("one", 0, 2),
		q4("two", 1, 3),
		q4("three", 2, 5),
	))
	if p.State() != StateActive {
		t.Fatalf("state = %v, want active", p.State())
	}
	if p.Remaining() != 600 {
		t.Fatalf("remaining = %d, want 600", p.Remaining())
	}

	if !p.SelectAnswer(0) { // correct, +2
		t.Fatal("first selection must be accepted")
	}
	if !p.SelectAnswer(3) { // wrong
		t.Fatal("selection for question two must be accepted")
	}
	if !p.SelectAnswer(2) { // correct, +5
		t.Fatal("selection for question three must be accepted")
	}

	sum, done := p.Summary()
	if !done {
		t.Fatal("all questions answered, expected summary state")
	}
	if sum.Correct != 2 || sum.Incorrect != 1 || sum.Total != 3 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.TotalMarks != 7 {
		t.Fatalf("totalMarks = %v, want 7", sum.TotalMarks)
	}
	if p.Score() != 7 {
		t.Fatalf("score = %v, want 7", p.Score())
	}

	_, completed, submits := sink.counts()
	if completed != 1 || submits != 1 {
		t.Fatalf("completed=%d submits=%d, want exactly one each", completed, submits)
	}
	sink.mu.Lock()
	sub := sink.submits[0]
	ev := sink.completed[0]
	sink.mu.Unlock()
	if sub.assessmentID != "asm-1" || sub.score != 7 {
		t.Fatalf("submitted attempt = %+v", sub)
	}
	if len(sub.answers) != 3 || sub.answers[1] != 3 {
		t.Fatalf("submitted answers = %v", sub.answers)
	}
	if ev.CorrectAnswers != 2 || ev.Score != 7 || ev.MaxScore != 10 || ev.TotalQuestions != 3 {
		t.Fatalf("completed event = %+v", ev)
	}

	events := sink.waitAnswered(t, 3)
	if events[1].QuestionIndex != 1 || events[1].IsCorrect || events[1].SelectedOption != 3 {
		t.Fatalf("answered event = %+v", events[1])
	}
}

func TestAnswerIsIrrevocable(t *testing.T) {
	sink := &recordingSink{}
	p := NewPlayer(PlayerConfig{
		CourseID:      "course-1",
		Telemetry:     sink,
		Attempts:      sink,
		FeedbackDelay: time.Hour,
	})
	defer p.Close()
	p.Load(testAssessment(t, 10, q4("one", 0, 2), q4("two", 1, 3)))

	if !p.SelectAnswer(0) {
		t.Fatal("first selection must be accepted")
	}
	// The feedback window is open; re-selection must be refused.
	if p.SelectAnswer(1) {
		t.Fatal("second selection during the feedback window must be refused")
	}
	if n, _, _ := sink.counts(); n > 1 {
		t.Fatalf("refused selection must not emit telemetry, got %d events", n)
	}
}

func TestSelectAnswerGuards(t *testing.T) {
	p := newTestPlayer(&recordingSink{})
	if p.SelectAnswer(0) {
		t.Fatal("selection before load must be refused")
	}
	p.Load(testAssessment(t, 10, q4("one", 0, 2)))
	if p.SelectAnswer(-1) || p.SelectAnswer(NumOptions) {
		t.Fatal("out-of-range option must be refused")
	}
	if !p.SelectAnswer(0) {
		t.Fatal("in-range option must be accepted")
	}
	if p.SelectAnswer(0) {
		t.Fatal("selection after the summary must be refused")
	}
}

func TestTimerExpiryEndsAttempt(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPlayer(sink)
	p.Load(testAssessment(t, 1, q4("one", 0, 2), q4("two", 1, 3)))

	if !p.SelectAnswer(1) { // wrong answer for question one
		t.Fatal("selection must be accepted")
	}
	for i := 0; i < 60; i++ {
		p.Tick()
	}
	if p.State() != StateSummary {
		t.Fatalf("state = %v, want summary after expiry", p.State())
	}
	sum, _ := p.Summary()
	if sum.Correct != 0 || sum.Incorrect != 2 || sum.TotalMarks != 0 {
		t.Fatalf("summary = %+v", sum)
	}

	// Further ticks must not re-fire the terminal transition.
	p.Tick()
	p.Tick()
	if _, completed, submits := sink.counts(); completed != 1 || submits != 1 {
		t.Fatalf("terminal transition fired more than once: completed=%d submits=%d", completed, submits)
	}
}

func TestZeroTimerExpiresImmediately(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPlayer(sink)
	p.Load(testAssessment(t, 0, q4("one", 0, 2)))

	if p.State() != StateSummary {
		t.Fatalf("state = %v, want immediate summary on a zero time limit", p.State())
	}
	sum, _ := p.Summary()
	if sum.Total != 1 || sum.Correct != 0 || sum.TotalMarks != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if _, completed, submits := sink.counts(); completed != 1 || submits != 1 {
		t.Fatalf("completed=%d submits=%d, want one each", completed, submits)
	}
}

func TestPendingCommitDroppedOnExpiry(t *testing.T) {
	sink := &recordingSink{}
	p := NewPlayer(PlayerConfig{
		CourseID:      "course-1",
		Telemetry:     sink,
		Attempts:      sink,
		FeedbackDelay: time.Hour,
	})
	defer p.Close()
	p.Load(testAssessment(t, 1, q4("one", 0, 2)))

	if !p.SelectAnswer(0) {
		t.Fatal("selection must be accepted")
	}
	for i := 0; i < 60; i++ {
		p.Tick()
	}
	if p.State() != StateSummary {
		t.Fatalf("state = %v, want summary", p.State())
	}
	// The selection never committed; the summary must not count it.
	sum, _ := p.Summary()
	if sum.Correct != 0 || sum.TotalMarks != 0 {
		t.Fatalf("uncommitted answer leaked into the summary: %+v", sum)
	}
	if len(p.Answers()) != 0 {
		t.Fatalf("answers = %v, want empty", p.Answers())
	}
}

func TestTickOnlyCountsWhileActive(t *testing.T) {
	p := newTestPlayer(&recordingSink{})
	p.Tick() // loading, no-op
	p.Load(testAssessment(t, 2, q4("one", 0, 2)))
	p.Tick()
	p.Tick()
	if p.Remaining() != 118 {
		t.Fatalf("remaining = %d, want 118", p.Remaining())
	}
}

func TestCloseDropsFurtherInput(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPlayer(sink)
	p.Load(testAssessment(t, 10, q4("one", 0, 2), q4("two", 1, 3)))
	p.Close()
	if p.SelectAnswer(0) {
		t.Fatal("selection after Close must be refused")
	}
	p.Tick()
	if p.Remaining() != 600 {
		t.Fatal("Tick after Close must be a no-op")
	}
}
