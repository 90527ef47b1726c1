package assessment

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// PlayerState is the player's lifecycle position.
type PlayerState int

const (
	StateLoading PlayerState = iota
	StateNoAssessment
	StateActive
	StateSummary
)

func (s PlayerState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateNoAssessment:
		return "no-assessment"
	case StateActive:
		return "active"
	case StateSummary:
		return "summary"
	}
	return "unknown"
}

// QuestionAnsweredEvent is emitted once per accepted answer, before the
// commit delay elapses.
type QuestionAnsweredEvent struct {
	AssessmentID   string    `json:"assessmentId"`
	CourseID       string    `json:"courseId"`
	QuestionIndex  int       `json:"questionIndex"`
	SelectedOption int       `json:"selectedOption"`
	IsCorrect      bool      `json:"isCorrect"`
	QuestionMarks  float64   `json:"questionMarks"`
	Timestamp      time.Time `json:"timestamp"`
}

// AssessmentCompletedEvent is emitted once, on the terminal transition.
type AssessmentCompletedEvent struct {
	AssessmentID   string    `json:"assessmentId"`
	CourseID       string    `json:"courseId"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Score          float64   `json:"score"`
	MaxScore       float64   `json:"maxScore"`
	CompletionTime time.Time `json:"completionTime"`
}

// TelemetrySink receives fire-and-forget interaction events. A failed
// delivery is logged by the player and never surfaced or retried.
type TelemetrySink interface {
	QuestionAnswered(ctx context.Context, ev QuestionAnsweredEvent) error
	AssessmentCompleted(ctx context.Context, ev AssessmentCompletedEvent) error
}

// AttemptSink receives the finished attempt. Best-effort: the summary is
// shown whether or not delivery succeeds.
type AttemptSink interface {
	SubmitAttempt(ctx context.Context, assessmentID string, score float64, answers map[int]int) error
}

// AssessmentSource fetches the assessment attached to a course, returning
// ErrNoAssessment when there is none.
type AssessmentSource interface {
	FetchAssessment(ctx context.Context, courseID string) (Assessment, error)
}

// Summary is the terminal outcome of an attempt. TotalMarks is recomputed
// from the final answers map, not from the running score, so it can never
// disagree with the recorded answers.
type Summary struct {
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Total      int     `json:"total"`
	TotalMarks float64 `json:"totalMarks"`
}

// PlayerConfig configures a Player. Telemetry and Attempts may be nil.
type PlayerConfig struct {
	CourseID string
	// Telemetry receives per-answer and completion events.
	Telemetry TelemetrySink
	// Attempts receives the final result.
	Attempts AttemptSink
	// FeedbackDelay is how long a selected option is displayed before the
	// answer commits and the player advances. Zero commits synchronously.
	FeedbackDelay time.Duration
	Now           func() time.Time
	Logf          func(format string, v ...any)
}

// Player drives one student attempt through a timed, sequential quiz:
// one question at a time, one irrevocable answer per question, terminated by
// timer expiry or by the last answer, whichever lands first. All mutation is
// serialized under one mutex; the terminal transition is guarded so the two
// triggers cannot both fire it.
type Player struct {
	mu sync.Mutex

	courseID     string
	assessmentID string
	title        string
	questions    []Question

	state      PlayerState
	remaining  int // seconds
	total      int
	current    int
	answers    map[int]int
	score      float64
	pending    bool // an accepted answer is awaiting its commit
	pendingTmr *time.Timer
	summarized bool
	closed     bool
	summary    Summary

	telemetry TelemetrySink
	attempts  AttemptSink
	delay     time.Duration
	now       func() time.Time
	logf      func(format string, v ...any)
}

func NewPlayer(cfg PlayerConfig) *Player {
	p := &Player{
		courseID:  cfg.CourseID,
		state:     StateLoading,
		answers:   map[int]int{},
		telemetry: cfg.Telemetry,
		attempts:  cfg.Attempts,
		delay:     cfg.FeedbackDelay,
		now:       cfg.Now,
		logf:      cfg.Logf,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logf == nil {
		p.logf = log.Printf
	}
	return p
}

// Load transitions out of the loading state from a fetched record. An
// unparseable document or an empty question list means no assessment. A zero
// or unparseable time limit satisfies the expiry condition immediately: the
// attempt is accepted and summarized with no answers.
func (p *Player) Load(a Assessment) {
	p.mu.Lock()
	if p.state != StateLoading || p.closed {
		p.mu.Unlock()
		return
	}
	doc, err := ParseDocument(a.QuestionsJSON)
	if err != nil || len(doc.Questions) == 0 {
		p.state = StateNoAssessment
		p.mu.Unlock()
		return
	}
	p.assessmentID = a.ID
	p.title = a.Title
	if p.title == "" {
		p.title = doc.Title
	}
	p.questions = doc.Questions
	p.total = int(doc.Timer) * 60
	p.remaining = p.total
	p.current = 0
	p.score = 0
	p.state = StateActive

	var fin *completion
	if p.remaining <= 0 {
		fin = p.completeLocked()
	}
	p.mu.Unlock()
	p.deliver(fin)
}

// LoadFrom fetches via src and loads. A missing assessment is a normal
// outcome, not an error.
func (p *Player) LoadFrom(ctx context.Context, src AssessmentSource) error {
	a, err := src.FetchAssessment(ctx, p.courseID)
	if errors.Is(err, ErrNoAssessment) {
		p.mu.Lock()
		if p.state == StateLoading {
			p.state = StateNoAssessment
		}
		p.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}
	p.Load(a)
	return nil
}

// Tick advances the clock by exactly one second. It is the sole clock
// source; expiry triggers the terminal transition.
func (p *Player) Tick() {
	p.mu.Lock()
	if p.state != StateActive || p.summarized || p.closed {
		p.mu.Unlock()
		return
	}
	if p.remaining > 0 {
		p.remaining--
	}
	var fin *completion
	if p.remaining <= 0 {
		fin = p.completeLocked()
	}
	p.mu.Unlock()
	p.deliver(fin)
}

// Run drives Tick on a one-second ticker until the attempt leaves the active
// state or ctx is cancelled.
func (p *Player) Run(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Tick()
			if p.State() != StateActive {
				return
			}
		}
	}
}

// SelectAnswer records the student's choice for the current question. The
// first accepted selection is final: repeat calls for the same question,
// including during the feedback window, are no-ops. Reports whether the
// selection was accepted.
func (p *Player) SelectAnswer(option int) bool {
	p.mu.Lock()
	if p.state != StateActive || p.summarized || p.pending || p.closed {
		p.mu.Unlock()
		return false
	}
	if option < 0 || option >= NumOptions {
		p.mu.Unlock()
		return false
	}
	idx := p.current
	if _, answered := p.answers[idx]; answered {
		p.mu.Unlock()
		return false
	}
	q := p.questions[idx]
	correct := q.Correct == option
	p.pending = true

	ev := QuestionAnsweredEvent{
		AssessmentID:   p.assessmentID,
		CourseID:       p.courseID,
		QuestionIndex:  idx,
		SelectedOption: option,
		IsCorrect:      correct,
		QuestionMarks:  q.Marks,
		Timestamp:      p.now(),
	}
	sink := p.telemetry
	delay := p.delay
	p.mu.Unlock()

	if sink != nil {
		go func() {
			if err := sink.QuestionAnswered(context.Background(), ev); err != nil {
				p.logf("telemetry: question answered: %v", err)
			}
		}()
	}

	if delay <= 0 {
		p.commit(idx, option, correct)
		return true
	}
	p.mu.Lock()
	if !p.summarized && !p.closed {
		p.pendingTmr = time.AfterFunc(delay, func() {
			p.commit(idx, option, correct)
		})
	}
	p.mu.Unlock()
	return true
}

// commit finalizes a selection after the feedback window: the answer becomes
// irrevocable, the score accrues, the pointer advances. If the timer expired
// in the meantime the commit is dropped.
func (p *Player) commit(idx, option int, correct bool) {
	p.mu.Lock()
	p.pending = false
	p.pendingTmr = nil
	if p.state != StateActive || p.summarized || p.closed {
		p.mu.Unlock()
		return
	}
	if _, answered := p.answers[idx]; answered {
		p.mu.Unlock()
		return
	}
	p.answers[idx] = option
	if correct {
		p.score += p.questions[idx].Marks
	}
	if idx == p.current && p.current < len(p.questions)-1 {
		p.current++
	}
	var fin *completion
	if len(p.answers) == len(p.questions) {
		fin = p.completeLocked()
	}
	p.mu.Unlock()
	p.deliver(fin)
}

type completion struct {
	ev      AssessmentCompletedEvent
	answers map[int]int
	score   float64
}

// completeLocked performs the terminal transition. Idempotent: the timer and
// the all-answered trigger can race into it within one step, only the first
// wins. Caller holds the mutex.
func (p *Player) completeLocked() *completion {
	if p.summarized {
		return nil
	}
	p.summarized = true
	if p.pendingTmr != nil {
		p.pendingTmr.Stop()
		p.pendingTmr = nil
	}
	correct := 0
	earned := 0.0
	for i, q := range p.questions {
		if sel, ok := p.answers[i]; ok && sel == q.Correct {
			correct++
			earned += q.Marks
		}
	}
	p.summary = Summary{
		Correct:    correct,
		Incorrect:  len(p.questions) - correct,
		Total:      len(p.questions),
		TotalMarks: earned,
	}
	p.score = earned
	p.state = StateSummary

	answers := make(map[int]int, len(p.answers))
	for k, v := range p.answers {
		answers[k] = v
	}
	return &completion{
		ev: AssessmentCompletedEvent{
			AssessmentID:   p.assessmentID,
			CourseID:       p.courseID,
			TotalQuestions: len(p.questions),
			CorrectAnswers: correct,
			Score:          earned,
			MaxScore:       SumMarks(p.questions),
			CompletionTime: p.now(),
		},
		answers: answers,
		score:   earned,
	}
}

// deliver pushes the completion event and the attempt result, best-effort.
// Failures are logged and swallowed; the summary stands either way.
func (p *Player) deliver(fin *completion) {
	if fin == nil {
		return
	}
	if p.telemetry != nil {
		if err := p.telemetry.AssessmentCompleted(context.Background(), fin.ev); err != nil {
			p.logf("telemetry: assessment completed: %v", err)
		}
	}
	if p.attempts != nil {
		if err := p.attempts.SubmitAttempt(context.Background(), fin.ev.AssessmentID, fin.score, fin.answers); err != nil {
			p.logf("submit attempt: %v", err)
		}
	}
}

// Close tears the player down: pending commits are dropped and further
// input is ignored. In-flight telemetry is left to resolve on its own.
func (p *Player) Close() {
	p.mu.Lock()
	p.closed = true
	if p.pendingTmr != nil {
		p.pendingTmr.Stop()
		p.pendingTmr = nil
	}
	p.mu.Unlock()
}

func (p *Player) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

// Remaining is the seconds left on the clock.
func (p *Player) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remaining
}

// Current returns the question pointer and the question under it.
func (p *Player) Current() (int, Question) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateActive || p.current >= len(p.questions) {
		return p.current, Question{}
	}
	return p.current, p.questions[p.current]
}

func (p *Player) NumQuestions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.questions)
}

func (p *Player) Score() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.score
}

// Answers returns a copy of the committed answers map.
func (p *Player) Answers() map[int]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[int]int, len(p.answers))
	for k, v := range p.answers {
		out[k] = v
	}
	return out
}

// Summary reports the terminal outcome, false until the attempt ends.
func (p *Player) Summary() (Summary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary, p.state == StateSummary
}
