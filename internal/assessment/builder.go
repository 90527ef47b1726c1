package assessment

import (
	"errors"
	"math"
	"strings"
)

// Draft is the in-progress single-question form, distinct from the committed
// question list. Correct is -1 while no option is selected.
type Draft struct {
	Text    string
	Options [NumOptions]string
	Correct int
	Marks   float64
}

// EmptyDraft is the untouched editor state.
func EmptyDraft() Draft { return Draft{Correct: -1} }

func (d Draft) validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return errors.New("question text required")
	}
	for _, opt := range d.Options {
		if strings.TrimSpace(opt) == "" {
			return errors.New("all four options required")
		}
	}
	if d.Correct < 0 || d.Correct >= NumOptions {
		return errors.New("select the correct option")
	}
	if math.IsNaN(d.Marks) || math.IsInf(d.Marks, 0) || d.Marks <= 0 {
		return errors.New("marks must be a positive number")
	}
	return nil
}

// Builder is the instructor-side authoring model: an ordered question list
// plus title and time limit, mirrored into an editable JSON text. Structured
// edits regenerate the text (Serialize); text edits regenerate the structure
// (ApplyJSONEdit). The two are explicit one-way projections; whichever the
// user touched last wins.
type Builder struct {
	title     string
	timer     Minutes
	questions []Question
	draft     Draft
	editing   int // index targeted by the next AddOrUpdateQuestion, -1 to append
}

func NewBuilder() *Builder {
	return &Builder{draft: EmptyDraft(), editing: -1}
}

// LoadDocument replaces the builder state from a fetched document, used to
// pre-fill the editor when an assessment already exists for the course.
func (b *Builder) LoadDocument(d Document) {
	b.title = d.Title
	b.timer = d.Timer
	b.questions = append([]Question(nil), d.Questions...)
	b.resetDraft()
}

func (b *Builder) Title() string          { return b.title }
func (b *Builder) SetTitle(title string)  { b.title = title }
func (b *Builder) Timer() Minutes         { return b.timer }
func (b *Builder) SetTimer(m Minutes)     { b.timer = m }
func (b *Builder) Draft() Draft           { return b.draft }
func (b *Builder) SetDraft(d Draft)       { b.draft = d }
func (b *Builder) Editing() int           { return b.editing }
func (b *Builder) Len() int               { return len(b.questions) }

// Questions returns a copy of the committed list.
func (b *Builder) Questions() []Question {
	return append([]Question(nil), b.questions...)
}

// MaxScore is always recomputed from the live list, never cached.
func (b *Builder) MaxScore() float64 { return SumMarks(b.questions) }

// AddOrUpdateQuestion validates the given draft and commits it: in place at
// the index loaded by StartEdit, appended otherwise. On validation failure
// nothing changes, including the draft editor.
func (b *Builder) AddOrUpdateQuestion(d Draft) error {
	if err := d.validate(); err != nil {
		return err
	}
	q := Question{Text: d.Text, Options: d.Options, Correct: d.Correct, Marks: d.Marks}
	if b.editing >= 0 && b.editing < len(b.questions) {
		b.questions[b.editing] = q
	} else {
		b.questions = append(b.questions, q)
	}
	b.resetDraft()
	return nil
}

// DeleteQuestion removes the entry at idx. Deleting the question currently
// loaded in the editor abandons that edit.
func (b *Builder) DeleteQuestion(idx int) error {
	if idx < 0 || idx >= len(b.questions) {
		return errors.New("question index out of range")
	}
	b.questions = append(b.questions[:idx], b.questions[idx+1:]...)
	switch {
	case b.editing == idx:
		b.resetDraft()
	case b.editing > idx:
		b.editing-- // edit target shifted down
	}
	return nil
}

// StartEdit loads questions[idx] into the draft editor and remembers idx as
// the target of the next AddOrUpdateQuestion.
func (b *Builder) StartEdit(idx int) error {
	if idx < 0 || idx >= len(b.questions) {
		return errors.New("question index out of range")
	}
	q := b.questions[idx]
	b.draft = Draft{Text: q.Text, Options: q.Options, Correct: q.Correct, Marks: q.Marks}
	b.editing = idx
	return nil
}

// CancelEdit clears the draft editor without touching the list.
func (b *Builder) CancelEdit() { b.resetDraft() }

func (b *Builder) resetDraft() {
	b.draft = EmptyDraft()
	b.editing = -1
}

// Document snapshots the builder state as the canonical persisted form.
func (b *Builder) Document() Document {
	return Document{
		Title:     b.title,
		Timer:     b.timer,
		MaxScore:  b.MaxScore(),
		Questions: b.Questions(),
	}
}

// Serialize produces the JSON text mirror. MaxScore is recomputed on every
// call.
func (b *Builder) Serialize() (string, error) {
	return b.Document().Marshal()
}

// ApplyJSONEdit reconciles a hand-edited JSON text back into the structured
// state. Invalid JSON, or a document whose questions field is not an array,
// is rejected without touching anything; the previous state stays. On
// success the whole of title, timer and questions is replaced and any
// in-progress draft edit is abandoned. Reports whether the edit applied.
func (b *Builder) ApplyJSONEdit(raw string) bool {
	d, err := ParseDocument(raw)
	if err != nil || d.Questions == nil {
		return false
	}
	b.title = d.Title
	b.timer = d.Timer
	b.questions = d.Questions
	b.resetDraft()
	return true
}

// View is a display-only slice of the question list.
type View struct {
	Questions []Question
	MaxScore  float64
}

// FilteredView returns the questions whose text or any option contains term,
// case-insensitively, with the max score restricted to that subsequence.
// Non-mutating.
func (b *Builder) FilteredView(term string) View {
	needle := strings.ToLower(term)
	var v View
	for _, q := range b.questions {
		if questionMatches(q, needle) {
			v.Questions = append(v.Questions, q)
			v.MaxScore += q.Marks
		}
	}
	return v
}

func questionMatches(q Question, needle string) bool {
	if strings.Contains(strings.ToLower(q.Text), needle) {
		return true
	}
	for _, opt := range q.Options {
		if strings.Contains(strings.ToLower(opt), needle) {
			return true
		}
	}
	return false
}
