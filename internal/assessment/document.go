package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumOptions is fixed: every question offers exactly four choices.
const NumOptions = 4

// Question is one multiple-choice entry of an assessment document.
type Question struct {
	Text    string             `json:"question"`
	Options [NumOptions]string `json:"options"`
	Correct int                `json:"correct"`
	Marks   float64            `json:"marks"`
}

// Validate checks the persisted-question invariant: non-blank text, four
// non-blank options, correct index in range, positive marks.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("question text required")
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("option %d required", i+1)
		}
	}
	if q.Correct < 0 || q.Correct >= NumOptions {
		return fmt.Errorf("correct option index %d out of range", q.Correct)
	}
	if math.IsNaN(q.Marks) || math.IsInf(q.Marks, 0) || q.Marks <= 0 {
		return errors.New("marks must be a positive number")
	}
	return nil
}

// Minutes is an assessment time limit. Documents written by the web editor
// carry it as the raw form string ("30"); older rows carry a number. Both
// decode; an unparseable value decodes to zero, which the player treats as an
// immediately expired timer.
type Minutes int

func (m Minutes) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(m))), nil
}

func (m *Minutes) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*m = 0
			return nil
		}
		*m = Minutes(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("assessmentTimer: %w", err)
	}
	*m = Minutes(f)
	return nil
}

// Document is the canonical persisted form of an assessment: the single JSON
// blob stored in the assessments row and round-tripped by the builder.
// MaxScore is derived; Marshal always recomputes it from Questions.
type Document struct {
	Title     string     `json:"assessmentTitle"`
	Timer     Minutes    `json:"assessmentTimer"`
	MaxScore  float64    `json:"maxScore"`
	Questions []Question `json:"questions"`
}

// ParseDocument decodes a stored questions blob.
func ParseDocument(raw string) (Document, error) {
	var d Document
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Document{}, err
	}
	return d, nil
}

// Marshal encodes the document with MaxScore recomputed from the live
// question list. Indented, matching what the editor displays and stores.
func (d Document) Marshal() (string, error) {
	d.MaxScore = SumMarks(d.Questions)
	buf, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// Validate checks every question against the persisted-assessment invariant.
func (d Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("assessment title required")
	}
	for i, q := range d.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// SumMarks is the derived max score of a question list.
func SumMarks(qs []Question) float64 {
	sum := 0.0
	for _, q := range qs {
		sum += q.Marks
	}
	return sum
}
