package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists assessments and attempt results. Works against both the
// sqlite and postgres schemas; placeholders are rewritten by the drivers.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) GetAssessment(ctx context.Context, courseID string) (Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, max_score, questions_json, created_at, updated_at
		 FROM assessments WHERE course_id=$1`, courseID)
	return scanAssessment(row)
}

func (s *SQLStore) GetAssessmentByID(ctx context.Context, id string) (Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, max_score, questions_json, created_at, updated_at
		 FROM assessments WHERE id=$1`, id)
	return scanAssessment(row)
}

func scanAssessment(row *sql.Row) (Assessment, error) {
	var a Assessment
	var updated sql.NullInt64
	if err := row.Scan(&a.ID, &a.CourseID, &a.Title, &a.MaxScore, &a.QuestionsJSON, &a.CreatedAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, ErrNoAssessment
		}
		return Assessment{}, err
	}
	a.UpdatedAt = updated.Int64
	return a, nil
}

// CreateAssessment stores the document for a course that has none yet. The
// blob must parse and satisfy the question invariant; max score is derived
// from it, never taken from the caller.
func (s *SQLStore) CreateAssessment(ctx context.Context, courseID, title, questionsJSON string) (Assessment, error) {
	maxScore, err := deriveMaxScore(questionsJSON)
	if err != nil {
		return Assessment{}, err
	}
	a := Assessment{
		ID:            uuid.NewString(),
		CourseID:      courseID,
		Title:         title,
		MaxScore:      maxScore,
		QuestionsJSON: questionsJSON,
		CreatedAt:     time.Now().Unix(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, course_id, title, max_score, questions_json, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.CourseID, a.Title, a.MaxScore, a.QuestionsJSON, a.CreatedAt)
	if err != nil {
		return Assessment{}, err
	}
	return a, nil
}

func (s *SQLStore) UpdateAssessment(ctx context.Context, courseID, title, questionsJSON string) (Assessment, error) {
	maxScore, err := deriveMaxScore(questionsJSON)
	if err != nil {
		return Assessment{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET title=$1, max_score=$2, questions_json=$3, updated_at=$4
		 WHERE course_id=$5`,
		title, maxScore, questionsJSON, time.Now().Unix(), courseID)
	if err != nil {
		return Assessment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Assessment{}, ErrNoAssessment
	}
	return s.GetAssessment(ctx, courseID)
}

func (s *SQLStore) DeleteAssessment(ctx context.Context, courseID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE course_id=$1`, courseID)
	return err
}

func deriveMaxScore(questionsJSON string) (float64, error) {
	doc, err := ParseDocument(questionsJSON)
	if err != nil {
		return 0, fmt.Errorf("invalid questions document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return 0, fmt.Errorf("invalid questions document: %w", err)
	}
	return SumMarks(doc.Questions), nil
}

// SubmitAttempt records one play-through. The attempt counter is per
// student+assessment and counts this attempt.
func (s *SQLStore) SubmitAttempt(ctx context.Context, assessmentID, userID string, score float64, answers map[int]int) (Result, error) {
	if _, err := s.GetAssessmentByID(ctx, assessmentID); err != nil {
		return Result{}, err
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return Result{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	var prior int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempt_results WHERE assessment_id=$1 AND user_id=$2`,
		assessmentID, userID).Scan(&prior); err != nil {
		return Result{}, err
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
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO attempt_results (id, assessment_id, user_id, score, answers_json, attempt_count, attempted_on)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.AssessmentID, r.UserID, r.Score, string(answersJSON), r.AttemptCount, r.AttemptedOn.Unix()); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	return r, nil
}

func (s *SQLStore) ListStudentResults(ctx context.Context, userID string) ([]StudentResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.title, a.title, r.score, a.max_score, r.attempt_count, r.attempted_on
		 FROM attempt_results r
		 JOIN assessments a ON a.id = r.assessment_id
		 JOIN courses c ON c.id = a.course_id
		 WHERE r.user_id=$1
		 ORDER BY r.attempted_on DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StudentResult
	for rows.Next() {
		var sr StudentResult
		var attemptedOn int64
		if err := rows.Scan(&sr.CourseTitle, &sr.AssessmentTitle, &sr.Score, &sr.MaximumScore, &sr.AttemptCount, &attemptedOn); err != nil {
			return nil, err
		}
		sr.AttemptedOn = time.Unix(attemptedOn, 0).UTC()
		out = append(out, sr)
	}
	return out, rows.Err()
}
