package course

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Create adds a course, optionally inside one of the instructor's groups.
func (s *SQLStore) Create(ctx context.Context, instructorID, groupID, title, description string) (Course, error) {
	if groupID != "" {
		if _, err := s.GetGroup(ctx, groupID); err != nil {
			return Course{}, err
		}
	}
	c := Course{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  description,
		InstructorID: instructorID,
		GroupID:      groupID,
		CreatedAt:    time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, title, description, instructor_id, group_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.Title, c.Description, c.InstructorID, nullStr(c.GroupID), c.CreatedAt)
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) Update(ctx context.Context, courseID, title, description string) (Course, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE courses SET title=$1, description=$2, updated_at=$3 WHERE id=$4`,
		title, description, time.Now().Unix(), courseID)
	if err != nil {
		return Course{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Course{}, ErrNotFound
	}
	return s.Get(ctx, courseID)
}

func (s *SQLStore) Get(ctx context.Context, courseID string) (Course, error) {
	return scanCourse(s.db.QueryRowContext(ctx,
		`SELECT id, title, description, instructor_id, group_id, media_url, created_at, updated_at
		 FROM courses WHERE id=$1`, courseID))
}

// Delete removes the course; content, enrollments, the assessment and its
// results go with it via the schema's cascades.
func (s *SQLStore) Delete(ctx context.Context, courseID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, courseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListAll(ctx context.Context) ([]Course, error) {
	return s.list(ctx,
		`SELECT id, title, description, instructor_id, group_id, media_url, created_at, updated_at
		 FROM courses ORDER BY created_at DESC`)
}

func (s *SQLStore) ListByInstructor(ctx context.Context, instructorID string) ([]Course, error) {
	return s.list(ctx,
		`SELECT id, title, description, instructor_id, group_id, media_url, created_at, updated_at
		 FROM courses WHERE instructor_id=$1 ORDER BY created_at DESC`, instructorID)
}

// ListByGroup lists the courses filed under a group, newest first. The group
// must exist; an empty group is a normal outcome.
func (s *SQLStore) ListByGroup(ctx context.Context, groupID string) ([]Course, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.list(ctx,
		`SELECT id, title, description, instructor_id, group_id, media_url, created_at, updated_at
		 FROM courses WHERE group_id=$1 ORDER BY created_at DESC`, groupID)
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourseRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateGroup(ctx context.Context, instructorID, title, description string) (Group, error) {
	g := Group{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  description,
		InstructorID: instructorID,
		CreatedAt:    time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO course_groups (id, title, description, instructor_id, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		g.ID, g.Title, g.Description, g.InstructorID, g.CreatedAt)
	if err != nil {
		return Group{}, err
	}
	return g, nil
}

func (s *SQLStore) GetGroup(ctx context.Context, groupID string) (Group, error) {
	var g Group
	var updated sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, instructor_id, created_at, updated_at
		 FROM course_groups WHERE id=$1`, groupID).
		Scan(&g.ID, &g.Title, &g.Description, &g.InstructorID, &g.CreatedAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Group{}, ErrGroupNotFound
		}
		return Group{}, err
	}
	g.UpdatedAt = updated.Int64
	return g, nil
}

func (s *SQLStore) UpdateGroup(ctx context.Context, groupID, title, description string) (Group, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE course_groups SET title=$1, description=$2, updated_at=$3 WHERE id=$4`,
		title, description, time.Now().Unix(), groupID)
	if err != nil {
		return Group{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Group{}, ErrGroupNotFound
	}
	return s.GetGroup(ctx, groupID)
}

// DeleteGroup removes the heading only; member courses stay, ungrouped, via
// the schema's ON DELETE SET NULL.
func (s *SQLStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM course_groups WHERE id=$1`, groupID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (s *SQLStore) ListGroupsByInstructor(ctx context.Context, instructorID string) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, instructor_id, created_at, updated_at
		 FROM course_groups WHERE instructor_id=$1 ORDER BY created_at DESC`, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		var updated sql.NullInt64
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.InstructorID, &g.CreatedAt, &updated); err != nil {
			return nil, err
		}
		g.UpdatedAt = updated.Int64
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLStore) Enroll(ctx context.Context, courseID, userID string) (Enrollment, error) {
	if _, err := s.Get(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	now := time.Now().UTC()
	e := Enrollment{EnrollmentID: uuid.NewString(), EnrolledOn: now}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (id, course_id, user_id, enrolled_on)
		 VALUES ($1,$2,$3,$4)`,
		e.EnrollmentID, courseID, userID, now.Unix()); err != nil {
		// The (course_id, user_id) unique constraint is the single arbiter of
		// membership; a check-then-insert would race with itself.
		if s.isEnrolled(ctx, courseID, userID) {
			return Enrollment{}, ErrAlreadyEnrolled
		}
		return Enrollment{}, err
	}
	e.Course, _ = s.Get(ctx, courseID)
	return e, nil
}

func (s *SQLStore) isEnrolled(ctx context.Context, courseID, userID string) bool {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM enrollments WHERE course_id=$1 AND user_id=$2`, courseID, userID).Scan(&one)
	return err == nil
}

func (s *SQLStore) ListEnrollments(ctx context.Context, userID string) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.enrolled_on,
		        c.id, c.title, c.description, c.instructor_id, c.group_id, c.media_url, c.created_at, c.updated_at
		 FROM enrollments e
		 JOIN courses c ON c.id = e.course_id
		 WHERE e.user_id=$1
		 ORDER BY e.enrolled_on DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Enrollment
	for rows.Next() {
		var e Enrollment
		var enrolledOn int64
		var group sql.NullString
		var updated sql.NullInt64
		if err := rows.Scan(&e.EnrollmentID, &enrolledOn,
			&e.Course.ID, &e.Course.Title, &e.Course.Description, &e.Course.InstructorID,
			&group, &e.Course.MediaURL, &e.Course.CreatedAt, &updated); err != nil {
			return nil, err
		}
		e.EnrolledOn = time.Unix(enrolledOn, 0).UTC()
		e.Course.GroupID = group.String
		e.Course.UpdatedAt = updated.Int64
		out = append(out, e)
	}
	return out, rows.Err()
}

// InstructorAnalytics aggregates enrollment and attempt activity per course
// owned by the instructor. Courses without an assessment still appear, with
// zero attempts.
func (s *SQLStore) InstructorAnalytics(ctx context.Context, instructorID string) ([]AnalyticsRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.title,
		        (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id),
		        (SELECT COUNT(*) FROM attempt_results r JOIN assessments a ON a.id = r.assessment_id WHERE a.course_id = c.id),
		        COALESCE((SELECT AVG(r.score) FROM attempt_results r JOIN assessments a ON a.id = r.assessment_id WHERE a.course_id = c.id), 0),
		        COALESCE((SELECT a.max_score FROM assessments a WHERE a.course_id = c.id), 0)
		 FROM courses c
		 WHERE c.instructor_id=$1
		 ORDER BY c.created_at DESC`, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalyticsRow
	for rows.Next() {
		var a AnalyticsRow
		if err := rows.Scan(&a.CourseID, &a.CourseTitle, &a.EnrolledCount, &a.AttemptCount, &a.AverageScore, &a.MaxScore); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanCourse(row *sql.Row) (Course, error) {
	var c Course
	var group sql.NullString
	var updated sql.NullInt64
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &group, &c.MediaURL, &c.CreatedAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, err
	}
	c.GroupID = group.String
	c.UpdatedAt = updated.Int64
	return c, nil
}

func scanCourseRows(rows *sql.Rows) (Course, error) {
	var c Course
	var group sql.NullString
	var updated sql.NullInt64
	if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &group, &c.MediaURL, &c.CreatedAt, &updated); err != nil {
		return Course{}, err
	}
	c.GroupID = group.String
	c.UpdatedAt = updated.Int64
	return c, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
