package content

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("content not found")

type Content struct {
	ID               string `json:"contentId"`
	CourseID         string `json:"courseId"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	ContentType      string `json:"contentType"`
	Kind             string `json:"kind"`
	FileURL          string `json:"fileUrl"`
	UploadedAt       int64  `json:"uploadedAt"`
}

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, courseID, title, shortDescription, contentType string) (Content, error) {
	c := Content{
		ID:               uuid.NewString(),
		CourseID:         courseID,
		Title:            title,
		ShortDescription: shortDescription,
		ContentType:      contentType,
		Kind:             ParseKind(contentType, "").String(),
		UploadedAt:       time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO course_content (id, course_id, title, short_description, content_type, file_url, uploaded_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.CourseID, c.Title, c.ShortDescription, c.ContentType, c.FileURL, c.UploadedAt)
	if err != nil {
		return Content{}, err
	}
	return c, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Content, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, short_description, content_type, file_url, uploaded_at
		 FROM course_content WHERE id=$1`, id)
	var c Content
	if err := row.Scan(&c.ID, &c.CourseID, &c.Title, &c.ShortDescription, &c.ContentType, &c.FileURL, &c.UploadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Content{}, ErrNotFound
		}
		return Content{}, err
	}
	c.Kind = ParseKind(c.ContentType, c.FileURL).String()
	return c, nil
}

func (s *SQLStore) ListByCourse(ctx context.Context, courseID string) ([]Content, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, title, short_description, content_type, file_url, uploaded_at
		 FROM course_content WHERE course_id=$1 ORDER BY uploaded_at DESC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Content
	for rows.Next() {
		var c Content
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Title, &c.ShortDescription, &c.ContentType, &c.FileURL, &c.UploadedAt); err != nil {
			return nil, err
		}
		c.Kind = ParseKind(c.ContentType, c.FileURL).String()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM course_content WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
