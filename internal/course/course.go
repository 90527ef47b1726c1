package course

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("course not found")
	ErrGroupNotFound   = errors.New("course group not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
)

// Group bundles related courses under one instructor-owned heading. Deleting
// a group orphans its courses, it never deletes them.
type Group struct {
	ID           string `json:"courseGroupId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	InstructorID string `json:"instructorId"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt,omitempty"`
}

type Course struct {
	ID           string `json:"courseId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	InstructorID string `json:"instructorId"`
	GroupID      string `json:"courseGroupId,omitempty"`
	MediaURL     string `json:"mediaUrl,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt,omitempty"`
}

// Enrollment is one student's membership in a course, merged with the course
// fields the dashboard renders.
type Enrollment struct {
	EnrollmentID string    `json:"enrollmentId"`
	EnrolledOn   time.Time `json:"enrolledOn"`
	Course
}

// AnalyticsRow is one course aggregate in the instructor analytics view.
type AnalyticsRow struct {
	CourseID      string  `json:"courseId"`
	CourseTitle   string  `json:"courseTitle"`
	EnrolledCount int     `json:"enrolledCount"`
	AttemptCount  int     `json:"attemptCount"`
	AverageScore  float64 `json:"averageScore"`
	MaxScore      float64 `json:"maxScore"`
}
