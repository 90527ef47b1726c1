// Package client is a Go client for the EduSync REST API, enough to drive a
// student attempt headlessly: fetch the course assessment, stream telemetry,
// submit the result. It implements the assessment player's source and sink
// interfaces.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/edusync-lms/edusync/internal/assessment"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Login exchanges credentials for a bearer token kept on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/Auth/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// FetchAssessment implements assessment.AssessmentSource.
func (c *Client) FetchAssessment(ctx context.Context, courseID string) (assessment.Assessment, error) {
	var a assessment.Assessment
	err := c.do(ctx, http.MethodGet, "/Assessments/"+courseID, nil, &a)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return assessment.Assessment{}, assessment.ErrNoAssessment
		}
		return assessment.Assessment{}, err
	}
	return a, nil
}

// QuestionAnswered implements assessment.TelemetrySink.
func (c *Client) QuestionAnswered(ctx context.Context, ev assessment.QuestionAnsweredEvent) error {
	return c.do(ctx, http.MethodPost, "/AssessmentEvents/QuestionAnswered", ev, nil)
}

// AssessmentCompleted implements assessment.TelemetrySink.
func (c *Client) AssessmentCompleted(ctx context.Context, ev assessment.AssessmentCompletedEvent) error {
	return c.do(ctx, http.MethodPost, "/AssessmentEvents/AssessmentCompleted", ev, nil)
}

// SubmitAttempt implements assessment.AttemptSink.
func (c *Client) SubmitAttempt(ctx context.Context, assessmentID string, score float64, answers map[int]int) error {
	body := struct {
		Score   float64     `json:"score"`
		Answers map[int]int `json:"answers"`
	}{Score: score, Answers: answers}
	return c.do(ctx, http.MethodPost, "/"+assessmentID+"/SubmitAssessment", body, nil)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, strings.TrimSpace(e.body))
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(msg)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
