package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role string
		perm string
		want bool
	}{
		{"student", "course:browse", true},
		{"student", "attempt:submit", true},
		{"student", "course:create", false},
		{"student", "analytics:view", false},
		{"instructor", "course:create", true},
		{"instructor", "course:delete", true},
		{"instructor", "assessment:update", true},
		{"instructor", "analytics:view", true},
		{"instructor", "attempt:submit", false},
		{"admin", "course:browse", false},
		{"", "course:browse", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "course:create", "course:browse") {
		t.Fatal("Any must pass when one permission matches")
	}
	if c.Any("student", "course:create", "course:delete") {
		t.Fatal("Any must fail when none match")
	}
}

func TestRequireMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := Require("course:create")(next)

	req := httptest.NewRequest(http.MethodPost, "/CreateCourse", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("no role in context: status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "student")))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student creating a course: status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "instructor")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("instructor creating a course: status = %d, want 204", rec.Code)
	}
}
