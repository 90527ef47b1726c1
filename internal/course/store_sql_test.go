package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/edusync-lms/edusync/internal/db"
)

var courseTestSeq int

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	courseTestSeq++
	dsn := fmt.Sprintf("file:course_store_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", courseTestSeq)
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	for _, stmt := range []string{
		`INSERT INTO users (id, email, password_hash, name, role, created_at)
		 VALUES ('inst-1', 'pat@example.com', 'x', 'Pat', 'instructor', 0)`,
		`INSERT INTO users (id, email, password_hash, name, role, created_at)
		 VALUES ('u1', 'sam@example.com', 'x', 'Sam', 'student', 0)`,
	} {
		if _, err := dbh.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return dbh
}

func TestGroupCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(openTestDB(t))

	g, err := store.CreateGroup(ctx, "inst-1", "Science", "lab courses")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	got, err := store.GetGroup(ctx, g.ID)
	if err != nil || got.Title != "Science" || got.InstructorID != "inst-1" {
		t.Fatalf("get group: %+v, %v", got, err)
	}

	updated, err := store.UpdateGroup(ctx, g.ID, "Natural Science", "renamed")
	if err != nil {
		t.Fatalf("update group: %v", err)
	}
	if updated.Title != "Natural Science" || updated.UpdatedAt == 0 {
		t.Fatalf("updated = %+v", updated)
	}
	if _, err := store.UpdateGroup(ctx, "nope", "x", ""); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("update unknown group: got %v, want ErrGroupNotFound", err)
	}

	groups, err := store.ListGroupsByInstructor(ctx, "inst-1")
	if err != nil || len(groups) != 1 {
		t.Fatalf("list groups: %v, %v", groups, err)
	}

	if err := store.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	if _, err := store.GetGroup(ctx, g.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("after delete: got %v, want ErrGroupNotFound", err)
	}
	if err := store.DeleteGroup(ctx, g.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("double delete: got %v, want ErrGroupNotFound", err)
	}
}

func TestCreateCourseInGroup(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(openTestDB(t))

	if _, err := store.Create(ctx, "inst-1", "nope", "Chemistry", ""); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("create with unknown group: got %v, want ErrGroupNotFound", err)
	}

	g, err := store.CreateGroup(ctx, "inst-1", "Science", "")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	inGroup, err := store.Create(ctx, "inst-1", g.ID, "Chemistry", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inGroup.GroupID != g.ID {
		t.Fatalf("groupID = %q, want %q", inGroup.GroupID, g.ID)
	}
	loose, err := store.Create(ctx, "inst-1", "", "History", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if loose.GroupID != "" {
		t.Fatalf("ungrouped course carries groupID %q", loose.GroupID)
	}

	members, err := store.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("list by group: %v", err)
	}
	if len(members) != 1 || members[0].ID != inGroup.ID {
		t.Fatalf("members = %+v", members)
	}
	if _, err := store.ListByGroup(ctx, "nope"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("list unknown group: got %v, want ErrGroupNotFound", err)
	}
}

func TestDeleteGroupKeepsCourses(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(openTestDB(t))

	g, err := store.CreateGroup(ctx, "inst-1", "Science", "")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	c, err := store.Create(ctx, "inst-1", g.ID, "Chemistry", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}

	survivor, err := store.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("course must survive its group: %v", err)
	}
	if survivor.GroupID != "" {
		t.Fatalf("groupID = %q after group deletion, want cleared", survivor.GroupID)
	}
}

func TestEnrollDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(openTestDB(t))

	c, err := store.Create(ctx, "inst-1", "", "History", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Enroll(ctx, "nope", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("enroll in unknown course: got %v, want ErrNotFound", err)
	}

	e, err := store.Enroll(ctx, c.ID, "u1")
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if e.Course.ID != c.ID {
		t.Fatalf("enrollment course = %+v", e.Course)
	}
	if _, err := store.Enroll(ctx, c.ID, "u1"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("second enroll: got %v, want ErrAlreadyEnrolled", err)
	}
}

func TestEnrollUniqueConstraintMapsToAlreadyEnrolled(t *testing.T) {
	ctx := context.Background()
	dbh := openTestDB(t)
	store := NewSQLStore(dbh)

	c, err := store.Create(ctx, "inst-1", "", "History", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Simulate the loser of a concurrent enroll: the row lands between the
	// existence check and the insert, so the insert itself hits the
	// (course_id, user_id) unique constraint.
	if _, err := dbh.Exec(
		`INSERT INTO enrollments (id, course_id, user_id, enrolled_on) VALUES ('e-race', $1, 'u1', 0)`,
		c.ID); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}
	if _, err := store.Enroll(ctx, c.ID, "u1"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("constraint violation must map to ErrAlreadyEnrolled, got %v", err)
	}
}
