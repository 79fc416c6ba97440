package resource

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/backstage/pkg/entity"
)

type serverError struct{ msg string }

func (e *serverError) Error() string         { return "api error (400): " + e.msg }
func (e *serverError) ServerMessage() string { return e.msg }

func seededList(rec *Recorder, rows ...entity.Entity) (*List, *recorder) {
	r := newRecorder(rows...)
	l := NewList("royalty months", r.fetch, WithNotifier(rec))
	l.Seed(rows, entity.Pagination{CurrentPage: 1, TotalPages: 1, TotalCount: len(rows)})
	return l, r
}

func TestToggleRollsBackOnFailure(t *testing.T) {
	rec := &Recorder{}
	l, _ := seededList(rec, entity.Entity{"_id": "a", "isActive": true})
	m := NewMutations(l)

	p, err := m.Begin("a", "isActive")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	row, _ := l.Row("a")
	if b, _ := row.Bool("isActive"); b {
		t.Fatalf("optimistic value should render false")
	}

	err = m.Commit(context.Background(), p, func(_ context.Context, v bool) error {
		if v {
			t.Fatalf("server should receive false")
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	row, _ = l.Row("a")
	if b, _ := row.Bool("isActive"); !b {
		t.Fatalf("rollback should restore true")
	}
	if errs := rec.Errors(); len(errs) != 1 || errs[0] != GenericFailure {
		t.Fatalf("expected one generic error toast, got %v", errs)
	}
}

func TestBeginRefusesSecondPatchOfSameField(t *testing.T) {
	l, _ := seededList(&Recorder{}, entity.Entity{"_id": "a", "isActive": true, "isBlocked": false})
	m := NewMutations(l)

	p, err := m.Begin("a", "isActive")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := m.Begin("a", "isActive"); !errors.Is(err, ErrTogglePending) {
		t.Fatalf("expected ErrTogglePending, got %v", err)
	}
	if _, err := m.Begin("a", "isBlocked"); err != nil {
		t.Fatalf("another field is independent: %v", err)
	}
	if !m.Pending("a", "isActive") {
		t.Fatalf("isActive should be pending")
	}

	_ = m.Commit(context.Background(), p, func(context.Context, bool) error { return errors.New("boom") })
	row, _ := l.Row("a")
	if b, _ := row.Bool("isActive"); !b {
		t.Fatalf("rollback should restore the server value true")
	}
	if m.Pending("a", "isActive") {
		t.Fatalf("commit should release the field")
	}
	if _, err := m.Begin("a", "isActive"); err != nil {
		t.Fatalf("begin after commit: %v", err)
	}
}

func TestToggleRollbackRemovesFieldThatWasMissing(t *testing.T) {
	l, _ := seededList(&Recorder{}, entity.Entity{"_id": "u1"})
	m := NewMutations(l)
	_ = m.Toggle(context.Background(), "u1", "isBlocked", func(context.Context, bool) error {
		return errors.New("nope")
	})
	row, _ := l.Row("u1")
	if _, ok := row["isBlocked"]; ok {
		t.Fatalf("rollback must restore the absent field, got %#v", row)
	}
}

func TestToggleKeepsValueOnSuccess(t *testing.T) {
	l, r := seededList(&Recorder{}, entity.Entity{"_id": "a", "isActive": false})
	m := NewMutations(l)
	if err := m.Toggle(context.Background(), "a", "isActive", func(context.Context, bool) error { return nil }); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	row, _ := l.Row("a")
	if b, _ := row.Bool("isActive"); !b {
		t.Fatalf("expected true after toggle")
	}
	if r.count() != 0 {
		t.Fatalf("optimistic toggles do not refetch")
	}
}

func TestToggleUnknownRow(t *testing.T) {
	l, _ := seededList(&Recorder{})
	m := NewMutations(l)
	called := false
	err := m.Toggle(context.Background(), "zz", "isActive", func(context.Context, bool) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrRowNotFound) || called {
		t.Fatalf("expected ErrRowNotFound without a call, got %v", err)
	}
}

func TestDeleteRejectsInvalidID(t *testing.T) {
	rec := &Recorder{}
	l, r := seededList(rec)
	m := NewMutations(l)
	called := false
	err := m.Delete(context.Background(), "not-an-id", func(context.Context, string) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if called || r.count() != 0 {
		t.Fatalf("no request may be made for an invalid id")
	}
	if errs := rec.Errors(); len(errs) != 1 || errs[0] != "Invalid ID" {
		t.Fatalf("notices %v", errs)
	}
}

func TestDeleteValidIDRefetches(t *testing.T) {
	rec := &Recorder{}
	l, r := seededList(rec)
	m := NewMutations(l)
	id := "65a1b2c3d4e5f60718293a4b"
	var got string
	if err := m.Delete(context.Background(), id, func(_ context.Context, id string) error {
		got = id
		return nil
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got != id || r.count() != 1 {
		t.Fatalf("expected call with %s and one refetch, got %q %d", id, got, r.count())
	}
}

func TestRunSurfacesServerMessage(t *testing.T) {
	rec := &Recorder{}
	l, r := seededList(rec, entity.Entity{"_id": "a"})
	m := NewMutations(l)
	err := m.Run(context.Background(), "Created", func(context.Context) error {
		return &serverError{msg: "Month already exists"}
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if r.count() != 0 {
		t.Fatalf("failed mutation must not refetch")
	}
	if errs := rec.Errors(); len(errs) != 1 || errs[0] != "Month already exists" {
		t.Fatalf("notices %v", errs)
	}
	if len(l.State().Rows) != 1 {
		t.Fatalf("state must be untouched")
	}
}
