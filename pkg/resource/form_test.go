package resource

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"tableflip.dev/backstage/pkg/entity"
)

func ticketFields() []entity.Field {
	return []entity.Field{
		{Name: "subject", Required: true},
		{Name: "status", Codec: entity.TicketStatus, Default: "Open"},
		{Name: "note", APIName: "adminNote"},
		{Name: "isrc", Pattern: regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{3}\d{7}$`)},
	}
}

func TestFormCreateDefaultsAndPayload(t *testing.T) {
	var sent map[string]any
	saved := 0
	f := NewForm(FormSpec{
		Fields: ticketFields(),
		Create: func(_ context.Context, payload map[string]any) (entity.Entity, error) {
			sent = payload
			return entity.Entity{"_id": "t1"}, nil
		},
		OnSaved: func(context.Context) error { saved++; return nil },
	})
	f.Open(nil)
	if f.Mode() != ModeCreate || f.Get("status") != "Open" {
		t.Fatalf("expected create form with defaults")
	}
	_ = f.Set("subject", "Royalty statement missing")
	_ = f.Set("note", "check March")
	_ = f.Set("status", "In Progress")

	e, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if e.ID() != "t1" || saved != 1 || f.IsOpen() {
		t.Fatalf("expected saved and closed form")
	}
	if sent["status"] != "in-progress" || sent["adminNote"] != "check March" {
		t.Fatalf("unexpected payload %#v", sent)
	}
	if _, ok := sent["isrc"]; ok {
		t.Fatalf("empty fields are left out")
	}
}

func TestFormValidation(t *testing.T) {
	called := false
	f := NewForm(FormSpec{
		Fields: append(ticketFields(), entity.Field{Name: "month", Kind: entity.KindMonth}),
		Create: func(context.Context, map[string]any) (entity.Entity, error) {
			called = true
			return nil, nil
		},
	})
	f.Open(nil)
	_ = f.Set("isrc", "nope")
	f.values["month"] = "January"

	_, err := f.Submit(context.Background())
	if err == nil || called {
		t.Fatalf("expected validation failure without a request")
	}
	fields := map[string]bool{}
	var ve *ValidationError
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		if errors.As(e, &ve) {
			fields[ve.Field] = true
		}
	}
	for _, want := range []string{"subject", "isrc", "month"} {
		if !fields[want] {
			t.Errorf("missing validation error for %s in %v", want, err)
		}
	}
}

func TestFormEditSeedsFromRow(t *testing.T) {
	var gotID string
	var sent map[string]any
	f := NewForm(FormSpec{
		Fields: ticketFields(),
		Update: func(_ context.Context, id string, payload map[string]any) (entity.Entity, error) {
			gotID, sent = id, payload
			return nil, nil
		},
	})
	f.Open(entity.Entity{"_id": "t9", "subject": "Hi", "status": "resolved", "adminNote": "done"})
	if f.Mode() != ModeEdit || f.ID() != "t9" {
		t.Fatalf("expected edit mode for t9")
	}
	if f.Get("status") != "Resolved" || f.Get("note") != "done" {
		t.Fatalf("row values should decode to labels: %v %v", f.Get("status"), f.Get("note"))
	}
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotID != "t9" || sent["status"] != "resolved" {
		t.Fatalf("unexpected update %s %#v", gotID, sent)
	}
}

func TestFormEditKeepsUnknownServerCode(t *testing.T) {
	var sent map[string]any
	f := NewForm(FormSpec{
		Fields: ticketFields(),
		Update: func(_ context.Context, _ string, payload map[string]any) (entity.Entity, error) {
			sent = payload
			return nil, nil
		},
	})
	f.Open(entity.Entity{"_id": "t4", "subject": "Hi", "status": "escalated"})
	if f.Get("status") != "escalated" {
		t.Fatalf("unknown code should show as is, got %v", f.Get("status"))
	}
	_ = f.Set("subject", "Hello")
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("editing another field: %v", err)
	}
	if sent["subject"] != "Hello" || sent["status"] != "escalated" {
		t.Fatalf("unexpected payload %#v", sent)
	}

	f.Open(entity.Entity{"_id": "t4", "subject": "Hi", "status": "escalated"})
	_ = f.Set("status", "Bogus")
	var ve *ValidationError
	if err := f.Validate(); !errors.As(err, &ve) || ve.Field != "status" {
		t.Fatalf("a changed unknown value is still rejected, got %v", err)
	}
}

func TestFormFailureStaysOpen(t *testing.T) {
	rec := &Recorder{}
	f := NewForm(FormSpec{
		Fields: ticketFields(),
		Create: func(context.Context, map[string]any) (entity.Entity, error) {
			return nil, &serverError{msg: "Subject too long"}
		},
		Notifier: rec,
	})
	f.Open(nil)
	_ = f.Set("subject", "x")
	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if !f.IsOpen() || f.Get("subject") != "x" || f.Loading() {
		t.Fatalf("failed submit should keep the form open with its values")
	}
	if errs := rec.Errors(); len(errs) != 1 || errs[0] != "Subject too long" {
		t.Fatalf("notices %v", errs)
	}
}

func TestFormSetUnknownField(t *testing.T) {
	f := NewForm(FormSpec{Fields: ticketFields()})
	f.Open(nil)
	if err := f.Set("colour", "red"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}
