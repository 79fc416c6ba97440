package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := OpenDisk(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	s, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if s.LoggedIn() {
		t.Fatalf("expected empty session, got %#v", s)
	}

	if err := p.SetTokens(ctx, "access-1", "refresh-1"); err != nil {
		t.Fatalf("set tokens: %v", err)
	}
	if err := p.SetUser(ctx, &User{ID: "u1", Email: "ops@label.example", Role: "admin"}); err != nil {
		t.Fatalf("set user: %v", err)
	}
	if err := p.SetTokens(ctx, "access-2", ""); err != nil {
		t.Fatalf("rotate access: %v", err)
	}

	s, err = p.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Token != "access-2" || s.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected tokens %#v", s)
	}
	if s.User == nil || s.User.Email != "ops@label.example" {
		t.Fatalf("unexpected user %#v", s.User)
	}

	info, err := os.Stat(filepath.Join(p.BasePath(), KeyToken))
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Fatalf("token file should not be group/world readable, got %v", perm)
	}
}

func TestDiskClearRemovesEverything(t *testing.T) {
	ctx := context.Background()
	p, err := OpenDisk(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = p.SetTokens(ctx, "a", "r")
	_ = p.SetUser(ctx, &User{Email: "x@y.z"})

	if err := p.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	// Clearing twice is harmless.
	if err := p.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	s, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Token != "" || s.RefreshToken != "" || s.User != nil {
		t.Fatalf("expected all keys cleared, got %#v", s)
	}
}

func TestMemoryClearCounts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Session{Token: "t", RefreshToken: "r", User: &User{Email: "a@b.c"}})
	if Token(ctx, m) != "t" {
		t.Fatalf("expected token t")
	}
	_ = m.Clear(ctx)
	if m.Clears() != 1 {
		t.Fatalf("expected one clear, got %d", m.Clears())
	}
	if Token(ctx, m) != "" {
		t.Fatalf("expected token cleared")
	}
}
