package store

import (
	"context"
	"testing"
	"time"
)

func TestDiskWatchReportsLoginAndLogout(t *testing.T) {
	p, err := OpenDisk(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow the watcher goroutine to subscribe before writing.
	time.Sleep(50 * time.Millisecond)

	if err := p.SetTokens(ctx, "access", "refresh"); err != nil {
		t.Fatalf("set tokens: %v", err)
	}
	expectEvent(t, ch, EventSessionChanged)

	if err := p.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	expectEvent(t, ch, EventSessionCleared)

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}

func expectEvent(t *testing.T, ch <-chan Event, want EventType) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed waiting for %s", want)
			}
			if evt.Type == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}
