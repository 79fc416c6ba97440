package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a session change notification.
type EventType int

const (
	// EventSessionChanged indicates tokens or the user were (re)written.
	EventSessionChanged EventType = iota

	// EventSessionCleared signals the access token is gone, either through a
	// logout or a failed refresh, possibly in another process.
	EventSessionCleared
)

func (t EventType) String() string {
	if t == EventSessionCleared {
		return "cleared"
	}
	return "changed"
}

// Event is emitted by Disk.Watch when the session files change.
type Event struct {
	Type EventType
}

// Watch streams session change events until ctx is cancelled. Bursts of file
// activity (a login writes three files) are coalesced into one event. The
// channel is closed once ctx is done or the watcher fails.
func (p *Disk) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("store: session base path unknown")
	}
	if err := os.MkdirAll(p.basePath, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}
	if err := watcher.Add(p.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", p.basePath, err)
	}

	events := make(chan Event, 8)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func() {
			ev := Event{Type: EventSessionChanged}
			if !p.hasToken() {
				ev.Type = EventSessionCleared
			}
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		// The throttle only signals; this goroutine is the sole writer of
		// events so the channel can be closed safely.
		flush := make(chan struct{}, 1)
		signal := func() {
			select {
			case flush <- struct{}{}:
			default:
			}
		}
		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-flush:
				send()
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(signal)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSessionFile(evt.Name) {
					continue
				}
				throttle.Enqueue(signal)
			}
		}
	}()

	return events, nil
}

func (p *Disk) hasToken() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.d.Has(KeyToken)
}

func isSessionFile(path string) bool {
	switch filepath.Base(path) {
	case KeyToken, KeyRefreshToken, KeyUser:
		return true
	}
	return false
}

// eventThrottle coalesces rapid change notifications so consumers react once
// per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{delay: delay}
}

func (t *eventThrottle) Enqueue(send func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.mu.Lock()
			t.timer = nil
			t.mu.Unlock()
			send()
		})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
