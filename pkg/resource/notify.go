package resource

import (
	"errors"
	"sync"
)

// GenericFailure is shown when a failure carries no server message.
const GenericFailure = "Something went wrong"

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a short user-facing message, rendered as a toast or a stderr line.
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives notices from controllers.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discard struct{}

func (discard) Notify(Notice) {}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Errors returns the messages of error notices.
func (r *Recorder) Errors() []string {
	var out []string
	for _, n := range r.Notices() {
		if n.Level == LevelError {
			out = append(out, n.Message)
		}
	}
	return out
}

type serverMessager interface {
	ServerMessage() string
}

// ErrorMessage returns the server message carried by err, else fallback.
func ErrorMessage(err error, fallback string) string {
	var sm serverMessager
	if errors.As(err, &sm) {
		if msg := sm.ServerMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

func notifyError(n Notifier, err error, fallback string) {
	n.Notify(Notice{Level: LevelError, Message: ErrorMessage(err, fallback)})
}
