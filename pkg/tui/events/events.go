// Package events holds the messages the dashboard exchanges with code running
// outside the Bubble Tea loop: the API client's session hook and the session
// store watcher.
package events

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/backstage/pkg/store"
)

// Source identifies what reported a session change.
type Source string

const (
	SourceClient Source = "client"
	SourceStore  Source = "store"
)

// SessionExpiredMsg is delivered when the stored credentials are gone, either
// because a refresh failed or because another process logged out.
type SessionExpiredMsg struct {
	Source Source
}

// Describe renders the message for logs.
func (m SessionExpiredMsg) Describe() string {
	return fmt.Sprintf("session expired source:%s", m.Source)
}

// SessionChangedMsg is delivered when another process rewrote the session,
// for example a `backstage login` in a second terminal.
type SessionChangedMsg struct{}

// WaitForExpiry blocks on ch and reports the client hook firing. A closed
// channel yields no message.
func WaitForExpiry(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return SessionExpiredMsg{Source: SourceClient}
	}
}

// WaitForStore blocks on the session watcher and translates its next event.
func WaitForStore(ch <-chan store.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		if ev.Type == store.EventSessionCleared {
			return SessionExpiredMsg{Source: SourceStore}
		}
		return SessionChangedMsg{}
	}
}
