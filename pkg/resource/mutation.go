package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tableflip.dev/backstage/pkg/entity"
)

var (
	// ErrInvalidID is returned before any request when an id is not a
	// 24-character hex ObjectID.
	ErrInvalidID = errors.New("resource: invalid id")

	// ErrRowNotFound means the row to patch is not on the current page.
	ErrRowNotFound = errors.New("resource: row not in list")

	// ErrTogglePending means the same row and field are still being saved.
	ErrTogglePending = errors.New("resource: toggle still in flight")
)

// Patch records one optimistic single-field change.
type Patch struct {
	RowID  string
	Field  string
	Before any
	After  any

	existed bool
}

// Mutations changes a List's data on the server.
type Mutations struct {
	list     *List
	notifier Notifier
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[patchKey]bool
}

type patchKey struct{ id, field string }

// NewMutations returns the mutation controller for list. Notices go to the
// list's notifier.
func NewMutations(list *List) *Mutations {
	return &Mutations{list: list, notifier: list.notifier, logger: list.logger, pending: map[patchKey]bool{}}
}

// Run awaits call and refetches the list when it succeeds. On failure the
// list is left untouched and the error is reported. success, when set, is
// shown after the call went through.
func (m *Mutations) Run(ctx context.Context, success string, call func(ctx context.Context) error) error {
	if err := call(ctx); err != nil {
		m.logger.Warn("mutation failed", zap.String("resource", m.list.name), zap.Error(err))
		notifyError(m.notifier, err, GenericFailure)
		return err
	}
	if success != "" {
		m.notifier.Notify(Notice{Level: LevelSuccess, Message: success})
	}
	if err := m.list.Refetch(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		m.logger.Debug("refetch after mutation failed", zap.Error(err))
	}
	return nil
}

// Begin flips the boolean field of row id locally and returns the applied
// patch. A missing field counts as false. Only one patch per row and field
// may be in flight; a second Begin before its Commit returns
// ErrTogglePending, so a rollback always restores the value the server has.
func (m *Mutations) Begin(id, field string) (Patch, error) {
	key := patchKey{id, field}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending[key] {
		return Patch{}, fmt.Errorf("%w: %s.%s", ErrTogglePending, id, field)
	}
	row, ok := m.list.Row(id)
	if !ok {
		return Patch{}, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	current, _ := row.Bool(field)
	p, ok := m.list.Patch(id, field, !current)
	if !ok {
		return Patch{}, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	m.pending[key] = true
	return p, nil
}

// Pending reports whether a toggle of field on row id awaits the server.
func (m *Mutations) Pending(id, field string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[patchKey{id, field}]
}

// Commit sends the patched value. On failure the pre-toggle value is written
// back and the error is reported. Either way the row and field are free for
// the next Begin afterwards.
func (m *Mutations) Commit(ctx context.Context, p Patch, call func(ctx context.Context, value bool) error) error {
	defer func() {
		m.mu.Lock()
		delete(m.pending, patchKey{p.RowID, p.Field})
		m.mu.Unlock()
	}()
	value, _ := p.After.(bool)
	if err := call(ctx, value); err != nil {
		m.list.Rollback(p)
		m.logger.Warn("toggle rejected, rolled back",
			zap.String("resource", m.list.name),
			zap.String("id", p.RowID),
			zap.String("field", p.Field),
			zap.Error(err))
		notifyError(m.notifier, err, GenericFailure)
		return err
	}
	return nil
}

// Toggle flips a boolean field optimistically and reconciles with the server.
func (m *Mutations) Toggle(ctx context.Context, id, field string, call func(ctx context.Context, value bool) error) error {
	p, err := m.Begin(id, field)
	if err != nil {
		notifyError(m.notifier, err, GenericFailure)
		return err
	}
	return m.Commit(ctx, p, call)
}

// Delete removes id on the server and refetches. The id must be an ObjectID;
// anything else is rejected before a request is made.
func (m *Mutations) Delete(ctx context.Context, id string, call func(ctx context.Context, id string) error) error {
	if !entity.ValidObjectID(id) {
		m.notifier.Notify(Notice{Level: LevelError, Message: "Invalid ID"})
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return m.Run(ctx, "Deleted", func(ctx context.Context) error {
		return call(ctx, id)
	})
}
