// Package resource holds the controllers shared by every entity screen: a
// paginated, searchable List, the Mutations that change it, and the Form that
// feeds them. The controllers know nothing about HTTP; they are driven through
// Fetcher functions and report to a Notifier.
package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/backstage/pkg/entity"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 10

// ErrSuperseded is returned by Fetch when a newer fetch was issued before the
// response arrived. The response was discarded.
var ErrSuperseded = errors.New("resource: fetch superseded by a newer request")

// Query is what a list fetch asks the server for.
type Query struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Values encodes q as list endpoint query parameters. Empty search and filter
// values are omitted.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for k, f := range q.Filters {
		if f != "" {
			v.Set(k, f)
		}
	}
	return v
}

// Page is one page of rows.
type Page struct {
	Rows       []entity.Entity
	Pagination entity.Pagination
}

// Fetcher loads one page.
type Fetcher func(ctx context.Context, q Query) (Page, error)

// State is a snapshot of a List.
type State struct {
	Rows       []entity.Entity
	Pagination entity.Pagination
	Loading    bool
	SearchTerm string
	Filters    map[string]string
	Page       int
	Limit      int
	Err        error
}

// FilterNames returns the active filter names in order.
func (s State) FilterNames() []string {
	names := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ListOption configures a List.
type ListOption func(*List)

// WithLimit sets the page size.
func WithLimit(n int) ListOption {
	return func(l *List) {
		if n > 0 {
			l.state.Limit = n
		}
	}
}

// WithNotifier sets where load failures are reported.
func WithNotifier(n Notifier) ListOption {
	return func(l *List) {
		if n != nil {
			l.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ListOption {
	return func(l *List) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithOnChange registers a callback that receives every new state.
func WithOnChange(fn func(State)) ListOption {
	return func(l *List) {
		l.onChange = fn
	}
}

// List is the state of one paginated entity table.
type List struct {
	name     string
	fetch    Fetcher
	notifier Notifier
	logger   *zap.Logger
	onChange func(State)

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

// NewList returns a List named after the resource it shows. name is used in
// the "Failed to load <name>" notice.
func NewList(name string, fetch Fetcher, opts ...ListOption) *List {
	l := &List{
		name:     name,
		fetch:    fetch,
		notifier: discard{},
		logger:   zap.NewNop(),
		state: State{
			Page:    1,
			Limit:   DefaultLimit,
			Filters: map[string]string{},
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the resource name.
func (l *List) Name() string {
	return l.name
}

// State returns a snapshot. Rows are deep copies.
func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *List) snapshot() State {
	s := l.state
	s.Rows = entity.CloneAll(l.state.Rows)
	s.Filters = make(map[string]string, len(l.state.Filters))
	for k, v := range l.state.Filters {
		s.Filters[k] = v
	}
	return s
}

func (l *List) changed() {
	if l.onChange == nil {
		return
	}
	l.onChange(l.State())
}

// Close cancels any request in flight.
func (l *List) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Search commits term as the search. A new term resets the page to 1 and
// reports true; the caller fetches. Debouncing keystrokes is the caller's
// job, see Debounce.
func (l *List) Search(term string) bool {
	l.mu.Lock()
	if term == l.state.SearchTerm {
		l.mu.Unlock()
		return false
	}
	l.state.SearchTerm = term
	l.state.Page = 1
	l.mu.Unlock()

	l.logger.Debug("search committed", zap.String("resource", l.name), zap.String("search", term))
	l.changed()
	return true
}

// SetFilter sets one filter. An empty value removes it. A change resets the
// page to 1. It reports whether anything changed.
func (l *List) SetFilter(name, value string) bool {
	l.mu.Lock()
	if l.state.Filters[name] == value {
		l.mu.Unlock()
		return false
	}
	if value == "" {
		delete(l.state.Filters, name)
	} else {
		l.state.Filters[name] = value
	}
	l.state.Page = 1
	l.mu.Unlock()
	l.changed()
	return true
}

// ClearFilter removes a filter.
func (l *List) ClearFilter(name string) bool {
	return l.SetFilter(name, "")
}

// ApplyFilter sets a filter and fetches when it changed something.
func (l *List) ApplyFilter(ctx context.Context, name, value string) error {
	if !l.SetFilter(name, value) {
		return nil
	}
	return l.Fetch(ctx)
}

// SetPage moves to page p (at least 1).
func (l *List) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	l.mu.Lock()
	l.state.Page = p
	l.mu.Unlock()
	l.changed()
}

// GoToPage moves to page p and fetches it.
func (l *List) GoToPage(ctx context.Context, p int) error {
	l.SetPage(p)
	return l.Fetch(ctx)
}

// Query returns what the next fetch will ask for.
func (l *List) Query() Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query()
}

func (l *List) query() Query {
	filters := make(map[string]string, len(l.state.Filters))
	for k, v := range l.state.Filters {
		filters[k] = v
	}
	return Query{
		Page:    l.state.Page,
		Limit:   l.state.Limit,
		Search:  l.state.SearchTerm,
		Filters: filters,
	}
}

// Fetch loads the current page. Issuing a new Fetch cancels the one in flight;
// the older call returns ErrSuperseded and leaves the state alone. On failure
// the rows are kept, the error is recorded, and the notifier is told.
func (l *List) Fetch(ctx context.Context) error {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	q := l.query()
	l.state.Loading = true
	l.mu.Unlock()
	l.changed()

	start := time.Now()
	page, err := l.fetch(fctx, q)

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		cancel()
		l.logger.Debug("discarding stale response", zap.String("resource", l.name), zap.Uint64("generation", gen))
		return ErrSuperseded
	}
	cancel()
	l.cancel = nil
	l.state.Loading = false
	if err != nil {
		l.state.Err = err
		l.mu.Unlock()
		l.logger.Warn("list fetch failed", zap.String("resource", l.name), zap.Error(err))
		notifyError(l.notifier, err, fmt.Sprintf("Failed to load %s", l.name))
		l.changed()
		return err
	}
	l.state.Err = nil
	l.state.Rows = page.Rows
	if l.state.Rows == nil {
		l.state.Rows = []entity.Entity{}
	}
	l.state.Pagination = page.Pagination
	l.mu.Unlock()

	l.logger.Debug("list fetched",
		zap.String("resource", l.name),
		zap.Int("page", q.Page),
		zap.Int("rows", len(page.Rows)),
		zap.Duration("elapsed", time.Since(start)))
	l.changed()
	return nil
}

// Refetch reloads the current page.
func (l *List) Refetch(ctx context.Context) error {
	return l.Fetch(ctx)
}

// Seed replaces rows and pagination without a request.
func (l *List) Seed(rows []entity.Entity, p entity.Pagination) {
	l.mu.Lock()
	l.state.Rows = entity.CloneAll(rows)
	l.state.Pagination = p
	l.mu.Unlock()
	l.changed()
}

// Row returns a copy of the row with id.
func (l *List) Row(id string) (entity.Entity, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		return l.state.Rows[i].Clone(), true
	}
	return nil, false
}

func (l *List) index(id string) int {
	for i, r := range l.state.Rows {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// Patch sets field on the row with id locally and returns the record needed
// to roll it back.
func (l *List) Patch(id, field string, value any) (Patch, bool) {
	l.mu.Lock()
	i := l.index(id)
	if i < 0 {
		l.mu.Unlock()
		return Patch{}, false
	}
	row := l.state.Rows[i]
	before, existed := row[field]
	p := Patch{RowID: id, Field: field, Before: before, After: value, existed: existed}
	row.Set(field, value)
	l.mu.Unlock()
	l.changed()
	return p, true
}

// Rollback writes p.Before back, removing the field when it was absent before.
func (l *List) Rollback(p Patch) bool {
	l.mu.Lock()
	i := l.index(p.RowID)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	row := l.state.Rows[i]
	if p.existed {
		row.Set(p.Field, p.Before)
	} else {
		delete(row, p.Field)
	}
	l.mu.Unlock()
	l.changed()
	return true
}

// Replace swaps in an updated copy of a row, matched by id.
func (l *List) Replace(row entity.Entity) bool {
	l.mu.Lock()
	i := l.index(row.ID())
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	l.state.Rows[i] = row.Clone()
	l.mu.Unlock()
	l.changed()
	return true
}

// Remove drops the row with id.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	i := l.index(id)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	l.state.Rows = append(l.state.Rows[:i], l.state.Rows[i+1:]...)
	l.mu.Unlock()
	l.changed()
	return true
}
