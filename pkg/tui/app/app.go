// Package teaui hosts the Bubble Tea dashboard for backstage: one tab per
// admin resource with search, filters, paging, in-place toggles, and a
// create/edit form.
package teaui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
	"tableflip.dev/backstage/pkg/store"
	"tableflip.dev/backstage/pkg/tui/events"
	"tableflip.dev/backstage/pkg/tui/theme"
)

const defaultToastTTL = 4 * time.Second

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeFilter
	modeForm
	modeConfirmDelete
	modeHelp
	modeExpired
)

// Options configures the dashboard.
type Options struct {
	Service *admin.Service
	// Resources defaults to the whole catalog.
	Resources []entity.Resource
	Limit     int
	Debounce  time.Duration
	ToastTTL  time.Duration
	Logger    *zap.Logger
	// Expired fires when the API client gave up on the session.
	Expired <-chan struct{}
	// Sessions streams changes made to the session store by other processes.
	Sessions <-chan store.Event
	// HelpStyle is a glamour standard style name ("dark", "light", "notty").
	HelpStyle string
}

type loadedMsg struct {
	resource string
	err      error
}

type mutatedMsg struct {
	resource string
	err      error
}

type savedMsg struct {
	resource string
	err      error
}

type searchTickMsg struct {
	resource string
	seq      uint64
}

type toastTimeoutMsg struct {
	seq int
}

type sessionCheckedMsg struct {
	loggedIn bool
}

type toast struct {
	notice resource.Notice
	seq    int
}

// inbox collects notices raised by controllers on command goroutines until the
// next Update drains them.
type inbox struct {
	mu      sync.Mutex
	notices []resource.Notice
}

func (b *inbox) Notify(n resource.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
}

func (b *inbox) drain() []resource.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

// tab is the per-resource state kept while switching between resources.
type tab struct {
	res       entity.Resource
	list      *resource.List
	muts      *resource.Mutations
	form      *resource.Form
	search    *resource.Debounce[string]
	filterIdx int
	toggleIdx int
	pending   int
}

// Model is the dashboard state.
type Model struct {
	svc    *admin.Service
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	theme  theme.Theme
	keys   keyMap

	tabs    []*tab
	current int
	limit   int
	delay   time.Duration

	inbox    *inbox
	table    table.Model
	rowIDs   []string
	search   textinput.Model
	filter   textinput.Model
	spinner  spinner.Model
	help     help.Model
	modal    *formModal
	deleteID string

	helpStyle string
	helpBody  string

	toast     toast
	toastSeq  int
	toastTTL  time.Duration
	expiredBy events.Source

	expiredCh <-chan struct{}
	sessionCh <-chan store.Event

	mode   mode
	width  int
	height int
}

// New builds the dashboard model. ctx bounds every request it issues.
func New(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	resources := opts.Resources
	if len(resources) == 0 {
		resources = entity.All()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = resource.DefaultLimit
	}
	delay := opts.Debounce
	if delay <= 0 {
		delay = resource.DefaultDebounce
	}
	ttl := opts.ToastTTL
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	helpStyle := opts.HelpStyle
	if helpStyle == "" {
		helpStyle = "dark"
	}

	th := theme.Default()

	t := table.New(table.WithFocused(true), table.WithHeight(12))
	t.SetStyles(th.Table)

	si := textinput.New()
	si.Placeholder = "search"
	si.Prompt = "/ "
	si.CharLimit = 128

	fi := textinput.New()
	fi.Prompt = ""
	fi.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	box := &inbox{}
	m := &Model{
		svc:       opts.Service,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		theme:     th,
		keys:      defaultKeys(),
		limit:     limit,
		delay:     delay,
		inbox:     box,
		table:     t,
		search:    si,
		filter:    fi,
		spinner:   sp,
		help:      help.New(),
		helpStyle: helpStyle,
		toastTTL:  ttl,
		expiredCh: opts.Expired,
		sessionCh: opts.Sessions,
	}
	for _, res := range resources {
		m.tabs = append(m.tabs, m.newTab(res))
	}
	m.syncTable()
	return m
}

func (m *Model) newTab(res entity.Resource) *tab {
	list := m.svc.NewList(res,
		resource.WithLimit(m.limit),
		resource.WithNotifier(m.inbox),
		resource.WithLogger(m.logger),
	)
	return &tab{
		res:    res,
		list:   list,
		muts:   resource.NewMutations(list),
		form:   resource.NewForm(m.svc.FormSpec(res, list, m.inbox)),
		search: resource.NewDebounce(""),
	}
}

// ExpiryHook returns a callback for api.WithSessionExpired and the channel
// the dashboard listens on. The callback never blocks.
func ExpiryHook() (func(), <-chan struct{}) {
	ch := make(chan struct{}, 1)
	return func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}, ch
}

// Init loads the first resource and starts listening for session changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetch(m.tab()),
		m.spinner.Tick,
		events.WaitForExpiry(m.expiredCh),
		events.WaitForStore(m.sessionCh),
	)
}

// Close cancels requests in flight.
func (m *Model) Close() {
	m.cancel()
	for _, t := range m.tabs {
		t.list.Close()
	}
}

func (m *Model) tab() *tab {
	if len(m.tabs) == 0 {
		return nil
	}
	return m.tabs[m.current]
}

func (m *Model) fetch(t *tab) tea.Cmd {
	if t == nil {
		return nil
	}
	t.pending++
	ctx, list, name := m.ctx, t.list, t.res.Name
	return func() tea.Msg {
		return loadedMsg{resource: name, err: list.Fetch(ctx)}
	}
}

func (m *Model) tabByName(name string) *tab {
	for _, t := range m.tabs {
		if t.res.Name == name {
			return t
		}
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applySizes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case loadedMsg:
		if t := m.tabByName(msg.resource); t != nil && t.pending > 0 {
			t.pending--
		}
		m.handleResult(msg.err)
		if cur := m.tab(); cur != nil && cur.res.Name == msg.resource {
			m.syncTable()
		}
	case mutatedMsg:
		m.handleResult(msg.err)
		m.syncTable()
	case savedMsg:
		m.handleResult(msg.err)
		if msg.err == nil && m.mode == modeForm {
			m.closeForm()
		}
		m.syncTable()
	case searchTickMsg:
		t := m.tabByName(msg.resource)
		if t == nil {
			break
		}
		if term, ok := t.search.Elapsed(msg.seq); ok {
			cmds = append(cmds, m.commitSearch(t, term))
		}
	case toastTimeoutMsg:
		if msg.seq == m.toast.seq {
			m.toast = toast{}
		}
	case events.SessionExpiredMsg:
		m.logger.Info("session expired", zap.String("source", string(msg.Source)))
		m.expire(msg.Source)
		if msg.Source == events.SourceClient {
			cmds = append(cmds, events.WaitForExpiry(m.expiredCh))
		} else {
			cmds = append(cmds, events.WaitForStore(m.sessionCh))
		}
	case events.SessionChangedMsg:
		cmds = append(cmds, events.WaitForStore(m.sessionCh))
		if m.mode == modeExpired {
			cmds = append(cmds, m.checkSession())
		}
	case sessionCheckedMsg:
		if msg.loggedIn && m.mode == modeExpired {
			m.mode = modeBrowse
			m.expiredBy = ""
			m.notify(resource.LevelSuccess, "Signed in again")
			cmds = append(cmds, m.fetch(m.tab()))
		}
	case tea.KeyMsg:
		m.handleKey(msg, &cmds)
	}

	if cmd := m.drainInbox(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleResult(err error) {
	if err == nil || errors.Is(err, resource.ErrSuperseded) {
		return
	}
	if errors.Is(err, api.ErrSessionExpired) {
		m.expire(events.SourceClient)
	}
}

func (m *Model) expire(src events.Source) {
	if m.mode == modeForm {
		m.closeForm()
	}
	m.mode = modeExpired
	m.expiredBy = src
	m.search.Blur()
	m.filter.Blur()
}

func (m *Model) checkSession() tea.Cmd {
	if m.svc == nil || m.svc.Client == nil {
		return nil
	}
	ctx, creds := m.ctx, m.svc.Client.Credentials()
	return func() tea.Msg {
		sess, err := creds.Load(ctx)
		return sessionCheckedMsg{loggedIn: err == nil && sess.LoggedIn()}
	}
}

func (m *Model) notify(level resource.Level, message string) {
	m.inbox.Notify(resource.Notice{Level: level, Message: message})
}

// drainInbox shows the newest pending notice and schedules its removal.
func (m *Model) drainInbox() tea.Cmd {
	notices := m.inbox.drain()
	if len(notices) == 0 {
		return nil
	}
	m.toastSeq++
	m.toast = toast{notice: notices[len(notices)-1], seq: m.toastSeq}
	seq := m.toastSeq
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg {
		return toastTimeoutMsg{seq: seq}
	})
}

func (m *Model) commitSearch(t *tab, term string) tea.Cmd {
	m.logger.Debug("search", zap.String("resource", t.res.Name), zap.String("term", term))
	if !t.list.Search(term) {
		return nil
	}
	return m.fetch(t)
}

// queueSearch records the input value and schedules its debounce deadline.
func (m *Model) queueSearch(t *tab, term string) tea.Cmd {
	seq := t.search.Input(term)
	name := t.res.Name
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return searchTickMsg{resource: name, seq: seq}
	})
}

func (m *Model) selectTab(i int) tea.Cmd {
	if len(m.tabs) == 0 {
		return nil
	}
	i = (i%len(m.tabs) + len(m.tabs)) % len(m.tabs)
	if i == m.current {
		return nil
	}
	m.current = i
	t := m.tab()
	m.search.SetValue(t.list.State().SearchTerm)
	m.table.SetCursor(0)
	m.syncTable()
	m.logger.Debug("resource selected", zap.String("resource", t.res.Name))
	st := t.list.State()
	if st.Rows == nil && t.pending == 0 {
		return m.fetch(t)
	}
	return nil
}

func (m *Model) selectedID() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rowIDs) {
		return ""
	}
	return m.rowIDs[i]
}

func (m *Model) nextPage(delta int) tea.Cmd {
	t := m.tab()
	st := t.list.State()
	p := st.Page + delta
	if p < 1 {
		return nil
	}
	if delta > 0 && st.Pagination.TotalPages > 0 && p > st.Pagination.TotalPages {
		return nil
	}
	t.list.SetPage(p)
	return m.fetch(t)
}

// cycleFilter advances the active filter to its next value, wrapping back to
// unset after the last one. Free-text filters open an input instead.
func (m *Model) cycleFilter() tea.Cmd {
	t := m.tab()
	if len(t.res.Filters) == 0 {
		m.notify(resource.LevelInfo, t.res.Title+" has no filters")
		return nil
	}
	f := t.res.Filters[t.filterIdx%len(t.res.Filters)]
	current := t.list.State().Filters[f.Name]
	if len(f.Values) == 0 {
		m.mode = modeFilter
		m.filter.Placeholder = f.Name
		m.filter.SetValue(current)
		return m.filter.Focus()
	}
	next := f.Values[0]
	for i, v := range f.Values {
		if v == current {
			next = ""
			if i+1 < len(f.Values) {
				next = f.Values[i+1]
			}
			break
		}
	}
	if !t.list.SetFilter(f.Name, next) {
		return nil
	}
	return m.fetch(t)
}

func (m *Model) applyFreeFilter() tea.Cmd {
	t := m.tab()
	f := t.res.Filters[t.filterIdx%len(t.res.Filters)]
	if !t.list.SetFilter(f.Name, m.filter.Value()) {
		return nil
	}
	return m.fetch(t)
}

func (m *Model) clearFilters() tea.Cmd {
	t := m.tab()
	changed := false
	for name := range t.list.State().Filters {
		if t.list.ClearFilter(name) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return m.fetch(t)
}

// toggle flips the active toggle field of the selected row right away and
// confirms it with the server in the background.
func (m *Model) toggle() tea.Cmd {
	t := m.tab()
	if len(t.res.Toggles) == 0 {
		m.notify(resource.LevelInfo, t.res.Title+" has nothing to toggle")
		return nil
	}
	id := m.selectedID()
	if id == "" {
		return nil
	}
	field := t.res.Toggles[t.toggleIdx%len(t.res.Toggles)].Field
	p, err := t.muts.Begin(id, field)
	if errors.Is(err, resource.ErrTogglePending) {
		m.notify(resource.LevelInfo, "Still saving, try again in a moment")
		return nil
	}
	if err != nil {
		m.notify(resource.LevelError, resource.ErrorMessage(err, resource.GenericFailure))
		return nil
	}
	m.syncTable()
	ctx, muts, call, name := m.ctx, t.muts, m.svc.Toggler(t.res, id, field), t.res.Name
	return func() tea.Msg {
		return mutatedMsg{resource: name, err: muts.Commit(ctx, p, call)}
	}
}

func (m *Model) confirmDelete() {
	t := m.tab()
	if t.res.ReadOnly {
		m.notify(resource.LevelInfo, t.res.Title+" is read-only")
		return
	}
	id := m.selectedID()
	if id == "" {
		return
	}
	m.deleteID = id
	m.mode = modeConfirmDelete
}

func (m *Model) remove(id string) tea.Cmd {
	t := m.tab()
	ctx, muts, call, name := m.ctx, t.muts, m.svc.Deleter(t.res), t.res.Name
	t.pending++
	return func() tea.Msg {
		err := muts.Delete(ctx, id, call)
		return loadedMsg{resource: name, err: err}
	}
}

func (m *Model) openForm(edit bool) tea.Cmd {
	t := m.tab()
	if t.res.ReadOnly || len(t.res.Fields) == 0 {
		m.notify(resource.LevelInfo, t.res.Title+" is read-only")
		return nil
	}
	var row entity.Entity
	if edit {
		id := m.selectedID()
		r, ok := t.list.Row(id)
		if !ok {
			return nil
		}
		row = r
	}
	m.modal = newFormModal(t.res, t.form, row)
	m.mode = modeForm
	return m.modal.focusCurrent()
}

func (m *Model) closeForm() {
	if m.modal != nil {
		m.modal.form.Close()
	}
	m.modal = nil
	m.mode = modeBrowse
}

func (m *Model) submitForm() tea.Cmd {
	if m.modal == nil || m.modal.form.Loading() {
		return nil
	}
	if err := m.modal.apply(); err != nil {
		m.modal.err = err.Error()
		m.notify(resource.LevelError, err.Error())
		return nil
	}
	m.modal.err = ""
	ctx, form, name := m.ctx, m.modal.form, m.tab().res.Name
	return func() tea.Msg {
		_, err := form.Submit(ctx)
		return savedMsg{resource: name, err: err}
	}
}

func (m *Model) showHelp() error {
	width := m.width - 8
	if width < 40 {
		width = 72
	}
	body, err := renderHelp(width, m.helpStyle)
	if err != nil {
		return fmt.Errorf("render help: %w", err)
	}
	m.helpBody = body
	m.mode = modeHelp
	return nil
}
