package teaui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/devserver"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
	"tableflip.dev/backstage/pkg/store"
	"tableflip.dev/backstage/pkg/tui/events"
)

const monthID = "65a1b2c3d4e5f60718293a4b"

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T, names ...string) (*Model, *devserver.Server, *admin.Service) {
	t.Helper()
	dev := devserver.New()
	srv := httptest.NewServer(dev.Handler())
	t.Cleanup(srv.Close)

	svc := &admin.Service{Client: api.NewClient(srv.URL, store.NewMemory(store.Session{}))}
	if _, err := svc.Login(context.Background(), devserver.DefaultEmail, devserver.DefaultPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	var resources []entity.Resource
	for _, name := range names {
		res, err := entity.Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		resources = append(resources, res)
	}
	m := New(context.Background(), Options{
		Service:   svc,
		Resources: resources,
		Debounce:  5 * time.Millisecond,
		ToastTTL:  time.Millisecond,
		HelpStyle: "notty",
	})
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, dev, svc
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle runs cmds, feeding every message they produce back into the model
// until nothing is left in flight. Timer-driven housekeeping (spinner frames,
// cursor blinks, toast expiry) is dropped so the loop terminates.
func settle(t *testing.T, m *Model, cmds ...tea.Cmd) {
	t.Helper()
	msgs := make(chan tea.Msg, 64)
	outstanding := 0
	run := func(c tea.Cmd) {
		if c == nil {
			return
		}
		outstanding++
		go func() { msgs <- c() }()
	}
	for _, c := range cmds {
		run(c)
	}
	deadline := time.After(5 * time.Second)
	for outstanding > 0 {
		select {
		case msg := <-msgs:
			outstanding--
			switch msg := msg.(type) {
			case nil, spinner.TickMsg, cursor.BlinkMsg, toastTimeoutMsg:
			case tea.BatchMsg:
				for _, c := range msg {
					run(c)
				}
			default:
				_, next := m.Update(msg)
				run(next)
			}
		case <-deadline:
			t.Fatalf("model did not settle, %d commands in flight", outstanding)
		}
	}
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := m.Update(keyMsg(k))
		settle(t, m, cmd)
	}
}

func load(t *testing.T, m *Model) {
	t.Helper()
	settle(t, m, m.fetch(m.tab()))
}

func cell(t *testing.T, m *Model, row, col int) string {
	t.Helper()
	rows := m.table.Rows()
	if row >= len(rows) {
		t.Fatalf("row %d out of range (%d rows)", row, len(rows))
	}
	return rows[row][col]
}

func TestBrowseRendersRowsAndPagination(t *testing.T) {
	m, dev, _ := newTestModel(t, "royalty-months")
	if err := dev.Seed("royalty-months", entity.Entity{"_id": monthID, "month": "Jan-25", "isActive": true}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)

	view := m.View()
	for _, want := range []string{"MCN Royalty Months", "Jan-25", "yes", "page 1 of 1 · 1 total"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if got := m.selectedID(); got != monthID {
		t.Fatalf("selected id = %q", got)
	}
}

func TestToggleIsOptimisticAndRollsBack(t *testing.T) {
	m, dev, _ := newTestModel(t, "royalty-months")
	if err := dev.Seed("royalty-months", entity.Entity{"_id": monthID, "month": "Jan-25", "isActive": true}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)
	res := m.tab().res
	dev.Fail(http.MethodPatch, res.Path, http.StatusInternalServerError, "Could not toggle month")

	_, cmd := m.Update(keyMsg(" "))
	if got := cell(t, m, 0, 1); got != "no" {
		t.Fatalf("expected optimistic no, got %q", got)
	}

	settle(t, m, cmd)
	if got := cell(t, m, 0, 1); got != "yes" {
		t.Fatalf("expected rollback to yes, got %q", got)
	}
	if m.toast.notice.Level != resource.LevelError || m.toast.notice.Message != "Could not toggle month" {
		t.Fatalf("unexpected toast %#v", m.toast.notice)
	}
	if !strings.Contains(m.View(), "Could not toggle month") {
		t.Fatalf("toast not rendered")
	}
}

func TestSecondToggleWaitsForTheFirst(t *testing.T) {
	m, dev, _ := newTestModel(t, "royalty-months")
	if err := dev.Seed("royalty-months", entity.Entity{"_id": monthID, "month": "Jan-25", "isActive": true}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)
	dev.Fail(http.MethodPatch, m.tab().res.Path, http.StatusInternalServerError, "Could not toggle month")
	before := dev.Stats().Requests

	_, first := m.Update(keyMsg(" "))
	_, _ = m.Update(keyMsg(" "))
	if got := cell(t, m, 0, 1); got != "no" {
		t.Fatalf("second press must not flip again, got %q", got)
	}
	if m.toast.notice.Level != resource.LevelInfo || !strings.Contains(m.toast.notice.Message, "Still saving") {
		t.Fatalf("unexpected toast %#v", m.toast.notice)
	}

	settle(t, m, first)
	if got := cell(t, m, 0, 1); got != "yes" {
		t.Fatalf("expected rollback to yes, got %q", got)
	}
	if n := dev.Stats().Requests - before; n != 1 {
		t.Fatalf("expected one PATCH, got %d requests", n)
	}
}

func TestToggleCommitsToServer(t *testing.T) {
	m, dev, _ := newTestModel(t, "royalty-months")
	if err := dev.Seed("royalty-months", entity.Entity{"_id": monthID, "month": "Jan-25", "isActive": true}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)

	press(t, m, " ")
	active, _ := dev.Docs("royalty-months")[0].Bool("isActive")
	if active {
		t.Fatalf("server still active")
	}
	if got := cell(t, m, 0, 1); got != "no" {
		t.Fatalf("expected no, got %q", got)
	}
}

func TestSearchTypingFetchesOnceWithFinalTerm(t *testing.T) {
	m, dev, _ := newTestModel(t, "royalty-months")
	if err := dev.Seed("royalty-months",
		entity.Entity{"month": "Jan-25", "isActive": true},
		entity.Entity{"month": "Feb-25", "isActive": true},
	); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)
	press(t, m, "/")
	if m.mode != modeSearch {
		t.Fatalf("expected search mode")
	}

	before := dev.Stats().Requests
	var cmds []tea.Cmd
	for _, k := range []string{"jan", "-", "25"} {
		_, cmd := m.Update(keyMsg(k))
		cmds = append(cmds, cmd)
	}
	settle(t, m, cmds...)

	if got := dev.Stats().Requests - before; got != 1 {
		t.Fatalf("expected one fetch, got %d", got)
	}
	if q := m.tab().list.Query(); q.Search != "jan-25" || q.Page != 1 {
		t.Fatalf("unexpected query %#v", q)
	}
	if rows := m.table.Rows(); len(rows) != 1 || rows[0][0] != "Jan-25" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestEnterCommitsSearchImmediately(t *testing.T) {
	m, dev, _ := newTestModel(t, "royalty-months")
	if err := dev.Seed("royalty-months", entity.Entity{"month": "Jan-25"}, entity.Entity{"month": "Feb-25"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)
	press(t, m, "/")
	m.Update(keyMsg("feb"))
	press(t, m, "enter")

	if m.mode != modeBrowse {
		t.Fatalf("expected browse mode after enter")
	}
	if rows := m.table.Rows(); len(rows) != 1 || rows[0][0] != "Feb-25" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestFilterChangeResetsPage(t *testing.T) {
	m, dev, _ := newTestModel(t, "tickets")
	var docs []entity.Entity
	for i := 0; i < 25; i++ {
		status := "open"
		if i%2 == 1 {
			status = "closed"
		}
		docs = append(docs, entity.Entity{"subject": "ticket", "status": status})
	}
	if err := dev.Seed("tickets", docs...); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)
	press(t, m, "n", "n")
	if p := m.tab().list.State().Page; p != 3 {
		t.Fatalf("expected page 3, got %d", p)
	}
	press(t, m, "n")
	if p := m.tab().list.State().Page; p != 3 {
		t.Fatalf("paging past the last page moved to %d", p)
	}

	press(t, m, "f")
	st := m.tab().list.State()
	if st.Page != 1 || st.Filters["status"] != "open" {
		t.Fatalf("unexpected state page=%d filters=%v", st.Page, st.Filters)
	}
	if st.Pagination.TotalCount != 13 {
		t.Fatalf("expected 13 open tickets, got %d", st.Pagination.TotalCount)
	}
	if !strings.Contains(m.View(), "status=Open") {
		t.Fatalf("filter summary missing")
	}

	press(t, m, "x")
	if len(m.tab().list.State().Filters) != 0 {
		t.Fatalf("filters not cleared")
	}
}

func TestDeleteRejectsBadIDWithoutRequest(t *testing.T) {
	m, dev, _ := newTestModel(t, "tickets")
	if err := dev.Seed("tickets", entity.Entity{"_id": "42", "subject": "legacy"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)

	press(t, m, "d")
	if m.mode != modeConfirmDelete || !strings.Contains(m.View(), "legacy") {
		t.Fatalf("expected delete confirmation")
	}
	before := dev.Stats().Requests
	press(t, m, "y")
	if dev.Stats().Requests != before {
		t.Fatalf("delete with a bad id reached the server")
	}
	if m.toast.notice.Message != "Invalid ID" {
		t.Fatalf("unexpected toast %#v", m.toast.notice)
	}
}

func TestDeleteConfirmRemovesRow(t *testing.T) {
	m, dev, _ := newTestModel(t, "tickets")
	if err := dev.Seed("tickets", entity.Entity{"_id": monthID, "subject": "duplicate"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)

	press(t, m, "d", "n")
	if len(dev.Docs("tickets")) != 1 {
		t.Fatalf("cancelled delete removed the row")
	}
	press(t, m, "d", "y")
	if len(dev.Docs("tickets")) != 0 {
		t.Fatalf("row still on the server")
	}
	if len(m.table.Rows()) != 0 {
		t.Fatalf("table not refreshed")
	}
	if m.toast.notice.Message != "Deleted" {
		t.Fatalf("unexpected toast %#v", m.toast.notice)
	}
}

func TestFormCreatesTicket(t *testing.T) {
	m, dev, _ := newTestModel(t, "tickets")
	load(t, m)

	press(t, m, "c")
	if m.mode != modeForm || !strings.Contains(m.View(), "New Support Tickets") {
		t.Fatalf("expected create form:\n%s", m.View())
	}
	m.Update(keyMsg("Missing royalties"))
	press(t, m, "ctrl+s")

	if m.mode != modeBrowse {
		t.Fatalf("form still open")
	}
	docs := dev.Docs("tickets")
	if len(docs) != 1 {
		t.Fatalf("expected one ticket, got %d", len(docs))
	}
	if docs[0].String("subject") != "Missing royalties" || docs[0].String("priority") != "medium" {
		t.Fatalf("unexpected doc %v", docs[0])
	}
	if len(m.table.Rows()) != 1 {
		t.Fatalf("list not refetched after save")
	}
	if m.toast.notice.Message != "Created" {
		t.Fatalf("unexpected toast %#v", m.toast.notice)
	}
}

func TestFormValidationKeepsFormOpen(t *testing.T) {
	m, dev, _ := newTestModel(t, "tickets")
	load(t, m)

	press(t, m, "c", "ctrl+s")
	if m.mode != modeForm {
		t.Fatalf("invalid form closed")
	}
	if len(dev.Docs("tickets")) != 0 {
		t.Fatalf("invalid form reached the server")
	}
	if m.toast.notice.Level != resource.LevelError || m.toast.notice.Message != "subject is required" {
		t.Fatalf("unexpected toast %#v", m.toast.notice)
	}
	press(t, m, "esc")
	if m.mode != modeBrowse || m.tab().form.IsOpen() {
		t.Fatalf("esc did not close the form")
	}
}

func TestFormEditsSelectedRow(t *testing.T) {
	m, dev, _ := newTestModel(t, "tickets")
	if err := dev.Seed("tickets", entity.Entity{"_id": monthID, "subject": "Old", "status": "open", "priority": "low"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)

	press(t, m, "e")
	if got := m.modal.inputs[2].Value(); got != "Open" {
		t.Fatalf("status should be shown as its label, got %q", got)
	}
	m.modal.inputs[2].SetValue("Resolved")
	press(t, m, "ctrl+s")

	if got := dev.Docs("tickets")[0].String("status"); got != "resolved" {
		t.Fatalf("status = %q", got)
	}
	if m.toast.notice.Message != "Saved" {
		t.Fatalf("unexpected toast %#v", m.toast.notice)
	}
}

func TestReadOnlyResourceRefusesEdits(t *testing.T) {
	m, _, _ := newTestModel(t, "wallet-transactions")
	load(t, m)
	press(t, m, "c")
	if m.mode != modeBrowse {
		t.Fatalf("read-only resource opened a form")
	}
	if !strings.Contains(m.toast.notice.Message, "read-only") {
		t.Fatalf("unexpected toast %#v", m.toast.notice)
	}
}

func TestTabSwitchLoadsResource(t *testing.T) {
	m, dev, _ := newTestModel(t, "tickets", "royalty-months")
	if err := dev.Seed("royalty-months", entity.Entity{"month": "Mar-25"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	load(t, m)

	press(t, m, "tab")
	if m.tab().res.Name != "royalty-months" {
		t.Fatalf("tab did not switch")
	}
	if rows := m.table.Rows(); len(rows) != 1 || rows[0][0] != "Mar-25" {
		t.Fatalf("unexpected rows %v", rows)
	}
	press(t, m, "shift+tab")
	if m.tab().res.Name != "tickets" {
		t.Fatalf("shift+tab did not switch back")
	}
}

func TestRevokedSessionShowsExpiredScreenAndRecovers(t *testing.T) {
	m, dev, svc := newTestModel(t, "tickets")
	load(t, m)
	dev.InvalidateAccessTokens()
	dev.RevokeRefreshTokens()

	press(t, m, "r")
	if m.mode != modeExpired {
		t.Fatalf("expected expired mode, got %v", m.mode)
	}
	if !strings.Contains(m.View(), "Session expired") {
		t.Fatalf("expired screen not rendered")
	}

	press(t, m, "r")
	if m.mode != modeExpired {
		t.Fatalf("retry without a session left the expired screen")
	}

	if _, err := svc.Login(context.Background(), devserver.DefaultEmail, devserver.DefaultPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	press(t, m, "r")
	if m.mode != modeBrowse {
		t.Fatalf("expected browse after signing in again")
	}
}

func TestStoreClearedShowsExpiredScreen(t *testing.T) {
	m, _, _ := newTestModel(t, "tickets")
	press(t, m, "c")
	m.Update(events.SessionExpiredMsg{Source: events.SourceStore})
	if m.mode != modeExpired || m.expiredBy != events.SourceStore {
		t.Fatalf("unexpected mode %v from %q", m.mode, m.expiredBy)
	}
	if m.tab().form.IsOpen() {
		t.Fatalf("form left open behind the expired screen")
	}
}

func TestHelpOverlay(t *testing.T) {
	m, _, _ := newTestModel(t, "tickets")
	press(t, m, "?")
	if m.mode != modeHelp || !strings.Contains(m.View(), "Searching and filtering") {
		t.Fatalf("help not shown:\n%s", m.View())
	}
	press(t, m, "esc")
	if m.mode != modeBrowse {
		t.Fatalf("help did not close")
	}
}

func TestExpiryHookNeverBlocks(t *testing.T) {
	fire, ch := ExpiryHook()
	fire()
	fire()
	select {
	case <-ch:
	default:
		t.Fatalf("hook did not signal")
	}
}
