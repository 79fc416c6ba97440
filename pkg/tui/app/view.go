package teaui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/backstage/pkg/printers"
	"tableflip.dev/backstage/pkg/resource"
)

func (m *Model) applySizes() {
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
	if m.width > 0 {
		m.table.SetWidth(m.width)
		m.help.Width = m.width
		m.search.Width = max(m.width/3, 10)
	}
}

// syncTable rebuilds the table from the current list state. Rows are cleared
// before the columns change so the table never renders rows wider than its
// columns.
func (m *Model) syncTable() {
	t := m.tab()
	if t == nil {
		return
	}
	st := t.list.State()
	cols := make([]table.Column, len(t.res.Columns))
	for i, c := range t.res.Columns {
		cols[i] = table.Column{Title: c.Title, Width: printers.Width(c)}
	}
	rows := make([]table.Row, 0, len(st.Rows))
	ids := make([]string, 0, len(st.Rows))
	for _, r := range st.Rows {
		row := make(table.Row, len(t.res.Columns))
		for i, c := range t.res.Columns {
			row[i] = printers.CellText(t.res, c, r)
		}
		rows = append(rows, row)
		ids = append(ids, r.ID())
	}
	cursor := m.table.Cursor()
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(min(max(cursor, 0), len(rows)-1))
	}
	m.rowIDs = ids
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.tabs) == 0 {
		return "no resources\n"
	}
	header := lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), m.viewStatus())

	var body string
	switch m.mode {
	case modeForm:
		body = m.overlay(m.modal.view(m.theme.Modal))
	case modeConfirmDelete:
		body = m.overlay(m.viewConfirm())
	case modeHelp:
		body = m.overlay(m.theme.Modal.Frame.Render(m.helpBody))
	case modeExpired:
		body = m.overlay(m.viewExpired())
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, m.table.View(), m.viewPagination())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.viewToast(), m.viewFooter())
}

func (m *Model) overlay(content string) string {
	if m.width <= 0 || m.height <= 0 {
		return content
	}
	return lipgloss.Place(m.width, max(m.height-5, lipgloss.Height(content)), lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewTabs() string {
	th := m.theme.Header
	colors := th.Gradient(len(m.tabs))
	parts := []string{th.Title.Render("Backstage")}
	for i, t := range m.tabs {
		style := th.Tab.Foreground(colors[i])
		if i == m.current {
			style = style.Bold(true).Underline(true)
		}
		parts = append(parts, style.Render(t.res.Name))
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if m.width > 0 && lipgloss.Width(line) > m.width {
		t := m.tab()
		line = lipgloss.JoinHorizontal(lipgloss.Top,
			th.Title.Render("Backstage"),
			th.Muted.Render(fmt.Sprintf(" %d/%d ", m.current+1, len(m.tabs))),
			th.Tab.Foreground(colors[m.current]).Bold(true).Render(t.res.Title))
	}
	return line
}

func (m *Model) viewStatus() string {
	th := m.theme.Header
	t := m.tab()
	st := t.list.State()

	var parts []string
	parts = append(parts, th.Title.Render(t.res.Title))
	switch {
	case m.mode == modeSearch:
		parts = append(parts, m.search.View())
	case st.SearchTerm != "":
		parts = append(parts, th.Search.Render("search: "+st.SearchTerm))
	}
	if m.mode == modeFilter {
		parts = append(parts, th.Filter.Render(m.filter.Placeholder+"=")+m.filter.View())
	}
	if f := m.filterSummary(); f != "" {
		parts = append(parts, th.Filter.Render(f))
	}
	if t.pending > 0 || st.Loading {
		parts = append(parts, m.spinner.View()+th.Muted.Render(" loading"))
	}
	return strings.Join(parts, "  ")
}

// filterSummary lists active filters with enum codes shown as labels.
func (m *Model) filterSummary() string {
	t := m.tab()
	filters := t.list.State().Filters
	if len(filters) == 0 {
		return ""
	}
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]string, len(names))
	for i, name := range names {
		v := filters[name]
		if fd, ok := t.res.Field(name); ok && fd.Codec != nil {
			v = fd.Codec.Decode(v)
		}
		out[i] = name + "=" + v
	}
	return strings.Join(out, " ")
}

func (m *Model) viewPagination() string {
	st := m.tab().list.State()
	p := st.Pagination
	if p.TotalPages == 0 {
		if st.Rows != nil && len(st.Rows) == 0 {
			return m.theme.Footer.Pagination.Render("no rows")
		}
		return ""
	}
	return m.theme.Footer.Pagination.Render(fmt.Sprintf("page %d of %d · %d total", p.CurrentPage, p.TotalPages, p.TotalCount))
}

func (m *Model) viewToast() string {
	if m.toast.seq == 0 || m.toast.notice.Message == "" {
		return ""
	}
	th := m.theme.Toast
	style := th.Info
	switch m.toast.notice.Level {
	case resource.LevelSuccess:
		style = th.Success
	case resource.LevelError:
		style = th.Error
	}
	return style.Render(m.toast.notice.Message)
}

func (m *Model) viewFooter() string {
	switch m.mode {
	case modeSearch, modeFilter:
		return m.theme.Footer.Help.Render("enter apply · esc done")
	case modeExpired, modeForm, modeConfirmDelete, modeHelp:
		return ""
	}
	return m.help.View(m.keys)
}

func (m *Model) viewConfirm() string {
	th := m.theme.Modal
	t := m.tab()
	label := m.deleteID
	if row, ok := t.list.Row(m.deleteID); ok && len(t.res.Columns) > 0 {
		if s := row.String(t.res.Columns[0].Field); s != "" {
			label = s
		}
	}
	return th.Frame.Render(lipgloss.JoinVertical(lipgloss.Left,
		th.Title.Render("Delete from "+t.res.Title+"?"),
		"",
		th.Body.Render(label),
		"",
		th.Label.Render("y delete · n cancel"),
	))
}

func (m *Model) viewExpired() string {
	th := m.theme.Modal
	return th.Frame.Render(lipgloss.JoinVertical(lipgloss.Left,
		th.Title.Render("Session expired"),
		"",
		th.Body.Render("Your session has ended. Run `backstage login`"),
		th.Body.Render("in another terminal, then press r to continue."),
		"",
		th.Label.Render("r retry · q quit"),
	))
}
