package teaui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tableflip.dev/backstage/pkg/resource"
)

type keyMap struct {
	NextTab     key.Binding
	PrevTab     key.Binding
	Search      key.Binding
	Filter      key.Binding
	NextFilter  key.Binding
	ClearFilter key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	Toggle      key.Binding
	NextToggle  key.Binding
	Create      key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next resource")),
		PrevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev resource")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle filter")),
		NextFilter:  key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "next filter")),
		ClearFilter: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		NextPage:    key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		PrevPage:    key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		NextToggle:  key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "toggle field")),
		Create:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Search, k.Filter, k.NextPage, k.Toggle, k.Create, k.Delete, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Refresh},
		{k.Search, k.Filter, k.NextFilter, k.ClearFilter},
		{k.NextPage, k.PrevPage},
		{k.Toggle, k.NextToggle, k.Create, k.Edit, k.Delete},
		{k.Help, k.Quit},
	}
}

func (m *Model) handleKey(msg tea.KeyMsg, cmds *[]tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Close()
		*cmds = append(*cmds, tea.Quit)
		return
	}
	switch m.mode {
	case modeSearch:
		m.handleSearchKey(msg, cmds)
	case modeFilter:
		m.handleFilterKey(msg, cmds)
	case modeForm:
		m.handleFormKey(msg, cmds)
	case modeConfirmDelete:
		m.handleConfirmKey(msg, cmds)
	case modeHelp:
		m.handleHelpKey(msg)
	case modeExpired:
		m.handleExpiredKey(msg, cmds)
	default:
		m.handleBrowseKey(msg, cmds)
	}
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg, cmds *[]tea.Cmd) {
	t := m.tab()
	if t == nil {
		if key.Matches(msg, m.keys.Quit) {
			*cmds = append(*cmds, tea.Quit)
		}
		return
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		*cmds = append(*cmds, tea.Quit)
	case key.Matches(msg, m.keys.NextTab):
		*cmds = append(*cmds, m.selectTab(m.current+1))
	case key.Matches(msg, m.keys.PrevTab):
		*cmds = append(*cmds, m.selectTab(m.current-1))
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		*cmds = append(*cmds, m.search.Focus())
	case key.Matches(msg, m.keys.Filter):
		*cmds = append(*cmds, m.cycleFilter())
	case key.Matches(msg, m.keys.NextFilter):
		if len(t.res.Filters) > 0 {
			t.filterIdx = (t.filterIdx + 1) % len(t.res.Filters)
			m.notify(resource.LevelInfo, "Filter: "+t.res.Filters[t.filterIdx].Name)
		}
	case key.Matches(msg, m.keys.ClearFilter):
		*cmds = append(*cmds, m.clearFilters())
	case key.Matches(msg, m.keys.NextPage):
		*cmds = append(*cmds, m.nextPage(1))
	case key.Matches(msg, m.keys.PrevPage):
		*cmds = append(*cmds, m.nextPage(-1))
	case key.Matches(msg, m.keys.Toggle):
		*cmds = append(*cmds, m.toggle())
	case key.Matches(msg, m.keys.NextToggle):
		if len(t.res.Toggles) > 0 {
			t.toggleIdx = (t.toggleIdx + 1) % len(t.res.Toggles)
			m.notify(resource.LevelInfo, "Toggle: "+t.res.Toggles[t.toggleIdx].Field)
		}
	case key.Matches(msg, m.keys.Create):
		*cmds = append(*cmds, m.openForm(false))
	case key.Matches(msg, m.keys.Edit):
		*cmds = append(*cmds, m.openForm(true))
	case key.Matches(msg, m.keys.Delete):
		m.confirmDelete()
	case key.Matches(msg, m.keys.Refresh):
		*cmds = append(*cmds, m.fetch(t))
	case key.Matches(msg, m.keys.Help):
		if err := m.showHelp(); err != nil {
			m.logger.Warn("help unavailable", zap.Error(err))
			m.notify(resource.LevelError, "Help unavailable")
		}
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) handleSearchKey(msg tea.KeyMsg, cmds *[]tea.Cmd) {
	t := m.tab()
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.search.Blur()
		return
	case "enter":
		m.mode = modeBrowse
		m.search.Blur()
		seq := t.search.Input(m.search.Value())
		if term, ok := t.search.Elapsed(seq); ok {
			*cmds = append(*cmds, m.commitSearch(t, term))
		}
		return
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	*cmds = append(*cmds, cmd)
	if after := m.search.Value(); after != before {
		*cmds = append(*cmds, m.queueSearch(t, after))
	}
}

func (m *Model) handleFilterKey(msg tea.KeyMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.filter.Blur()
		return
	case "enter":
		m.mode = modeBrowse
		m.filter.Blur()
		*cmds = append(*cmds, m.applyFreeFilter())
		return
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	*cmds = append(*cmds, cmd)
}

func (m *Model) handleFormKey(msg tea.KeyMsg, cmds *[]tea.Cmd) {
	if m.modal == nil {
		m.mode = modeBrowse
		return
	}
	if m.modal.form.Loading() {
		return
	}
	switch msg.String() {
	case "esc":
		m.closeForm()
	case "tab", "down":
		*cmds = append(*cmds, m.modal.move(1))
	case "shift+tab", "up":
		*cmds = append(*cmds, m.modal.move(-1))
	case "ctrl+s":
		*cmds = append(*cmds, m.submitForm())
	case "enter":
		if m.modal.onLast() {
			*cmds = append(*cmds, m.submitForm())
		} else {
			*cmds = append(*cmds, m.modal.move(1))
		}
	default:
		*cmds = append(*cmds, m.modal.update(msg))
	}
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.deleteID
		m.deleteID = ""
		m.mode = modeBrowse
		*cmds = append(*cmds, m.remove(id))
	case "n", "N", "esc", "q":
		m.deleteID = ""
		m.mode = modeBrowse
	}
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "q", "esc", "?":
		m.helpBody = ""
		m.mode = modeBrowse
	}
}

func (m *Model) handleExpiredKey(msg tea.KeyMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.Close()
		*cmds = append(*cmds, tea.Quit)
	case "r":
		*cmds = append(*cmds, m.checkSession())
	}
}
