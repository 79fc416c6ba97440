package teaui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
	"tableflip.dev/backstage/pkg/tui/theme"
)

// formModal edits one resource.Form with a text input per field.
type formModal struct {
	res    entity.Resource
	form   *resource.Form
	fields []entity.Field
	inputs []textinput.Model
	focus  int
	err    string
}

func newFormModal(res entity.Resource, form *resource.Form, row entity.Entity) *formModal {
	form.Open(row)
	fields := form.Fields()
	inputs := make([]textinput.Model, len(fields))
	for i, fd := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 40
		in.Placeholder = placeholder(fd)
		in.SetValue(formatValue(form.Get(fd.Name)))
		inputs[i] = in
	}
	return &formModal{res: res, form: form, fields: fields, inputs: inputs}
}

func placeholder(fd entity.Field) string {
	switch {
	case fd.Codec != nil && fd.Kind == entity.KindList:
		return strings.Join(fd.Codec.Labels(), ", ")
	case fd.Codec != nil:
		return strings.Join(fd.Codec.Labels(), " / ")
	case fd.Kind == entity.KindBool:
		return "true / false"
	case fd.Kind == entity.KindMonth:
		return "Jan-25"
	case fd.Kind == entity.KindList:
		return "comma separated"
	}
	return ""
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(t, ", ")
	case string:
		return t
	}
	return fmt.Sprint(v)
}

func (f *formModal) focusCurrent() tea.Cmd {
	for i := range f.inputs {
		if i == f.focus {
			continue
		}
		f.inputs[i].Blur()
	}
	if len(f.inputs) == 0 {
		return nil
	}
	return f.inputs[f.focus].Focus()
}

func (f *formModal) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.focusCurrent()
}

func (f *formModal) onLast() bool {
	return f.focus == len(f.inputs)-1
}

func (f *formModal) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// apply copies the input text into the form, coercing each field.
func (f *formModal) apply() error {
	var errs []error
	for i, fd := range f.fields {
		if err := f.form.Set(fd.Name, f.inputs[i].Value()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *formModal) view(th theme.ModalTheme) string {
	title := "New " + f.res.Title
	if f.form.Mode() == resource.ModeEdit {
		title = "Edit " + f.res.Title
	}
	lines := []string{th.Title.Render(title), ""}
	for i, fd := range f.fields {
		label := fd.Title()
		if fd.Required {
			label += " *"
		}
		style := th.Label
		if i == f.focus {
			style = th.Focused
		}
		lines = append(lines, style.Render(label), f.inputs[i].View(), "")
	}
	if f.form.Loading() {
		lines = append(lines, th.Label.Render("Saving…"))
	} else if f.err != "" {
		lines = append(lines, th.Body.Render(f.err))
	}
	lines = append(lines, th.Label.Render("tab move · ctrl+s save · esc cancel"))
	return th.Frame.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
