package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/backstage/pkg/entity"
)

// Resources prints the catalog: names, aliases, filters and toggles.
func (pp *PrettyPrint) Resources(all []entity.Resource) error {
	if pp.JSON {
		type summary struct {
			Name     string   `json:"name"`
			Title    string   `json:"title"`
			Aliases  []string `json:"aliases,omitempty"`
			Filters  []string `json:"filters,omitempty"`
			Toggles  []string `json:"toggles,omitempty"`
			ReadOnly bool     `json:"readOnly,omitempty"`
		}
		out := make([]summary, 0, len(all))
		for _, r := range all {
			out = append(out, summary{r.Name, r.Title, r.Aliases, filterNames(r), toggleNames(r), r.ReadOnly})
		}
		return pp.Value(out)
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("Name"), bold.Sprint("Title"), bold.Sprint("Aliases"), bold.Sprint("Filters"), bold.Sprint("Toggles"))
	for _, r := range all {
		title := r.Title
		if r.ReadOnly {
			title += faint.Sprint(" (read-only)")
		}
		tbl.AddRow(r.Name, title,
			faint.Sprint(strings.Join(r.Aliases, ", ")),
			strings.Join(filterNames(r), ", "),
			strings.Join(toggleNames(r), ", "))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	return nil
}

func filterNames(r entity.Resource) []string {
	names := make([]string, 0, len(r.Filters))
	for _, f := range r.Filters {
		names = append(names, f.Name)
	}
	return names
}

func toggleNames(r entity.Resource) []string {
	names := make([]string, 0, len(r.Toggles))
	for _, t := range r.Toggles {
		names = append(names, t.Field)
	}
	return names
}
