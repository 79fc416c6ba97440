package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/backstage/pkg/admin"
)

// Cards prints a report as a row of stat cards.
func (pp *PrettyPrint) Cards(r admin.Report) error {
	if pp.JSON {
		return pp.Value(r)
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "   "
	labels := []any{faint.Sprint("Total")}
	counts := []any{bold.Sprint(r.Total)}
	for _, c := range r.Cards {
		labels = append(labels, faint.Sprint(c.Label))
		counts = append(counts, bold.Sprint(c.Count))
	}
	tbl.AddRow(labels...)
	tbl.AddRow(counts...)

	_, _ = bold.Fprintf(pp.out(), "%s by %s\n", r.Resource, r.Filter)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	return nil
}
