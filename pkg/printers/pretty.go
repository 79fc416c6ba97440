// Package printers renders resources for the terminal: tables, stat cards,
// pagination footers, and JSON.
package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
)

// PrettyPrint writes human or JSON output.
type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
	JSON   bool
}

const defaultWidth = 20

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Title prints an underlined heading with a row count.
func (pp *PrettyPrint) Title(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	switch count {
	case 1:
		_, _ = c.Fprintf(pp.out(), " - %d row\n", count)
	default:
		_, _ = c.Fprintf(pp.out(), " - %d rows\n", count)
	}
}

// Page prints one page of res, or its JSON form.
func (pp *PrettyPrint) Page(res entity.Resource, page resource.Page) error {
	if pp.JSON {
		return pp.Value(map[string]any{
			"rows":       page.Rows,
			"pagination": page.Pagination,
		})
	}
	pp.Title(res.Title, page.Pagination.TotalCount)
	pp.Table(res, page.Rows)
	pp.Pagination(page.Pagination)
	return nil
}

// Table prints rows using the resource's columns.
func (pp *PrettyPrint) Table(res entity.Resource, rows []entity.Entity) {
	if len(rows) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	header := make([]any, 0, len(res.Columns)+1)
	if pp.ShowID {
		header = append(header, bold.Sprint("ID"))
	}
	for _, c := range res.Columns {
		header = append(header, bold.Sprint(c.Title))
	}
	tbl.AddRow(header...)

	for _, r := range rows {
		cells := make([]any, 0, len(header))
		if pp.ShowID {
			cells = append(cells, y.Sprint(r.ID()))
		}
		for _, c := range res.Columns {
			cells = append(cells, Cell(res, c, r))
		}
		tbl.AddRow(cells...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Cell renders one column of a row for the terminal, coloring booleans and
// missing values.
func Cell(res entity.Resource, c entity.Column, row entity.Entity) string {
	text := CellText(res, c, row)
	v, _ := row.Lookup(c.Field)
	switch b := v.(type) {
	case nil:
		return color.New(color.Faint).Sprint(text)
	case bool:
		if b {
			return color.New(color.FgGreen).Sprint(text)
		}
		return color.New(color.Faint).Sprint(text)
	}
	return text
}

// CellText is the plain text of a cell: labels instead of enum codes, yes/no
// for booleans, "-" for missing values, and long text cut to the column width.
func CellText(res entity.Resource, c entity.Column, row entity.Entity) string {
	v, ok := row.Lookup(c.Field)
	if !ok || v == nil {
		return "-"
	}
	if b, isBool := v.(bool); isBool {
		if b {
			return "yes"
		}
		return "no"
	}
	s := row.String(c.Field)
	if fd, ok := res.Field(c.Field); ok && fd.Codec != nil {
		s = fd.Codec.Decode(s)
	}
	return truncate.StringWithTail(s, uint(Width(c)), "…")
}

// Width is the display width of a column.
func Width(c entity.Column) int {
	if c.Width <= 0 {
		return defaultWidth
	}
	return c.Width
}

// Pagination prints the "page X of Y · N total" footer.
func (pp *PrettyPrint) Pagination(p entity.Pagination) {
	f := color.New(color.Faint)
	pages := p.TotalPages
	if pages < 1 {
		pages = 1
	}
	_, _ = f.Fprintf(pp.out(), "page %d of %d · %d total\n", p.CurrentPage, pages, p.TotalCount)
}

// Entity prints a single document as field/value pairs.
func (pp *PrettyPrint) Entity(res entity.Resource, e entity.Entity) error {
	if pp.JSON {
		return pp.Value(e)
	}
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("id"), e.ID())
	seen := map[string]bool{"_id": true, "id": true}
	for _, c := range res.Columns {
		tbl.AddRow(bold.Sprint(c.Title), Cell(res, entity.Column{Field: c.Field, Width: 60}, e))
		seen[strings.Split(c.Field, ".")[0]] = true
	}
	for _, k := range sortedKeys(e) {
		if !seen[k] {
			tbl.AddRow(bold.Sprint(k), e.String(k))
		}
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	return nil
}

// Value prints v as indented JSON.
func (pp *PrettyPrint) Value(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(pp.out(), string(b))
	return err
}

// Notice prints a one-line message.
func (pp *PrettyPrint) Notice(n resource.Notice) {
	var c *color.Color
	switch n.Level {
	case resource.LevelError:
		c = color.New(color.FgRed)
	case resource.LevelSuccess:
		c = color.New(color.FgGreen)
	default:
		c = color.New(color.Faint)
	}
	_, _ = c.Fprintln(pp.out(), n.Message)
}

func sortedKeys(e entity.Entity) []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
