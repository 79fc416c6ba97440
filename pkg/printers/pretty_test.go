package printers

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
)

func init() {
	color.NoColor = true
}

func months(t *testing.T) entity.Resource {
	t.Helper()
	res, err := entity.Lookup("royalty-months")
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestPageTableAndFooter(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, ShowID: true}
	page := resource.Page{
		Rows: []entity.Entity{
			{"_id": "65a1b2c3d4e5f60718293a4b", "month": "Jan-25", "isActive": true},
			{"_id": "65a1b2c3d4e5f60718293a4c", "month": "Feb-25", "isActive": false},
		},
		Pagination: entity.Pagination{CurrentPage: 2, TotalPages: 3, TotalCount: 22},
	}
	if err := pp.Page(months(t), page); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"MCN Royalty Months - 22 rows", "65a1b2c3d4e5f60718293a4b", "Jan-25", "yes", "no", "page 2 of 3 · 22 total"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPageJSON(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, JSON: true}
	_ = pp.Page(months(t), resource.Page{Rows: []entity.Entity{{"_id": "a"}}, Pagination: entity.Pagination{CurrentPage: 1}})
	var got struct {
		Rows       []map[string]any  `json:"rows"`
		Pagination entity.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got.Rows) != 1 || got.Pagination.CurrentPage != 1 {
		t.Fatalf("unexpected %#v", got)
	}
}

func TestCellDecodesAndTruncates(t *testing.T) {
	res, _ := entity.Lookup("tickets")
	row := entity.Entity{"status": "in-progress", "subject": strings.Repeat("x", 80)}
	if got := Cell(res, res.Columns[3], row); got != "In Progress" {
		t.Fatalf("status cell = %q", got)
	}
	if got := Cell(res, res.Columns[0], row); len([]rune(got)) != 36 || !strings.HasSuffix(got, "…") {
		t.Fatalf("subject cell = %q", got)
	}
	if got := Cell(res, res.Columns[1], row); got != "-" {
		t.Fatalf("missing cell = %q", got)
	}
}

func TestEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	(&PrettyPrint{Out: &buf}).Table(months(t), nil)
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none, got %q", buf.String())
	}
}

func TestCards(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	_ = pp.Cards(admin.Report{Resource: "Support Tickets", Filter: "status", Total: 3, Cards: []admin.Card{{Label: "Open", Count: 2}, {Label: "Closed", Count: 1}}})
	out := buf.String()
	for _, want := range []string{"Support Tickets by status", "Total", "Open", "Closed", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMonthGrid(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.MonthGrid(2025, []entity.Entity{{"month": "Jan-25", "isActive": true}, {"month": "Mar-24"}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title plus four rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "Jan-25 Feb-25 Mar-25") {
		t.Fatalf("first row = %q", lines[1])
	}
}

func TestResources(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	if err := pp.Resources(entity.All()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"royalty-months", "isActive", "(read-only)", "support"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
}
