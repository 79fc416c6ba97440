package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/backstage/pkg/entity"
)

const monthCell = len("Jan-25 ")

// MonthGrid prints the royalty months of a year as a 4x3 grid. Active months
// are bold, inactive ones italic, missing ones faint.
func (pp *PrettyPrint) MonthGrid(year int, months []entity.Entity) {
	state := map[time.Month]bool{}
	present := map[time.Month]bool{}
	for _, m := range months {
		t, err := entity.ParseMonthCode(m.String("month"))
		if err != nil || t.Year() != year {
			continue
		}
		present[t.Month()] = true
		active, _ := m.Bool("isActive")
		state[t.Month()] = active
	}

	title := fmt.Sprintf("%d", year)
	width := monthCell * 3
	mid := (width - len(title)) / 2
	_, _ = color.New(color.FgWhite, color.Italic).Fprintf(pp.out(), "%s%s\n", strings.Repeat(" ", mid), title)

	active := color.New(color.Bold, color.FgHiWhite)
	inactive := color.New(color.Italic)
	missing := color.New(color.Faint, color.FgWhite)
	for m := time.January; m <= time.December; m++ {
		code := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC).Format("Jan-06")
		switch {
		case !present[m]:
			_, _ = missing.Fprintf(pp.out(), "%s ", code)
		case state[m]:
			_, _ = active.Fprintf(pp.out(), "%s ", code)
		default:
			_, _ = inactive.Fprintf(pp.out(), "%s ", code)
		}
		if m%3 == 0 {
			_, _ = fmt.Fprint(pp.out(), "\n")
		}
	}
	_, _ = fmt.Fprint(pp.out(), "\n")
}
