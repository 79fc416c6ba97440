// Package months manages MCN royalty months: adding a month by its MMM-YY
// code and printing a year as a calendar grid.
package months

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/printers"
	"tableflip.dev/backstage/pkg/resource"
)

// pageSize is used when walking every month.
const pageSize = 100

var errNoService = errors.New("no service configured")

type Add struct {
	Service *admin.Service
	Code    string
	JSON    bool
	Out     io.Writer
}

func (a *Add) Do(ctx context.Context) error {
	if a.Service == nil {
		return errNoService
	}
	doc, err := a.Service.AddMonth(ctx, a.Code)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: a.Out, JSON: a.JSON}
	if a.JSON {
		return pp.Value(doc)
	}
	pp.Notice(resource.Notice{Level: resource.LevelSuccess, Message: "Added " + doc.String("month")})
	return nil
}

type Calendar struct {
	Service *admin.Service
	// Year defaults to the current year.
	Year int
	Out  io.Writer
}

func (c *Calendar) Do(ctx context.Context) error {
	if c.Service == nil {
		return errNoService
	}
	year := c.Year
	if year == 0 {
		year = time.Now().Year()
	}
	res, err := entity.Lookup("royalty-months")
	if err != nil {
		return err
	}
	all, err := All(ctx, c.Service, res)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: c.Out}
	pp.NewLine()
	pp.MonthGrid(year, all)
	pp.NewLine()
	return nil
}

// All walks every page of res.
func All(ctx context.Context, svc *admin.Service, res entity.Resource) ([]entity.Entity, error) {
	var rows []entity.Entity
	for p := 1; ; p++ {
		page, err := svc.List(ctx, res, resource.Query{Page: p, Limit: pageSize})
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Rows...)
		if p >= page.Pagination.TotalPages || len(page.Rows) == 0 {
			return rows, nil
		}
	}
}
