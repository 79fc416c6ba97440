// Package get lists or shows documents of one admin resource.
package get

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/printers"
	"tableflip.dev/backstage/pkg/resource"
)

type Get struct {
	Service  *admin.Service
	Resource entity.Resource
	Query    resource.Query
	// ID shows a single document instead of a page.
	ID string

	ShowID bool
	JSON   bool
	Out    io.Writer
}

func (g *Get) Do(ctx context.Context) error {
	if g.Service == nil {
		return errors.New("can not get, no service")
	}
	pp := printers.PrettyPrint{Out: g.Out, ShowID: g.ShowID, JSON: g.JSON}

	if g.ID != "" {
		doc, err := g.Service.Get(ctx, g.Resource, g.ID)
		if err != nil {
			return err
		}
		return pp.Entity(g.Resource, doc)
	}

	q := g.Query
	filters, err := g.Resource.EncodeFilters(q.Filters)
	if err != nil {
		return err
	}
	q.Filters = filters

	page, err := g.Service.List(ctx, g.Resource, q)
	if err != nil {
		return err
	}
	if !g.JSON {
		pp.NewLine()
	}
	return pp.Page(g.Resource, page)
}
