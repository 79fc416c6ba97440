// Package mcp exposes the admin resources over the Model Context Protocol so
// assistants can browse and moderate the catalog with the console's session.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
)

// maxLimit caps list sizes requested by a client.
const maxLimit = 100

var errNoService = errors.New("admin service is not configured")

// Service adapts admin operations to transport-friendly values.
type Service struct {
	Admin *admin.Service
}

// FilterSummary describes one list filter.
type FilterSummary struct {
	Name   string   `json:"name"`
	Values []string `json:"values,omitempty"`
}

// ResourceSummary is one catalog entry.
type ResourceSummary struct {
	Name     string          `json:"name"`
	Title    string          `json:"title"`
	Aliases  []string        `json:"aliases,omitempty"`
	Filters  []FilterSummary `json:"filters,omitempty"`
	Toggles  []string        `json:"toggles,omitempty"`
	Fields   []string        `json:"fields,omitempty"`
	ReadOnly bool            `json:"readOnly,omitempty"`
}

// PageDTO is a page of rows with its pagination block.
type PageDTO struct {
	Resource   string            `json:"resource"`
	Rows       []entity.Entity   `json:"rows"`
	Pagination entity.Pagination `json:"pagination"`
}

// ListOptions narrows a list call.
type ListOptions struct {
	Resource string
	Search   string
	Page     int
	Limit    int
	Filters  map[string]string
}

// NewService wraps svc.
func NewService(svc *admin.Service) *Service {
	return &Service{Admin: svc}
}

// Catalog lists every resource the console knows.
func (s *Service) Catalog() []ResourceSummary {
	all := entity.All()
	out := make([]ResourceSummary, 0, len(all))
	for _, res := range all {
		sum := ResourceSummary{Name: res.Name, Title: res.Title, Aliases: res.Aliases, ReadOnly: res.ReadOnly}
		for _, f := range res.Filters {
			sum.Filters = append(sum.Filters, FilterSummary{Name: f.Name, Values: f.Values})
		}
		for _, t := range res.Toggles {
			sum.Toggles = append(sum.Toggles, t.Field)
		}
		for _, f := range res.Fields {
			sum.Fields = append(sum.Fields, f.Name)
		}
		out = append(out, sum)
	}
	return out
}

// List returns one page of a resource.
func (s *Service) List(ctx context.Context, opts ListOptions) (*PageDTO, error) {
	res, err := s.resource(opts.Resource)
	if err != nil {
		return nil, err
	}
	filters, err := res.EncodeFilters(opts.Filters)
	if err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit > maxLimit {
		limit = maxLimit
	}
	page, err := s.Admin.List(ctx, res, resource.Query{
		Page:    opts.Page,
		Limit:   limit,
		Search:  opts.Search,
		Filters: filters,
	})
	if err != nil {
		return nil, err
	}
	return &PageDTO{Resource: res.Name, Rows: page.Rows, Pagination: page.Pagination}, nil
}

// Get returns one document.
func (s *Service) Get(ctx context.Context, name, id string) (entity.Entity, error) {
	res, err := s.resource(name)
	if err != nil {
		return nil, err
	}
	return s.Admin.Get(ctx, res, id)
}

// Toggle writes a boolean field. A nil value flips the stored one.
func (s *Service) Toggle(ctx context.Context, name, id, field string, value *bool) (bool, error) {
	res, err := s.resource(name)
	if err != nil {
		return false, err
	}
	if _, ok := res.Toggle(field); !ok {
		return false, fmt.Errorf("%w: %s.%s", admin.ErrNoToggle, res.Name, field)
	}
	var next bool
	if value != nil {
		next = *value
	} else {
		doc, err := s.Admin.Get(ctx, res, id)
		if err != nil {
			return false, err
		}
		current, _ := doc.Bool(field)
		next = !current
	}
	if err := s.Admin.Toggle(ctx, res, id, field, next); err != nil {
		return false, err
	}
	return next, nil
}

// Delete removes one document.
func (s *Service) Delete(ctx context.Context, name, id string) error {
	res, err := s.resource(name)
	if err != nil {
		return err
	}
	return s.Admin.Delete(ctx, res, id)
}

// AddMonth creates a royalty month.
func (s *Service) AddMonth(ctx context.Context, code string) (entity.Entity, error) {
	if s.Admin == nil {
		return nil, errNoService
	}
	return s.Admin.AddMonth(ctx, code)
}

// Report counts a resource by filter.
func (s *Service) Report(ctx context.Context, name, filter string) (admin.Report, error) {
	res, err := s.resource(name)
	if err != nil {
		return admin.Report{}, err
	}
	return s.Admin.Report(ctx, res, filter)
}

func (s *Service) resource(name string) (entity.Resource, error) {
	if s.Admin == nil {
		return entity.Resource{}, errNoService
	}
	return entity.Lookup(name)
}
