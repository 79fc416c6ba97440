package admin

import (
	"context"

	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
)

// Fetcher adapts List for a resource.List.
func (s *Service) Fetcher(res entity.Resource) resource.Fetcher {
	return func(ctx context.Context, q resource.Query) (resource.Page, error) {
		return s.List(ctx, res, q)
	}
}

// Toggler returns the call Mutations.Toggle sends for one row and field.
func (s *Service) Toggler(res entity.Resource, id, field string) func(context.Context, bool) error {
	return func(ctx context.Context, value bool) error {
		return s.Toggle(ctx, res, id, field, value)
	}
}

// Deleter returns the call Mutations.Delete sends.
func (s *Service) Deleter(res entity.Resource) func(context.Context, string) error {
	return func(ctx context.Context, id string) error {
		return s.Delete(ctx, res, id)
	}
}

// NewList returns a list controller for res backed by this service.
func (s *Service) NewList(res entity.Resource, opts ...resource.ListOption) *resource.List {
	return resource.NewList(res.Title, s.Fetcher(res), opts...)
}

// FormSpec wires a create/edit form for res. Saving refetches list when set.
func (s *Service) FormSpec(res entity.Resource, list *resource.List, n resource.Notifier) resource.FormSpec {
	spec := resource.FormSpec{
		Fields:   res.Fields,
		Notifier: n,
	}
	if !res.ReadOnly {
		spec.Create = func(ctx context.Context, payload map[string]any) (entity.Entity, error) {
			return s.Create(ctx, res, payload)
		}
		spec.Update = func(ctx context.Context, id string, payload map[string]any) (entity.Entity, error) {
			return s.Update(ctx, res, id, payload)
		}
	}
	if list != nil {
		spec.OnSaved = list.Refetch
	}
	return spec
}
