// Package admin exposes the admin API resources as plain operations. It wraps
// the API client and the entity catalog so the CLI and the dashboard share one
// implementation per verb.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
	"tableflip.dev/backstage/pkg/store"
)

var (
	// ErrReadOnly is returned for writes against report-style resources.
	ErrReadOnly = errors.New("admin: resource is read-only")

	// ErrNoToggle is returned when a field cannot be toggled in place.
	ErrNoToggle = errors.New("admin: field is not toggleable")

	errNoClient = errors.New("admin: no client configured")
)

// Service provides the admin operations for every catalog resource.
type Service struct {
	Client *api.Client
}

// List fetches one page of res.
func (s *Service) List(ctx context.Context, res entity.Resource, q resource.Query) (resource.Page, error) {
	if s.Client == nil {
		return resource.Page{}, errNoClient
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = resource.DefaultLimit
	}
	var raw json.RawMessage
	if err := s.Client.Do(ctx, http.MethodGet, res.Path, q.Values(), nil, &raw); err != nil {
		return resource.Page{}, err
	}
	rows, p, err := api.DecodeList(raw, res.RowsKey)
	if err != nil {
		return resource.Page{}, err
	}
	return resource.Page{Rows: rows, Pagination: p}, nil
}

// Get fetches a single document.
func (s *Service) Get(ctx context.Context, res entity.Resource, id string) (entity.Entity, error) {
	return s.item(ctx, http.MethodGet, res.ItemPath(id), nil)
}

// Create posts a new document and returns the stored version.
func (s *Service) Create(ctx context.Context, res entity.Resource, payload map[string]any) (entity.Entity, error) {
	if res.ReadOnly {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, res.Name)
	}
	return s.item(ctx, http.MethodPost, res.Path, payload)
}

// Update replaces or patches a document, depending on the resource.
func (s *Service) Update(ctx context.Context, res entity.Resource, id string, payload map[string]any) (entity.Entity, error) {
	if res.ReadOnly {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, res.Name)
	}
	return s.item(ctx, res.Update(), res.ItemPath(id), payload)
}

// Delete removes a document. The id must be an ObjectID.
func (s *Service) Delete(ctx context.Context, res entity.Resource, id string) error {
	if res.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, res.Name)
	}
	if !entity.ValidObjectID(id) {
		return fmt.Errorf("%w: %q", resource.ErrInvalidID, id)
	}
	if s.Client == nil {
		return errNoClient
	}
	return s.Client.Do(ctx, http.MethodDelete, res.ItemPath(id), nil, nil, nil)
}

// Toggle writes a boolean field using the resource's toggle endpoint.
func (s *Service) Toggle(ctx context.Context, res entity.Resource, id, field string, value bool) error {
	t, ok := res.Toggle(field)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrNoToggle, res.Name, field)
	}
	if s.Client == nil {
		return errNoClient
	}
	return s.Client.Do(ctx, t.Method, res.ItemPath(id)+t.Suffix, nil, map[string]any{field: value}, nil)
}

// AddMonth creates an MCN royalty month from a MMM-YY code.
func (s *Service) AddMonth(ctx context.Context, code string) (entity.Entity, error) {
	month, err := entity.NormalizeMonthCode(code)
	if err != nil {
		return nil, err
	}
	res, err := entity.Lookup("royalty-months")
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, res, map[string]any{"month": month, "isActive": true})
}

func (s *Service) item(ctx context.Context, method, path string, payload map[string]any) (entity.Entity, error) {
	if s.Client == nil {
		return nil, errNoClient
	}
	var body any
	if payload != nil {
		body = payload
	}
	var raw json.RawMessage
	if err := s.Client.Do(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return api.DecodeItem(raw)
}

// Login signs in and stores the session.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, error) {
	if s.Client == nil {
		return nil, errNoClient
	}
	return s.Client.Login(ctx, email, password)
}

// Logout ends the session.
func (s *Service) Logout(ctx context.Context) error {
	if s.Client == nil {
		return errNoClient
	}
	return s.Client.Logout(ctx)
}

// Me returns the signed-in user.
func (s *Service) Me(ctx context.Context) (*store.User, error) {
	if s.Client == nil {
		return nil, errNoClient
	}
	return s.Client.Me(ctx)
}
