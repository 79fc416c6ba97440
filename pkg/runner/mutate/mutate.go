// Package mutate creates, updates, deletes and toggles admin documents from
// the command line. Writes go through the same form and id checks the
// dashboard uses.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/printers"
	"tableflip.dev/backstage/pkg/resource"
)

var errNoService = errors.New("no service configured")

type Create struct {
	Service  *admin.Service
	Resource entity.Resource
	Values   map[string]string
	JSON     bool
	Out      io.Writer
}

func (c *Create) Do(ctx context.Context) error {
	if c.Service == nil {
		return errNoService
	}
	return submit(ctx, c.Service, c.Resource, nil, c.Values, printers.PrettyPrint{Out: c.Out, JSON: c.JSON})
}

type Update struct {
	Service  *admin.Service
	Resource entity.Resource
	ID       string
	Values   map[string]string
	JSON     bool
	Out      io.Writer
}

func (u *Update) Do(ctx context.Context) error {
	if u.Service == nil {
		return errNoService
	}
	if len(u.Values) == 0 {
		return errors.New("nothing to update, pass --set field=value")
	}
	current, err := u.Service.Get(ctx, u.Resource, u.ID)
	if err != nil {
		return err
	}
	if current == nil {
		current = entity.Entity{"_id": u.ID}
	}
	return submit(ctx, u.Service, u.Resource, current, u.Values, printers.PrettyPrint{Out: u.Out, JSON: u.JSON})
}

func submit(ctx context.Context, svc *admin.Service, res entity.Resource, row entity.Entity, values map[string]string, pp printers.PrettyPrint) error {
	if res.ReadOnly {
		return fmt.Errorf("%w: %s", admin.ErrReadOnly, res.Name)
	}
	form := resource.NewForm(svc.FormSpec(res, nil, nil))
	form.Open(row)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	var errs []error
	for _, name := range names {
		if err := form.Set(fieldName(res, name), values[name]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	saved, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	if saved == nil {
		msg := "Created"
		if row != nil {
			msg = "Saved"
		}
		pp.Notice(resource.Notice{Level: resource.LevelSuccess, Message: msg})
		return nil
	}
	return pp.Entity(res, saved)
}

// fieldName accepts either the form name or the API key of a field.
func fieldName(res entity.Resource, name string) string {
	if fd, ok := res.Field(name); ok {
		return fd.Name
	}
	return name
}

type Delete struct {
	Service  *admin.Service
	Resource entity.Resource
	IDs      []string
	Out      io.Writer
}

func (d *Delete) Do(ctx context.Context) error {
	if d.Service == nil {
		return errNoService
	}
	pp := printers.PrettyPrint{Out: d.Out}

	var errs []error
	for _, id := range d.IDs {
		if !entity.ValidObjectID(id) {
			pp.Notice(resource.Notice{Level: resource.LevelError, Message: "Invalid ID " + id})
			errs = append(errs, fmt.Errorf("%w: %q", resource.ErrInvalidID, id))
			continue
		}
		if err := d.Service.Delete(ctx, d.Resource, id); err != nil {
			if ctx.Err() != nil {
				return errors.Join(append(errs, err)...)
			}
			pp.Notice(resource.Notice{Level: resource.LevelError, Message: resource.ErrorMessage(err, "Could not delete "+id)})
			errs = append(errs, err)
			continue
		}
		pp.Notice(resource.Notice{Level: resource.LevelSuccess, Message: "Deleted " + id})
	}
	return errors.Join(errs...)
}

type Toggle struct {
	Service  *admin.Service
	Resource entity.Resource
	ID       string
	Field    string
	// Value is written as is; nil flips the current value.
	Value *bool
	JSON  bool
	Out   io.Writer
}

func (t *Toggle) Do(ctx context.Context) error {
	if t.Service == nil {
		return errNoService
	}
	if _, ok := t.Resource.Toggle(t.Field); !ok {
		return fmt.Errorf("%w: %s.%s", admin.ErrNoToggle, t.Resource.Name, t.Field)
	}
	var value bool
	if t.Value != nil {
		value = *t.Value
	} else {
		doc, err := t.Service.Get(ctx, t.Resource, t.ID)
		if err != nil {
			return err
		}
		current, _ := doc.Bool(t.Field)
		value = !current
	}
	if err := t.Service.Toggle(ctx, t.Resource, t.ID, t.Field, value); err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: t.Out, JSON: t.JSON}
	if t.JSON {
		return pp.Value(map[string]any{"id": t.ID, "field": t.Field, "value": value})
	}
	pp.Notice(resource.Notice{Level: resource.LevelSuccess, Message: fmt.Sprintf("%s is now %t", t.Field, value)})
	return nil
}
