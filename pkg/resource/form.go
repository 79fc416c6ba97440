package resource

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"tableflip.dev/backstage/pkg/entity"
)

// Mode tells whether a form creates a document or edits one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// ValidationError is one failed field check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// FormSpec wires a Form to its resource.
type FormSpec struct {
	Fields []entity.Field
	Create func(ctx context.Context, payload map[string]any) (entity.Entity, error)
	Update func(ctx context.Context, id string, payload map[string]any) (entity.Entity, error)
	// OnSaved runs after a successful submit, normally the list refetch.
	OnSaved  func(ctx context.Context) error
	Notifier Notifier
}

// Form is the local state of a create or edit dialog. Edits stay local until
// Submit.
type Form struct {
	spec FormSpec

	mu      sync.Mutex
	open    bool
	mode    Mode
	id      string
	values  map[string]any
	loading bool
	// seeded keeps what an edit form was opened with, so values the codec
	// does not know can be sent back untouched.
	seeded map[string]seed
}

type seed struct {
	raw, decoded any
}

// NewForm returns a closed form.
func NewForm(spec FormSpec) *Form {
	if spec.Notifier == nil {
		spec.Notifier = discard{}
	}
	return &Form{spec: spec, values: map[string]any{}}
}

// Open seeds the form. A nil row opens a create form with field defaults; a
// row opens an edit form with the row's values decoded back to labels.
func (f *Form) Open(row entity.Entity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	f.loading = false
	f.values = map[string]any{}
	f.seeded = map[string]seed{}
	if row == nil {
		f.mode = ModeCreate
		f.id = ""
		for _, fd := range f.spec.Fields {
			if fd.Default != nil {
				f.values[fd.Name] = fd.Default
			}
		}
		return
	}
	f.mode = ModeEdit
	f.id = row.ID()
	for _, fd := range f.spec.Fields {
		if v, ok := row.Lookup(fd.Key()); ok {
			d := fd.Decode(v)
			f.values[fd.Name] = d
			f.seeded[fd.Name] = seed{raw: v, decoded: d}
		}
	}
}

// Close discards the local state.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.values = map[string]any{}
	f.seeded = nil
	f.id = ""
}

func (f *Form) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// ID is the id of the row being edited.
func (f *Form) ID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

// Loading is true while Submit waits for the server.
func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Fields returns the form fields in order.
func (f *Form) Fields() []entity.Field {
	return f.spec.Fields
}

func (f *Form) field(name string) (entity.Field, bool) {
	for _, fd := range f.spec.Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return entity.Field{}, false
}

// Set coerces raw into the field's kind and stores it locally.
func (f *Form) Set(name string, raw any) error {
	fd, ok := f.field(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	v, err := fd.Coerce(raw)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if v == nil {
		delete(f.values, name)
	} else {
		f.values[name] = v
	}
	return nil
}

// Get returns the local value of a field.
func (f *Form) Get(name string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Validate checks every field and joins the failures.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	for _, fd := range f.spec.Fields {
		v := f.values[fd.Name]
		if entity.IsEmpty(v) {
			if fd.Required {
				errs = append(errs, &ValidationError{Field: fd.Name, Reason: "is required"})
			}
			continue
		}
		s, isString := v.(string)
		if fd.Kind == entity.KindMonth && (!isString || !entity.ValidMonthCode(s)) {
			errs = append(errs, &ValidationError{Field: fd.Name, Reason: "must look like MMM-YY, e.g. Jan-25"})
			continue
		}
		if fd.Pattern != nil && isString && !fd.Pattern.MatchString(s) {
			errs = append(errs, &ValidationError{Field: fd.Name, Reason: "has an invalid format"})
			continue
		}
		if _, err := fd.Encode(v); err != nil {
			if _, ok := f.untouched(fd.Name, v); ok {
				continue
			}
			errs = append(errs, &ValidationError{Field: fd.Name, Reason: "is not one of " + strings.Join(fd.Codec.Labels(), ", ")})
		}
	}
	return errors.Join(errs...)
}

// untouched returns the server value of a field the user has not changed
// since Open. Callers hold f.mu.
func (f *Form) untouched(name string, v any) (any, bool) {
	s, ok := f.seeded[name]
	if !ok || !reflect.DeepEqual(s.decoded, v) {
		return nil, false
	}
	return s.raw, true
}

// Payload builds the request body: codes instead of labels, server field
// names, empty values left out.
func (f *Form) Payload() (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload := map[string]any{}
	for _, fd := range f.spec.Fields {
		v := f.values[fd.Name]
		if entity.IsEmpty(v) {
			continue
		}
		enc, err := fd.Encode(v)
		if err != nil {
			raw, ok := f.untouched(fd.Name, v)
			if !ok {
				return nil, err
			}
			enc = raw
		}
		payload[fd.Key()] = enc
	}
	return payload, nil
}

// Submit validates, calls Create or Update, and on success closes the form
// and runs OnSaved. A failed submit keeps the form open with its values.
func (f *Form) Submit(ctx context.Context) (entity.Entity, error) {
	if err := f.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			f.spec.Notifier.Notify(Notice{Level: LevelError, Message: ve.Error()})
		}
		return nil, err
	}
	payload, err := f.Payload()
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	mode, id := f.mode, f.id
	f.loading = true
	f.mu.Unlock()

	var saved entity.Entity
	switch {
	case mode == ModeEdit && f.spec.Update != nil:
		saved, err = f.spec.Update(ctx, id, payload)
	case mode == ModeCreate && f.spec.Create != nil:
		saved, err = f.spec.Create(ctx, payload)
	default:
		err = fmt.Errorf("%s is not supported here", mode)
	}

	f.mu.Lock()
	f.loading = false
	f.mu.Unlock()

	if err != nil {
		notifyError(f.spec.Notifier, err, GenericFailure)
		return nil, err
	}
	msg := "Created"
	if mode == ModeEdit {
		msg = "Saved"
	}
	f.spec.Notifier.Notify(Notice{Level: LevelSuccess, Message: msg})
	f.Close()
	if f.spec.OnSaved != nil {
		// The list reports its own load failures.
		_ = f.spec.OnSaved(ctx)
	}
	return saved, nil
}
