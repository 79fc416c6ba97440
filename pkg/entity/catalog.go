package entity

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrUnknownResource is returned by Lookup for names outside the catalog.
var ErrUnknownResource = errors.New("entity: unknown resource")

// Column is a table column bound to a (possibly dotted) field path.
type Column struct {
	Title string
	Field string
	Width int
}

// Filter is a list filter passed as a query parameter.
type Filter struct {
	Name string
	// Values enumerates the accepted values; empty means free text.
	Values []string
}

// Toggle describes a boolean field that can be flipped in place.
type Toggle struct {
	Field string
	// Method defaults to PATCH.
	Method string
	// Suffix is appended to the item path, e.g. "/toggle". Empty targets the
	// item itself.
	Suffix string
}

// Resource describes one admin entity: where it lives and how it is shown.
type Resource struct {
	Name    string
	Title   string
	Aliases []string
	// Path is the list endpoint; items live at Path + "/" + id.
	Path string
	// RowsKey names the array inside the list response `data` block.
	RowsKey string
	Columns []Column
	Filters []Filter
	Toggles []Toggle
	// UpdateMethod defaults to PUT.
	UpdateMethod string
	Fields       []Field
	ReadOnly     bool
}

// ItemPath returns the endpoint for a single document.
func (r Resource) ItemPath(id string) string {
	return strings.TrimRight(r.Path, "/") + "/" + id
}

// Update returns the HTTP method used for updates.
func (r Resource) Update() string {
	if r.UpdateMethod == "" {
		return http.MethodPut
	}
	return r.UpdateMethod
}

// Toggle finds the toggle for field.
func (r Resource) Toggle(field string) (Toggle, bool) {
	for _, t := range r.Toggles {
		if t.Field == field {
			if t.Method == "" {
				t.Method = http.MethodPatch
			}
			return t, true
		}
	}
	return Toggle{}, false
}

// Filter finds the filter with the given name.
func (r Resource) Filter(name string) (Filter, bool) {
	for _, f := range r.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return Filter{}, false
}

// Field finds a form field by client or API name.
func (r Resource) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name || f.Key() == name {
			return f, true
		}
	}
	return Field{}, false
}

// ValidateFilter checks name and value against the declared filters.
func (r Resource) ValidateFilter(name, value string) error {
	f, ok := r.Filter(name)
	if !ok {
		return fmt.Errorf("%s has no filter %q", r.Name, name)
	}
	if value == "" || len(f.Values) == 0 {
		return nil
	}
	for _, v := range f.Values {
		if v == value {
			return nil
		}
	}
	return fmt.Errorf("%s filter %s: %q is not one of %s", r.Name, name, value, strings.Join(f.Values, ", "))
}

// EncodeFilters maps typed labels ("Open") to the codes the API filters on
// and rejects filters the resource does not declare.
func (r Resource) EncodeFilters(in map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for name, value := range in {
		if fd, ok := r.Field(name); ok && fd.Codec != nil && value != "" {
			if code, err := fd.Codec.Encode(value); err == nil {
				value = code
			}
		}
		if err := r.ValidateFilter(name, value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, nil
}

// Lookup resolves a resource by name or alias.
func Lookup(name string) (Resource, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, r := range catalog {
		if r.Name == key {
			return r, nil
		}
		for _, a := range r.Aliases {
			if a == key {
				return r, nil
			}
		}
	}
	return Resource{}, fmt.Errorf("%w %q", ErrUnknownResource, name)
}

// All returns every resource sorted by name.
func All() []Resource {
	out := make([]Resource, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns every resource name, sorted.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name
	}
	return names
}
