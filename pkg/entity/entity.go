// Package entity describes the opaque documents served by the admin API and
// the catalog of resources the console knows how to list and mutate.
package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Entity is a server-owned JSON document. The console never assumes a schema
// beyond the fields named by a Resource descriptor.
type Entity map[string]any

// Pagination mirrors the pagination block returned by every list endpoint.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalCount  int `json:"totalCount"`
}

// ID returns the Mongo-style `_id`, falling back to `id`.
func (e Entity) ID() string {
	for _, k := range []string{"_id", "id"} {
		if v, ok := e[k]; ok && v != nil {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// Lookup resolves a dotted path such as "artist.name".
func (e Entity) Lookup(path string) (any, bool) {
	var cur any = map[string]any(e)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String renders the value at path for display. Missing values render empty.
func (e Entity) String(path string) string {
	v, ok := e.Lookup(path)
	if !ok {
		return ""
	}
	return stringify(v)
}

// Bool reports the boolean at path. The second result is false when the field
// is missing or not a boolean.
func (e Entity) Bool(path string) (bool, bool) {
	v, ok := e.Lookup(path)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	}
	return false, false
}

// Set writes a top-level field.
func (e Entity) Set(field string, v any) {
	e[field] = v
}

// Clone returns a deep copy so optimistic patches never alias server state.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	return Entity(cloneMap(e))
}

// CloneAll deep copies a slice of entities.
func CloneAll(rows []Entity) []Entity {
	if rows == nil {
		return nil
	}
	out := make([]Entity, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Entity:
		return m, true
	}
	return nil, false
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Entity:
		return Entity(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	case map[string]any, Entity:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}
