package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the value type of a form field.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindNumber
	KindList
	KindMonth
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	case KindMonth:
		return "month"
	default:
		return "string"
	}
}

// Field describes one editable field of a resource form.
type Field struct {
	// Name is the client-side field name used by forms and --set flags.
	Name string
	// APIName is the field name the server expects. Defaults to Name.
	APIName  string
	Label    string
	Kind     Kind
	Required bool
	Default  any
	// Codec maps labels to enum codes for string and list fields.
	Codec   *EnumCodec
	Pattern *regexp.Regexp
}

// Key returns the server-side field name.
func (f Field) Key() string {
	if f.APIName != "" {
		return f.APIName
	}
	return f.Name
}

// Title returns the label shown to users.
func (f Field) Title() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// IsEmpty reports whether v counts as "not provided".
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// Coerce converts raw input, usually text from a flag or an input box, into
// the Go value for the field kind. Empty input coerces to nil.
func (f Field) Coerce(v any) (any, error) {
	if IsEmpty(v) {
		return nil, nil
	}
	switch f.Kind {
	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a boolean", f.Name, t)
			}
			return b, nil
		}
	case KindInt:
		switch t := v.(type) {
		case int:
			return t, nil
		case float64:
			return int(t), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(t))
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a whole number", f.Name, t)
			}
			return n, nil
		}
	case KindNumber:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int:
			return float64(t), nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", f.Name, t)
			}
			return n, nil
		}
	case KindList:
		switch t := v.(type) {
		case []string:
			return append([]string(nil), t...), nil
		case []any:
			out := make([]string, 0, len(t))
			for _, item := range t {
				out = append(out, stringify(item))
			}
			return out, nil
		case string:
			parts := strings.Split(t, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out, nil
		}
	case KindMonth:
		return NormalizeMonthCode(stringify(v))
	default:
		return strings.TrimSpace(stringify(v)), nil
	}
	return nil, fmt.Errorf("%s: unsupported %s value %T", f.Name, f.Kind, v)
}

// Encode converts a coerced form value into the value sent to the API,
// applying the field codec when present.
func (f Field) Encode(v any) (any, error) {
	if f.Codec == nil || v == nil {
		return v, nil
	}
	switch t := v.(type) {
	case string:
		return f.Codec.Encode(t)
	case []string:
		return f.Codec.EncodeAll(t)
	}
	return v, nil
}

// Decode converts a value read from an API document into the form value,
// turning codes back into labels.
func (f Field) Decode(v any) any {
	if v == nil {
		return nil
	}
	if f.Kind == KindList {
		coerced, err := f.Coerce(v)
		if err != nil {
			return v
		}
		list, _ := coerced.([]string)
		if f.Codec != nil {
			return f.Codec.DecodeAll(list)
		}
		return list
	}
	if s, ok := v.(string); ok && f.Codec != nil {
		return f.Codec.Decode(s)
	}
	return v
}
