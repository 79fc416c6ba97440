package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when a label has no API code.
var ErrUnknownValue = errors.New("entity: unknown value")

// EnumValue pairs a human label with the code the API expects.
type EnumValue struct {
	Label string
	Code  string
}

// EnumCodec maps UI labels to API enum codes and back. A single codec is
// shared by the create and edit forms of a resource.
type EnumCodec struct {
	values []EnumValue
}

// NewEnumCodec builds a codec from label/code pairs.
func NewEnumCodec(values ...EnumValue) *EnumCodec {
	return &EnumCodec{values: values}
}

// Encode resolves a label (or an already valid code) to its code. Matching is
// case-insensitive.
func (c *EnumCodec) Encode(v string) (string, error) {
	v = strings.TrimSpace(v)
	for _, ev := range c.values {
		if strings.EqualFold(ev.Label, v) || strings.EqualFold(ev.Code, v) {
			return ev.Code, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownValue, v, strings.Join(c.Labels(), ", "))
}

// EncodeAll encodes every label, failing on the first unknown one.
func (c *EnumCodec) EncodeAll(labels []string) ([]string, error) {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		code, err := c.Encode(l)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}

// Decode returns the label for a code. Unknown codes are returned unchanged.
func (c *EnumCodec) Decode(code string) string {
	for _, ev := range c.values {
		if ev.Code == code {
			return ev.Label
		}
	}
	return code
}

// DecodeAll decodes every code.
func (c *EnumCodec) DecodeAll(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, c.Decode(code))
	}
	return out
}

// Labels lists the labels in declaration order.
func (c *EnumCodec) Labels() []string {
	out := make([]string, 0, len(c.values))
	for _, ev := range c.values {
		out = append(out, ev.Label)
	}
	return out
}

// Codes lists the codes in declaration order.
func (c *EnumCodec) Codes() []string {
	out := make([]string, 0, len(c.values))
	for _, ev := range c.values {
		out = append(out, ev.Code)
	}
	return out
}
