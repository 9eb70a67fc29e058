// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package dn

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zpr-foundation/zprproto/lib/wire"
)

// ErrMalformedDN is wrapped by every DN parse failure. Match with
// errors.Is.
var ErrMalformedDN = errors.New("malformed distinguished name")

// Known attribute types. Unknown types parse fine (forward
// compatibility) — these are the ones with defined meaning and DER
// object identifiers.
const (
	TypeCommonName       = "CN"
	TypeOrganization     = "O"
	TypeOrganizationUnit = "OU"
	TypeCountry          = "C"
	TypeLocality         = "L"
	TypeStateOrProvince  = "ST"
)

// Component is one (attribute type, value) pair of a DN. The Type is
// always in canonical uppercase form.
type Component struct {
	Type  string
	Value string
}

// String returns the canonical component form with reserved characters
// escaped.
func (c Component) String() string {
	return c.Type + "=" + escapeValue(c.Value)
}

// DN is a distinguished name: an ordered, root-first sequence of
// components. The zero value is the "no name" sentinel (IsZero reports
// true).
//
// DN is comparable — it holds only the canonical string — so two DNs
// are equal iff their canonicalized component sequences are identical,
// and a DN can be used directly as a map key.
type DN struct {
	canonical string
}

// Parse parses a DN from its string form and canonicalizes it:
// attribute types are folded to uppercase, values keep their exact
// bytes, escaping is normalized. Failures wrap ErrMalformedDN.
func Parse(s string) (DN, error) {
	if s == "" {
		return DN{}, fmt.Errorf("%w: empty string", ErrMalformedDN)
	}
	raw, err := splitUnescaped(s)
	if err != nil {
		return DN{}, err
	}
	components := make([]Component, 0, len(raw))
	for _, part := range raw {
		component, err := parseComponent(part)
		if err != nil {
			return DN{}, err
		}
		components = append(components, component)
	}
	return fromValidComponents(components), nil
}

// MustParse is Parse for DNs known valid at compile time (well-known
// names, tests). Panics on error.
func MustParse(s string) DN {
	parsed, err := Parse(s)
	if err != nil {
		panic("dn: " + err.Error())
	}
	return parsed
}

// FromComponents constructs a DN from components, validating each and
// folding attribute types to canonical form.
func FromComponents(components ...Component) (DN, error) {
	if len(components) == 0 {
		return DN{}, fmt.Errorf("%w: no components", ErrMalformedDN)
	}
	canonical := make([]Component, 0, len(components))
	for _, component := range components {
		attrType, err := canonicalType(component.Type)
		if err != nil {
			return DN{}, err
		}
		if component.Value == "" {
			return DN{}, fmt.Errorf("%w: component %s has empty value", ErrMalformedDN, attrType)
		}
		canonical = append(canonical, Component{Type: attrType, Value: component.Value})
	}
	return fromValidComponents(canonical), nil
}

// fromValidComponents builds the canonical string. Components must
// already be validated.
func fromValidComponents(components []Component) DN {
	var builder strings.Builder
	for i, component := range components {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(component.String())
	}
	return DN{canonical: builder.String()}
}

// splitUnescaped splits s on commas that are not preceded by a
// backslash escape.
func splitUnescaped(s string) ([]string, error) {
	var parts []string
	var current strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			current.WriteByte('\\')
			current.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == ',':
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	if escaped {
		return nil, fmt.Errorf("%w: dangling escape at end of input", ErrMalformedDN)
	}
	parts = append(parts, current.String())
	return parts, nil
}

// parseComponent parses one "TYPE=value" component, still carrying its
// escapes.
func parseComponent(part string) (Component, error) {
	if part == "" {
		return Component{}, fmt.Errorf("%w: empty component", ErrMalformedDN)
	}
	rawType, rawValue, found := strings.Cut(part, "=")
	if !found {
		return Component{}, fmt.Errorf("%w: component %q has no '='", ErrMalformedDN, part)
	}
	attrType, err := canonicalType(rawType)
	if err != nil {
		return Component{}, err
	}
	value, err := unescapeValue(rawValue)
	if err != nil {
		return Component{}, err
	}
	if value == "" {
		return Component{}, fmt.Errorf("%w: component %s has empty value", ErrMalformedDN, attrType)
	}
	return Component{Type: attrType, Value: value}, nil
}

// canonicalType folds an attribute type to uppercase ASCII and
// validates the token: letters and digits only, starting with a letter.
// Unknown tokens are accepted — they stay structurally comparable.
func canonicalType(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty attribute type", ErrMalformedDN)
	}
	folded := make([]byte, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", fmt.Errorf("%w: attribute type %q has invalid character %q", ErrMalformedDN, raw, raw[i])
		}
		if i == 0 && (c < 'A' || c > 'Z') {
			return "", fmt.Errorf("%w: attribute type %q must start with a letter", ErrMalformedDN, raw)
		}
		folded[i] = c
	}
	return string(folded), nil
}

// escapeValue escapes the reserved characters ',' '\' '=' so the
// canonical string can be split unambiguously.
func escapeValue(value string) string {
	if !strings.ContainsAny(value, ",\\=") {
		return value
	}
	var builder strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == ',' || c == '\\' || c == '=' {
			builder.WriteByte('\\')
		}
		builder.WriteByte(c)
	}
	return builder.String()
}

// unescapeValue removes escapes from a raw component value. A literal
// unescaped '=' is accepted and normalized (it gets escaped again on
// output); escaping any character other than ',' '\' '=' is malformed.
func unescapeValue(raw string) (string, error) {
	var builder strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			builder.WriteByte(c)
			continue
		}
		i++
		if i == len(raw) {
			return "", fmt.Errorf("%w: dangling escape in value %q", ErrMalformedDN, raw)
		}
		next := raw[i]
		if next != ',' && next != '\\' && next != '=' {
			return "", fmt.Errorf("%w: invalid escape %q in value %q", ErrMalformedDN, "\\"+string(next), raw)
		}
		builder.WriteByte(next)
	}
	return builder.String(), nil
}

// String returns the canonical string form. Parse(d.String()) == d for
// every valid DN (round-trip law).
func (d DN) String() string { return d.canonical }

// IsZero reports whether this is the uninitialized zero-value DN.
func (d DN) IsZero() bool { return d.canonical == "" }

// Components returns the parsed component sequence, root-first.
func (d DN) Components() []Component {
	if d.IsZero() {
		return nil
	}
	parts, err := splitUnescaped(d.canonical)
	if err != nil {
		panic("dn: corrupt canonical form: " + err.Error())
	}
	components := make([]Component, 0, len(parts))
	for _, part := range parts {
		component, err := parseComponent(part)
		if err != nil {
			panic("dn: corrupt canonical form: " + err.Error())
		}
		components = append(components, component)
	}
	return components
}

// NumComponents returns the component count without allocating.
func (d DN) NumComponents() int {
	if d.IsZero() {
		return 0
	}
	count := 1
	escaped := false
	for i := 0; i < len(d.canonical); i++ {
		switch {
		case escaped:
			escaped = false
		case d.canonical[i] == '\\':
			escaped = true
		case d.canonical[i] == ',':
			count++
		}
	}
	return count
}

// CommonName returns the value of the last CN component, or "" if the
// DN has none.
func (d DN) CommonName() string {
	components := d.Components()
	for i := len(components) - 1; i >= 0; i-- {
		if components[i].Type == TypeCommonName {
			return components[i].Value
		}
	}
	return ""
}

// IsAncestorOf reports whether d's component sequence is a strict,
// order-preserving prefix of other's. This is the hierarchy relation:
// an organizational unit is an ancestor of the principals beneath it.
// A DN is not its own ancestor, and the zero DN is nobody's ancestor.
//
// The check runs on canonical strings: because values escape literal
// commas, a prefix ending exactly at an unescaped ',' is a prefix ending
// exactly at a component boundary.
func (d DN) IsAncestorOf(other DN) bool {
	if d.IsZero() || other.IsZero() {
		return false
	}
	return strings.HasPrefix(other.canonical, d.canonical+",")
}

// MarshalText implements encoding.TextMarshaler using the canonical
// string. A zero-value DN marshals as the empty string.
func (d DN) MarshalText() ([]byte, error) {
	return []byte(d.canonical), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input
// produces a zero value.
func (d *DN) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*d = DN{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WriteTo serializes the canonical byte form: uint16 component count,
// then each component's type and value as length-prefixed strings.
// Deterministic and injective — no two distinct DNs share canonical
// bytes.
func (d DN) WriteTo(w io.Writer) (int64, error) {
	components := d.Components()
	written, err := wire.WriteUint16(w, uint16(len(components)))
	if err != nil {
		return written, err
	}
	for _, component := range components {
		n, err := wire.WriteString(w, component.Type)
		written += n
		if err != nil {
			return written, err
		}
		n, err = wire.WriteString(w, component.Value)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// ReadDN is the left inverse of WriteTo. Decoded components are
// re-validated.
func ReadDN(r io.Reader) (DN, error) {
	count, err := wire.ReadUint16(r)
	if err != nil {
		return DN{}, fmt.Errorf("read component count: %w", err)
	}
	if count == 0 {
		return DN{}, nil
	}
	components := make([]Component, 0, count)
	for i := 0; i < int(count); i++ {
		attrType, err := wire.ReadString(r)
		if err != nil {
			return DN{}, fmt.Errorf("read component %d type: %w", i, err)
		}
		value, err := wire.ReadString(r)
		if err != nil {
			return DN{}, fmt.Errorf("read component %d value: %w", i, err)
		}
		components = append(components, Component{Type: attrType, Value: value})
	}
	return FromComponents(components...)
}
