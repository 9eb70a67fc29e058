// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidDomain is wrapped when an attribute name carries no
// recognized domain prefix and none was hinted.
var ErrInvalidDomain = errors.New("invalid attribute domain")

// ErrInvalidOperation is wrapped when an operation does not apply to
// the attribute's kind, such as making a tag multi-valued.
var ErrInvalidOperation = errors.New("invalid attribute operation")

// ErrMalformedAttribute is wrapped when an attribute instance string
// fails to parse.
var ErrMalformedAttribute = errors.New("malformed attribute")

// Domain is the namespace an attribute lives in.
type Domain uint8

const (
	// DomainUnspecified marks an attribute whose domain is not yet
	// known. Policy with unspecified domains cannot be written out.
	DomainUnspecified Domain = iota
	DomainEndpoint
	DomainUser
	DomainService
	// DomainInternal is the "zpr" domain, reserved for compiler and
	// visa service use.
	DomainInternal
)

func (d Domain) String() string {
	switch d {
	case DomainEndpoint:
		return "endpoint"
	case DomainUser:
		return "user"
	case DomainService:
		return "service"
	case DomainInternal:
		return "zpr"
	default:
		return "UNSPECIFIED"
	}
}

// Kind is the attribute's multiplicity: a bare tag, a single-valued
// tuple, or a multi-valued tuple.
type Kind uint8

const (
	KindTag Kind = iota
	KindSingle
	KindMulti
)

// Attribute is one domain-qualified policy attribute. The zero value
// is not valid; use the constructors.
type Attribute struct {
	domain   Domain
	name     string
	values   []string
	kind     Kind
	optional bool
}

// SplitDomain parses a recognized user-facing domain prefix off key,
// returning the domain and the remainder. The internal "zpr" domain is
// never split; internal attributes go through Internal.
func SplitDomain(key string) (Domain, string, error) {
	for _, d := range []Domain{DomainEndpoint, DomainUser, DomainService} {
		if rest, ok := strings.CutPrefix(key, d.String()+"."); ok {
			return d, rest, nil
		}
	}
	return DomainUnspecified, "", fmt.Errorf("%w: %q", ErrInvalidDomain, key)
}

// ParseAttribute parses the instance form rendered by InstanceString:
// "#domain.name" for a tag, "domain.name:value" for a single-valued
// tuple, "domain.name:{v1, v2}" for a multi-valued one, "domain.name:"
// for a tuple with an empty value list, and a bare "domain.name" for a
// tuple with no values. The name must carry a domain prefix; the
// internal "zpr." domain is accepted here so every instance string
// round-trips.
func ParseAttribute(s string) (Attribute, error) {
	return parseAttribute(s, DomainUnspecified, false)
}

// ParseAttributeIn is ParseAttribute with a fallback: a name without a
// recognized domain prefix lands in the given domain instead of
// failing. Pass DomainUnspecified to defer domain resolution.
func ParseAttributeIn(fallback Domain, s string) (Attribute, error) {
	return parseAttribute(s, fallback, true)
}

func parseAttribute(s string, fallback Domain, useFallback bool) (Attribute, error) {
	if s == "" {
		return Attribute{}, fmt.Errorf("%w: empty input", ErrMalformedAttribute)
	}
	rest, isTag := strings.CutPrefix(s, "#")
	key, valuePart, hasValue := strings.Cut(rest, ":")
	if isTag && hasValue {
		return Attribute{}, fmt.Errorf("%w: tag %q carries a value", ErrMalformedAttribute, s)
	}

	domain, name, err := resolveDomain(key, fallback, useFallback)
	if err != nil {
		return Attribute{}, err
	}
	if name == "" {
		return Attribute{}, fmt.Errorf("%w: %q has no name", ErrMalformedAttribute, s)
	}

	switch {
	case isTag:
		return Attribute{domain: domain, name: name, kind: KindTag}, nil
	case !hasValue:
		return Attribute{domain: domain, name: name, kind: KindSingle}, nil
	case valuePart == "":
		return Attribute{domain: domain, name: name, values: []string{}, kind: KindSingle}, nil
	}
	if inner, braced := cutBraces(valuePart); braced {
		return Attribute{domain: domain, name: name, values: splitValues(inner), kind: KindMulti}, nil
	}
	return Attribute{domain: domain, name: name, values: []string{valuePart}, kind: KindSingle}, nil
}

// resolveDomain splits a domain prefix off key, accepting the internal
// "zpr." domain alongside the user-facing ones.
func resolveDomain(key string, fallback Domain, useFallback bool) (Domain, string, error) {
	if domain, rest, err := SplitDomain(key); err == nil {
		return domain, rest, nil
	}
	if rest, ok := strings.CutPrefix(key, "zpr."); ok {
		return DomainInternal, rest, nil
	}
	if useFallback {
		return fallback, key, nil
	}
	return DomainUnspecified, "", fmt.Errorf("%w: %q", ErrInvalidDomain, key)
}

func cutBraces(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// splitValues splits a braced value list on commas, trimming the
// spacing InstanceString inserts after each comma.
func splitValues(inner string) []string {
	if strings.TrimSpace(inner) == "" {
		return []string{}
	}
	parts := strings.Split(inner, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		values = append(values, strings.TrimSpace(part))
	}
	return values
}

// Tag builds a tag attribute from a domain-qualified name like
// "endpoint.hardened".
func Tag(name string) (Attribute, error) {
	domain, rest, err := SplitDomain(name)
	if err != nil {
		return Attribute{}, err
	}
	return Attribute{domain: domain, name: rest, kind: KindTag}, nil
}

// TagIn builds a tag attribute in an explicit domain, for names that
// carry no domain prefix.
func TagIn(domain Domain, name string) Attribute {
	if d, rest, err := SplitDomain(name); err == nil {
		return Attribute{domain: d, name: rest, kind: KindTag}
	}
	return Attribute{domain: domain, name: name, kind: KindTag}
}

// Single builds a single-valued tuple attribute from a
// domain-qualified name like "user.role".
func Single(name, value string) (Attribute, error) {
	domain, rest, err := SplitDomain(name)
	if err != nil {
		return Attribute{}, err
	}
	return Attribute{domain: domain, name: rest, values: []string{value}, kind: KindSingle}, nil
}

// Multi builds a multi-valued tuple attribute from a domain-qualified
// name. The attribute is multi-valued even with zero or one values.
func Multi(name string, values []string) (Attribute, error) {
	domain, rest, err := SplitDomain(name)
	if err != nil {
		return Attribute{}, err
	}
	return Attribute{
		domain: domain,
		name:   rest,
		values: append([]string(nil), values...),
		kind:   KindMulti,
	}, nil
}

// Tuple builds a tuple attribute from a domain-qualified name. With
// more than one value the attribute is multi-valued, otherwise single.
func Tuple(name string, values []string) (Attribute, error) {
	domain, rest, err := SplitDomain(name)
	if err != nil {
		return Attribute{}, err
	}
	kind := KindSingle
	if len(values) > 1 {
		kind = KindMulti
	}
	return Attribute{
		domain: domain,
		name:   rest,
		values: append([]string(nil), values...),
		kind:   kind,
	}, nil
}

// Internal builds a single-valued attribute in the reserved internal
// domain. It panics when name does not start with "zpr.".
func Internal(name, value string) Attribute {
	rest, ok := strings.CutPrefix(name, "zpr.")
	if !ok {
		panic(fmt.Sprintf("internal attribute %q must start with %q", name, "zpr."))
	}
	return Attribute{domain: DomainInternal, name: rest, values: []string{value}, kind: KindSingle}
}

// InternalMulti is Internal with the multi-valued kind.
func InternalMulti(name, value string) Attribute {
	a := Internal(name, value)
	a.kind = KindMulti
	return a
}

// Domain returns the attribute's domain.
func (a Attribute) Domain() Domain { return a.domain }

// Name returns the attribute's name without the domain prefix. For a
// tag this is the tag name.
func (a Attribute) Name() string { return a.name }

// Optional reports whether the attribute is optional in the schema.
func (a Attribute) Optional() bool { return a.optional }

// WithOptional returns a copy with the optional flag set.
func (a Attribute) WithOptional(optional bool) Attribute {
	a.optional = optional
	return a
}

// WithName returns a copy renamed to newName. When newName carries a
// recognized domain prefix the copy moves to that domain, otherwise it
// keeps the current one.
func (a Attribute) WithName(newName string) Attribute {
	if domain, rest, err := SplitDomain(newName); err == nil {
		a.domain = domain
		a.name = rest
		return a
	}
	a.name = newName
	return a
}

// WithDomain returns a copy in the given domain.
func (a Attribute) WithDomain(domain Domain) Attribute {
	a.domain = domain
	return a
}

// AsMulti returns a multi-valued copy. Tags cannot be multi-valued.
func (a Attribute) AsMulti() (Attribute, error) {
	if a.IsTag() {
		return Attribute{}, fmt.Errorf("%w: tag %s cannot be multi-valued", ErrInvalidOperation, a.CompilerKey())
	}
	a.kind = KindMulti
	return a, nil
}

func (a Attribute) IsTag() bool { return a.kind == KindTag }

func (a Attribute) IsSingleValued() bool { return a.kind == KindSingle }

func (a Attribute) IsMultiValued() bool { return a.kind == KindMulti }

// IsUnspecifiedDomain reports whether the domain is still unresolved.
func (a Attribute) IsUnspecifiedDomain() bool { return a.domain == DomainUnspecified }

// Values returns a copy of the attribute's values. Tags have none.
func (a Attribute) Values() []string {
	return append([]string(nil), a.values...)
}

func (a Attribute) qualified() string {
	return a.domain.String() + "." + a.name
}

// SchemaString renders the attribute with schema hints: "#" for tags,
// "{}" for multi-valued, "?" for optional.
func (a Attribute) SchemaString() string {
	if a.IsTag() {
		return "#" + a.qualified()
	}
	if len(a.values) > 0 || a.hasEmptyValueList() {
		return a.instanceValueForm()
	}
	var b strings.Builder
	b.WriteString(a.qualified())
	if a.IsMultiValued() {
		b.WriteString("{}")
	}
	if a.optional {
		b.WriteString("?")
	}
	return b.String()
}

// InstanceString renders the attribute without schema hints, e.g.
// "user.role:marketing" or "#endpoint.hardened".
func (a Attribute) InstanceString() string {
	if a.IsTag() {
		return "#" + a.qualified()
	}
	if len(a.values) > 0 || a.hasEmptyValueList() {
		return a.instanceValueForm()
	}
	return a.qualified()
}

func (a Attribute) hasEmptyValueList() bool {
	return a.values != nil && len(a.values) == 0
}

func (a Attribute) instanceValueForm() string {
	key := a.qualified()
	switch len(a.values) {
	case 0:
		return key + ":"
	case 1:
		return key + ":" + a.values[0]
	default:
		return key + ":{" + strings.Join(a.values, ", ") + "}"
	}
}

// ZPLKey is the condition key for this attribute. Tags share the
// per-domain "<domain>.zpr.tag" key; tuples use their qualified name.
func (a Attribute) ZPLKey() string {
	if a.IsTag() {
		return a.domain.String() + ".zpr.tag"
	}
	return a.qualified()
}

// ZPLValue is the condition value: the qualified tag name for tags, a
// comma-separated list for tuples, empty when there are no values.
func (a Attribute) ZPLValue() string {
	if a.IsTag() {
		return a.qualified()
	}
	return strings.Join(a.values, ", ")
}

// ZPLValues is the condition value set, sorted. For a tag it is the
// qualified tag name as the single element.
func (a Attribute) ZPLValues() []string {
	if a.IsTag() {
		return []string{a.qualified()}
	}
	values := append([]string(nil), a.values...)
	sort.Strings(values)
	return values
}

// CompilerKey renders the key as the policy compiler prints it: "#"
// prefix for tags, "{}" suffix for multi-valued, no optionality hint.
func (a Attribute) CompilerKey() string {
	var b strings.Builder
	if a.IsTag() {
		b.WriteString("#")
	}
	b.WriteString(a.qualified())
	if a.IsMultiValued() {
		b.WriteString("{}")
	}
	return b.String()
}
