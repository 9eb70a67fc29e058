// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package dn_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zpr-foundation/zprproto/lib/dn"
)

func TestParseCanonicalRoundtrip(t *testing.T) {
	// Canonical strings must survive Parse -> String byte-exact.
	tests := []string{
		"CN=vs.zpr",
		"O=acme,OU=eng,CN=server1",
		"O=acme\\, inc,CN=db",
		"CN=key\\=value",
		"CN=back\\\\slash",
		"X500UNIQUEIDENTIFIER=42,CN=legacy",
	}
	for _, canonical := range tests {
		parsed, err := dn.Parse(canonical)
		if err != nil {
			t.Fatalf("Parse(%q): %v", canonical, err)
		}
		if parsed.String() != canonical {
			t.Errorf("roundtrip: Parse(%q).String() = %q", canonical, parsed.String())
		}
	}
}

func TestParseNormalizes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Attribute types fold to uppercase.
		{"cn=server1", "CN=server1"},
		{"o=acme,ou=eng,cn=server1", "O=acme,OU=eng,CN=server1"},
		// Values keep their exact bytes.
		{"CN=Server1", "CN=Server1"},
		// A literal unescaped '=' in a value is normalized to the
		// escaped canonical form.
		{"CN=key=value", "CN=key\\=value"},
	}
	for _, tt := range tests {
		parsed, err := dn.Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.input, err)
		}
		if parsed.String() != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.input, parsed.String(), tt.want)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"empty-component", "O=acme,,CN=x"},
		{"leading-comma", ",CN=x"},
		{"trailing-comma", "CN=x,"},
		{"no-equals", "justavalue"},
		{"empty-type", "=value"},
		{"empty-value", "CN="},
		{"bad-type-char", "C-N=x"},
		{"type-starts-with-digit", "0N=x"},
		{"dangling-escape", "CN=x\\"},
		{"invalid-escape", "CN=x\\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := dn.Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error, got %v", parsed)
			}
			if !errors.Is(err, dn.ErrMalformedDN) {
				t.Errorf("error %v does not wrap ErrMalformedDN", err)
			}
		})
	}
}

func TestUnknownTypePreserved(t *testing.T) {
	parsed, err := dn.Parse("FROBNICATOR=9000,CN=x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	components := parsed.Components()
	if components[0].Type != "FROBNICATOR" || components[0].Value != "9000" {
		t.Errorf("unknown component = %+v", components[0])
	}
	// Structurally comparable: same unknown type parses equal.
	again := dn.MustParse("frobnicator=9000,cn=x")
	if parsed != again {
		t.Errorf("equivalent DNs compare unequal: %v vs %v", parsed, again)
	}
}

func TestEqualityAndMapKey(t *testing.T) {
	a := dn.MustParse("O=acme,CN=server1")
	b := dn.MustParse("o=acme,cn=server1")
	c := dn.MustParse("O=acme,CN=server2")

	if a != b {
		t.Error("canonically equal DNs compare unequal")
	}
	if a == c {
		t.Error("distinct DNs compare equal")
	}

	index := map[dn.DN]int{a: 1}
	if index[b] != 1 {
		t.Error("map lookup through equal DN failed")
	}
}

func TestIsAncestorOf(t *testing.T) {
	acme := dn.MustParse("O=Acme")
	server := dn.MustParse("O=Acme,CN=server1")
	deep := dn.MustParse("O=Acme,OU=eng,CN=server1")
	other := dn.MustParse("O=Other,CN=server1")
	trickyValue := dn.MustParse("O=Acme\\,CN=server1") // single component

	if !acme.IsAncestorOf(server) {
		t.Error("O=Acme should be an ancestor of O=Acme,CN=server1")
	}
	if !acme.IsAncestorOf(deep) {
		t.Error("O=Acme should be an ancestor of O=Acme,OU=eng,CN=server1")
	}
	if server.IsAncestorOf(acme) {
		t.Error("child is not an ancestor of its parent")
	}
	if acme.IsAncestorOf(acme) {
		t.Error("ancestor relation is strict: a DN is not its own ancestor")
	}
	if acme.IsAncestorOf(other) {
		t.Error("unrelated DN reported as descendant")
	}
	if acme.IsAncestorOf(trickyValue) {
		t.Error("escaped comma inside a value is not a component boundary")
	}
	if (dn.DN{}).IsAncestorOf(server) {
		t.Error("zero DN is nobody's ancestor")
	}

	// Value prefix is not a component boundary.
	ac := dn.MustParse("O=Ac")
	if ac.IsAncestorOf(server) {
		t.Error("O=Ac is not an ancestor of O=Acme,CN=server1")
	}
}

func TestWriteToDeterministicAndRoundtrip(t *testing.T) {
	named := dn.MustParse("O=acme,OU=e\\,ng,CN=server1")

	var first, second bytes.Buffer
	if _, err := named.WriteTo(&first); err != nil {
		t.Fatalf("first WriteTo: %v", err)
	}
	if _, err := named.WriteTo(&second); err != nil {
		t.Fatalf("second WriteTo: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("non-deterministic encoding")
	}

	decoded, err := dn.ReadDN(&first)
	if err != nil {
		t.Fatalf("ReadDN: %v", err)
	}
	if decoded != named {
		t.Errorf("roundtrip mismatch: got %v, want %v", decoded, named)
	}
}

func TestAccessors(t *testing.T) {
	named := dn.MustParse("O=acme,OU=eng,CN=server1")
	if named.NumComponents() != 3 {
		t.Errorf("NumComponents() = %d, want 3", named.NumComponents())
	}
	if named.CommonName() != "server1" {
		t.Errorf("CommonName() = %q", named.CommonName())
	}
	if dn.MustParse("O=acme").CommonName() != "" {
		t.Error("CommonName() should be empty without a CN component")
	}
	escaped := dn.MustParse("CN=a\\,b")
	if escaped.NumComponents() != 1 {
		t.Errorf("NumComponents() = %d, want 1 for escaped comma", escaped.NumComponents())
	}
}

func TestDER(t *testing.T) {
	// The well-known visa service DN has a fixed, hand-checkable DER
	// form: SEQUENCE > SET > SEQUENCE > (OID 2.5.4.3, UTF8STRING).
	want := []byte{
		0x30, 0x11,
		0x31, 0x0F,
		0x30, 0x0D,
		0x06, 0x03, 0x55, 0x04, 0x03,
		0x0C, 0x06, 'v', 's', '.', 'z', 'p', 'r',
	}
	got, err := dn.VisaServiceDN.DER()
	if err != nil {
		t.Fatalf("DER: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("DER = %x, want %x", got, want)
	}

	direct, err := dn.CommonNameDER(dn.VisaServiceCN)
	if err != nil {
		t.Fatalf("CommonNameDER: %v", err)
	}
	if !bytes.Equal(direct, want) {
		t.Errorf("CommonNameDER = %x, want %x", direct, want)
	}

	if _, err := dn.MustParse("FROBNICATOR=1").DER(); err == nil {
		t.Error("expected error for unknown attribute type")
	}
}

func TestTextMarshaling(t *testing.T) {
	named := dn.MustParse("O=acme,CN=server1")
	text, err := named.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var decoded dn.DN
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if decoded != named {
		t.Errorf("text roundtrip mismatch: %v vs %v", decoded, named)
	}

	var zero dn.DN
	if err := zero.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText(empty): %v", err)
	}
	if !zero.IsZero() {
		t.Error("empty text should decode to the zero DN")
	}
}
