// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package dn

import (
	"fmt"
)

// DER tag bytes for the X.501 RDNSequence layout.
const (
	derSequence   = 0x30
	derSet        = 0x31
	derOID        = 0x06
	derUTF8String = 0x0C
)

// derOIDs maps known attribute types to their X.500 object identifiers
// under the 2.5.4 arc, pre-encoded (2*40+5, 4, n).
var derOIDs = map[string][]byte{
	TypeCommonName:       {0x55, 0x04, 0x03},
	TypeCountry:          {0x55, 0x04, 0x06},
	TypeLocality:         {0x55, 0x04, 0x07},
	TypeStateOrProvince:  {0x55, 0x04, 0x08},
	TypeOrganization:     {0x55, 0x04, 0x0A},
	TypeOrganizationUnit: {0x55, 0x04, 0x0B},
}

// DER encodes the DN as an X.501 RDNSequence: one SET per component, in
// order, each holding a single (OID, UTF8String) pair. This is the form
// embedded in certificates and compared byte-for-byte by the visa
// service. Components with unknown attribute types have no object
// identifier and cannot be DER-encoded.
func (d DN) DER() ([]byte, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("%w: zero-value DN has no DER form", ErrMalformedDN)
	}
	var body []byte
	for _, component := range d.Components() {
		oid, known := derOIDs[component.Type]
		if !known {
			return nil, fmt.Errorf("dn: attribute type %s has no object identifier", component.Type)
		}
		attr := derElement(derSequence, append(
			derElement(derOID, oid),
			derElement(derUTF8String, []byte(component.Value))...,
		))
		body = append(body, derElement(derSet, attr)...)
	}
	return derElement(derSequence, body), nil
}

// CommonNameDER encodes a single-CN DN ("CN=<cn>") directly to DER.
// This is the common case for service identities like the well-known
// visa service DN.
func CommonNameDER(cn string) ([]byte, error) {
	named, err := FromComponents(Component{Type: TypeCommonName, Value: cn})
	if err != nil {
		return nil, err
	}
	return named.DER()
}

// derElement encodes one TLV element. Lengths use the short form below
// 128 and the 1- or 2-byte long form above it; DNs never exceed 64 KiB.
func derElement(tag byte, content []byte) []byte {
	length := len(content)
	switch {
	case length < 0x80:
		out := make([]byte, 0, 2+length)
		return append(append(out, tag, byte(length)), content...)
	case length <= 0xFF:
		out := make([]byte, 0, 3+length)
		return append(append(out, tag, 0x81, byte(length)), content...)
	default:
		out := make([]byte, 0, 4+length)
		return append(append(out, tag, 0x82, byte(length>>8), byte(length)), content...)
	}
}
