// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package dn provides the hierarchical distinguished name used to
// identify principals and resources across ZPR services.
//
// A DN is an ordered sequence of (attribute type, value) components,
// root-first: "O=acme,OU=eng,CN=server1" names server1 beneath eng
// beneath acme. Component order is significant and preserved.
//
// A DN is an immutable, comparable value holding its canonical string
// form, so it can be used directly as a map key identifying a
// principal. Canonicalization is fixed: attribute types are folded to
// uppercase ASCII, values are byte-exact (no case folding, no Unicode
// normalization), and the separator and escape characters (',' '\' '=')
// are escaped with a backslash when they appear literally inside a
// value. Parse and String are exact inverses for canonical input.
//
// Unknown attribute types are preserved as opaque tokens rather than
// rejected, so a DN minted by a newer service version survives a round
// trip through an older one.
package dn
