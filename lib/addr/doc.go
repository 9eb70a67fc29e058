// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package addr provides the canonical network endpoint identifier used
// across ZPR services, plus the well-known addresses and ports of the
// ZPR internal network.
//
// An Address is an immutable, comparable value: a kind tag plus an
// opaque payload whose interpretation depends on the kind. Constructors
// validate their input and return errors for malformed payloads — an
// invalid Address can never be constructed, so every Address in a
// running service is safe to serialize, compare, and use as a map key.
//
// Equality and ordering are defined over the canonical byte form (kind,
// payload), which is injective: no two distinct addresses share
// canonical bytes, even across kinds. The canonical text form
// ("ipv6:fd5a:5052::1", "host:vs.example.net") is used for JSON and
// CBOR via encoding.TextMarshaler.
package addr
