// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration
// shared by every ZPR schema binding.
//
// The original interface-description schemas (policy, visa service API)
// are bound as plain Go structs serialized with a single fixed CBOR
// configuration, so every service encodes identically without
// duplicating setup. The encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes — a requirement, since canonical bytes double as comparison and
// hash keys.
//
// For buffer-oriented operations (tokens, capture records):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets, capture files):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Identifier types from the core (addr.Address, dn.DN, rpccmd.Command)
// implement encoding.TextMarshaler and serialize as their canonical
// text strings; the decoder mirrors this for round-trip correctness.
// Unknown map fields are ignored on decode, so bindings stay forward
// compatible across service version skew.
package codec
