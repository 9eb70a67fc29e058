// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the serialization contract shared by every ZPR
// protocol type and the primitive field writers that implement it.
//
// The contract is the standard library's io.WriterTo: a type serializes
// itself into a caller-supplied sink and reports the byte count.
// Composition nests WriteTo calls on the same sink, so embedding one
// serializable type inside another never copies through an intermediate
// buffer.
//
// Serialization is deterministic by construction — every field writer
// emits a fixed big-endian layout, so the same logical value always
// produces identical bytes regardless of process, time, or memory
// layout. Canonical bytes double as comparison and hash keys (see
// lib/addr) and as the input to Digest for integrity checks.
//
// Sink failures are wrapped in *Error, which preserves the underlying
// cause for errors.Is/errors.As. The writers perform no internal
// blocking, retries, or buffering of their own; those are properties of
// the sink and belong to the caller.
package wire
