// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package vsapi provides the shared visa service API types used by
// packet handlers, node libraries, and the visa service itself.
//
// These are schema bindings at the capability boundary: they depend on
// the identifier core (lib/addr, lib/dn, lib/packet) but the core never
// depends on them. All wire-visible types carry cbor struct tags and
// serialize through lib/codec's deterministic configuration; the
// request/response unions implement io.WriterTo so they compose with
// the rest of the protocol without intermediate buffers.
package vsapi
