// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture reads and writes ZPR packet-capture files, the
// persistence side of the set/flush/close-capture-file RPC commands.
//
// A capture file is a fixed header (the "ZPRCAP01" magic and a
// compression byte) followed by a stream of CBOR records, optionally
// compressed with zstd or lz4. Each record carries the packet header's
// canonical bytes, the payload, and a timestamp, so captures replay
// byte-exactly.
//
// Capture programs (set/delete-capture-program) are YAML filter
// definitions selecting packets by command, link, and source or
// destination name subtree.
package capture
