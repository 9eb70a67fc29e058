// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package vsapi

import (
	"fmt"
	"io"
	"net/netip"

	"github.com/zpr-foundation/zprproto/lib/codec"
)

// Claim is one key/value attribute assertion made by a connecting
// actor. Keys follow the policy attribute naming scheme.
type Claim struct {
	Key   string `cbor:"key"`
	Value string `cbor:"value,omitempty"`
}

// ConnectRequest is an actor's request to join the network: challenge
// responses proving identity, attribute claims, and the substrate
// address the actor docked from.
type ConnectRequest struct {
	Blobs         []AuthBlob     `cbor:"blobs"`
	Claims        []Claim        `cbor:"claims"`
	SubstrateAddr netip.AddrPort `cbor:"substrateAddr"`
	DockInterface uint8          `cbor:"dockInterface"`
}

// Validate checks that the request carries at least one challenge
// response, that every blob is well formed, and that the substrate
// address is set.
func (r ConnectRequest) Validate() error {
	if len(r.Blobs) == 0 {
		return fmt.Errorf("%w: connect request has no challenge responses", ErrDeserialize)
	}
	for i, blob := range r.Blobs {
		if err := blob.Validate(); err != nil {
			return fmt.Errorf("blob %d: %w", i, err)
		}
	}
	if !r.SubstrateAddr.IsValid() {
		return fmt.Errorf("%w: connect request has no substrate address", ErrDeserialize)
	}
	return nil
}

// WriteTo serializes the request as deterministic CBOR into w.
func (r ConnectRequest) WriteTo(w io.Writer) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return encodeCBOR(w, r, "encode connect request")
}

// DecodeConnectRequest is the left inverse of ConnectRequest.WriteTo.
func DecodeConnectRequest(r io.Reader) (ConnectRequest, error) {
	var req ConnectRequest
	if err := codec.NewDecoder(r).Decode(&req); err != nil {
		return ConnectRequest{}, fmt.Errorf("decode connect request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return ConnectRequest{}, err
	}
	return req, nil
}
