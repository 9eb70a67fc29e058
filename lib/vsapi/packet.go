// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package vsapi

import (
	"fmt"
	"io"

	"github.com/zpr-foundation/zprproto/lib/addr"
	"github.com/zpr-foundation/zprproto/lib/codec"
	"github.com/zpr-foundation/zprproto/lib/packet"
)

// FiveTuple is the classification tuple of one flow as the visa service
// sees it.
type FiveTuple struct {
	SourceAddr addr.Address  `cbor:"sourceAddr"`
	DestAddr   addr.Address  `cbor:"destAddr"`
	L3         packet.L3Type `cbor:"l3Type"`
	L4Proto    uint8         `cbor:"protocol"`
	SourcePort uint16        `cbor:"sourcePort"`
	DestPort   uint16        `cbor:"destPort"`
}

// CommType describes the communication pattern a packet description
// claims.
type CommType uint8

const (
	CommBidirectional CommType = iota
	CommUnidirectional
	CommRerequest
)

func (c CommType) String() string {
	switch c {
	case CommBidirectional:
		return "bidirectional"
	case CommUnidirectional:
		return "unidirectional"
	case CommRerequest:
		return "re-request"
	default:
		return fmt.Sprintf("[unknown comm type %d]", uint8(c))
	}
}

// CommFlag is the communication hint passed with a PacketDesc. For
// re-requests it carries the previous visa ID.
type CommFlag struct {
	Type CommType `cbor:"commType"`
	// PreviousVisaID is set only for CommRerequest.
	PreviousVisaID uint64 `cbor:"previousVisaId,omitempty"`
}

// Rerequest builds the re-request flag carrying the previous visa ID.
func Rerequest(previousVisaID uint64) CommFlag {
	return CommFlag{Type: CommRerequest, PreviousVisaID: previousVisaID}
}

// PacketDesc describes a packet between a sender and receiver,
// submitted to the visa service for a decision.
type PacketDesc struct {
	FiveTuple FiveTuple `cbor:"fiveTuple"`
	CommFlags CommFlag  `cbor:"commFlags"`
}

// WriteTo serializes the description as deterministic CBOR into w.
func (d PacketDesc) WriteTo(w io.Writer) (int64, error) {
	return encodeCBOR(w, d, "encode packet desc")
}

// DecodePacketDesc is the left inverse of PacketDesc.WriteTo.
func DecodePacketDesc(r io.Reader) (PacketDesc, error) {
	var desc PacketDesc
	if err := codec.NewDecoder(r).Decode(&desc); err != nil {
		return PacketDesc{}, fmt.Errorf("decode packet desc: %w", err)
	}
	if desc.FiveTuple.SourceAddr.IsZero() || desc.FiveTuple.DestAddr.IsZero() {
		return PacketDesc{}, fmt.Errorf("%w: packet desc missing addresses", ErrDeserialize)
	}
	return desc, nil
}
