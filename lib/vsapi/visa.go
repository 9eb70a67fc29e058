// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package vsapi

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/zpr-foundation/zprproto/lib/addr"
	"github.com/zpr-foundation/zprproto/lib/codec"
	"github.com/zpr-foundation/zprproto/lib/packet"
	"github.com/zpr-foundation/zprproto/lib/wire"
)

// ErrDeserialize is wrapped when a vsapi value decoded from the wire is
// missing required fields or is structurally invalid.
var ErrDeserialize = errors.New("vsapi deserialization error")

// IP protocol numbers used in five-tuples and dock PEPs.
const (
	ProtoICMP     uint8 = 1
	ProtoTCP      uint8 = 6
	ProtoUDP      uint8 = 17
	ProtoIPv6ICMP uint8 = 58
)

// KeyFormat identifies the session key encoding.
type KeyFormat uint8

// KeyFormatZprKF01 is the only assigned key format.
const KeyFormatZprKF01 KeyFormat = 1

// KeySet carries the session key for a visa, encrypted separately for
// each end. The key bytes are opaque to this library — sealing and
// unsealing belong to the nodes.
type KeySet struct {
	Format KeyFormat `cbor:"format"`
	// IngressKey is the session key encrypted for the ingress node to
	// read.
	IngressKey []byte `cbor:"ingressKey"`
	// EgressKey is the session key encrypted for the egress node to
	// read.
	EgressKey []byte `cbor:"egressKey"`
}

// NewKeySet builds a KeySet in the default format, copying both keys.
func NewKeySet(ingress, egress []byte) KeySet {
	return KeySet{
		Format:     KeyFormatZprKF01,
		IngressKey: append([]byte(nil), ingress...),
		EgressKey:  append([]byte(nil), egress...),
	}
}

// EndpointT constrains which side of a connection a PEP applies to.
type EndpointT uint8

const (
	EndpointAny EndpointT = iota
	EndpointServer
	EndpointClient
)

func (e EndpointT) String() string {
	switch e {
	case EndpointAny:
		return "any"
	case EndpointServer:
		return "server"
	case EndpointClient:
		return "client"
	default:
		return fmt.Sprintf("[unknown endpoint type %d]", uint8(e))
	}
}

// TcpUdpPep is the policy enforcement point parameters for TCP and UDP
// docks.
type TcpUdpPep struct {
	SourcePort uint16    `cbor:"sourcePort"`
	DestPort   uint16    `cbor:"destPort"`
	Endpoint   EndpointT `cbor:"endpoint"`
}

// IcmpPep is the policy enforcement point parameters for ICMP docks:
// the allowed ICMP type and code.
type IcmpPep struct {
	Type uint8 `cbor:"icmpType"`
	Code uint8 `cbor:"icmpCode"`
}

// DockPep is the dock policy enforcement point: exactly one of TcpUdp
// or Icmp is set, discriminated by Proto.
type DockPep struct {
	// Proto is the IP protocol number: ProtoTCP, ProtoUDP, or
	// ProtoICMP.
	Proto  uint8      `cbor:"proto"`
	TcpUdp *TcpUdpPep `cbor:"tcpudp,omitempty"`
	Icmp   *IcmpPep   `cbor:"icmp,omitempty"`
}

// TCPPep builds a TCP dock PEP.
func TCPPep(pep TcpUdpPep) DockPep {
	return DockPep{Proto: ProtoTCP, TcpUdp: &pep}
}

// UDPPep builds a UDP dock PEP.
func UDPPep(pep TcpUdpPep) DockPep {
	return DockPep{Proto: ProtoUDP, TcpUdp: &pep}
}

// ICMPPep builds an ICMP dock PEP.
func ICMPPep(pep IcmpPep) DockPep {
	return DockPep{Proto: ProtoICMP, Icmp: &pep}
}

// Validate checks the union discipline: the branch matching Proto is
// set and the other is nil.
func (d DockPep) Validate() error {
	switch d.Proto {
	case ProtoTCP, ProtoUDP:
		if d.TcpUdp == nil || d.Icmp != nil {
			return fmt.Errorf("%w: dock PEP proto %d without tcp/udp args", ErrDeserialize, d.Proto)
		}
	case ProtoICMP:
		if d.Icmp == nil || d.TcpUdp != nil {
			return fmt.Errorf("%w: ICMP dock PEP without ICMP args", ErrDeserialize)
		}
	default:
		return fmt.Errorf("%w: unknown dock PEP proto %d", ErrDeserialize, d.Proto)
	}
	return nil
}

// Constraints are optional usage limits attached to a visa.
type Constraints struct {
	// BandwidthLimited reports whether BandwidthLimitBps applies.
	BandwidthLimited  bool  `cbor:"bw"`
	BandwidthLimitBps int64 `cbor:"bwLimitBps"`
	// DataCapID is empty when there is no data cap.
	DataCapID    string `cbor:"dataCapId,omitempty"`
	DataCapBytes int64  `cbor:"dataCapBytes,omitempty"`
	// DataCapAffinityAddr is the tether address of the service actor
	// accounting the cap.
	DataCapAffinityAddr addr.Address `cbor:"dataCapAffinityAddr,omitempty"`
}

// Visa is a grant of connectivity between two ZPR addresses, issued by
// the visa service.
type Visa struct {
	IssuerID uint64 `cbor:"issuerId"`
	Config   int64  `cbor:"config"`
	// Expiration is milliseconds since the Unix epoch, the visa
	// service's native timestamp format.
	Expiration  uint64       `cbor:"expiration"`
	SourceAddr  addr.Address `cbor:"sourceAddr"`
	DestAddr    addr.Address `cbor:"destAddr"`
	DockPep     DockPep      `cbor:"dockPep"`
	SessionKey  KeySet       `cbor:"sessionKey"`
	Constraints *Constraints `cbor:"cons,omitempty"`
}

// ExpirationTimestamp converts a wall-clock time to the visa service's
// millisecond timestamp. Times before the epoch map to 0.
func ExpirationTimestamp(t time.Time) uint64 {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

// ExpirationTime converts the visa service's millisecond timestamp back
// to a wall-clock time.
func ExpirationTime(ms uint64) time.Time {
	return time.UnixMilli(int64(ms))
}

// Expires returns the visa expiration as a wall-clock time.
func (v Visa) Expires() time.Time { return ExpirationTime(v.Expiration) }

// IsExpired reports whether the visa has expired as of now.
func (v Visa) IsExpired(now time.Time) bool {
	return !now.Before(v.Expires())
}

// FiveTuple derives the visa's traffic five-tuple. For ICMP docks the
// port pair carries the ICMP type and code, matching the classification
// convention used by packet handlers.
func (v Visa) FiveTuple() FiveTuple {
	l3 := packet.L3TypeIPv6
	if v.SourceAddr.Kind() == addr.KindIPv4 {
		l3 = packet.L3TypeIPv4
	}

	var l4 uint8
	var sourcePort, destPort uint16
	switch {
	case v.DockPep.Proto == ProtoICMP && v.DockPep.Icmp != nil:
		l4 = ProtoICMP
		if l3 == packet.L3TypeIPv6 {
			l4 = ProtoIPv6ICMP
		}
		sourcePort = uint16(v.DockPep.Icmp.Type)
		destPort = uint16(v.DockPep.Icmp.Code)
	case v.DockPep.TcpUdp != nil:
		l4 = v.DockPep.Proto
		sourcePort = v.DockPep.TcpUdp.SourcePort
		destPort = v.DockPep.TcpUdp.DestPort
	}

	return FiveTuple{
		SourceAddr: v.SourceAddr,
		DestAddr:   v.DestAddr,
		L3:         l3,
		L4Proto:    l4,
		SourcePort: sourcePort,
		DestPort:   destPort,
	}
}

// WriteTo serializes the visa as deterministic CBOR into w.
func (v Visa) WriteTo(w io.Writer) (int64, error) {
	return encodeCBOR(w, v, "encode visa")
}

// DecodeVisa is the left inverse of Visa.WriteTo. The dock PEP union is
// validated; source and destination addresses are required.
func DecodeVisa(r io.Reader) (Visa, error) {
	var visa Visa
	if err := codec.NewDecoder(r).Decode(&visa); err != nil {
		return Visa{}, fmt.Errorf("decode visa: %w", err)
	}
	if visa.SourceAddr.IsZero() {
		return Visa{}, fmt.Errorf("%w: visa has no source address", ErrDeserialize)
	}
	if visa.DestAddr.IsZero() {
		return Visa{}, fmt.Errorf("%w: visa has no destination address", ErrDeserialize)
	}
	if err := visa.DockPep.Validate(); err != nil {
		return Visa{}, err
	}
	return visa, nil
}

// VisaOp is a visa service instruction to a node: exactly one of Grant
// or Revoke is set.
type VisaOp struct {
	Grant *Visa `cbor:"grant,omitempty"`
	// Revoke carries the issuer ID of the visa to revoke.
	Revoke *uint64 `cbor:"revokeVisaId,omitempty"`
}

// GrantOp wraps a visa grant.
func GrantOp(visa Visa) VisaOp { return VisaOp{Grant: &visa} }

// RevokeOp wraps a revocation.
func RevokeOp(issuerID uint64) VisaOp { return VisaOp{Revoke: &issuerID} }

// Validate checks that exactly one branch is set.
func (op VisaOp) Validate() error {
	if (op.Grant == nil) == (op.Revoke == nil) {
		return fmt.Errorf("%w: visa op must be exactly one of grant or revoke", ErrDeserialize)
	}
	if op.Grant != nil {
		return op.Grant.DockPep.Validate()
	}
	return nil
}

// WriteTo serializes the op as deterministic CBOR into w.
func (op VisaOp) WriteTo(w io.Writer) (int64, error) {
	if err := op.Validate(); err != nil {
		return 0, err
	}
	return encodeCBOR(w, op, "encode visa op")
}

// DecodeVisaOp is the left inverse of VisaOp.WriteTo.
func DecodeVisaOp(r io.Reader) (VisaOp, error) {
	var op VisaOp
	if err := codec.NewDecoder(r).Decode(&op); err != nil {
		return VisaOp{}, fmt.Errorf("decode visa op: %w", err)
	}
	if err := op.Validate(); err != nil {
		return VisaOp{}, err
	}
	return op, nil
}

// encodeCBOR writes v as deterministic CBOR, reporting the byte count
// and wrapping sink failures.
func encodeCBOR(w io.Writer, v any, op string) (int64, error) {
	counting := wire.NewCountingWriter(w)
	if err := codec.NewEncoder(counting).Encode(v); err != nil {
		return counting.Count(), &wire.Error{Op: op, Err: err}
	}
	return counting.Count(), nil
}
