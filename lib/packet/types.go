// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package packet defines the wire-level packet metadata shared by every
// ZPR service that produces or consumes traffic: the scalar protocol
// types (sequence numbers, link and stream IDs, ZPIs) and the Info
// envelope that describes one RPC unit.
package packet

import (
	"fmt"
	"net/netip"
)

// SubstrateAddr is an address on the substrate network a ZPR link rides
// over.
type SubstrateAddr = netip.AddrPort

// Zpi is a ZPR Parameter Index.
type Zpi uint8

const (
	// Zpi0 is used for keying and early ZARP.
	Zpi0 Zpi = 0

	// ZpiEncryptedHeaderFlag distinguishes packets with plaintext
	// payloads.
	ZpiEncryptedHeaderFlag Zpi = 0x80
)

// SeqNum is the abstract message sequence number. The physical sequence
// number included in message headers is a suffix of this.
type SeqNum uint64

// SaID is a Security Association ID. It must fit in 8 bits — it shares
// space with the ZPI.
type SaID uint8

// LinkID identifies a link or docking session.
type LinkID uint32

const (
	// LinkIDUnknown refers to a packet not associated with a link
	// (typically a link setup packet).
	LinkIDUnknown LinkID = 0

	// LocalActorLinkID refers to a node or adapter's local actor.
	LocalActorLinkID LinkID = 1

	// DockLinkID refers on an adapter to the dock it's connected to,
	// or on a node to the node's internal dock.
	DockLinkID LinkID = 2
)

// StreamID identifies a stream within a link.
type StreamID uint32

// NodeToNodeStreamID is reserved for node-to-node / control-plane
// traffic.
const NodeToNodeStreamID StreamID = 0

// VisaID identifies a visa.
type VisaID int32

// SpecialVisaID is the reserved visa ID.
const SpecialVisaID VisaID = 0

// ForwardingEntry is used both for forwarding next-hops and looking up
// forwarding next-hops.
type ForwardingEntry struct {
	Link   LinkID
	Stream StreamID
}

// KmID identifies a key management algorithm within a ZDP key
// management packet.
type KmID uint16

const (
	// KmIDNull is the null key management algorithm.
	KmIDNull KmID = 0

	// KmIDIKEv2 is the IKEv2 algorithm.
	KmIDIKEv2 KmID = 1

	// KmIDNoise is the Noise algorithm.
	KmIDNoise KmID = 2

	// KmIDExperimental marks an experimental algorithm.
	KmIDExperimental KmID = 255
)

// L3Type is the actor packet L3 type. The known values match the IP
// version numbers; other values can arrive from newer peers and are
// carried as-is.
type L3Type uint8

const (
	L3TypeIPv4 L3Type = 4
	L3TypeIPv6 L3Type = 6
)

// L3TypeOf derives the L3 type from an IP address.
func L3TypeOf(ip netip.Addr) L3Type {
	if ip.Unmap().Is4() {
		return L3TypeIPv4
	}
	return L3TypeIPv6
}

func (t L3Type) String() string {
	switch t {
	case L3TypeIPv4:
		return "IPv4"
	case L3TypeIPv6:
		return "IPv6"
	default:
		return fmt.Sprintf("[unknown L3 type %d]", uint8(t))
	}
}

// CompressionMode is the bitmask indicating how an actor packet is
// compressed.
type CompressionMode uint8

const (
	// CompressionDestinationPortPresent marks a destination port in
	// the compressed header.
	CompressionDestinationPortPresent CompressionMode = 0x20

	// CompressionSourcePortPresent marks a source port in the
	// compressed header.
	CompressionSourcePortPresent CompressionMode = 0x40
)

// TCST is a traffic classification specification type.
type TCST uint8

// TCSTIp5Tuple classifies traffic by IP 5-tuple.
const TCSTIp5Tuple TCST = 0

func (t TCST) String() string {
	switch t {
	case TCSTIp5Tuple:
		return "IP 5-Tuple"
	default:
		return fmt.Sprintf("[unknown TCST %d]", uint8(t))
	}
}
