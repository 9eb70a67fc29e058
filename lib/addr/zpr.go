// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package addr

import "net/netip"

// Well-known addresses and ports of the ZPR internal network.

// InternalNetworkPrefixLen is the prefix length of local tun IPv6 ZPR
// addresses.
const InternalNetworkPrefixLen = 32

// InternalNetwork is the ZPR internal IPv6 network.
var InternalNetwork = netip.PrefixFrom(netip.AddrFrom16([16]byte{0xfd, 0x5a, 0x50, 0x52}), InternalNetworkPrefixLen)

// TempLocalAddress is the temporary local address used before a node is
// assigned its ZPR address.
var TempLocalAddress = netip.AddrFrom16([16]byte{0xfc, 0x00, 0x00, 0x5a, 0x00, 0x50, 0x00, 0x52, 0, 0, 0, 0, 0, 0, 0, 1})

const (
	// DefaultTetherPort is the default substrate port for tether
	// connections.
	DefaultTetherPort uint16 = 5000

	// DefaultLinkPort is the default substrate port for link
	// connections.
	DefaultLinkPort uint16 = 5001

	// VisaServiceProto is the IP protocol of the visa service endpoint
	// (TCP).
	VisaServiceProto uint8 = 6

	// VisaServicePort is the visa service port on the internal network.
	VisaServicePort uint16 = 5002
)

// VisaServiceIP is the visa service address: host 1 on the internal
// network.
var VisaServiceIP = netip.AddrFrom16([16]byte{0xfd, 0x5a, 0x50, 0x52, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1})

// VisaService is the visa service address as a canonical Address.
var VisaService = MustFromIP(VisaServiceIP)
