// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package vsapi

import (
	"net/netip"
	"net/url"
	"strconv"
	"time"

	"github.com/zpr-foundation/zprproto/lib/addr"
)

// ServiceDescriptor describes one authentication service actor. The
// only service type currently assigned is actor authentication, so no
// type field is carried.
type ServiceDescriptor struct {
	ServiceID  string       `cbor:"serviceId"`
	ServiceURI string       `cbor:"serviceUri"`
	ZprAddr    addr.Address `cbor:"zprAddr"`
}

// SocketAddr extracts the service's socket address: the ZPR address
// paired with the port from the service URI. It returns false when the
// URI does not parse, carries no port, or the ZPR address is not an IP.
func (d ServiceDescriptor) SocketAddr() (netip.AddrPort, bool) {
	uri, err := url.Parse(d.ServiceURI)
	if err != nil {
		return netip.AddrPort{}, false
	}
	portText := uri.Port()
	if portText == "" {
		return netip.AddrPort{}, false
	}
	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		return netip.AddrPort{}, false
	}
	ip, ok := d.ZprAddr.IP()
	if !ok {
		return netip.AddrPort{}, false
	}
	return netip.AddrPortFrom(ip, uint16(port)), true
}

// AuthServicesList is the cached set of authentication services a node
// knows about, with an optional expiration.
type AuthServicesList struct {
	// Expiration is the zero time when the list never expires.
	Expiration time.Time           `cbor:"expiration"`
	Services   []ServiceDescriptor `cbor:"services"`
}

// Update replaces the list contents and expiration.
func (l *AuthServicesList) Update(expiration time.Time, services []ServiceDescriptor) {
	l.Expiration = expiration
	l.Services = services
}

// IsExpired reports whether the list has expired as of now. A list
// with the zero expiration never expires.
func (l *AuthServicesList) IsExpired(now time.Time) bool {
	if l.Expiration.IsZero() {
		return false
	}
	return !now.Before(l.Expiration)
}

// IsEmpty reports whether the list carries no services.
func (l *AuthServicesList) IsEmpty() bool {
	return len(l.Services) == 0
}

// IsValid reports whether the list is usable: non-empty and not
// expired.
func (l *AuthServicesList) IsValid(now time.Time) bool {
	return !l.IsEmpty() && !l.IsExpired(now)
}
