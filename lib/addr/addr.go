// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package addr

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"strings"

	"github.com/zpr-foundation/zprproto/lib/wire"
)

// ErrInvalidAddress is wrapped by every address validation failure.
// Match with errors.Is.
var ErrInvalidAddress = errors.New("invalid address")

// Kind tags the address family of an Address payload. Kind values are
// stable protocol constants — never reused or renumbered. Values
// outside the known set can appear in an Address decoded from the wire
// (forward compatibility); such addresses still compare, hash,
// serialize, and round-trip through their text form, Parse just
// rejects them as raw input.
type Kind uint8

const (
	// KindIPv4 is a 4-byte IPv4 address. The value matches the IP
	// version number, like L3 types elsewhere in the protocol.
	KindIPv4 Kind = 4

	// KindIPv6 is a 16-byte IPv6 address.
	KindIPv6 Kind = 6

	// KindHost is a textual DNS name: 1-255 bytes of lowercase
	// letters, digits, '.', and '-'.
	KindHost Kind = 0x10
)

// String returns the lowercase kind name used in the canonical text
// form, or a bracketed placeholder for unknown kinds.
func (k Kind) String() string {
	switch k {
	case KindIPv4:
		return "ipv4"
	case KindIPv6:
		return "ipv6"
	case KindHost:
		return "host"
	default:
		return fmt.Sprintf("[unknown address kind %d]", uint8(k))
	}
}

// Address is a canonical network endpoint identifier. The zero value is
// the "no address" sentinel (IsZero reports true); every non-zero
// Address was validated at construction. Address is comparable: two
// addresses are equal iff kind and payload are bit-identical.
type Address struct {
	kind Kind
	// payload holds the raw value bytes. Stored as a string so Address
	// is comparable and hashable; the bytes are opaque, not text.
	payload string
}

// Parse validates raw against the rules for kind and returns the
// Address. Failures wrap ErrInvalidAddress.
func Parse(kind Kind, raw []byte) (Address, error) {
	switch kind {
	case KindIPv4:
		if len(raw) != 4 {
			return Address{}, fmt.Errorf("%w: ipv4 payload is %d bytes, want 4", ErrInvalidAddress, len(raw))
		}
	case KindIPv6:
		if len(raw) != 16 {
			return Address{}, fmt.Errorf("%w: ipv6 payload is %d bytes, want 16", ErrInvalidAddress, len(raw))
		}
	case KindHost:
		if err := validateHost(string(raw)); err != nil {
			return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
	default:
		return Address{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidAddress, uint8(kind))
	}
	return Address{kind: kind, payload: string(raw)}, nil
}

// FromIP constructs an Address from a netip.Addr. IPv4-mapped IPv6
// addresses are unmapped first so the same host always gets the same
// canonical form.
func FromIP(ip netip.Addr) (Address, error) {
	ip = ip.Unmap()
	if !ip.IsValid() {
		return Address{}, fmt.Errorf("%w: zero netip.Addr", ErrInvalidAddress)
	}
	if ip.Is4() {
		octets := ip.As4()
		return Address{kind: KindIPv4, payload: string(octets[:])}, nil
	}
	octets := ip.As16()
	return Address{kind: KindIPv6, payload: string(octets[:])}, nil
}

// MustFromIP is FromIP for addresses known valid at compile time
// (well-known constants, tests). Panics on error.
func MustFromIP(ip netip.Addr) Address {
	a, err := FromIP(ip)
	if err != nil {
		panic("addr: " + err.Error())
	}
	return a
}

// FromHost constructs a host-name Address.
func FromHost(name string) (Address, error) {
	return Parse(KindHost, []byte(name))
}

// validateHost enforces the textual address rules: 1-255 bytes, labels
// of lowercase letters, digits, and '-' separated by single dots, no
// label starting or ending with '-'.
func validateHost(name string) error {
	if name == "" {
		return fmt.Errorf("host name is empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("host name is %d bytes, maximum is 255", len(name))
	}
	for _, label := range strings.Split(name, ".") {
		if label == "" {
			return fmt.Errorf("host name %q contains an empty label", name)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("host name %q: label %q starts or ends with '-'", name, label)
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
				return fmt.Errorf("host name %q: invalid character %q", name, c)
			}
		}
	}
	return nil
}

// Kind returns the address kind tag.
func (a Address) Kind() Kind { return a.kind }

// Payload returns a copy of the raw value bytes.
func (a Address) Payload() []byte { return []byte(a.payload) }

// IsZero reports whether this is the uninitialized zero-value Address.
func (a Address) IsZero() bool { return a.kind == 0 && a.payload == "" }

// IP returns the netip.Addr for IPv4/IPv6 addresses. The second return
// is false for other kinds.
func (a Address) IP() (netip.Addr, bool) {
	switch a.kind {
	case KindIPv4:
		return netip.AddrFrom4([4]byte([]byte(a.payload))), true
	case KindIPv6:
		return netip.AddrFrom16([16]byte([]byte(a.payload))), true
	default:
		return netip.Addr{}, false
	}
}

// Compare orders addresses lexicographically on (kind, payload). The
// result is -1, 0, or +1.
func (a Address) Compare(b Address) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	return strings.Compare(a.payload, b.payload)
}

// String returns the canonical text form: "kind:value". IP kinds render
// the standard IP notation; host kinds render the name; kinds outside
// the known set render as "kind<N>:<hex>". Zero-value addresses render
// as "". Every form parses back via ParseText.
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	switch a.kind {
	case KindIPv4, KindIPv6:
		ip, _ := a.IP()
		return a.kind.String() + ":" + ip.String()
	case KindHost:
		return "host:" + a.payload
	default:
		return fmt.Sprintf("kind%d:%x", uint8(a.kind), a.payload)
	}
}

// ParseText parses the canonical text form produced by String,
// including the "kind<N>:<hex>" form for kinds outside the known set,
// so every Address round-trips through its text form.
func ParseText(s string) (Address, error) {
	kindName, value, found := strings.Cut(s, ":")
	if !found {
		return Address{}, fmt.Errorf("%w: %q has no kind prefix", ErrInvalidAddress, s)
	}
	switch kindName {
	case "ipv4", "ipv6":
		ip, err := netip.ParseAddr(value)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		a, err := FromIP(ip)
		if err != nil {
			return Address{}, err
		}
		if a.kind.String() != kindName {
			return Address{}, fmt.Errorf("%w: %q is not an %s address", ErrInvalidAddress, value, kindName)
		}
		return a, nil
	case "host":
		return FromHost(value)
	default:
		return parseNumericKind(kindName, value)
	}
}

// parseNumericKind handles the "kind<N>:<hex>" text form. Known kinds
// written this way are re-validated through Parse; unknown kinds are
// carried opaquely, mirroring ReadAddress.
func parseNumericKind(kindName, value string) (Address, error) {
	digits, ok := strings.CutPrefix(kindName, "kind")
	if !ok {
		return Address{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidAddress, kindName)
	}
	n, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return Address{}, fmt.Errorf("%w: bad kind number %q", ErrInvalidAddress, digits)
	}
	payload, err := hex.DecodeString(value)
	if err != nil {
		return Address{}, fmt.Errorf("%w: bad hex payload %q", ErrInvalidAddress, value)
	}
	switch Kind(n) {
	case KindIPv4, KindIPv6, KindHost:
		return Parse(Kind(n), payload)
	default:
		return Address{kind: Kind(n), payload: string(payload)}, nil
	}
}

// MarshalText implements encoding.TextMarshaler using the canonical
// text form. A zero-value Address marshals as the empty string, the
// symmetric counterpart to UnmarshalText's zero-value behavior.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input
// produces a zero value.
func (a *Address) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = Address{}
		return nil
	}
	parsed, err := ParseText(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// WriteTo serializes the canonical byte form: kind byte, uint16 payload
// length, payload. The encoding is deterministic and injective across
// kinds and payloads, so canonical bytes are safe as unique lookup
// keys.
func (a Address) WriteTo(w io.Writer) (int64, error) {
	written, err := wire.WriteUint8(w, uint8(a.kind))
	if err != nil {
		return written, err
	}
	n, err := wire.WriteBytes(w, []byte(a.payload))
	return written + n, err
}

// CanonicalBytes returns the canonical byte form. Equality on canonical
// bytes coincides with Address equality.
func (a Address) CanonicalBytes() []byte {
	data, err := wire.CanonicalBytes(a)
	if err != nil {
		// Writing to an in-memory buffer cannot fail, and payloads are
		// length-checked at construction.
		panic("addr: canonical encoding failed: " + err.Error())
	}
	return data
}

// ReadAddress is the left inverse of WriteTo. The decoded payload is
// re-validated for known kinds; unknown kinds are carried opaquely so
// newer peers' address families survive a round trip through an older
// binary.
func ReadAddress(r io.Reader) (Address, error) {
	kind, err := wire.ReadUint8(r)
	if err != nil {
		return Address{}, fmt.Errorf("read address kind: %w", err)
	}
	payload, err := wire.ReadBytes(r)
	if err != nil {
		return Address{}, fmt.Errorf("read address payload: %w", err)
	}
	switch Kind(kind) {
	case KindIPv4, KindIPv6, KindHost:
		return Parse(Kind(kind), payload)
	default:
		return Address{kind: Kind(kind), payload: string(payload)}, nil
	}
}
