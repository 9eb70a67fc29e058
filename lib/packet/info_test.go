// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package packet_test

import (
	"bytes"
	"errors"
	"net/netip"
	"testing"

	"github.com/zpr-foundation/zprproto/lib/addr"
	"github.com/zpr-foundation/zprproto/lib/dn"
	"github.com/zpr-foundation/zprproto/lib/packet"
	"github.com/zpr-foundation/zprproto/lib/rpccmd"
)

func testInfo(t *testing.T) packet.Info {
	t.Helper()
	source := packet.Endpoint{
		Addr: addr.MustFromIP(netip.MustParseAddr("fd5a:5052::10")),
		Name: dn.MustParse("O=acme,CN=client"),
	}
	destination := packet.Endpoint{
		Addr: addr.VisaService,
		Name: dn.VisaServiceDN,
	}
	return packet.Build(source, destination, rpccmd.Echo).
		WithSequence(42).
		WithLink(packet.DockLinkID, packet.NodeToNodeStreamID).
		WithFlags(0x0001)
}

func TestBuildIsPure(t *testing.T) {
	info := testInfo(t)
	if info.Command != rpccmd.Echo {
		t.Errorf("Command = %v", info.Command)
	}
	if info.Length != 0 {
		t.Errorf("fresh Info has Length = %d, want 0", info.Length)
	}
}

func TestWithMethodsCopy(t *testing.T) {
	original := testInfo(t)
	modified := original.WithLength(10).WithSequence(99)

	if original.Length != 0 || original.Sequence != 42 {
		t.Error("With* methods mutated the original value")
	}
	if modified.Length != 10 || modified.Sequence != 99 {
		t.Errorf("modified copy = %+v", modified)
	}
}

func TestWriteToDeterministic(t *testing.T) {
	info := testInfo(t).WithLength(8)

	var first, second bytes.Buffer
	if _, err := info.WriteTo(&first); err != nil {
		t.Fatalf("first WriteTo: %v", err)
	}
	if _, err := info.WriteTo(&second); err != nil {
		t.Fatalf("second WriteTo: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("non-deterministic encoding: %x != %x", first.Bytes(), second.Bytes())
	}
}

func TestReadInfoRoundtrip(t *testing.T) {
	info := testInfo(t).WithLength(1500)

	var buf bytes.Buffer
	written, err := info.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if written != int64(buf.Len()) {
		t.Errorf("WriteTo reported %d bytes, buffer has %d", written, buf.Len())
	}

	decoded, err := packet.ReadInfo(&buf)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if decoded != info {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", decoded, info)
	}
}

func TestReadInfoUnknownCommand(t *testing.T) {
	// A newer peer's command code must decode without failing.
	info := testInfo(t)
	info.Command = rpccmd.FromCode(0xFFFF_FFFF)

	var buf bytes.Buffer
	if _, err := info.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	decoded, err := packet.ReadInfo(&buf)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if decoded.Command.Code() != 0xFFFF_FFFF {
		t.Errorf("Command.Code() = %#x", decoded.Command.Code())
	}
	if decoded.Command.IsKnown() {
		t.Error("unknown command decoded as known")
	}
}

func TestVerifyPayload(t *testing.T) {
	info := testInfo(t).WithLength(10)

	if err := info.VerifyPayload(make([]byte, 10)); err != nil {
		t.Errorf("VerifyPayload(matching): %v", err)
	}

	err := info.VerifyPayload(make([]byte, 8))
	if err == nil {
		t.Fatal("expected error for 8-byte payload with declared length 10")
	}
	if !errors.Is(err, packet.ErrLengthMismatch) {
		t.Errorf("error %v does not wrap ErrLengthMismatch", err)
	}
}

func TestL3TypeOf(t *testing.T) {
	if got := packet.L3TypeOf(netip.MustParseAddr("10.0.0.1")); got != packet.L3TypeIPv4 {
		t.Errorf("L3TypeOf(v4) = %v", got)
	}
	if got := packet.L3TypeOf(netip.MustParseAddr("fd5a:5052::1")); got != packet.L3TypeIPv6 {
		t.Errorf("L3TypeOf(v6) = %v", got)
	}
	if got := packet.L3TypeOf(netip.MustParseAddr("::ffff:10.0.0.1")); got != packet.L3TypeIPv4 {
		t.Errorf("L3TypeOf(mapped v4) = %v", got)
	}
	if packet.L3Type(9).String() != "[unknown L3 type 9]" {
		t.Errorf("String() = %q", packet.L3Type(9).String())
	}
}
