// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package rpccmd_test

import (
	"bytes"
	"testing"

	"github.com/zpr-foundation/zprproto/lib/rpccmd"
)

// TestStableCodes pins every assigned code. A failure here means a
// protocol-breaking renumbering — add new commands, never change these.
func TestStableCodes(t *testing.T) {
	assigned := map[rpccmd.Command]uint32{
		rpccmd.CountersReset:        1,
		rpccmd.Counters:             2,
		rpccmd.Echo:                 3,
		rpccmd.PerfSample:           4,
		rpccmd.SetCaptureFile:       5,
		rpccmd.FlushCaptureFile:     6,
		rpccmd.CloseCaptureFile:     7,
		rpccmd.SetCaptureProgram:    8,
		rpccmd.DeleteCaptureProgram: 9,
		rpccmd.ConfigureLink:        10,
		rpccmd.StartLink:            11,
		rpccmd.StopLink:             12,
		rpccmd.ResetLink:            13,
	}
	for command, code := range assigned {
		if command.Code() != code {
			t.Errorf("%s: code = %d, want %d", command, command.Code(), code)
		}
		if !command.IsKnown() {
			t.Errorf("%s: IsKnown() = false", command)
		}
	}
}

func TestUnknownCodePreserved(t *testing.T) {
	command := rpccmd.FromCode(0xFFFF_FFFF)
	if command.IsKnown() {
		t.Error("0xFFFFFFFF should not be a known command")
	}
	if command.Code() != 0xFFFF_FFFF {
		t.Errorf("Code() = %#x, want 0xffffffff", command.Code())
	}
	if command.String() != "unknown-command-0xffffffff" {
		t.Errorf("String() = %q", command.String())
	}
}

func TestNameRoundtrip(t *testing.T) {
	names := []string{
		"counters-reset", "counters", "echo", "perf-sample",
		"set-capture-file", "flush-capture-file", "close-capture-file",
		"set-capture-program", "delete-capture-program",
		"configure-link", "start-link", "stop-link", "reset-link",
	}
	for _, name := range names {
		command, err := rpccmd.ParseCommand(name)
		if err != nil {
			t.Fatalf("ParseCommand(%q): %v", name, err)
		}
		if command.String() != name {
			t.Errorf("String() = %q, want %q", command.String(), name)
		}
	}

	if _, err := rpccmd.ParseCommand("reboot-universe"); err == nil {
		t.Error("expected error for unknown command name")
	}
	if _, err := rpccmd.ParseCommand("unknown-command-0xffffffff"); err == nil {
		t.Error("the write side stays closed: placeholder names do not parse")
	}
}

func TestWireRoundtrip(t *testing.T) {
	for _, command := range []rpccmd.Command{rpccmd.Echo, rpccmd.FromCode(0xDEADBEEF)} {
		var buf bytes.Buffer
		n, err := command.WriteTo(&buf)
		if err != nil {
			t.Fatalf("WriteTo(%v): %v", command, err)
		}
		if n != 4 {
			t.Errorf("WriteTo wrote %d bytes, want 4", n)
		}
		decoded, err := rpccmd.ReadCommand(&buf)
		if err != nil {
			t.Fatalf("ReadCommand: %v", err)
		}
		if decoded != command {
			t.Errorf("roundtrip mismatch: got %v, want %v", decoded, command)
		}
	}
}
