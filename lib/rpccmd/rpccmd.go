// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpccmd is the closed registry of RPC commands that can be
// sent to a packet handler.
//
// Command codes are stable protocol constants: once assigned, a code is
// never reused or renumbered. Decoding is total — a code outside the
// known set still yields a Command that preserves it (IsKnown reports
// false), so old and new service binaries interoperate without crashing
// on commands the other side hasn't heard of. The write side stays
// closed: ParseCommand accepts only known names.
package rpccmd

import (
	"fmt"
	"io"

	"github.com/zpr-foundation/zprproto/lib/wire"
)

// Command is an RPC command code. The numeric value is the wire
// representation.
type Command uint32

// Known commands. Code 0 is reserved and never assigned.
const (
	CountersReset        Command = 1
	Counters             Command = 2
	Echo                 Command = 3
	PerfSample           Command = 4
	SetCaptureFile       Command = 5
	FlushCaptureFile     Command = 6
	CloseCaptureFile     Command = 7
	SetCaptureProgram    Command = 8
	DeleteCaptureProgram Command = 9
	ConfigureLink        Command = 10
	StartLink            Command = 11
	StopLink             Command = 12
	ResetLink            Command = 13
)

// commandNames holds the kebab-case names used in configuration, logs,
// and the CLI.
var commandNames = map[Command]string{
	CountersReset:        "counters-reset",
	Counters:             "counters",
	Echo:                 "echo",
	PerfSample:           "perf-sample",
	SetCaptureFile:       "set-capture-file",
	FlushCaptureFile:     "flush-capture-file",
	CloseCaptureFile:     "close-capture-file",
	SetCaptureProgram:    "set-capture-program",
	DeleteCaptureProgram: "delete-capture-program",
	ConfigureLink:        "configure-link",
	StartLink:            "start-link",
	StopLink:             "stop-link",
	ResetLink:            "reset-link",
}

var commandCodes = func() map[string]Command {
	codes := make(map[string]Command, len(commandNames))
	for command, name := range commandNames {
		codes[name] = command
	}
	return codes
}()

// FromCode converts a wire code to a Command. It never fails: unknown
// codes are carried as-is for diagnostics and pass-through.
func FromCode(code uint32) Command { return Command(code) }

// Code returns the wire code. For unknown commands this is the
// preserved original code, so FromCode and Code are exact inverses.
func (c Command) Code() uint32 { return uint32(c) }

// IsKnown reports whether c is in the known command set.
func (c Command) IsKnown() bool {
	_, known := commandNames[c]
	return known
}

// String returns the kebab-case command name, or a placeholder carrying
// the raw code for unknown commands.
func (c Command) String() string {
	if name, known := commandNames[c]; known {
		return name
	}
	return fmt.Sprintf("unknown-command-0x%08x", uint32(c))
}

// ParseCommand parses a kebab-case command name. Unlike FromCode, this
// fails for names outside the known set — new commands enter the
// registry here, not through configuration typos.
func ParseCommand(name string) (Command, error) {
	if command, known := commandCodes[name]; known {
		return command, nil
	}
	return 0, fmt.Errorf("unknown rpc command %q", name)
}

// MarshalText implements encoding.TextMarshaler using the kebab-case
// name.
func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Only known names
// parse.
func (c *Command) UnmarshalText(data []byte) error {
	command, err := ParseCommand(string(data))
	if err != nil {
		return err
	}
	*c = command
	return nil
}

// WriteTo serializes the command as 4 big-endian bytes.
func (c Command) WriteTo(w io.Writer) (int64, error) {
	return wire.WriteUint32(w, uint32(c))
}

// ReadCommand is the left inverse of WriteTo. It never fails on unknown
// codes.
func ReadCommand(r io.Reader) (Command, error) {
	code, err := wire.ReadUint32(r)
	if err != nil {
		return 0, fmt.Errorf("read command code: %w", err)
	}
	return FromCode(code), nil
}
