// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package packet

import (
	"errors"
	"fmt"
	"io"

	"github.com/zpr-foundation/zprproto/lib/addr"
	"github.com/zpr-foundation/zprproto/lib/dn"
	"github.com/zpr-foundation/zprproto/lib/rpccmd"
	"github.com/zpr-foundation/zprproto/lib/wire"
)

// ErrLengthMismatch is wrapped when a packet's declared payload length
// does not match the actual payload. The packet is rejected; the
// process carries on. Match with errors.Is.
var ErrLengthMismatch = errors.New("packet length mismatch")

// Endpoint names one side of an RPC unit: the network address plus the
// distinguished name of the principal behind it. Either half may be
// zero when not yet known (e.g., the DN before authentication).
type Endpoint struct {
	Addr addr.Address
	Name dn.DN
}

// WriteTo serializes the address followed by the DN.
func (e Endpoint) WriteTo(w io.Writer) (int64, error) {
	written, err := e.Addr.WriteTo(w)
	if err != nil {
		return written, err
	}
	n, err := e.Name.WriteTo(w)
	return written + n, err
}

// readEndpoint is the left inverse of Endpoint.WriteTo.
func readEndpoint(r io.Reader) (Endpoint, error) {
	address, err := addr.ReadAddress(r)
	if err != nil {
		return Endpoint{}, err
	}
	name, err := dn.ReadDN(r)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Addr: address, Name: name}, nil
}

// Info is the metadata envelope for one RPC unit. It references its
// identifiers by value and has no identity beyond its fields: created
// per outbound unit, serialized once, then discarded.
//
// Info is an immutable value — the With* methods return modified
// copies. Producers must set Length to the true serialized payload
// length (WithLength) before transmission; consumers independently
// verify with VerifyPayload.
type Info struct {
	Source      Endpoint
	Destination Endpoint
	Command     rpccmd.Command
	Sequence    SeqNum
	Link        LinkID
	Stream      StreamID
	Flags       uint16
	Length      uint32
}

// Build constructs an Info. It is a pure constructor: no validation
// happens here because only the serializer knows the final wire layout.
func Build(source, destination Endpoint, command rpccmd.Command) Info {
	return Info{Source: source, Destination: destination, Command: command}
}

// WithSequence returns a copy with the sequence number set.
func (i Info) WithSequence(seq SeqNum) Info {
	i.Sequence = seq
	return i
}

// WithLink returns a copy with the link and stream set.
func (i Info) WithLink(link LinkID, stream StreamID) Info {
	i.Link = link
	i.Stream = stream
	return i
}

// WithFlags returns a copy with the flags set.
func (i Info) WithFlags(flags uint16) Info {
	i.Flags = flags
	return i
}

// WithLength returns a copy with the declared payload length set.
// Callers must pass the true serialized length of the accompanying
// payload — a lie here is a caller bug this type cannot detect, and
// the consumer will reject the packet (see VerifyPayload).
func (i Info) WithLength(payloadLen int) Info {
	i.Length = uint32(payloadLen)
	return i
}

// VerifyPayload checks the declared length against the actual payload.
// Consumers must call this before processing the payload further. A
// mismatch wraps ErrLengthMismatch and is fatal to this packet only.
func (i Info) VerifyPayload(payload []byte) error {
	if int(i.Length) != len(payload) {
		return fmt.Errorf("%w: header declares %d bytes, payload is %d", ErrLengthMismatch, i.Length, len(payload))
	}
	return nil
}

// WriteTo serializes the envelope in a fixed big-endian layout:
// command, sequence, link, stream, flags, length, source endpoint,
// destination endpoint. Deterministic: the same Info always produces
// identical bytes.
func (i Info) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, step := range []func(io.Writer) (int64, error){
		i.Command.WriteTo,
		func(w io.Writer) (int64, error) { return wire.WriteUint64(w, uint64(i.Sequence)) },
		func(w io.Writer) (int64, error) { return wire.WriteUint32(w, uint32(i.Link)) },
		func(w io.Writer) (int64, error) { return wire.WriteUint32(w, uint32(i.Stream)) },
		func(w io.Writer) (int64, error) { return wire.WriteUint16(w, i.Flags) },
		func(w io.Writer) (int64, error) { return wire.WriteUint32(w, i.Length) },
		i.Source.WriteTo,
		i.Destination.WriteTo,
	} {
		n, err := step(w)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// ReadInfo is the left inverse of WriteTo.
func ReadInfo(r io.Reader) (Info, error) {
	command, err := rpccmd.ReadCommand(r)
	if err != nil {
		return Info{}, err
	}
	sequence, err := wire.ReadUint64(r)
	if err != nil {
		return Info{}, fmt.Errorf("read sequence: %w", err)
	}
	link, err := wire.ReadUint32(r)
	if err != nil {
		return Info{}, fmt.Errorf("read link: %w", err)
	}
	stream, err := wire.ReadUint32(r)
	if err != nil {
		return Info{}, fmt.Errorf("read stream: %w", err)
	}
	flags, err := wire.ReadUint16(r)
	if err != nil {
		return Info{}, fmt.Errorf("read flags: %w", err)
	}
	length, err := wire.ReadUint32(r)
	if err != nil {
		return Info{}, fmt.Errorf("read length: %w", err)
	}
	source, err := readEndpoint(r)
	if err != nil {
		return Info{}, fmt.Errorf("read source endpoint: %w", err)
	}
	destination, err := readEndpoint(r)
	if err != nil {
		return Info{}, fmt.Errorf("read destination endpoint: %w", err)
	}
	return Info{
		Source:      source,
		Destination: destination,
		Command:     command,
		Sequence:    SeqNum(sequence),
		Link:        LinkID(link),
		Stream:      StreamID(stream),
		Flags:       flags,
		Length:      length,
	}, nil
}
