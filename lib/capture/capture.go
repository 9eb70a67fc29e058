// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/zpr-foundation/zprproto/lib/codec"
	"github.com/zpr-foundation/zprproto/lib/packet"
	"github.com/zpr-foundation/zprproto/lib/wire"
)

// ErrBadHeader is wrapped when a capture file does not start with the
// expected magic or names an unknown compression.
var ErrBadHeader = errors.New("bad capture file header")

var magic = [8]byte{'Z', 'P', 'R', 'C', 'A', 'P', '0', '1'}

// Compression selects how record streams are compressed.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
	CompressionLZ4  Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("[unknown compression %d]", uint8(c))
	}
}

// Record is one captured packet as stored in the file.
type Record struct {
	Seq uint64 `cbor:"seq"`
	// Info is the packet header's canonical bytes.
	Info     []byte `cbor:"info"`
	Payload  []byte `cbor:"payload"`
	UnixNano int64  `cbor:"unixNano"`
}

// Entry is one captured packet with the header decoded.
type Entry struct {
	Seq     uint64
	Info    packet.Info
	Payload []byte
	Time    time.Time
}

// flusher is the subset of the compressor writers used by Flush.
type flusher interface {
	Flush() error
}

// Writer appends captured packets to a capture file. Not safe for
// concurrent use.
type Writer struct {
	sink       io.Writer
	compressor io.WriteCloser
	encoder    *codec.Encoder
	seq        uint64
}

// NewWriter writes the capture file header to w and returns a Writer
// appending records through the selected compressor. Close flushes and
// finalizes the compressed stream but does not close w.
func NewWriter(w io.Writer, compression Compression) (*Writer, error) {
	header := append(append([]byte(nil), magic[:]...), byte(compression))
	if _, err := w.Write(header); err != nil {
		return nil, &wire.Error{Op: "write capture header", Err: err}
	}

	var compressor io.WriteCloser
	switch compression {
	case CompressionNone:
		compressor = nopWriteCloser{w}
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		compressor = zw
	case CompressionLZ4:
		compressor = lz4.NewWriter(w)
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrBadHeader, compression)
	}

	return &Writer{
		sink:       w,
		compressor: compressor,
		encoder:    codec.NewEncoder(compressor),
	}, nil
}

// Append captures one packet. The header must declare the payload's
// actual length; a mismatch rejects the packet without writing.
func (w *Writer) Append(info packet.Info, payload []byte, when time.Time) error {
	if err := info.VerifyPayload(payload); err != nil {
		return err
	}
	headerBytes, err := wire.CanonicalBytes(info)
	if err != nil {
		return fmt.Errorf("canonical header: %w", err)
	}

	w.seq++
	record := Record{
		Seq:      w.seq,
		Info:     headerBytes,
		Payload:  payload,
		UnixNano: when.UnixNano(),
	}
	if err := w.encoder.Encode(record); err != nil {
		return &wire.Error{Op: "encode capture record", Err: err}
	}
	return nil
}

// Flush pushes buffered compressed data to the underlying writer,
// serving the flush-capture-file command. Records appended so far
// become readable.
func (w *Writer) Flush() error {
	if f, ok := w.compressor.(flusher); ok {
		if err := f.Flush(); err != nil {
			return &wire.Error{Op: "flush capture", Err: err}
		}
	}
	return nil
}

// Close finalizes the compressed stream, serving the
// close-capture-file command. The underlying writer stays open.
func (w *Writer) Close() error {
	if err := w.compressor.Close(); err != nil {
		return &wire.Error{Op: "close capture", Err: err}
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Reader iterates the records of a capture file.
type Reader struct {
	decoder     *codec.Decoder
	compression Compression
}

// NewReader checks the capture file header and returns a Reader over
// its records.
func NewReader(r io.Reader) (*Reader, error) {
	var header [9]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if !bytes.Equal(header[:8], magic[:]) {
		return nil, fmt.Errorf("%w: magic %q", ErrBadHeader, header[:8])
	}

	compression := Compression(header[8])
	var stream io.Reader
	switch compression {
	case CompressionNone:
		stream = r
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		stream = zr
	case CompressionLZ4:
		stream = lz4.NewReader(r)
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrBadHeader, compression)
	}

	return &Reader{
		decoder:     codec.NewDecoder(stream),
		compression: compression,
	}, nil
}

// Compression reports the compression named in the file header.
func (r *Reader) Compression() Compression { return r.compression }

// Next returns the next captured packet, or io.EOF at the end of the
// file. A record whose header length disagrees with its payload is
// rejected with packet.ErrLengthMismatch.
func (r *Reader) Next() (Entry, error) {
	var record Record
	if err := r.decoder.Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("decode capture record: %w", err)
	}

	info, err := packet.ReadInfo(bytes.NewReader(record.Info))
	if err != nil {
		return Entry{}, fmt.Errorf("record %d header: %w", record.Seq, err)
	}
	if err := info.VerifyPayload(record.Payload); err != nil {
		return Entry{}, fmt.Errorf("record %d: %w", record.Seq, err)
	}

	return Entry{
		Seq:     record.Seq,
		Info:    info,
		Payload: record.Payload,
		Time:    time.Unix(0, record.UnixNano),
	}, nil
}
