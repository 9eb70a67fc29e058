// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/zeebo/blake3"
)

// Error wraps a sink failure during serialization. The original cause is
// never lost — callers can reach it with errors.As / errors.Is:
//
//	var wireErr *wire.Error
//	if errors.As(err, &wireErr) { ... wireErr.Op, wireErr.Err ... }
type Error struct {
	// Op names the write that failed (e.g., "write uint32").
	Op string
	// Err is the underlying sink error.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("wire: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// WriteUint8 writes a single byte to w.
func WriteUint8(w io.Writer, value uint8) (int64, error) {
	return writeFull(w, []byte{value}, "write uint8")
}

// WriteUint16 writes value to w in big-endian byte order.
func WriteUint16(w io.Writer, value uint16) (int64, error) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], value)
	return writeFull(w, buf[:], "write uint16")
}

// WriteUint32 writes value to w in big-endian byte order.
func WriteUint32(w io.Writer, value uint32) (int64, error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], value)
	return writeFull(w, buf[:], "write uint32")
}

// WriteUint64 writes value to w in big-endian byte order.
func WriteUint64(w io.Writer, value uint64) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return writeFull(w, buf[:], "write uint64")
}

// WriteBytes writes data to w with a big-endian uint16 length prefix.
// Data longer than 65535 bytes is rejected — protocol payloads that
// need the prefix are all bounded well below it.
func WriteBytes(w io.Writer, data []byte) (int64, error) {
	if len(data) > math.MaxUint16 {
		return 0, &Error{Op: "write bytes", Err: fmt.Errorf("length %d exceeds %d", len(data), math.MaxUint16)}
	}
	written, err := WriteUint16(w, uint16(len(data)))
	if err != nil {
		return written, err
	}
	n, err := writeFull(w, data, "write bytes")
	return written + n, err
}

// WriteString writes s to w with a big-endian uint16 length prefix.
func WriteString(w io.Writer, s string) (int64, error) {
	return WriteBytes(w, []byte(s))
}

// writeFull writes data to w and wraps short writes and sink errors in
// *Error.
func writeFull(w io.Writer, data []byte, op string) (int64, error) {
	n, err := w.Write(data)
	if err != nil {
		return int64(n), &Error{Op: op, Err: err}
	}
	if n != len(data) {
		return int64(n), &Error{Op: op, Err: io.ErrShortWrite}
	}
	return int64(n), nil
}

// ReadUint8 is the left inverse of WriteUint8.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 is the left inverse of WriteUint16.
func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadUint32 is the left inverse of WriteUint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadUint64 is the left inverse of WriteUint64.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadBytes is the left inverse of WriteBytes.
func ReadBytes(r io.Reader) ([]byte, error) {
	length, err := ReadUint16(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadString is the left inverse of WriteString.
func ReadString(r io.Reader) (string, error) {
	data, err := ReadBytes(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CanonicalBytes renders v to its canonical byte form. The in-memory
// sink cannot fail, so any error comes from v's own WriteTo logic.
func CanonicalBytes(v io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := v.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest returns the BLAKE3 digest of v's canonical bytes. This is the
// key form for maps and the basis for integrity checks: identical
// logical values always digest identically (WriteTo is deterministic),
// and distinct values digest differently because canonical bytes are
// injective per type.
func Digest(v io.WriterTo) ([32]byte, error) {
	hasher := blake3.New()
	var digest [32]byte
	if _, err := v.WriteTo(hasher); err != nil {
		return digest, err
	}
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// CountingWriter wraps a sink and counts bytes written through it. Used
// by WriteTo implementations that serialize through an encoder which
// does not report byte counts itself (e.g., the CBOR stream encoder).
type CountingWriter struct {
	w io.Writer
	n int64
}

// NewCountingWriter returns a CountingWriter over w.
func NewCountingWriter(w io.Writer) *CountingWriter {
	return &CountingWriter{w: w}
}

func (cw *CountingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Count returns the number of bytes written so far.
func (cw *CountingWriter) Count() int64 { return cw.n }
