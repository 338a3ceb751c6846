// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// compactThreshold is the consumed-prefix size above which the buffer is
	// shifted down even if unconsumed data remains
	compactThreshold = 64 * 1024
	// maxRetainedCapacity caps the backing array kept around after the buffer drains
	maxRetainedCapacity = 1024 * 1024
)

// Decoder incrementally extracts envelopes from a byte stream that may arrive
// in arbitrarily sized chunks. It is not safe for concurrent use; each peer
// connection owns one
type Decoder struct {
	magic      uint32
	maxPayload uint32
	buf        []byte
	off        int
	pending    *Header
}

// NewDecoder returns a Decoder that accepts envelopes for the given network magic
func NewDecoder(magic uint32) *Decoder {
	return &Decoder{
		magic:      magic,
		maxPayload: MaxPayloadSize,
	}
}

// Write appends a chunk of transport data to the buffer. It never fails
func (d *Decoder) Write(p []byte) (int, error) {
	d.buf = append(d.buf, p...)
	return len(p), nil
}

// Buffered returns the number of unconsumed bytes
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.off
}

// Pending returns the header of the envelope currently waiting for the rest of
// its payload, if any
func (d *Decoder) Pending() (Header, bool) {
	if d.pending == nil {
		return Header{}, false
	}
	return *d.pending, true
}

// Progress reports how much of the pending envelope has been buffered, as a
// percentage. It returns 0 when no envelope is pending
func (d *Decoder) Progress() int {
	if d.pending == nil {
		return 0
	}
	expected := int64(HeaderSize) + int64(d.pending.Length)
	pct := 100 * int64(d.Buffered()) / expected
	if pct > 100 {
		pct = 100
	}
	return int(pct)
}

// Next extracts the next whole envelope from the buffer.
//
// ErrIncomplete means more data is needed and nothing was consumed beyond an
// already parsed header. ErrChecksumMismatch and ErrInvalidCommand mean one
// envelope was consumed and dropped. ErrInvalidMagic and ErrPayloadTooLarge
// mean the header could not be trusted and the decoder skipped ahead to the
// next candidate magic. In every case the caller may keep calling Next
func (d *Decoder) Next() (*Envelope, error) {
	if d.pending == nil {
		if d.Buffered() < HeaderSize {
			return nil, ErrIncomplete
		}
		hdr := parseHeader(d.buf[d.off : d.off+HeaderSize])
		if hdr.Magic != d.magic {
			d.resync()
			return nil, fmt.Errorf(
				"%w: got %#08x, expected %#08x",
				ErrInvalidMagic,
				hdr.Magic,
				d.magic,
			)
		}
		if hdr.Length > d.maxPayload {
			d.resync()
			return nil, fmt.Errorf(
				"%w: %s announced %d bytes, max %d",
				ErrPayloadTooLarge,
				hdr.Command,
				hdr.Length,
				d.maxPayload,
			)
		}
		d.pending = &hdr
	}
	expected := HeaderSize + int(d.pending.Length)
	if d.Buffered() < expected {
		return nil, ErrIncomplete
	}
	hdr := *d.pending
	d.pending = nil
	// The payload must be copied out before compaction reuses the backing array
	payload := make([]byte, hdr.Length)
	copy(payload, d.buf[d.off+HeaderSize:d.off+expected])
	d.off += expected
	d.compact()
	if !validCommand(hdr.Command) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommand, hdr.Command)
	}
	if sum := Checksum(payload); sum != hdr.Checksum {
		return nil, fmt.Errorf(
			"%w: %s: got %#08x, expected %#08x",
			ErrChecksumMismatch,
			hdr.Command,
			sum,
			hdr.Checksum,
		)
	}
	return &Envelope{Header: hdr, Payload: payload}, nil
}

// resync drops at least one byte and then everything up to the next occurrence
// of the network magic
func (d *Decoder) resync() {
	var magic [4]byte
	binary.LittleEndian.PutUint32(magic[:], d.magic)
	idx := bytes.Index(d.buf[d.off+1:], magic[:])
	if idx < 0 {
		// The tail may hold the first bytes of a magic split across reads
		keep := min(len(magic)-1, d.Buffered()-1)
		d.off = len(d.buf) - keep
	} else {
		d.off += 1 + idx
	}
	d.compact()
}

func (d *Decoder) compact() {
	switch {
	case d.off == len(d.buf):
		if cap(d.buf) > maxRetainedCapacity {
			d.buf = nil
		} else {
			d.buf = d.buf[:0]
		}
		d.off = 0
	case d.off >= compactThreshold || d.off > len(d.buf)-d.off:
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}
}
