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

// Package wire implements the NEO peer-to-peer message framing: a fixed 24-byte
// header followed by a checksummed payload, and an incremental decoder that
// extracts envelopes from a fragmented byte stream.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// HeaderSize is the size of the envelope header: magic(4) + command(12) + length(4) + checksum(4)
	HeaderSize = 24
	// CommandSize is the fixed, NUL-padded size of the command field
	CommandSize = 12
	// MaxPayloadSize is the largest payload a peer may announce
	MaxPayloadSize = 0x02000000
)

// Header is the fixed-size envelope header
type Header struct {
	Magic    uint32
	Command  string
	Length   uint32
	Checksum uint32
}

// Envelope is a complete wire message. It should be treated as immutable once
// returned by the Decoder
type Envelope struct {
	Header
	Payload []byte
}

// Checksum returns the first 4 bytes of the double SHA-256 of payload, read as
// a little-endian uint32
func Checksum(payload []byte) uint32 {
	return binary.LittleEndian.Uint32(chainhash.DoubleHashB(payload)[:4])
}

// NewEnvelope builds an outbound envelope and computes its checksum
func NewEnvelope(magic uint32, command string, payload []byte) (*Envelope, error) {
	if len(command) > CommandSize {
		return nil, fmt.Errorf("%w: %q is %d bytes, max %d", ErrCommandTooLong, command, len(command), CommandSize)
	}
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	if payload == nil {
		payload = []byte{}
	}
	e := &Envelope{
		Header: Header{
			Magic:    magic,
			Command:  command,
			Length:   uint32(len(payload)),
			Checksum: Checksum(payload),
		},
		Payload: payload,
	}
	return e, nil
}

// Size returns the total encoded size of the envelope
func (e *Envelope) Size() int {
	return HeaderSize + len(e.Payload)
}

// Encode serializes the envelope for the wire
func (e *Envelope) Encode() []byte {
	buf := make([]byte, e.Size())
	e.Header.put(buf)
	copy(buf[HeaderSize:], e.Payload)
	return buf
}

func (h *Header) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	// Command is NUL padded; buf is freshly allocated so the padding is already zero
	copy(buf[4:4+CommandSize], h.Command)
	binary.LittleEndian.PutUint32(buf[16:20], h.Length)
	binary.LittleEndian.PutUint32(buf[20:24], h.Checksum)
}

// parseHeader reads a header from the first HeaderSize bytes of data. The command
// is returned as-is after trimming NUL padding; validation is up to the caller
func parseHeader(data []byte) Header {
	return Header{
		Magic:    binary.LittleEndian.Uint32(data[0:4]),
		Command:  string(bytes.TrimRight(data[4:4+CommandSize], "\x00")),
		Length:   binary.LittleEndian.Uint32(data[16:20]),
		Checksum: binary.LittleEndian.Uint32(data[20:24]),
	}
}

func validCommand(cmd string) bool {
	if cmd == "" || !utf8.ValidString(cmd) {
		return false
	}
	// NUL bytes are only allowed as trailing padding
	return !bytes.Contains([]byte(cmd), []byte{0})
}
