// Copyright 2025 EngFlow Inc. All rights reserved.
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

// Package cpplex turns raw source bytes into the initial (pre-macro-expansion)
// Token stream: it owns the character-level Stream abstraction (BOM
// detection, UTF-16 fallback, CRLF normalization) and the raw reader that
// classifies runs of characters into identifiers, numbers, strings, char
// literals, raw strings, comments and operators.
package cpplex

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// nonASCII is reported by Stream.Get/Peek for any UTF-16 code unit at or
// above 0x80, so the raw reader can surface an unhandledChar diagnostic the
// same way it would for a raw non-ASCII byte.
const nonASCII = 0xFF

// Stream is a pushback-capable byte-oriented view over source text. It
// normalizes CRLF/CR to LF and, for UTF-16 encoded input, decodes to
// single-byte units (reporting non-ASCII code points as nonASCII so callers
// can diagnose and refuse them, matching §4.B of the design).
type Stream struct {
	data []byte
	pos  int
	good bool
}

// NewBufferStream wraps an in-memory buffer.
func NewBufferStream(data []byte) *Stream {
	s := &Stream{good: true}
	s.data = decodeToBytes(data)
	return s
}

// NewFileStream reads the entirety of r (typically an *os.File) and wraps
// it the same way NewBufferStream does.
func NewFileStream(r io.Reader) (*Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferStream(data), nil
}

// decodeToBytes strips a UTF-8 BOM, or decodes a UTF-16 BOM-prefixed buffer
// into a byte-per-code-unit representation (non-ASCII code units become
// nonASCII), then normalizes CRLF/CR to LF.
func decodeToBytes(data []byte) []byte {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		data = data[3:]
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		data = decodeUTF16(data[2:], unicode.LittleEndian)
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		data = decodeUTF16(data[2:], unicode.BigEndian)
	case len(data) >= 1 && data[0] >= 0xFE:
		// A lone 0xFE/0xFF without a full BOM pair still signals UTF-16 per
		// §4.B; fall back to big-endian, the historical Unicode default.
		data = decodeUTF16(data, unicode.BigEndian)
	}
	return normalizeNewlines(data)
}

// decodeUTF16 assembles 16-bit code units per endianness and maps each unit
// to a single output byte: ASCII code points pass through unchanged, and
// anything >= 0x80 (including surrogate halves) becomes nonASCII.
func decodeUTF16(data []byte, endian unicode.Endianness) []byte {
	out := make([]byte, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		var unit uint16
		if endian == unicode.LittleEndian {
			unit = uint16(data[i]) | uint16(data[i+1])<<8
		} else {
			unit = uint16(data[i+1]) | uint16(data[i])<<8
		}
		if unit < 0x80 {
			out = append(out, byte(unit))
		} else {
			out = append(out, nonASCII)
		}
	}
	return out
}

// normalizeNewlines reports "\r\n" and lone "\r" as a single "\n".
func normalizeNewlines(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\r':
			out = append(out, '\n')
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
		default:
			out = append(out, data[i])
		}
	}
	return out
}

// Good reports whether more input remains.
func (s *Stream) Good() bool { return s.pos < len(s.data) }

// Get consumes and returns the next byte, and a bool reporting whether one
// was available.
func (s *Stream) Get() (byte, bool) {
	if !s.Good() {
		return 0, false
	}
	c := s.data[s.pos]
	s.pos++
	return c, true
}

// Peek returns the next byte without consuming it.
func (s *Stream) Peek() (byte, bool) {
	if !s.Good() {
		return 0, false
	}
	return s.data[s.pos], true
}

// PeekAt returns the byte offset bytes ahead of the cursor (0 == Peek()).
func (s *Stream) PeekAt(offset int) (byte, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.data) {
		return 0, false
	}
	return s.data[i], true
}

// Unget pushes the most recently read byte back onto the stream.
func (s *Stream) Unget() {
	if s.pos > 0 {
		s.pos--
	}
}

// Remaining returns the not-yet-consumed bytes without advancing the
// cursor; used by the raw reader for bulk literal scanning.
func (s *Stream) Remaining() []byte { return s.data[s.pos:] }

// Advance skips n bytes.
func (s *Stream) Advance(n int) { s.pos += n }

// Pos returns the current byte offset into the decoded buffer.
func (s *Stream) Pos() int { return s.pos }

// SetPos rewinds or fast-forwards the cursor to an offset previously
// obtained from Pos.
func (s *Stream) SetPos(p int) { s.pos = p }

// Slice returns data[from:to]; from/to are offsets obtained from Pos.
func (s *Stream) Slice(from, to int) string { return string(s.data[from:to]) }
