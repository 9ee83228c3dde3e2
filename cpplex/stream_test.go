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

package cpplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamStripsUTF8BOM(t *testing.T) {
	s := NewBufferStream(append([]byte{0xEF, 0xBB, 0xBF}, "int"...))
	var got []byte
	for s.Good() {
		c, _ := s.Get()
		got = append(got, c)
	}
	assert.Equal(t, "int", string(got))
}

func TestStreamNormalizesCRLFAndCR(t *testing.T) {
	s := NewBufferStream([]byte("a\r\nb\rc\n"))
	var got []byte
	for s.Good() {
		c, _ := s.Get()
		got = append(got, c)
	}
	assert.Equal(t, "a\nb\nc\n", string(got))
}

func TestStreamDecodesUTF16LittleEndian(t *testing.T) {
	data := []byte{0xFF, 0xFE, 'a', 0x00, 'b', 0x00}
	s := NewBufferStream(data)
	var got []byte
	for s.Good() {
		c, _ := s.Get()
		got = append(got, c)
	}
	assert.Equal(t, "ab", string(got))
}

func TestStreamDecodesUTF16BigEndianNonASCIIMarker(t *testing.T) {
	data := []byte{0xFE, 0xFF, 0x00, 'a', 0x01, 0x00}
	s := NewBufferStream(data)
	c1, ok1 := s.Get()
	require := assert.New(t)
	require.True(ok1)
	require.Equal(byte('a'), c1)
	c2, ok2 := s.Get()
	require.True(ok2)
	require.Equal(byte(nonASCII), c2)
}

func TestStreamPeekGetUngetPosSlice(t *testing.T) {
	s := NewBufferStream([]byte("hello"))
	p, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, byte('h'), p)

	c, _ := s.Get()
	assert.Equal(t, byte('h'), c)
	assert.Equal(t, 1, s.Pos())

	s.Unget()
	assert.Equal(t, 0, s.Pos())

	at, ok := s.PeekAt(4)
	assert.True(t, ok)
	assert.Equal(t, byte('o'), at)

	_, ok = s.PeekAt(10)
	assert.False(t, ok)

	s.Advance(2)
	assert.Equal(t, "llo", string(s.Remaining()))

	assert.Equal(t, "he", s.Slice(0, 2))

	s.SetPos(0)
	assert.Equal(t, 0, s.Pos())
}
