// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package lzmastream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// Codec compresses and decompresses one chunk at a time.
//
// Compress writes one complete framed chunk to dst: the properties
// descriptor, the little-endian uncompressed size and the compressed
// payload. Decompress reverses it for a single chunk, reading exactly the
// payload bytes from src; the header has already been consumed and parsed
// by the caller. The payload layout past the header is owned by the codec
// and opaque to the framing layer.
//
// A Codec is not required to be safe for concurrent use; every Writer and
// Reader owns its instance.
type Codec interface {
	Compress(dst io.Writer, src []byte) error
	Decompress(src io.Reader, hdr Header) ([]byte, error)
}

// Dictionary capacity bounds for the LZMA codec.
const (
	MinDictCapacity     = 1 << 12
	MaxDictCapacity     = 1 << 30
	DefaultDictCapacity = 1 << 22
)

// LZMACodec implements Codec using the classic LZMA stream format.
//
// Each chunk is a self-contained lzma-alone stream: the 13-byte header
// (properties code byte, little-endian dictionary capacity, little-endian
// uncompressed size) is exactly the chunk frame header, followed by the
// range-coded payload. Literal context/position bits, position state bits
// and the match finder are fixed; the dictionary capacity is the one
// tunable parameter.
type LZMACodec struct {
	props   lzma.Properties
	dictCap int
}

// NewLZMACodec creates an LZMA codec with the given dictionary capacity.
func NewLZMACodec(dictCap int) (*LZMACodec, error) {
	if dictCap < MinDictCapacity || dictCap > MaxDictCapacity {
		return nil, fmt.Errorf("dictionary capacity should be in range [%d, %d]: %d", MinDictCapacity, MaxDictCapacity, dictCap)
	}

	return &LZMACodec{
		props:   lzma.Properties{LC: 3, LP: 0, PB: 2},
		dictCap: dictCap,
	}, nil
}

// Properties returns the 5-byte chunk descriptor for this codec
// configuration.
func (c *LZMACodec) Properties() Properties {
	var p Properties

	p[0] = c.props.Code()
	binary.LittleEndian.PutUint32(p[1:], uint32(c.dictCap))

	return p
}

// Compress writes one framed chunk to dst.
//
// Empty chunks are framed as a bare header with no payload bytes at all,
// so the Reader can consume them without touching the range coder.
func (c *LZMACodec) Compress(dst io.Writer, src []byte) error {
	if len(src) == 0 {
		var hb [HeaderLen]byte

		Header{Properties: c.Properties()}.Encode(hb[:])

		_, err := dst.Write(hb[:])

		return err
	}

	props := c.props

	w, err := lzma.WriterConfig{
		Properties:   &props,
		DictCap:      c.dictCap,
		Matcher:      lzma.HashTable4,
		SizeInHeader: true,
		Size:         int64(len(src)),
		EOSMarker:    false,
	}.NewWriter(dst)
	if err != nil {
		return err
	}

	if _, err = w.Write(src); err != nil {
		return err
	}

	return w.Close()
}

// Decompress reads and decodes one chunk payload from src.
//
// The frame header is re-serialized in front of src, as the lzma reader
// expects to parse the full lzma-alone header itself. The underlying
// decoder consumes src byte by byte, so it stops exactly at the chunk
// boundary and src stays positioned at the next chunk header.
func (c *LZMACodec) Decompress(src io.Reader, hdr Header) ([]byte, error) {
	if hdr.Size == 0 {
		return nil, nil
	}

	var hb [HeaderLen]byte

	hdr.Encode(hb[:])

	r, err := lzma.ReaderConfig{
		DictCap: c.dictCap,
	}.NewReader(io.MultiReader(bytes.NewReader(hb[:]), src))
	if err != nil {
		return nil, err
	}

	out := make([]byte, hdr.Size)

	if _, err = io.ReadFull(r, out); err != nil {
		return nil, err
	}

	return out, nil
}
