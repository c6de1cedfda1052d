// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package zstd provides an alternate chunk codec using zstd compression.
//
// The chunk framing is the same as for the default LZMA codec; the
// properties descriptor is a fixed zstd marker, and the payload is a
// little-endian uint32 compressed length followed by a single zstd frame.
// The explicit length keeps chunk boundaries exact, as the streaming zstd
// decoder would otherwise read ahead past the chunk.
package zstd

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	lzmastream "github.com/siderolabs/go-lzma-stream"
)

// format version carried in the last descriptor byte
const version = 1

// Codec implements lzmastream.Codec using zstd compression.
type Codec struct {
	dec *zstd.Decoder
	enc *zstd.Encoder
}

// NewCodec creates a new Codec.
func NewCodec(opts ...zstd.EOption) (*Codec, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, err
	}

	return &Codec{
		dec: dec,
		enc: enc,
	}, nil
}

// Properties returns the fixed 5-byte chunk descriptor of the codec.
func (c *Codec) Properties() lzmastream.Properties {
	return lzmastream.Properties{'z', 's', 't', 'd', version}
}

// Compress writes one framed chunk to dst.
func (c *Codec) Compress(dst io.Writer, src []byte) error {
	frame := c.enc.EncodeAll(src, nil)

	hb := make([]byte, lzmastream.HeaderLen+4)

	lzmastream.Header{
		Properties: c.Properties(),
		Size:       uint64(len(src)),
	}.Encode(hb)

	binary.LittleEndian.PutUint32(hb[lzmastream.HeaderLen:], uint32(len(frame)))

	if _, err := dst.Write(hb); err != nil {
		return err
	}

	_, err := dst.Write(frame)

	return err
}

// Decompress reads and decodes one chunk payload from src.
func (c *Codec) Decompress(src io.Reader, hdr lzmastream.Header) ([]byte, error) {
	if hdr.Properties != c.Properties() {
		return nil, fmt.Errorf("unexpected chunk properties %v", hdr.Properties)
	}

	var lb [4]byte

	if _, err := io.ReadFull(src, lb[:]); err != nil {
		return nil, fmt.Errorf("truncated payload length: %w", err)
	}

	frameLen := binary.LittleEndian.Uint32(lb[:])

	// the length field comes from a possibly corrupt source, bound it
	// before allocating
	if uint64(frameLen) > lzmastream.MaxChunkCapacity {
		return nil, fmt.Errorf("compressed length %d exceeds maximum chunk capacity", frameLen)
	}

	frame := make([]byte, frameLen)

	if _, err := io.ReadFull(src, frame); err != nil {
		return nil, fmt.Errorf("truncated payload: %w", err)
	}

	out, err := c.dec.DecodeAll(frame, nil)
	if err != nil {
		return nil, err
	}

	if uint64(len(out)) != hdr.Size {
		return nil, fmt.Errorf("chunk decoded to %d bytes, header says %d", len(out), hdr.Size)
	}

	return out, nil
}
