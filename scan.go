// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package lzmastream

import (
	"errors"
	"io"

	"github.com/siderolabs/gen/xslices"
	"go.uber.org/zap"
)

// ChunkInfo describes one framed chunk of a stream.
type ChunkInfo struct {
	// Properties is the chunk's codec descriptor.
	Properties Properties

	// Size is the uncompressed payload size.
	Size int64

	// CompressedSize is the payload size on the wire, excluding the
	// chunk header.
	CompressedSize int64
}

// Scan decodes every chunk in src and reports per-chunk framing
// information.
//
// Chunks have no compressed-size field in their headers, so the payloads
// are actually decoded to find the chunk boundaries. Scan stops at the
// first framing error, returning the chunks scanned so far along with the
// error.
func Scan(src io.Reader, opts ...OptionFunc) ([]ChunkInfo, error) {
	cr := &countingReader{r: src}

	r, err := NewReader(cr, opts...)
	if err != nil {
		return nil, err
	}

	var infos []ChunkInfo

	for {
		start := cr.n

		if err = r.readChunk(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return infos, err
		}

		props, _ := r.canonical.Get()

		infos = append(infos, ChunkInfo{
			Properties:     props,
			Size:           int64(len(r.buf)),
			CompressedSize: cr.n - start - HeaderLen,
		})
	}

	r.opt.Logger.Debug("stream scanned",
		zap.Int("chunks", len(infos)),
		zap.Int64s("chunk_sizes", xslices.Map(infos, func(ci ChunkInfo) int64 {
			return ci.Size
		})),
	)

	return infos, nil
}

// countingReader counts the bytes consumed from the underlying reader.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)

	return n, err
}
