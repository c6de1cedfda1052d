// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package lzmastream implements a chunked LZMA stream format.
//
// The stream is a sequence of independently compressed chunks. Each chunk
// is framed with a 5-byte codec properties descriptor and the 8-byte
// little-endian uncompressed size, followed by the compressed payload.
// The Writer partitions an unbounded byte stream into fixed-capacity
// chunks on the way in, the Reader reassembles it on the way out and
// verifies that every chunk carries the same properties descriptor.
package lzmastream

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Writer compresses a byte stream into framed chunks.
//
// Bytes are accumulated in an internal buffer of the configured chunk
// capacity; every time the buffer fills up, one chunk is compressed and
// framed to the sink. Close flushes the final partial chunk.
//
// Writer is not safe for concurrent use.
type Writer struct {
	opt Options

	dst io.Writer

	// mem is non-nil when the Writer owns the default in-memory sink
	mem *bytes.Buffer

	// uncompressed accumulation buffer, len(buf) < opt.ChunkCapacity
	// between calls
	buf []byte

	chunks int

	err    error
	closed bool
}

// NewWriter creates a new Writer with the specified options.
//
// By default the Writer compresses into an owned in-memory buffer,
// retrievable with Bytes or readable back with Reader. Use WithOutput or
// WithOwnedOutput to direct it to a caller-supplied sink.
func NewWriter(opts ...OptionFunc) (*Writer, error) {
	opt := defaultOptions()

	for _, o := range opts {
		if err := o(&opt); err != nil {
			return nil, err
		}
	}

	if opt.SourceOwned {
		return nil, fmt.Errorf("source ownership option is only valid for readers")
	}

	if opt.Codec == nil {
		codec, err := NewLZMACodec(opt.DictCapacity)
		if err != nil {
			return nil, err
		}

		opt.Codec = codec
	}

	w := &Writer{
		opt: opt,
		buf: make([]byte, 0, min(opt.ChunkCapacity, DefaultChunkCapacity)),
	}

	if opt.Output != nil {
		w.dst = opt.Output
	} else {
		w.mem = bytes.NewBuffer(nil)
		w.dst = w.mem
	}

	return w, nil
}

// Write implements io.Writer.
//
// A chunk is flushed to the sink every time the accumulation buffer
// reaches the chunk capacity. On error the Writer is poisoned and rejects
// further writes.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}

	if w.err != nil {
		return 0, w.err
	}

	total := len(p)

	for len(p) > 0 {
		n := min(w.opt.ChunkCapacity-len(w.buf), len(p))

		w.buf = append(w.buf, p[:n]...)
		p = p[n:]

		if len(w.buf) == w.opt.ChunkCapacity {
			if err := w.flushChunk(); err != nil {
				return total - len(p), err
			}
		}
	}

	return total, nil
}

// Flush compresses and frames the currently buffered bytes as one chunk,
// even if the buffer is below the chunk capacity.
//
// Flushing with an empty buffer is a no-op unless no chunk has been
// written yet: an empty stream still produces a single header-only chunk,
// so it round-trips through the Reader.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}

	if w.err != nil {
		return w.err
	}

	if len(w.buf) == 0 && w.chunks > 0 {
		return nil
	}

	return w.flushChunk()
}

func (w *Writer) flushChunk() error {
	if err := w.opt.Codec.Compress(w.dst, w.buf); err != nil {
		w.err = fmt.Errorf("chunk %d: %w", w.chunks, err)

		return w.err
	}

	w.chunks++

	w.opt.Logger.Debug("chunk flushed",
		zap.Int("chunk", w.chunks),
		zap.Int("uncompressed_size", len(w.buf)),
	)

	w.buf = w.buf[:0]

	return nil
}

// Close flushes the final partial chunk and closes the sink if the Writer
// owns it. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true

	var flushErr error

	if w.err == nil {
		if len(w.buf) > 0 || w.chunks == 0 {
			flushErr = w.flushChunk()
		}
	}

	if w.opt.OutputOwned {
		if closer, ok := w.dst.(io.Closer); ok {
			if err := closer.Close(); err != nil && flushErr == nil {
				flushErr = err
			}
		}
	}

	return flushErr
}

// Bytes returns the compressed stream accumulated in the in-memory sink,
// or nil if the Writer was directed to an external sink.
func (w *Writer) Bytes() []byte {
	if w.mem == nil {
		return nil
	}

	return w.mem.Bytes()
}

// NumChunks returns the number of chunks flushed to the sink so far.
func (w *Writer) NumChunks() int {
	return w.chunks
}

// Reader flushes any pending buffered bytes and returns a Reader decoding
// the stream compressed so far.
//
// Only valid for the default in-memory sink.
func (w *Writer) Reader() (*Reader, error) {
	if w.mem == nil {
		return nil, fmt.Errorf("reading back an external sink: %w", ErrUnsupported)
	}

	if w.err != nil {
		return nil, w.err
	}

	if !w.closed && (len(w.buf) > 0 || w.chunks == 0) {
		if err := w.flushChunk(); err != nil {
			return nil, err
		}
	}

	return NewReader(bytes.NewReader(w.mem.Bytes()),
		WithCodec(w.opt.Codec),
		WithLogger(w.opt.Logger),
	)
}

// Read implements io.Reader by always failing: the Writer is write-only.
func (w *Writer) Read([]byte) (int, error) {
	return 0, ErrUnsupported
}

// Seek implements io.Seeker by always failing: the Writer is forward-only.
func (w *Writer) Seek(int64, int) (int64, error) {
	return 0, ErrUnsupported
}
