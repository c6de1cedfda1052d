// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package lzmastream

import (
	"errors"
	"fmt"
	"io"

	"github.com/siderolabs/gen/optional"
	"go.uber.org/zap"
)

// State describes the decoding state of a Reader.
type State int

// Reader states. StateError is terminal: once a framing or codec error is
// hit, the Reader never leaves it.
const (
	StateInitial State = iota
	StateReading
	StateError
)

// Reader decodes a chunked stream back into a plain byte stream.
//
// Chunks are decoded one at a time and drained through Read; the next
// chunk is decoded transparently once the current one is exhausted. The
// first chunk's properties descriptor becomes canonical for the stream,
// and any later chunk deviating from it marks the stream corrupted.
//
// Reader is not safe for concurrent use.
type Reader struct {
	opt Options

	src io.Reader

	// canonical properties, established by the first chunk
	canonical optional.Optional[Properties]

	// current decoded chunk and the read cursor into it
	buf []byte
	pos int

	// total uncompressed bytes delivered
	off int64

	state State
	err   error

	closed bool
}

// NewReader creates a new Reader decoding from src.
//
// The source is borrowed by default; use WithOwnedSource to have Close
// close it. The codec configuration must match the one the stream was
// written with.
func NewReader(src io.Reader, opts ...OptionFunc) (*Reader, error) {
	if src == nil {
		return nil, fmt.Errorf("source should not be nil")
	}

	opt := defaultOptions()

	for _, o := range opts {
		if err := o(&opt); err != nil {
			return nil, err
		}
	}

	if opt.Output != nil {
		return nil, fmt.Errorf("output options are only valid for writers")
	}

	if opt.SourceOwned {
		if _, ok := src.(io.Closer); !ok {
			return nil, fmt.Errorf("source ownership requires an io.Closer source")
		}
	}

	if opt.Codec == nil {
		codec, err := NewLZMACodec(opt.DictCapacity)
		if err != nil {
			return nil, err
		}

		opt.Codec = codec
	}

	return &Reader{
		opt: opt,
		src: src,
	}, nil
}

// Read implements io.Reader.
//
// Read serves up to len(p) bytes, decoding as many chunks as needed, and
// returns io.EOF once the source is cleanly exhausted. A corrupted stream
// surfaces the sticky framing error instead of io.EOF, so callers can
// tell the two apart; State and Err expose the same signal out of band.
func (r *Reader) Read(p []byte) (n int, err error) {
	if r.closed {
		return 0, ErrClosed
	}

	if r.state == StateError {
		return 0, r.err
	}

	for n < len(p) {
		if r.pos == len(r.buf) {
			if err = r.readChunk(); err != nil {
				if n > 0 {
					// deliver what decoded successfully, the
					// error is sticky and surfaces on the
					// next call
					return n, nil
				}

				return 0, err
			}

			continue
		}

		nn := copy(p[n:], r.buf[r.pos:])

		n += nn
		r.pos += nn
		r.off += int64(nn)
	}

	return n, nil
}

// readChunk reads one chunk header from the source, validates it against
// the canonical properties and decodes the payload into r.buf.
//
// A clean io.EOF at a chunk boundary is the regular end of stream; any
// partial header, properties mismatch or payload failure transitions the
// Reader to StateError.
func (r *Reader) readChunk() error {
	var hb [HeaderLen]byte

	if _, err := io.ReadFull(r.src, hb[:]); err != nil {
		// io.EOF means no header bytes at all, i.e. a clean end of
		// stream; a partial header comes back as io.ErrUnexpectedEOF
		if errors.Is(err, io.EOF) {
			return io.EOF
		}

		return r.fail(fmt.Errorf("truncated chunk header: %w", ErrCorrupted))
	}

	hdr, err := ParseHeader(hb[:])
	if err != nil {
		return r.fail(fmt.Errorf("%s: %w", err, ErrCorrupted))
	}

	if canonical, ok := r.canonical.Get(); ok {
		if hdr.Properties != canonical {
			return r.fail(fmt.Errorf("chunk properties mismatch: %w", ErrCorrupted))
		}
	} else {
		r.canonical = optional.Some(hdr.Properties)
	}

	if hdr.Size > MaxChunkCapacity {
		return r.fail(fmt.Errorf("chunk size %d exceeds maximum capacity: %w", hdr.Size, ErrCorrupted))
	}

	buf, err := r.opt.Codec.Decompress(r.src, hdr)
	if err != nil {
		// a payload cut right after the header surfaces as a bare
		// io.EOF from the codec, which must not read as a clean end
		// of stream
		if errors.Is(err, io.EOF) {
			return r.fail(fmt.Errorf("truncated chunk payload: %w", ErrCorrupted))
		}

		return r.fail(fmt.Errorf("chunk payload: %w", err))
	}

	r.buf = buf
	r.pos = 0
	r.state = StateReading

	r.opt.Logger.Debug("chunk decoded", zap.Int("uncompressed_size", len(buf)))

	return nil
}

func (r *Reader) fail(err error) error {
	r.state = StateError
	r.err = err

	r.opt.Logger.Error("stream decoding failed", zap.Error(err))

	return err
}

// State returns the decoding state of the Reader.
func (r *Reader) State() State {
	return r.state
}

// Err returns the sticky error that moved the Reader to StateError, or
// nil.
func (r *Reader) Err() error {
	return r.err
}

// Properties returns the canonical properties descriptor of the stream,
// once the first chunk has been decoded.
func (r *Reader) Properties() (Properties, bool) {
	return r.canonical.Get()
}

// Position returns the source position if the source is seekable,
// otherwise the cursor into the current decoded chunk.
func (r *Reader) Position() (int64, error) {
	if seeker, ok := r.src.(io.Seeker); ok {
		return seeker.Seek(0, io.SeekCurrent)
	}

	return int64(r.pos), nil
}

// Offset returns the total number of uncompressed bytes delivered so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// Length returns the source length if the source reports its size,
// otherwise the current decoded chunk's length as a best-effort estimate.
func (r *Reader) Length() (int64, error) {
	if sized, ok := r.src.(interface{ Size() int64 }); ok {
		return sized.Size(), nil
	}

	if seeker, ok := r.src.(io.Seeker); ok {
		pos, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}

		end, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, err
		}

		if _, err = seeker.Seek(pos, io.SeekStart); err != nil {
			return 0, err
		}

		return end, nil
	}

	return int64(len(r.buf)), nil
}

// Close closes the source if the Reader owns it. Close is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true

	if r.opt.SourceOwned {
		if closer, ok := r.src.(io.Closer); ok {
			return closer.Close()
		}
	}

	return nil
}

// Write implements io.Writer by always failing: the Reader is read-only.
func (r *Reader) Write([]byte) (int, error) {
	return 0, ErrUnsupported
}

// Seek implements io.Seeker by always failing: the Reader is
// forward-only.
func (r *Reader) Seek(int64, int) (int64, error) {
	return 0, ErrUnsupported
}
