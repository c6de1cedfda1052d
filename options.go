// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package lzmastream

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Chunk capacity bounds: the maximum number of uncompressed bytes buffered
// before a chunk is flushed.
const (
	MinChunkCapacity     = 1
	MaxChunkCapacity     = 1 << 30
	DefaultChunkCapacity = 256 * 1024
)

// Options defines settings for Writer and Reader.
type Options struct {
	Codec Codec

	Logger *zap.Logger

	// Output is the Writer sink; nil means an owned in-memory buffer.
	Output io.Writer

	ChunkCapacity int
	DictCapacity  int

	// OutputOwned closes Output on Writer.Close.
	OutputOwned bool

	// SourceOwned closes the source on Reader.Close.
	SourceOwned bool
}

// defaultOptions returns default initial values.
func defaultOptions() Options {
	return Options{
		ChunkCapacity: DefaultChunkCapacity,
		DictCapacity:  DefaultDictCapacity,
		Logger:        zap.NewNop(),
	}
}

// OptionFunc allows setting Writer and Reader options.
type OptionFunc func(*Options) error

// WithChunkCapacity sets the uncompressed chunk capacity.
//
// Larger chunks compress better at the cost of memory; the capacity is
// capped at 1 GiB to bound the in-memory buffers.
func WithChunkCapacity(capacity int) OptionFunc {
	return func(opt *Options) error {
		if capacity < MinChunkCapacity || capacity > MaxChunkCapacity {
			return fmt.Errorf("chunk capacity should be in range [%d, %d]: %d", MinChunkCapacity, MaxChunkCapacity, capacity)
		}

		opt.ChunkCapacity = capacity

		return nil
	}
}

// WithDictCapacity sets the LZMA dictionary capacity for the default codec.
//
// A larger dictionary improves the compression ratio at a memory cost.
// Ignored when a custom codec is supplied with WithCodec.
func WithDictCapacity(dictCap int) OptionFunc {
	return func(opt *Options) error {
		if dictCap < MinDictCapacity || dictCap > MaxDictCapacity {
			return fmt.Errorf("dictionary capacity should be in range [%d, %d]: %d", MinDictCapacity, MaxDictCapacity, dictCap)
		}

		opt.DictCapacity = dictCap

		return nil
	}
}

// WithCodec sets the chunk codec, overriding the default LZMA codec.
//
// The Writer and the Reader of one stream must be configured with the same
// codec, as the payload layout past the chunk header is codec-specific.
func WithCodec(c Codec) OptionFunc {
	return func(opt *Options) error {
		if c == nil {
			return fmt.Errorf("codec should not be nil")
		}

		opt.Codec = c

		return nil
	}
}

// WithOutput directs the Writer to the given sink instead of the owned
// in-memory buffer.
//
// The sink is borrowed: Writer.Close does not close it.
func WithOutput(w io.Writer) OptionFunc {
	return func(opt *Options) error {
		if w == nil {
			return fmt.Errorf("output should not be nil")
		}

		opt.Output = w

		return nil
	}
}

// WithOwnedOutput directs the Writer to the given sink and transfers its
// ownership: Writer.Close closes the sink after the final flush.
func WithOwnedOutput(w io.WriteCloser) OptionFunc {
	return func(opt *Options) error {
		if w == nil {
			return fmt.Errorf("output should not be nil")
		}

		opt.Output = w
		opt.OutputOwned = true

		return nil
	}
}

// WithOwnedSource transfers the source ownership to the Reader:
// Reader.Close closes the source, which must implement io.Closer.
func WithOwnedSource() OptionFunc {
	return func(opt *Options) error {
		opt.SourceOwned = true

		return nil
	}
}

// WithLogger sets the logger for the stream.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(opt *Options) error {
		opt.Logger = logger

		return nil
	}
}
