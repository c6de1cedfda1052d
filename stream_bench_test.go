// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build !race

package lzmastream_test

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/siderolabs/gen/xtesting/must"
	"github.com/stretchr/testify/require"

	lzmastream "github.com/siderolabs/go-lzma-stream"
)

func BenchmarkWrite(b *testing.B) {
	for _, test := range []struct {
		name string

		options []lzmastream.OptionFunc
	}{
		{
			name: "defaults",
		},
		{
			name: "small chunks",

			options: []lzmastream.OptionFunc{
				lzmastream.WithChunkCapacity(16384),
			},
		},
		{
			name: "small dictionary",

			options: []lzmastream.OptionFunc{
				lzmastream.WithDictCapacity(1 << 16),
			},
		},
	} {
		b.Run(test.name, func(b *testing.B) {
			data, err := io.ReadAll(io.LimitReader(rand.Reader, 65536))
			require.NoError(b, err)

			w := must.Value(lzmastream.NewWriter(append(
				[]lzmastream.OptionFunc{lzmastream.WithOutput(io.Discard)},
				test.options...)...,
			))(b)

			b.SetBytes(65536)
			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				_, err := w.Write(data)
				require.NoError(b, err)
			}

			b.StopTimer()

			require.NoError(b, w.Close())
		})
	}
}

func BenchmarkRead(b *testing.B) {
	data, err := io.ReadAll(io.LimitReader(rand.Reader, 1024*1024))
	require.NoError(b, err)

	w := must.Value(lzmastream.NewWriter())(b)

	must.Value(w.Write(data))(b)
	require.NoError(b, w.Close())

	encoded := w.Bytes()

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		r := must.Value(lzmastream.NewReader(bytes.NewReader(encoded)))(b)

		_, err := io.Copy(io.Discard, r)
		require.NoError(b, err)
	}
}
