// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package zstd_test

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"io"
	"strconv"
	"testing"

	"github.com/siderolabs/gen/xtesting/must"
	"github.com/stretchr/testify/require"

	lzmastream "github.com/siderolabs/go-lzma-stream"
	"github.com/siderolabs/go-lzma-stream/zstd"
)

func TestCodec(t *testing.T) {
	t.Parallel()

	codec := must.Value(zstd.NewCodec())(t)

	for _, test := range []struct {
		size int
	}{
		{
			size: 0,
		},
		{
			size: 1024,
		},
		{
			size: 1024 * 1024,
		},
	} {
		t.Run(strconv.Itoa(test.size), func(t *testing.T) {
			t.Parallel()

			data, err := io.ReadAll(io.LimitReader(rand.Reader, int64(test.size)))
			require.NoError(t, err)

			var compressed bytes.Buffer

			require.NoError(t, codec.Compress(&compressed, data))

			hdr := must.Value(lzmastream.ParseHeader(compressed.Bytes()))(t)

			require.Equal(t, codec.Properties(), hdr.Properties)
			require.Equal(t, uint64(len(data)), hdr.Size)

			decompressed, err := codec.Decompress(bytes.NewReader(compressed.Bytes()[lzmastream.HeaderLen:]), hdr)
			require.NoError(t, err)

			if len(data) == 0 {
				data = nil
			}

			if len(decompressed) == 0 {
				decompressed = nil
			}

			require.Equal(t, data, decompressed)
		})
	}
}

func TestDecompressLengthGuard(t *testing.T) {
	t.Parallel()

	codec := must.Value(zstd.NewCodec())(t)

	var compressed bytes.Buffer

	require.NoError(t, codec.Compress(&compressed, []byte("hello")))

	hdr := must.Value(lzmastream.ParseHeader(compressed.Bytes()))(t)

	// a corrupt compressed-length field must be rejected before any
	// allocation happens
	payload := compressed.Bytes()[lzmastream.HeaderLen:]
	binary.LittleEndian.PutUint32(payload, 0xffffffff)

	_, err := codec.Decompress(bytes.NewReader(payload), hdr)
	require.ErrorContains(t, err, "exceeds maximum chunk capacity")
}

func TestStreamRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := io.ReadAll(io.LimitReader(rand.Reader, 600*1024))
	require.NoError(t, err)

	codec := must.Value(zstd.NewCodec())(t)

	w := must.Value(lzmastream.NewWriter(
		lzmastream.WithCodec(codec),
		lzmastream.WithChunkCapacity(256*1024),
	))(t)

	must.Value(w.Write(data))(t)
	require.NoError(t, w.Close())

	require.Equal(t, 3, w.NumChunks())

	infos := must.Value(lzmastream.Scan(bytes.NewReader(w.Bytes()), lzmastream.WithCodec(codec)))(t)
	require.Len(t, infos, 3)
	require.Equal(t, codec.Properties(), infos[0].Properties)

	r := must.Value(lzmastream.NewReader(bytes.NewReader(w.Bytes()), lzmastream.WithCodec(codec)))(t)

	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
	require.NoError(t, r.Close())
}
