// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package lzmastream_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lzmastream "github.com/siderolabs/go-lzma-stream"
)

func TestWriterOptions(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name string

		options []lzmastream.OptionFunc

		expectedError string
	}{
		{
			name: "defaults",
		},
		{
			name: "zero chunk capacity",

			options: []lzmastream.OptionFunc{
				lzmastream.WithChunkCapacity(0),
			},

			expectedError: "chunk capacity should be in range [1, 1073741824]: 0",
		},
		{
			name: "negative chunk capacity",

			options: []lzmastream.OptionFunc{
				lzmastream.WithChunkCapacity(-1),
			},

			expectedError: "chunk capacity should be in range [1, 1073741824]: -1",
		},
		{
			name: "maximum chunk capacity",

			options: []lzmastream.OptionFunc{
				lzmastream.WithChunkCapacity(1 << 30),
			},
		},
		{
			name: "chunk capacity above maximum",

			options: []lzmastream.OptionFunc{
				lzmastream.WithChunkCapacity(1<<30 + 1),
			},

			expectedError: "chunk capacity should be in range [1, 1073741824]: 1073741825",
		},
		{
			name: "dictionary capacity below minimum",

			options: []lzmastream.OptionFunc{
				lzmastream.WithDictCapacity(100),
			},

			expectedError: "dictionary capacity should be in range [4096, 1073741824]: 100",
		},
		{
			name: "nil codec",

			options: []lzmastream.OptionFunc{
				lzmastream.WithCodec(nil),
			},

			expectedError: "codec should not be nil",
		},
		{
			name: "nil output",

			options: []lzmastream.OptionFunc{
				lzmastream.WithOutput(nil),
			},

			expectedError: "output should not be nil",
		},
		{
			name: "source ownership on a writer",

			options: []lzmastream.OptionFunc{
				lzmastream.WithOwnedSource(),
			},

			expectedError: "source ownership option is only valid for readers",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			w, err := lzmastream.NewWriter(test.options...)

			if test.expectedError != "" {
				assert.EqualError(t, err, test.expectedError)

				return
			}

			require.NoError(t, err)
			require.NoError(t, w.Close())
		})
	}
}

func TestReaderOptions(t *testing.T) {
	t.Parallel()

	_, err := lzmastream.NewReader(nil)
	assert.EqualError(t, err, "source should not be nil")

	_, err = lzmastream.NewReader(bytes.NewReader(nil), lzmastream.WithOutput(bytes.NewBuffer(nil)))
	assert.EqualError(t, err, "output options are only valid for writers")

	_, err = lzmastream.NewReader(bytes.NewReader(nil), lzmastream.WithChunkCapacity(0))
	assert.Error(t, err)
}
