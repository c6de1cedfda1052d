// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package lzmastream

import "errors"

// Errors.
var (
	// ErrClosed is returned on operations on a closed Writer or Reader.
	ErrClosed = errors.New("stream is closed")

	// ErrUnsupported is returned on operations the stream type does not
	// support: reading or seeking a Writer, writing or seeking a Reader.
	ErrUnsupported = errors.New("operation not supported")

	// ErrCorrupted is returned (wrapped) when the chunk framing is broken:
	// a truncated chunk header, or a properties descriptor that differs
	// from the first chunk's. Once raised, the Reader stays in StateError.
	ErrCorrupted = errors.New("stream is corrupted")
)
