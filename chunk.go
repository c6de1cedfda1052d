// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package lzmastream

import (
	"encoding/binary"
	"fmt"
)

const (
	// PropertiesLen is the size of the chunk properties descriptor.
	PropertiesLen = 5

	// HeaderLen is the size of the chunk header on the wire:
	// the properties descriptor followed by the uncompressed size.
	HeaderLen = PropertiesLen + 8
)

// Properties is the opaque codec configuration descriptor written at the
// head of every chunk.
//
// All chunks of one stream carry a byte-identical descriptor; the Reader
// treats any deviation as corruption.
type Properties [PropertiesLen]byte

// Header is the fixed-size header framing each chunk.
type Header struct {
	// Properties is the codec configuration descriptor.
	Properties Properties

	// Size is the uncompressed size of the chunk payload, encoded as
	// a little-endian uint64 on the wire.
	Size uint64
}

// ParseHeader decodes a chunk header from b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("chunk header too short: %d bytes", len(b))
	}

	var h Header

	copy(h.Properties[:], b[:PropertiesLen])
	h.Size = binary.LittleEndian.Uint64(b[PropertiesLen:HeaderLen])

	return h, nil
}

// Encode writes the header into b, which must be at least HeaderLen bytes.
func (h Header) Encode(b []byte) {
	copy(b[:PropertiesLen], h.Properties[:])
	binary.LittleEndian.PutUint64(b[PropertiesLen:HeaderLen], h.Size)
}
