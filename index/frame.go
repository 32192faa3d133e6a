// Package index provides a client for the search index publishing protocol:
// a JSON entry point, a CBOR page manifest per language, and one JSON
// fragment per page. Binary resources are wrapped in a frame: gzip
// compression around a fixed-size magic header around the payload.
package index

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/mwieczorek/docsnap"
)

// HeaderSize is the length of the magic header inside every decompressed
// frame.
const HeaderSize = 12

// DecodeFrame strips the binary envelope from a frame: it gunzips the input,
// verifies the decompressed buffer holds at least the fixed-size header, and
// returns the payload after the header. The header content is a fixed magic
// string in practice but only its length is checked; a corrupted payload of
// sufficient length would pass undetected.
func DecodeFrame(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, docsnap.Errorf(docsnap.EFORMAT, "frame is not valid gzip (the upstream index format may have changed): %v", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, docsnap.Errorf(docsnap.EFORMAT, "frame gzip stream is truncated or corrupt: %v", err)
	}

	if len(raw) < HeaderSize {
		return nil, docsnap.Errorf(docsnap.EFORMAT, "decompressed frame is %d bytes, shorter than the %d-byte header", len(raw), HeaderSize)
	}

	return raw[HeaderSize:], nil
}
