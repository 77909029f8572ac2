// Package compression wraps zstd streams for compressed RDF documents.
package compression

import (
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Ext is the file extension of zstd compressed documents.
const Ext = ".zst"

// IsCompressed reports whether path names a zstd compressed file.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), Ext)
}

// EncoderLevel maps a 1..3 level onto a zstd speed setting. Anything else
// selects the default.
func EncoderLevel(level int) zstd.EncoderLevel {
	switch level {
	case 1:
		return zstd.SpeedFastest
	case 2:
		return zstd.SpeedDefault
	case 3:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedDefault
	}
}

// NewReader returns a reader decompressing r. Close releases the decoder
// but not r.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

// NewWriter returns a writer compressing into w. Close flushes the frame
// but does not close w.
func NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(EncoderLevel(level)),
		zstd.WithEncoderConcurrency(1),
	)
}
