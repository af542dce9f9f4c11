// Package compress adapts streaming compressors for the cart body pipeline.
// The disabled mode is an identity transform so the pipelines never have to
// special-case it.
package compress

import (
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Mode selects the body compression algorithm.
type Mode int

const (
	// Zlib is the default mode, a fast-level zlib stream. It is the zero
	// value so that a zero configuration compresses.
	Zlib Mode = iota
	// None disables compression; the adapter passes bytes through.
	None
	// Zstd is an alternative mode. Containers written with it can only be
	// unpacked with the same configuration.
	Zstd
)

var ErrUnknownMode = errors.New("unknown compression mode")

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Zlib:
		return "zlib"
	case Zstd:
		return "zstd"
	}
	return "invalid"
}

// ParseMode parses a mode name as used by configuration and the CLI.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "none":
		return None, nil
	case "zlib":
		return Zlib, nil
	case "zstd":
		return Zstd, nil
	}
	return None, ErrUnknownMode
}

// SelfDelimiting reports whether the decode side finds the exact end of the
// body on its own. Only zlib does: its flate layer reads byte-at-a-time from
// an io.ByteReader source and stops on the final block, and the trailing
// checksum has a fixed size. Zstd decoders read ahead across frame
// boundaries, and the identity transform has no framing at all.
func (m Mode) SelfDelimiting() bool {
	return m == Zlib
}

// NewWriter returns the encode side of the adapter writing to w. The
// returned writer must be closed to flush any buffered tail; closing it does
// not close w.
func (m Mode) NewWriter(w io.Writer) (io.WriteCloser, error) {
	switch m {
	case None:
		return &nopWriteCloser{w}, nil
	case Zlib:
		return zlib.NewWriterLevel(w, zlib.BestSpeed)
	case Zstd:
		return zstd.NewWriter(w)
	}
	return nil, ErrUnknownMode
}

// NewReader returns the decode side of the adapter reading from r. A
// malformed compressed stream surfaces as an error either here or on a
// later read.
func (m Mode) NewReader(r io.Reader) (io.ReadCloser, error) {
	switch m {
	case None:
		return io.NopCloser(r), nil
	case Zlib:
		return zlib.NewReader(r)
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	}
	return nil, ErrUnknownMode
}

type nopWriteCloser struct {
	io.Writer
}

func (*nopWriteCloser) Close() error { return nil }
