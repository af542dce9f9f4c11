// Package keystream implements the reversible XOR obfuscation used for cart
// container bodies and metadata blocks. It is deliberately not a security
// boundary; the transform only exists so that carted payloads cannot be
// executed or opened by accident.
package keystream

import (
	"crypto/rc4"
	"errors"
	"io"
)

// KeySize is the only accepted key length, matching the key marker field in
// the container header.
const KeySize = 16

// defaultKey is the well-known key: the first eight digits of pi, twice.
var defaultKey = [KeySize]byte{
	0x03, 0x01, 0x04, 0x01, 0x05, 0x09, 0x02, 0x06,
	0x03, 0x01, 0x04, 0x01, 0x05, 0x09, 0x02, 0x06,
}

var ErrInvalidKeyLength = errors.New("keystream key must be 16 bytes")

// DefaultKey returns a copy of the well-known default key.
func DefaultKey() []byte {
	key := make([]byte, KeySize)
	copy(key, defaultKey[:])
	return key
}

// IsDefaultKey reports whether key equals the well-known default key.
func IsDefaultKey(key []byte) bool {
	if len(key) != KeySize {
		return false
	}
	for i, b := range key {
		if b != defaultKey[i] {
			return false
		}
	}
	return true
}

func newCipher(key []byte) (*rc4.Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	return rc4.NewCipher(key)
}

// XOR applies a fresh keystream to data in place. The transform is its own
// inverse; applying it twice with the same key restores the input.
func XOR(key, data []byte) error {
	cipher, err := newCipher(key)
	if err != nil {
		return err
	}
	cipher.XORKeyStream(data, data)
	return nil
}

// Reader wraps an io.Reader and applies the keystream to every byte read
// through it. The keystream position is tied to the absolute stream offset,
// so read sizes never affect the output.
//
// Reader also implements io.ByteReader. This matters for the unpack
// pipeline: a flate-based decompressor reading from an io.ByteReader
// consumes exactly the compressed stream and leaves the bytes after it, such
// as the container footer, unread.
type Reader struct {
	src     io.Reader
	byteSrc io.ByteReader
	cipher  *rc4.Cipher
	one     [1]byte
}

// Assert that the Reader struct satisfies the io.Reader and io.ByteReader
// interfaces.
var _ io.Reader = &Reader{}
var _ io.ByteReader = &Reader{}

// NewReader creates a new Reader. The key must be KeySize bytes long.
func NewReader(src io.Reader, key []byte) (*Reader, error) {
	cipher, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	r := &Reader{src: src, cipher: cipher}
	if bs, ok := src.(io.ByteReader); ok {
		r.byteSrc = bs
	}
	return r, nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (n int, err error) {
	n, err = r.src.Read(p)
	r.cipher.XORKeyStream(p[:n], p[:n])
	return n, err
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.byteSrc != nil {
		b, err := r.byteSrc.ReadByte()
		if err != nil {
			return 0, err
		}
		r.one[0] = b
	} else {
		if _, err := io.ReadFull(r.src, r.one[:]); err != nil {
			return 0, err
		}
	}
	r.cipher.XORKeyStream(r.one[:], r.one[:])
	return r.one[0], nil
}

// Writer wraps an io.Writer and applies the keystream to every byte written
// through it. Since the caller's buffer must not be modified, the transform
// runs through an internal scratch buffer.
type Writer struct {
	dst    io.Writer
	cipher *rc4.Cipher
	buf    []byte
}

// Assert that the Writer struct satisfies the io.Writer interface.
var _ io.Writer = &Writer{}

// NewWriter creates a new Writer. The key must be KeySize bytes long.
func NewWriter(dst io.Writer, key []byte) (*Writer, error) {
	cipher, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	return &Writer{dst: dst, cipher: cipher}, nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	if cap(w.buf) < len(p) {
		w.buf = make([]byte, len(p))
	}
	buf := w.buf[:len(p)]
	w.cipher.XORKeyStream(buf, p)
	if _, err := w.dst.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
