package header

import (
	"encoding"
	"encoding/binary"
	"errors"
)

// Header describes the fixed preamble of a cart container. The variable
// length metadata block that follows it is not part of this struct; only its
// length is recorded here.
type Header struct {
	// Magic is an arbitrary constant that identifies the file as cart data.
	Magic [4]byte
	// Version is the version of the cart format.
	Version uint16
	// Key carries the obfuscation key when the well-known default key is in
	// use. When the producer supplied its own key this field is all zero and
	// the consumer must be told the key out of band.
	Key [KeyMarkerSize]byte
	// MetaLength is the length in bytes of the obfuscated JSON metadata
	// block that immediately follows the fixed header.
	MetaLength uint64
}

// Footer describes the fixed trailer of a cart container. On disk the
// trailer sits at the very end of the container, after the JSON metadata
// block whose length it records, so that it can be located by seeking
// backwards from the end.
type Footer struct {
	// Magic is an arbitrary constant, distinct from the header magic.
	Magic [4]byte
	// Version is the version of the cart format.
	Version uint16
	// reserved pads the trailer to FooterSize. Written as zero, not
	// validated on read.
	reserved [KeyMarkerSize]byte
	// MetaLength is the length in bytes of the obfuscated JSON metadata
	// block that immediately precedes the fixed trailer.
	MetaLength uint64
}

const (
	// KeyMarkerSize is the size of the key marker field in the header and of
	// the reserved field in the footer.
	KeyMarkerSize = 16
	// HeaderSize is the size of the fixed header in bytes.
	HeaderSize = 4 + 2 + KeyMarkerSize + 8
	// FooterSize is the size of the fixed footer trailer in bytes.
	FooterSize = 4 + 2 + KeyMarkerSize + 8
	// MaxMetaLength bounds the metadata length fields. A length above this
	// is treated as corruption rather than attempting the allocation.
	MaxMetaLength = 1 << 28
)

var _ encoding.BinaryMarshaler = (*Header)(nil)
var _ encoding.BinaryUnmarshaler = (*Header)(nil)
var _ encoding.BinaryMarshaler = (*Footer)(nil)
var _ encoding.BinaryUnmarshaler = (*Footer)(nil)

var (
	MagicHeader    = [4]byte{'C', 'A', 'R', 'T'}
	MagicFooter    = [4]byte{'T', 'R', 'A', 'C'}
	CurrentVersion = uint16(1)

	ErrInvalidSize       = errors.New("invalid header size")
	ErrUnrecognizedMagic = errors.New("unrecognized magic bytes")
	ErrVersionMismatch   = errors.New("version mismatch")
	ErrMetaTooLarge      = errors.New("metadata block too large")
)

func NewHeader() *Header {
	return &Header{
		Magic:   MagicHeader,
		Version: CurrentVersion,
	}
}

func NewFooter() *Footer {
	return &Footer{
		Magic:   MagicFooter,
		Version: CurrentVersion,
	}
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (h *Header) MarshalBinary() ([]byte, error) {
	if h.MetaLength > MaxMetaLength {
		return nil, ErrMetaTooLarge
	}
	buf := make([]byte, HeaderSize)
	copy(buf[:4], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	copy(buf[6:22], h.Key[:])
	binary.LittleEndian.PutUint64(buf[22:], h.MetaLength)
	return buf, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. The
// magic and version are validated before any other field is touched, so a
// failure here distinguishes "not cart data" from a short read.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return ErrInvalidSize
	}
	for i, b := range data[:4] {
		if b != MagicHeader[i] {
			return ErrUnrecognizedMagic
		}
	}
	if binary.LittleEndian.Uint16(data[4:6]) != CurrentVersion {
		return ErrVersionMismatch
	}

	copy(h.Magic[:], data[:4])
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	copy(h.Key[:], data[6:22])
	h.MetaLength = binary.LittleEndian.Uint64(data[22:])
	if h.MetaLength > MaxMetaLength {
		return ErrMetaTooLarge
	}
	return nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (f *Footer) MarshalBinary() ([]byte, error) {
	if f.MetaLength > MaxMetaLength {
		return nil, ErrMetaTooLarge
	}
	buf := make([]byte, FooterSize)
	copy(buf[:4], f.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], f.Version)
	copy(buf[6:22], f.reserved[:])
	binary.LittleEndian.PutUint64(buf[22:], f.MetaLength)
	return buf, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (f *Footer) UnmarshalBinary(data []byte) error {
	if len(data) < FooterSize {
		return ErrInvalidSize
	}
	for i, b := range data[:4] {
		if b != MagicFooter[i] {
			return ErrUnrecognizedMagic
		}
	}
	if binary.LittleEndian.Uint16(data[4:6]) != CurrentVersion {
		return ErrVersionMismatch
	}

	copy(f.Magic[:], data[:4])
	f.Version = binary.LittleEndian.Uint16(data[4:6])
	copy(f.reserved[:], data[6:22])
	f.MetaLength = binary.LittleEndian.Uint64(data[22:])
	if f.MetaLength > MaxMetaLength {
		return ErrMetaTooLarge
	}
	return nil
}
