package cart

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cartformat/cart/header"
	"github.com/cartformat/cart/keystream"
)

// ErrNotSeekable reports an unpack of a container whose body does not
// self-delimit (compression none or zstd) from a source without random
// access. The body/footer boundary of such containers can only be found
// from the end of the input.
var ErrNotSeekable = errors.New("body is not self-delimiting, input must support seeking")

// Metadata holds the JSON metadata blocks recovered from a container. The
// raw fields carry the exact JSON text the producer stored; the parsed maps
// are decoded from them. Footer fields are nil when the container has no
// footer metadata or the input shape made the footer unreachable.
type Metadata struct {
	HeaderJSON []byte
	FooterJSON []byte
	Header     map[string]any
	Footer     map[string]any
}

// Unpack decodes the container read from src, writing the recovered payload
// to dst and returning the metadata. If src implements io.ReadSeeker the
// footer is located by seeking from the end and the body is bounded
// exactly; otherwise the body is decoded until the compressed stream ends
// and the footer is recovered from the remaining bytes.
func Unpack(src io.Reader, dst io.Writer, opts *Options) (*Metadata, error) {
	if rs, ok := src.(io.ReadSeeker); ok {
		return unpackSeekable(rs, dst, opts)
	}
	return unpackForward(src, dst, opts)
}

// ReadMetadata reads the header metadata without decoding or emitting the
// body. Seekable sources also yield the footer metadata; forward-only
// sources return the header block alone.
func ReadMetadata(src io.Reader, opts *Options) (*Metadata, error) {
	if rs, ok := src.(io.ReadSeeker); ok {
		start, size, err := bounds(rs)
		if err != nil {
			return nil, fmt.Errorf("failed to measure input: %w", err)
		}
		key, md, bodyStart, err := readHeader(rs, opts, size-start)
		if err != nil {
			return nil, err
		}
		if _, err := readFooter(rs, key, start+bodyStart, size, md); err != nil {
			return nil, err
		}
		return md, nil
	}

	br := bufio.NewReaderSize(src, BlockSize)
	_, md, _, err := readHeader(br, opts, -1)
	return md, err
}

// IsCart reports whether src starts with a valid cart preamble. It never
// fails: empty, truncated and non-cart input all read as false.
func IsCart(src io.Reader) bool {
	if src == nil {
		return false
	}
	buf := make([]byte, header.HeaderSize)
	if _, err := io.ReadFull(src, buf); err != nil {
		return false
	}
	return header.NewHeader().UnmarshalBinary(buf) == nil
}

func unpackSeekable(src io.ReadSeeker, dst io.Writer, opts *Options) (*Metadata, error) {
	start, size, err := bounds(src)
	if err != nil {
		return nil, fmt.Errorf("failed to measure input: %w", err)
	}

	key, md, bodyStart, err := readHeader(src, opts, size-start)
	if err != nil {
		return nil, err
	}
	bodyStart += start

	// The footer comes first: its position bounds the body.
	bodyEnd, err := readFooter(src, key, bodyStart, size, md)
	if err != nil {
		return nil, err
	}

	if _, err := src.Seek(bodyStart, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to body: %w", err)
	}
	br := bufio.NewReaderSize(io.LimitReader(src, bodyEnd-bodyStart), BlockSize)
	if err := decodeBody(br, dst, key, opts); err != nil {
		return nil, err
	}
	return md, nil
}

func unpackForward(src io.Reader, dst io.Writer, opts *Options) (*Metadata, error) {
	br := bufio.NewReaderSize(src, BlockSize)
	key, md, _, err := readHeader(br, opts, -1)
	if err != nil {
		return nil, err
	}

	if !opts.compression().SelfDelimiting() {
		return nil, ErrNotSeekable
	}
	if err := decodeBody(br, dst, key, opts); err != nil {
		return nil, err
	}

	// The decompressor consumed exactly the body, so everything left is the
	// footer region.
	tail, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read footer: %w", err)
	}
	if err := parseFooterTail(tail, key, md); err != nil {
		return nil, err
	}
	return md, nil
}

// decodeBody runs keystream then decompression from src into dst.
func decodeBody(src io.Reader, dst io.Writer, key []byte, opts *Options) error {
	rKey, err := keystream.NewReader(src, key)
	if err != nil {
		return err
	}
	rBody, err := opts.compression().NewReader(rKey)
	if err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}
	defer rBody.Close()
	if _, err := io.CopyBuffer(dst, rBody, make([]byte, BlockSize)); err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}
	return nil
}

// bounds returns the current offset and total size of a seekable source,
// leaving the offset where it was.
func bounds(src io.ReadSeeker) (start, size int64, err error) {
	if start, err = src.Seek(0, io.SeekCurrent); err != nil {
		return 0, 0, err
	}
	if size, err = src.Seek(0, io.SeekEnd); err != nil {
		return 0, 0, err
	}
	if _, err = src.Seek(start, io.SeekStart); err != nil {
		return 0, 0, err
	}
	return start, size, nil
}

// readHeader reads and validates the fixed header plus the metadata block,
// filling md. It returns the effective obfuscation key and the number of
// bytes consumed. remaining bounds the metadata length when the input size
// is known; pass -1 for forward-only streams, where only the hard cap
// applies.
func readHeader(r io.Reader, opts *Options, remaining int64) (key []byte, md *Metadata, n int64, err error) {
	buf := make([]byte, header.HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	hdr := header.NewHeader()
	if err := hdr.UnmarshalBinary(buf); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to parse header: %w", err)
	}

	// A caller-supplied key wins over the key marker. When the producer used
	// a custom key the marker is all zero and decoding without the right key
	// fails below, or later in the body.
	key = opts.userKey()
	if key == nil {
		key = hdr.Key[:]
	}

	md = &Metadata{}
	n = header.HeaderSize
	if hdr.MetaLength == 0 {
		return key, md, n, nil
	}
	if remaining >= 0 && int64(hdr.MetaLength) > remaining-n {
		return nil, nil, 0, fmt.Errorf("header metadata length %d exceeds remaining input", hdr.MetaLength)
	}

	raw := make([]byte, hdr.MetaLength)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to read header metadata: %w", err)
	}
	if err := keystream.XOR(key, raw); err != nil {
		return nil, nil, 0, err
	}
	if err := json.Unmarshal(raw, &md.Header); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to parse header metadata: %w", err)
	}
	md.HeaderJSON = raw
	return key, md, n + int64(len(raw)), nil
}

// readFooter locates and parses the footer of a seekable source, filling
// md. It returns the offset where the footer region starts, which is where
// the body ends.
func readFooter(src io.ReadSeeker, key []byte, bodyStart, size int64, md *Metadata) (int64, error) {
	if size-bodyStart < header.FooterSize {
		return 0, fmt.Errorf("input truncated: no room for footer")
	}
	if _, err := src.Seek(size-header.FooterSize, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek to footer: %w", err)
	}
	buf := make([]byte, header.FooterSize)
	if _, err := io.ReadFull(src, buf); err != nil {
		return 0, fmt.Errorf("failed to read footer: %w", err)
	}
	ftr := header.NewFooter()
	if err := ftr.UnmarshalBinary(buf); err != nil {
		return 0, fmt.Errorf("failed to parse footer: %w", err)
	}

	jsonStart := size - header.FooterSize - int64(ftr.MetaLength)
	if jsonStart < bodyStart {
		return 0, fmt.Errorf("footer metadata length %d overlaps body", ftr.MetaLength)
	}
	if ftr.MetaLength == 0 {
		return jsonStart, nil
	}

	if _, err := src.Seek(jsonStart, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek to footer metadata: %w", err)
	}
	raw := make([]byte, ftr.MetaLength)
	if _, err := io.ReadFull(src, raw); err != nil {
		return 0, fmt.Errorf("failed to read footer metadata: %w", err)
	}
	if err := keystream.XOR(key, raw); err != nil {
		return 0, err
	}
	if err := json.Unmarshal(raw, &md.Footer); err != nil {
		return 0, fmt.Errorf("failed to parse footer metadata: %w", err)
	}
	md.FooterJSON = raw
	return jsonStart, nil
}

// parseFooterTail parses the footer from the raw bytes left over after a
// self-delimiting body, filling md.
func parseFooterTail(tail []byte, key []byte, md *Metadata) error {
	if len(tail) < header.FooterSize {
		return fmt.Errorf("input truncated: no room for footer")
	}
	ftr := header.NewFooter()
	if err := ftr.UnmarshalBinary(tail[len(tail)-header.FooterSize:]); err != nil {
		return fmt.Errorf("failed to parse footer: %w", err)
	}
	if ftr.MetaLength == 0 {
		return nil
	}

	jsonEnd := len(tail) - header.FooterSize
	if int64(ftr.MetaLength) > int64(jsonEnd) {
		return fmt.Errorf("footer metadata length %d overlaps body", ftr.MetaLength)
	}
	raw := make([]byte, ftr.MetaLength)
	copy(raw, tail[jsonEnd-int(ftr.MetaLength):jsonEnd])
	if err := keystream.XOR(key, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &md.Footer); err != nil {
		return fmt.Errorf("failed to parse footer metadata: %w", err)
	}
	md.FooterJSON = raw
	return nil
}
