package cart

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// PackResult carries the container produced by PackData. The result owns
// its buffer; release it with Free once the bytes are no longer needed.
type PackResult struct {
	Packed []byte
}

// Free releases the buffers owned by the result. It is safe on a nil or
// zero-valued result and may be called repeatedly.
func (r *PackResult) Free() {
	if r == nil {
		return
	}
	r.Packed = nil
}

// UnpackResult carries the buffers produced by the unpack and metadata
// operations. Which fields are populated depends on the operation: the data
// variants return the decoded body, the file and stream variants write it to
// the sink instead, and the metadata-only variants never produce a body.
type UnpackResult struct {
	Body       []byte
	HeaderJSON []byte
	FooterJSON []byte
}

// Free releases the buffers owned by the result. It is safe on a nil or
// zero-valued result and may be called repeatedly.
func (r *UnpackResult) Free() {
	if r == nil {
		return
	}
	r.Body = nil
	r.HeaderJSON = nil
	r.FooterJSON = nil
}

// PackFile encodes the file at inputPath into a cart container at
// outputPath, truncating it if it exists. headerJSON is optional JSON
// object text stored as header metadata. A nil opts selects the defaults.
func PackFile(inputPath, outputPath string, headerJSON []byte, opts *Options) error {
	meta, err := parseMetaArg(headerJSON)
	if err != nil {
		return err
	}
	in, err := openRead(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := openWrite(outputPath)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(out, BlockSize)
	if err := Pack(bufio.NewReaderSize(in, BlockSize), bw, meta, nil, opts); err != nil {
		out.Close()
		return wrapProcessing(err)
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return wrapProcessing(err)
	}
	return wrapProcessing(out.Close())
}

// PackStream encodes the payload from src into a container written to dst.
func PackStream(src io.Reader, dst io.Writer, headerJSON []byte, opts *Options) error {
	if src == nil || dst == nil {
		return ErrNullArgument
	}
	meta, err := parseMetaArg(headerJSON)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(dst, BlockSize)
	if err := Pack(src, bw, meta, nil, opts); err != nil {
		return wrapProcessing(err)
	}
	return wrapProcessing(bw.Flush())
}

// PackData encodes an in-memory payload and returns the container bytes.
func PackData(data []byte, headerJSON []byte, opts *Options) (*PackResult, error) {
	if len(data) == 0 {
		return nil, ErrNullArgument
	}
	meta, err := parseMetaArg(headerJSON)
	if err != nil {
		return nil, err
	}
	packed := &bytes.Buffer{}
	if err := Pack(bytes.NewReader(data), packed, meta, nil, opts); err != nil {
		return nil, wrapProcessing(err)
	}
	return &PackResult{Packed: packed.Bytes()}, nil
}

// UnpackFile decodes the container at inputPath into the file at
// outputPath, truncating it if it exists. The decoded body goes to the
// output file; the returned result carries only the metadata blocks.
func UnpackFile(inputPath, outputPath string, opts *Options) (*UnpackResult, error) {
	in, err := openRead(inputPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	out, err := openWrite(outputPath)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriterSize(out, BlockSize)
	md, err := Unpack(in, bw, opts)
	if err != nil {
		out.Close()
		return nil, wrapProcessing(err)
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return nil, wrapProcessing(err)
	}
	if err := out.Close(); err != nil {
		return nil, wrapProcessing(err)
	}
	return metaResult(md), nil
}

// UnpackStream decodes a container from src, writing the body to dst. The
// footer is recovered when the container was packed with a self-delimiting
// compression mode, or when src happens to support seeking.
func UnpackStream(src io.Reader, dst io.Writer, opts *Options) (*UnpackResult, error) {
	if src == nil || dst == nil {
		return nil, ErrNullArgument
	}
	bw := bufio.NewWriterSize(dst, BlockSize)
	md, err := Unpack(src, bw, opts)
	if err != nil {
		return nil, wrapProcessing(err)
	}
	if err := bw.Flush(); err != nil {
		return nil, wrapProcessing(err)
	}
	return metaResult(md), nil
}

// UnpackData decodes an in-memory container, returning the body and
// metadata.
func UnpackData(data []byte, opts *Options) (*UnpackResult, error) {
	if len(data) == 0 {
		return nil, ErrNullArgument
	}
	body := &bytes.Buffer{}
	md, err := Unpack(bytes.NewReader(data), body, opts)
	if err != nil {
		return nil, wrapProcessing(err)
	}
	res := metaResult(md)
	res.Body = body.Bytes()
	return res, nil
}

// IsCartFile reports whether the file at path contains cart data. Missing
// or unreadable files read as false.
func IsCartFile(path string) bool {
	in, err := os.Open(path)
	if err != nil {
		return false
	}
	defer in.Close()
	return IsCart(in)
}

// IsCartStream reports whether src contains cart data. The stream is read
// from and not reset.
func IsCartStream(src io.Reader) bool {
	return IsCart(src)
}

// IsCartData reports whether the buffer contains cart data.
func IsCartData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return IsCart(bytes.NewReader(data))
}

// GetFileMetadataOnly reads the metadata blocks of the container at path
// without decoding the body.
func GetFileMetadataOnly(path string, opts *Options) (*UnpackResult, error) {
	in, err := openRead(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	md, err := ReadMetadata(in, opts)
	if err != nil {
		return nil, wrapProcessing(err)
	}
	return metaResult(md), nil
}

// GetStreamMetadataOnly reads the header metadata block from src without
// decoding the body. Only the header block is returned; locating the footer
// requires a source with a known length.
func GetStreamMetadataOnly(src io.Reader, opts *Options) (*UnpackResult, error) {
	if src == nil {
		return nil, ErrNullArgument
	}
	md, err := ReadMetadata(src, opts)
	if err != nil {
		return nil, wrapProcessing(err)
	}
	return metaResult(md), nil
}

// GetDataMetadataOnly reads the metadata blocks of an in-memory container
// without decoding the body.
func GetDataMetadataOnly(data []byte, opts *Options) (*UnpackResult, error) {
	if len(data) == 0 {
		return nil, ErrNullArgument
	}
	md, err := ReadMetadata(bytes.NewReader(data), opts)
	if err != nil {
		return nil, wrapProcessing(err)
	}
	return metaResult(md), nil
}

func metaResult(md *Metadata) *UnpackResult {
	return &UnpackResult{
		HeaderJSON: md.HeaderJSON,
		FooterJSON: md.FooterJSON,
	}
}

// parseMetaArg validates caller metadata JSON text. Nil or empty means no
// metadata; anything else must parse as a JSON object.
func parseMetaArg(headerJSON []byte) (map[string]any, error) {
	if len(headerJSON) == 0 {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal(headerJSON, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSONArgument, err)
	}
	if meta == nil {
		// "null" parses but is not an object.
		return nil, fmt.Errorf("%w: null metadata", ErrBadJSONArgument)
	}
	return meta, nil
}

func openRead(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty input path", ErrBadArgumentString)
	}
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFileRead, err)
	}
	return in, nil
}

func openWrite(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty output path", ErrBadArgumentString)
	}
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFileWrite, err)
	}
	return out, nil
}
