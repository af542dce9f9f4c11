package cart

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cartformat/cart/header"
	"github.com/cartformat/cart/keystream"
)

// Pack encodes the payload read from src into a cart container written to
// dst. headerMeta and footerMeta are optional JSON objects stored in the
// container; the configured digests and the payload length are merged into
// the footer, overwriting caller fields of the same name. Caller metadata is
// validated before anything is written, but a mid-stream failure leaves a
// truncated container behind; cleanup of the output artifact is the
// caller's responsibility.
func Pack(src io.Reader, dst io.Writer, headerMeta, footerMeta map[string]any, opts *Options) error {
	key := opts.key()

	// The metadata block length is part of the fixed header, so the block is
	// serialized and obfuscated up front. This is also what rejects bad
	// caller metadata before the first byte is written.
	headerJSON, err := marshalMeta(headerMeta)
	if err != nil {
		return err
	}
	if err := keystream.XOR(key, headerJSON); err != nil {
		return err
	}

	hdr := header.NewHeader()
	hdr.MetaLength = uint64(len(headerJSON))
	if keystream.IsDefaultKey(key) {
		copy(hdr.Key[:], key)
	}
	buf, err := hdr.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if _, err := dst.Write(buf); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if len(headerJSON) > 0 {
		if _, err := dst.Write(headerJSON); err != nil {
			return fmt.Errorf("failed to write header metadata: %w", err)
		}
	}

	// Body pipeline: compressor into keystream into dst, with the original
	// bytes fed to the digest set on the side.
	wKey, err := keystream.NewWriter(dst, key)
	if err != nil {
		return err
	}
	wBody, err := opts.compression().NewWriter(wKey)
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}
	digests := opts.digestSet()

	chunk := make([]byte, BlockSize)
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			if _, werr := wBody.Write(chunk[:n]); werr != nil {
				return fmt.Errorf("failed to write body: %w", werr)
			}
			if _, werr := digests.Write(chunk[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
	}
	if err := wBody.Close(); err != nil {
		return fmt.Errorf("failed to finish compression: %w", err)
	}

	// Default footer content: caller fields, then one entry per digest,
	// then the original payload length as a JSON number.
	length, sums := digests.Finish()
	var footerJSON []byte
	if !digests.Empty() || footerMeta != nil {
		merged := make(map[string]any, len(footerMeta)+len(sums)+1)
		for k, v := range footerMeta {
			merged[k] = v
		}
		for name, sum := range sums {
			merged[name] = sum
		}
		if !digests.Empty() {
			merged["length"] = length
		}
		if footerJSON, err = marshalMeta(merged); err != nil {
			return err
		}
		if err := keystream.XOR(key, footerJSON); err != nil {
			return err
		}
	}

	ftr := header.NewFooter()
	ftr.MetaLength = uint64(len(footerJSON))
	buf, err = ftr.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode footer: %w", err)
	}
	if len(footerJSON) > 0 {
		if _, err := dst.Write(footerJSON); err != nil {
			return fmt.Errorf("failed to write footer metadata: %w", err)
		}
	}
	if _, err := dst.Write(buf); err != nil {
		return fmt.Errorf("failed to write footer: %w", err)
	}
	return nil
}

// marshalMeta serializes a metadata object to JSON text. A nil map means no
// metadata block at all and yields nil bytes.
func marshalMeta(meta map[string]any) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	buf, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSONArgument, err)
	}
	return buf, nil
}
