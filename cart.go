// Package cart implements the CART container format, used to store and
// transfer potentially malicious files together with JSON metadata. The
// payload is compressed and obfuscated with a keystream so that the
// container cannot be executed or opened by the tools that would handle the
// original file, while remaining fully reversible. The obfuscation is not a
// security boundary.
//
// A container is laid out as a fixed binary header, an obfuscated JSON
// metadata block, the transformed payload, a second obfuscated JSON block
// carrying integrity digests, and a fixed trailer that records where that
// block starts. Pack, Unpack, ReadMetadata and IsCart operate over generic
// readers and writers; the File, Stream and Data variants in this package
// adapt them to paths, open streams and in-memory buffers.
package cart

import (
	"github.com/cartformat/cart/compress"
	"github.com/cartformat/cart/digest"
	"github.com/cartformat/cart/keystream"
)

// BlockSize is the chunk size used by the streaming pipelines.
const BlockSize = 64 * 1024

// Options configures a pack or unpack operation. The zero value (and a nil
// pointer) select the defaults: the well-known obfuscation key, zlib
// compression, and the md5/sha1/sha256 digest set.
type Options struct {
	// Key overrides the obfuscation key. It must be keystream.KeySize bytes.
	// When set, the container's key marker is zeroed and the consumer must
	// be given the same key to unpack.
	Key []byte
	// Compression selects the body transform.
	Compression compress.Mode
	// Digesters produces the digest set recorded in the footer. Each
	// operation needs fresh digester state, hence a constructor rather than
	// instances. Return an empty slice to disable digests entirely.
	Digesters func() []digest.Digester
}

// key returns the effective obfuscation key.
func (o *Options) key() []byte {
	if o == nil || o.Key == nil {
		return keystream.DefaultKey()
	}
	return o.Key
}

// userKey returns the caller-supplied key override, or nil.
func (o *Options) userKey() []byte {
	if o == nil {
		return nil
	}
	return o.Key
}

func (o *Options) compression() compress.Mode {
	if o == nil {
		return compress.Zlib
	}
	return o.Compression
}

func (o *Options) digestSet() *digest.Set {
	if o == nil || o.Digesters == nil {
		return digest.NewSet(digest.Defaults()...)
	}
	return digest.NewSet(o.Digesters()...)
}
