// Package digest computes the integrity summaries recorded in a cart
// container footer. Digests are taken over the original payload, before
// compression and obfuscation.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Digester is a single named digest over a byte stream. Data is fed through
// the io.Writer side; Sum returns the final hex-encoded value.
type Digester interface {
	io.Writer
	// Name is the footer key to store the finished value under.
	Name() string
	// Sum returns the hex-encoded digest of everything written so far.
	Sum() string
}

type hashDigester struct {
	name string
	hash.Hash
}

func (d *hashDigester) Name() string { return d.name }

func (d *hashDigester) Sum() string {
	return hex.EncodeToString(d.Hash.Sum(nil))
}

// MD5 returns a Digester producing the md5 footer entry.
func MD5() Digester { return &hashDigester{"md5", md5.New()} }

// SHA1 returns a Digester producing the sha1 footer entry.
func SHA1() Digester { return &hashDigester{"sha1", sha1.New()} }

// SHA256 returns a Digester producing the sha256 footer entry.
func SHA256() Digester { return &hashDigester{"sha256", sha256.New()} }

// SHA512 returns a Digester producing the sha512 footer entry.
func SHA512() Digester { return &hashDigester{"sha512", sha512.New()} }

// BLAKE2b returns a Digester producing the blake2b footer entry
// (BLAKE2b-256, unkeyed).
func BLAKE2b() Digester {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b only fails on oversized keys; there is none here.
		panic(err)
	}
	return &hashDigester{"blake2b", h}
}

// Defaults returns the default digest set for cart containers.
func Defaults() []Digester {
	return []Digester{MD5(), SHA1(), SHA256()}
}

// Set accumulates the payload length together with any number of digesters.
// Feeding it in different chunk sizes never changes the final values. A Set
// is single use; create a fresh one per operation.
type Set struct {
	digesters []Digester
	length    uint64
	finished  bool
}

// Assert that the Set struct satisfies the io.Writer interface.
var _ io.Writer = &Set{}

// NewSet creates a Set over the given digesters. An empty set still counts
// bytes.
func NewSet(digesters ...Digester) *Set {
	return &Set{digesters: digesters}
}

// Write implements io.Writer, updating the length and every digester.
func (s *Set) Write(p []byte) (n int, err error) {
	if s.finished {
		panic("digest: write after Finish")
	}
	for _, d := range s.digesters {
		if _, err := d.Write(p); err != nil {
			return 0, err
		}
	}
	s.length += uint64(len(p))
	return len(p), nil
}

// Empty reports whether the set has no digesters configured.
func (s *Set) Empty() bool { return len(s.digesters) == 0 }

// Finish returns the total byte count and the hex digest for each
// configured digester. Finishing a set twice is a logic error and panics.
func (s *Set) Finish() (uint64, map[string]string) {
	if s.finished {
		panic("digest: Finish called twice")
	}
	s.finished = true
	sums := make(map[string]string, len(s.digesters))
	for _, d := range s.digesters {
		sums[d.Name()] = d.Sum()
	}
	return s.length, sums
}
