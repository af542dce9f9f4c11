package util

import (
	"io"
	"math/rand"
)

// RandomReader is an io.Reader producing Size bytes of pseudorandom data.
// It exists for benchmarking the codec and must not be used for anything
// security related. Random payloads are also the worst case for the
// compressor, which makes them a fair throughput baseline.
type RandomReader struct {
	// Size is the number of bytes left to produce.
	Size int64
	rng  *rand.Rand
}

// Assert that RandomReader implements the io.Reader interface.
var _ io.Reader = &RandomReader{}

// NewRandomReader creates a RandomReader producing size bytes from the
// given seed. The same seed always produces the same stream.
func NewRandomReader(size, seed int64) *RandomReader {
	return &RandomReader{Size: size, rng: rand.New(rand.NewSource(seed))}
}

// Read implements io.Reader.
func (r *RandomReader) Read(p []byte) (n int, err error) {
	if r.Size <= 0 {
		return 0, io.EOF
	}
	n = len(p)
	if r.Size < int64(n) {
		n = int(r.Size)
	}
	r.Size -= int64(n)
	if r.rng != nil {
		return r.rng.Read(p[:n])
	}
	return rand.Read(p[:n])
}
