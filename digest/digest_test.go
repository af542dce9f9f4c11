package digest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cartformat/cart/digest"
)

// Reference values computed independently for the exact payload
// "hello world".
const (
	helloMD5    = "5eb63bbbe01eeed093cb22bb8f5acdc3"
	helloSHA1   = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"
	helloSHA256 = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
)

func TestDefaultSet(t *testing.T) {
	assert := assert.New(t)

	set := digest.NewSet(digest.Defaults()...)
	n, err := set.Write([]byte("hello world"))
	assert.NoError(err)
	assert.Equal(11, n)

	length, sums := set.Finish()
	assert.Equal(uint64(11), length)
	assert.Equal(helloMD5, sums["md5"])
	assert.Equal(helloSHA1, sums["sha1"])
	assert.Equal(helloSHA256, sums["sha256"])
}

func TestChunkInvariance(t *testing.T) {
	assert := assert.New(t)

	whole := digest.NewSet(digest.Defaults()...)
	_, err := whole.Write([]byte("hello world"))
	assert.NoError(err)
	wholeLen, wholeSums := whole.Finish()

	chunked := digest.NewSet(digest.Defaults()...)
	for _, part := range []string{"h", "ello", " ", "", "world"} {
		_, err := chunked.Write([]byte(part))
		assert.NoError(err)
	}
	chunkedLen, chunkedSums := chunked.Finish()

	assert.Equal(wholeLen, chunkedLen)
	assert.Equal(wholeSums, chunkedSums)
}

func TestEmptySetCountsBytes(t *testing.T) {
	assert := assert.New(t)

	set := digest.NewSet()
	assert.True(set.Empty())
	_, err := set.Write([]byte("abc"))
	assert.NoError(err)

	length, sums := set.Finish()
	assert.Equal(uint64(3), length)
	assert.Empty(sums)
}

func TestDoubleFinishPanics(t *testing.T) {
	assert := assert.New(t)

	set := digest.NewSet(digest.MD5())
	set.Finish()
	assert.Panics(func() { set.Finish() })

	used := digest.NewSet(digest.MD5())
	used.Finish()
	assert.Panics(func() { used.Write([]byte("late")) })
}

func TestExtraDigesters(t *testing.T) {
	assert := assert.New(t)

	set := digest.NewSet(digest.SHA512(), digest.BLAKE2b())
	_, err := set.Write([]byte("abc"))
	assert.NoError(err)

	_, sums := set.Finish()
	assert.Len(sums["sha512"], 128)
	assert.Len(sums["blake2b"], 64)
	assert.Contains(sums, "sha512")
	assert.Contains(sums, "blake2b")
}
