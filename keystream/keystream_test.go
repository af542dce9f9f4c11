package keystream_test

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cartformat/cart/keystream"
)

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)

	plaintext := make([]byte, 100000)
	rand.New(rand.NewSource(1)).Read(plaintext)

	// Encrypt through the Writer.
	ciphertext := &bytes.Buffer{}
	w, err := keystream.NewWriter(ciphertext, keystream.DefaultKey())
	assert.NoError(err)
	_, err = w.Write(plaintext)
	assert.NoError(err)
	assert.NotEqual(plaintext, ciphertext.Bytes())

	// Decrypt through the Reader.
	r, err := keystream.NewReader(bytes.NewReader(ciphertext.Bytes()), keystream.DefaultKey())
	assert.NoError(err)
	decrypted, err := io.ReadAll(r)
	assert.NoError(err)
	assert.Equal(plaintext, decrypted)
}

func TestChunkInvariance(t *testing.T) {
	assert := assert.New(t)

	plaintext := make([]byte, 50000)
	rand.New(rand.NewSource(2)).Read(plaintext)

	// Single shot via XOR.
	single := make([]byte, len(plaintext))
	copy(single, plaintext)
	assert.NoError(keystream.XOR(keystream.DefaultKey(), single))

	// Arbitrary chunk sizes through the Writer.
	chunked := &bytes.Buffer{}
	w, err := keystream.NewWriter(chunked, keystream.DefaultKey())
	assert.NoError(err)
	for pos, i := 0, 1; pos < len(plaintext); i++ {
		end := pos + i*7%1000 + 1
		if end > len(plaintext) {
			end = len(plaintext)
		}
		_, err = w.Write(plaintext[pos:end])
		assert.NoError(err)
		pos = end
	}
	assert.Equal(single, chunked.Bytes())

	// Byte-at-a-time through the Reader.
	r, err := keystream.NewReader(bytes.NewReader(single), keystream.DefaultKey())
	assert.NoError(err)
	for i := range plaintext {
		b, err := r.ReadByte()
		assert.NoError(err)
		if plaintext[i] != b {
			t.Fatalf("byte %d differs after round trip", i)
		}
	}
	_, err = r.ReadByte()
	assert.ErrorIs(err, io.EOF)
}

func TestSelfInverse(t *testing.T) {
	assert := assert.New(t)

	data := []byte("hello world")
	assert.NoError(keystream.XOR(keystream.DefaultKey(), data))
	assert.NoError(keystream.XOR(keystream.DefaultKey(), data))
	assert.Equal([]byte("hello world"), data)
}

func TestInvalidKeyLength(t *testing.T) {
	assert := assert.New(t)

	_, err := keystream.NewReader(bytes.NewReader(nil), []byte("short"))
	assert.ErrorIs(err, keystream.ErrInvalidKeyLength)
	_, err = keystream.NewWriter(io.Discard, nil)
	assert.ErrorIs(err, keystream.ErrInvalidKeyLength)
	assert.ErrorIs(keystream.XOR(make([]byte, 17), nil), keystream.ErrInvalidKeyLength)
}

func TestDefaultKey(t *testing.T) {
	assert := assert.New(t)

	key := keystream.DefaultKey()
	assert.Len(key, keystream.KeySize)
	assert.True(keystream.IsDefaultKey(key))

	// Mutating the returned copy must not affect later callers.
	key[0] ^= 0xff
	assert.False(keystream.IsDefaultKey(key))
	assert.True(keystream.IsDefaultKey(keystream.DefaultKey()))
}
