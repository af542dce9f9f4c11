package cart_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/orcaman/writerseeker"
	"github.com/stretchr/testify/assert"

	"github.com/cartformat/cart"
)

func TestRoundTripFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.bin")
	cartPath := filepath.Join(dir, "input.bin.cart")
	outputPath := filepath.Join(dir, "output.bin")

	payload := []byte("file payload for the round trip")
	assert.NoError(os.WriteFile(inputPath, payload, 0o644))

	assert.NoError(cart.PackFile(inputPath, cartPath, []byte(`{"cat":"dog"}`), nil))
	assert.True(cart.IsCartFile(cartPath))
	assert.False(cart.IsCartFile(inputPath))

	res, err := cart.UnpackFile(cartPath, outputPath, nil)
	assert.NoError(err)
	assert.Nil(res.Body)
	assert.NotEmpty(res.HeaderJSON)
	assert.NotEmpty(res.FooterJSON)

	var hdr map[string]any
	assert.NoError(json.Unmarshal(res.HeaderJSON, &hdr))
	assert.Equal(map[string]any{"cat": "dog"}, hdr)

	output, err := os.ReadFile(outputPath)
	assert.NoError(err)
	assert.Equal(payload, output)

	res.Free()
	res.Free()
	assert.Nil(res.HeaderJSON)
}

func TestRoundTripStream(t *testing.T) {
	assert := assert.New(t)

	payload := []byte("stream payload")
	packed := &writerseeker.WriterSeeker{}
	assert.NoError(cart.PackStream(bytes.NewReader(payload), packed, nil, nil))

	output := &bytes.Buffer{}
	res, err := cart.UnpackStream(packed.BytesReader(), output, nil)
	assert.NoError(err)
	assert.Equal(payload, output.Bytes())
	assert.Nil(res.Body)
	assert.Nil(res.HeaderJSON)
	assert.NotEmpty(res.FooterJSON)
	res.Free()
}

func TestRoundTripData(t *testing.T) {
	assert := assert.New(t)

	payload := []byte("buffer payload")
	packed, err := cart.PackData(payload, []byte(`{"hello":"world"}`), nil)
	assert.NoError(err)
	assert.NotEmpty(packed.Packed)
	assert.True(cart.IsCartData(packed.Packed))

	res, err := cart.UnpackData(packed.Packed, nil)
	assert.NoError(err)
	assert.Equal(payload, res.Body)
	assert.NotEmpty(res.HeaderJSON)
	assert.NotEmpty(res.FooterJSON)

	packed.Free()
	assert.Nil(packed.Packed)
	packed.Free()
	res.Free()
}

func TestPackDeterministic(t *testing.T) {
	assert := assert.New(t)

	// The same payload and metadata must produce identical containers
	// through every input shape.
	payload := []byte("identical bytes either way")
	viaData, err := cart.PackData(payload, []byte(`{"a":1}`), nil)
	assert.NoError(err)

	viaStream := &bytes.Buffer{}
	assert.NoError(cart.PackStream(bytes.NewReader(payload), viaStream, []byte(`{"a":1}`), nil))

	assert.Equal(viaData.Packed, viaStream.Bytes())
}

func TestMetadataOnlyFacade(t *testing.T) {
	assert := assert.New(t)

	packed, err := cart.PackData([]byte("abc"), []byte(`{"hello":"world"}`), nil)
	assert.NoError(err)

	// The data form reaches the footer; neither form produces a body.
	res, err := cart.GetDataMetadataOnly(packed.Packed, nil)
	assert.NoError(err)
	assert.Nil(res.Body)
	assert.NotEmpty(res.HeaderJSON)
	assert.NotEmpty(res.FooterJSON)

	var ftr map[string]any
	assert.NoError(json.Unmarshal(res.FooterJSON, &ftr))
	assert.Equal(float64(3), ftr["length"])

	// The stream form reads the header block alone.
	res, err = cart.GetStreamMetadataOnly(forwardOnly{bytes.NewReader(packed.Packed)}, nil)
	assert.NoError(err)
	assert.Nil(res.Body)
	assert.NotEmpty(res.HeaderJSON)
	assert.Nil(res.FooterJSON)
}

func TestMetadataOnlyFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.bin")
	cartPath := filepath.Join(dir, "input.bin.cart")
	assert.NoError(os.WriteFile(inputPath, []byte("abc"), 0o644))
	assert.NoError(cart.PackFile(inputPath, cartPath, []byte(`{"hello":"world"}`), nil))

	res, err := cart.GetFileMetadataOnly(cartPath, nil)
	assert.NoError(err)
	assert.Nil(res.Body)

	var hdr map[string]any
	assert.NoError(json.Unmarshal(res.HeaderJSON, &hdr))
	assert.Equal(map[string]any{"hello": "world"}, hdr)
}

func TestErrorTaxonomy(t *testing.T) {
	assert := assert.New(t)

	// Null-ish arguments fail fast before any I/O.
	err := cart.PackStream(nil, nil, nil, nil)
	assert.ErrorIs(err, cart.ErrNullArgument)
	assert.Equal(cart.CodeNullArgument, cart.CodeOf(err))

	_, err = cart.PackData(nil, nil, nil)
	assert.ErrorIs(err, cart.ErrNullArgument)
	_, err = cart.UnpackData(nil, nil)
	assert.ErrorIs(err, cart.ErrNullArgument)
	_, err = cart.GetDataMetadataOnly(nil, nil)
	assert.ErrorIs(err, cart.ErrNullArgument)
	_, err = cart.UnpackStream(nil, nil, nil)
	assert.ErrorIs(err, cart.ErrNullArgument)
	_, err = cart.GetStreamMetadataOnly(nil, nil)
	assert.ErrorIs(err, cart.ErrNullArgument)

	// Empty paths are string-argument failures, missing files are open
	// failures.
	err = cart.PackFile("", "", nil, nil)
	assert.Equal(cart.CodeBadArgumentString, cart.CodeOf(err))
	err = cart.PackFile(filepath.Join(t.TempDir(), "missing"), "out", nil, nil)
	assert.ErrorIs(err, cart.ErrOpenFileRead)
	assert.Equal(cart.CodeOpenFileRead, cart.CodeOf(err))
	_, err = cart.UnpackFile("", "out", nil)
	assert.Equal(cart.CodeBadArgumentString, cart.CodeOf(err))

	// Metadata must be a JSON object.
	for _, bad := range []string{`[1,2]`, `null`, `"str"`, `{broken`} {
		_, err := cart.PackData([]byte("abc"), []byte(bad), nil)
		assert.ErrorIs(err, cart.ErrBadJSONArgument, "metadata %q", bad)
		assert.Equal(cart.CodeBadJSONArgument, cart.CodeOf(err))
	}

	// Decoding something that is not cart data is a processing error.
	_, err = cart.UnpackData([]byte("definitely not cart data, but long enough"), nil)
	assert.Error(err)
	assert.Equal(cart.CodeProcessing, cart.CodeOf(err))

	assert.Equal(cart.CodeOK, cart.CodeOf(nil))
}

func TestFreeIdempotent(t *testing.T) {
	assert := assert.New(t)

	// Zero values and nil pointers are safe to free, repeatedly.
	var pr cart.PackResult
	pr.Free()
	pr.Free()
	var ur cart.UnpackResult
	ur.Free()
	ur.Free()

	var nilPr *cart.PackResult
	nilPr.Free()
	var nilUr *cart.UnpackResult
	nilUr.Free()
	assert.Nil(ur.Body)
}

func TestDetectionFacade(t *testing.T) {
	assert := assert.New(t)

	assert.False(cart.IsCartFile(filepath.Join(t.TempDir(), "missing")))
	assert.False(cart.IsCartStream(nil))
	assert.False(cart.IsCartData(nil))
	assert.False(cart.IsCartData([]byte{}))
	assert.False(cart.IsCartData([]byte("CART but actually not")))
}
