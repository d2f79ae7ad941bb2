package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerate_KeepsAspectAndFormat(t *testing.T) {
	src := testPNG(t, 200, 100)

	out, err := Generate(src, 100)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestGenerate_Deterministic(t *testing.T) {
	src := testPNG(t, 64, 64)

	a, err := Generate(src, 32)
	require.NoError(t, err)
	b, err := Generate(src, 32)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate([]byte("not an image"), 100)
	assert.Error(t, err)

	_, err = Generate(testPNG(t, 10, 10), 0)
	assert.Error(t, err)
}
