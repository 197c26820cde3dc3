package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessDownscales(t *testing.T) {
	p := NewProcessor(0, 0)
	assert.Equal(t, DefaultMaxDimension, p.MaxDimension)
	assert.Equal(t, DefaultJPEGQuality, p.Quality)

	data, err := p.Process(bytes.NewReader(encodePNG(t, 1600, 1200)))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestProcessPortrait(t *testing.T) {
	data, err := NewProcessor(100, 90).Process(bytes.NewReader(encodePNG(t, 50, 400)))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestProcessKeepsSmallImages(t *testing.T) {
	data, err := NewProcessor(800, 80).Process(bytes.NewReader(encodePNG(t, 320, 200)))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestProcessRejectsUnknownFormats(t *testing.T) {
	_, err := NewProcessor(0, 0).Process(strings.NewReader("GIF89a definitely not a picture"))
	assert.Equal(t, ErrUnsupportedFormat, err)
}

func TestDownscaleMinimumSize(t *testing.T) {
	img := downscale(image.NewRGBA(image.Rect(0, 0, 4000, 1)), 800)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())
}
