// Package imaging normalizes uploaded item pictures.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // register decoder
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

const (
	// DefaultMaxDimension is the maximum width or height for stored images.
	DefaultMaxDimension = 800
	// DefaultJPEGQuality is the compression quality for JPEG output.
	DefaultJPEGQuality = 80
	// MIME is the type of every processed image.
	MIME = "image/jpeg"
)

// ErrUnsupportedFormat is returned for anything else than JPEG and PNG pictures.
var ErrUnsupportedFormat = errors.New("unsupported image format (only JPEG and PNG accepted)")

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// A Processor downscales and re-encodes pictures.
type Processor struct {
	MaxDimension int
	Quality      int
}

// NewProcessor returns a Processor, zero values are replaced by the defaults.
func NewProcessor(maxDimension, quality int) *Processor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Processor{MaxDimension: maxDimension, Quality: quality}
}

// Process validates the format by sniffing bytes, downscales the picture
// if larger than MaxDimension and re-encodes it as JPEG.
func (p *Processor) Process(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading image data")
	}

	// Client headers are not trusted.
	if !AllowedMIME[http.DetectContentType(data)] {
		return nil, ErrUnsupportedFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}

	img = downscale(img, p.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, errors.Wrap(err, "encoding JPEG")
	}
	return buf.Bytes(), nil
}

// downscale resizes the image so neither dimension exceeds maxDim, preserving the aspect ratio.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
