// Package thumbnail renders the resized copies of uploaded images.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Generate resizes src to the given width keeping its aspect ratio and
// encodes the result in the source format. The same input always yields the
// same bytes.
func Generate(src []byte, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid thumbnail width %d", width)
	}
	img, name, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		format = imaging.PNG
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return nil, fmt.Errorf("encode %s thumbnail: %w", name, err)
	}
	return buf.Bytes(), nil
}
