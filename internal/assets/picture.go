package assets

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// Picture is an image ready for embedding.
type Picture struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

func (p Picture) Ext() string {
	return "." + p.Format
}

func (p Picture) ContentType() string {
	return "image/" + p.Format
}

// Normalize decodes data and crops it to fill width x height pixels,
// keeping the center. The result is always JPEG.
func Normalize(data []byte, width, height int) (Picture, error) {
	if width <= 0 || height <= 0 {
		return Picture{}, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Picture{}, fmt.Errorf("decode image: %w", err)
	}

	filled := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, filled, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return Picture{}, fmt.Errorf("encode image: %w", err)
	}

	return Picture{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  width,
		Height: height,
	}, nil
}
