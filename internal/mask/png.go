package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// EncodePNG serializes the mask as a grayscale PNG. PNG is lossless, so a
// decode of the result reproduces the mask pixel for pixel.
func (m *Mask) EncodePNG() ([]byte, error) {
	gray := &image.Gray{
		Pix:    m.pix,
		Stride: m.width,
		Rect:   image.Rect(0, 0, m.width, m.height),
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("failed to encode mask PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG restores a mask from EncodePNG output. Any non-zero pixel in
// the decoded image becomes Inside.
func DecodePNG(data []byte) (*Mask, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask PNG: %w", err)
	}
	b := img.Bounds()
	m := New(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r|g|bl != 0 {
				m.Set(x-b.Min.X, y-b.Min.Y)
			}
		}
	}
	return m, nil
}
