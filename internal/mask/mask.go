// Package mask provides page-sized binary pixel masks and the raster
// primitives used to build them.
package mask

import (
	"errors"
	"fmt"
	"hash/fnv"

	"plan-segmenter/pkg/geometry"
)

// ErrDimensionMismatch is returned when a mask's dimensions disagree with
// the raster or mask it is combined with.
var ErrDimensionMismatch = errors.New("mask dimensions do not match")

// Inside and Outside are the two legal pixel values of a Mask.
const (
	Outside uint8 = 0
	Inside  uint8 = 255
)

// Mask is a binary pixel mask aligned 1:1 with a page raster. Pixels are
// either Inside or Outside.
type Mask struct {
	width  int
	height int
	pix    []uint8
}

// New creates an all-Outside mask of the given dimensions.
func New(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height),
	}
}

// FromBytes creates a mask from a row-major byte buffer. Any non-zero byte
// becomes Inside. The buffer length must equal width*height.
func FromBytes(width, height int, data []uint8) (*Mask, error) {
	if len(data) != width*height {
		return nil, fmt.Errorf("buffer is %d bytes for %dx%d mask: %w",
			len(data), width, height, ErrDimensionMismatch)
	}
	m := New(width, height)
	for i, v := range data {
		if v != 0 {
			m.pix[i] = Inside
		}
	}
	return m, nil
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// Pix returns the underlying row-major pixel buffer. Callers must not
// resize it.
func (m *Mask) Pix() []uint8 { return m.pix }

// At reports whether the pixel (x, y) is Inside. Out-of-bounds pixels are
// Outside.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.pix[y*m.width+x] != 0
}

// Set marks the pixel (x, y) Inside. Out-of-bounds pixels are ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.pix[y*m.width+x] = Inside
}

// Clear marks the pixel (x, y) Outside. Out-of-bounds pixels are ignored.
func (m *Mask) Clear(x, y int) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.pix[y*m.width+x] = Outside
}

// SameSize reports whether the other mask has identical dimensions.
func (m *Mask) SameSize(other *Mask) bool {
	return other != nil && m.width == other.width && m.height == other.height
}

// Matches reports whether the mask matches a raster of the given dimensions.
func (m *Mask) Matches(width, height int) bool {
	return m.width == width && m.height == height
}

// Union sets every pixel that is Inside in other. Dimensions must match.
func (m *Mask) Union(other *Mask) error {
	if !m.SameSize(other) {
		return ErrDimensionMismatch
	}
	for i, v := range other.pix {
		if v != 0 {
			m.pix[i] = Inside
		}
	}
	return nil
}

// Any reports whether at least one pixel is Inside.
func (m *Mask) Any() bool {
	for _, v := range m.pix {
		if v != 0 {
			return true
		}
	}
	return false
}

// Area returns the number of Inside pixels.
func (m *Mask) Area() int {
	n := 0
	for _, v := range m.pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Bounds returns the tight bounding box of the Inside pixels. ok is false
// when the mask is empty.
func (m *Mask) Bounds() (r geometry.RectInt, ok bool) {
	minX, minY := m.width, m.height
	maxX, maxY := -1, -1
	for y := 0; y < m.height; y++ {
		row := m.pix[y*m.width : (y+1)*m.width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return geometry.RectInt{}, false
	}
	return geometry.RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}, true
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	c := New(m.width, m.height)
	copy(c.pix, m.pix)
	return c
}

// Equal reports whether both masks have identical dimensions and pixels.
func (m *Mask) Equal(other *Mask) bool {
	if !m.SameSize(other) {
		return false
	}
	for i, v := range m.pix {
		if (v != 0) != (other.pix[i] != 0) {
			return false
		}
	}
	return true
}

// Checksum returns a content hash of the mask, used for cheap change
// detection of externally supplied hide-masks.
func (m *Mask) Checksum() uint64 {
	h := fnv.New64a()
	h.Write(m.pix)
	return h.Sum64()
}

// Centroid returns the mean position of the Inside pixels. ok is false when
// the mask is empty.
func (m *Mask) Centroid() (p geometry.Point2D, ok bool) {
	var sumX, sumY, n float64
	for y := 0; y < m.height; y++ {
		row := m.pix[y*m.width : (y+1)*m.width]
		for x, v := range row {
			if v != 0 {
				sumX += float64(x)
				sumY += float64(y)
				n++
			}
		}
	}
	if n == 0 {
		return geometry.Point2D{}, false
	}
	return geometry.Point2D{X: sumX / n, Y: sumY / n}, true
}

// StampDisc paints a filled disc of the given radius centered at (cx, cy),
// clipped to the mask bounds. Radius 0 paints a single pixel.
func (m *Mask) StampDisc(cx, cy, radius int) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				m.Set(cx+dx, cy+dy)
			}
		}
	}
}

// EdgePixels returns the Inside pixels that touch an Outside (or border)
// pixel through 4-connectivity. This is the external contour used for
// selection highlighting.
func (m *Mask) EdgePixels() []geometry.PointInt {
	var edge []geometry.PointInt
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.pix[y*m.width+x] == 0 {
				continue
			}
			if !m.At(x-1, y) || !m.At(x+1, y) || !m.At(x, y-1) || !m.At(x, y+1) {
				edge = append(edge, geometry.PointInt{X: x, Y: y})
			}
		}
	}
	return edge
}

// InsidePoints returns the coordinates of every Inside pixel.
func (m *Mask) InsidePoints() []geometry.Point2D {
	var pts []geometry.Point2D
	for y := 0; y < m.height; y++ {
		row := m.pix[y*m.width : (y+1)*m.width]
		for x, v := range row {
			if v != 0 {
				pts = append(pts, geometry.Point2D{X: float64(x), Y: float64(y)})
			}
		}
	}
	return pts
}
