package paint

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-segmenter/pkg/geometry"
)

// testRaster builds a white RGBA image with an optional filled rectangle.
func testRaster(w, h int, rect image.Rectangle, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if image.Pt(x, y).In(rect) {
				img.SetRGBA(x, y, c)
			} else {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	return img
}

func TestFloodFillUniformRegion(t *testing.T) {
	black := color.RGBA{0, 0, 0, 255}
	img := testRaster(200, 200, image.Rect(50, 50, 100, 100), black)

	e := NewEngine()
	e.SetTolerance(20)
	m, err := e.FloodFill(img, image.Pt(75, 75))
	require.NoError(t, err)

	assert.Equal(t, 2500, m.Area())
	bounds, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, geometry.RectInt{X: 50, Y: 50, Width: 50, Height: 50}, bounds)
}

func TestFloodFillToleranceBoundary(t *testing.T) {
	// Neighbor differs by exactly tol+1 on one channel: excluded.
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.SetRGBA(0, 0, color.RGBA{100, 100, 100, 255})
	img.SetRGBA(1, 0, color.RGBA{105, 100, 100, 255}) // within tol 5
	img.SetRGBA(2, 0, color.RGBA{106, 100, 100, 255}) // one over

	e := NewEngine()
	m, err := e.FloodFill(img, image.Pt(0, 0))
	require.NoError(t, err)
	assert.True(t, m.At(0, 0))
	assert.True(t, m.At(1, 0))
	assert.False(t, m.At(2, 0))
}

func TestFloodFillComparesAgainstSeedColor(t *testing.T) {
	// A slow gradient: fixed-range fill stops where the SEED difference
	// exceeds tolerance, even though each step is within tolerance.
	img := image.NewRGBA(image.Rect(0, 0, 10, 1))
	for x := 0; x < 10; x++ {
		v := uint8(100 + 4*x)
		img.SetRGBA(x, 0, color.RGBA{v, v, v, 255})
	}
	e := NewEngine()
	e.SetTolerance(10)
	m, err := e.FloodFill(img, image.Pt(0, 0))
	require.NoError(t, err)
	assert.True(t, m.At(2, 0))  // diff 8
	assert.False(t, m.At(3, 0)) // diff 12
}

func TestFloodFillOutOfBoundsSeed(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	e := NewEngine()
	m, err := e.FloodFill(img, image.Pt(20, 5))
	assert.ErrorIs(t, err, ErrOutOfBounds)
	require.NotNil(t, m)
	assert.False(t, m.Any())
}

func TestFloodFillDeterminism(t *testing.T) {
	img := testRaster(100, 100, image.Rect(10, 10, 60, 60), color.RGBA{30, 30, 30, 255})
	e := NewEngine()
	a, err := e.FloodFill(img, image.Pt(20, 20))
	require.NoError(t, err)
	b, err := e.FloodFill(img, image.Pt(20, 20))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestFloodFillConnectivity(t *testing.T) {
	// Two black squares touching only diagonally at (5,5)/(4,4).
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	black := color.RGBA{0, 0, 0, 255}
	for y := 2; y < 5; y++ {
		for x := 2; x < 5; x++ {
			img.SetRGBA(x, y, black)
		}
	}
	for y := 5; y < 8; y++ {
		for x := 5; x < 8; x++ {
			img.SetRGBA(x, y, black)
		}
	}

	e := NewEngine()
	m4, err := e.FloodFill(img, image.Pt(3, 3))
	require.NoError(t, err)
	assert.Equal(t, 9, m4.Area())

	e.SetConnectivity(Connect8)
	m8, err := e.FloodFill(img, image.Pt(3, 3))
	require.NoError(t, err)
	assert.Equal(t, 18, m8.Area())
}

func TestPolygonMaskDegenerate(t *testing.T) {
	e := NewEngine()
	_, err := e.PolygonMask(10, 10, []geometry.PointInt{{X: 1, Y: 1}, {X: 5, Y: 5}})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestPolygonMask(t *testing.T) {
	e := NewEngine()
	m, err := e.PolygonMask(40, 40, []geometry.PointInt{
		{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 20, Y: 20}, {X: 10, Y: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, m.Area())
}

func TestStrokeMasks(t *testing.T) {
	e := NewEngine()
	pts := []geometry.PointInt{{X: 5, Y: 20}, {X: 35, Y: 20}}

	line, err := e.LineMask(40, 40, pts)
	require.NoError(t, err)
	free, err := e.FreeformMask(40, 40, pts)
	require.NoError(t, err)

	// Freeform strokes are three times the line width.
	assert.Greater(t, free.Area(), line.Area())
	assert.True(t, free.At(20, 17))
	assert.False(t, line.At(20, 17))

	_, err = e.LineMask(40, 40, pts[:1])
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestEngineSetters(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, uint8(DefaultTolerance), e.Tolerance())
	assert.Equal(t, DefaultLineThickness, e.LineThickness())
	e.SetLineThickness(0)
	assert.Equal(t, 1, e.LineThickness())
}
