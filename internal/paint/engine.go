// Package paint provides the segmentation engine that turns user gestures
// (flood-fill seeds, polygons, freeform strokes, line chains) into binary
// masks aligned with a page raster.
package paint

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"plan-segmenter/internal/mask"
	"plan-segmenter/pkg/colorutil"
	"plan-segmenter/pkg/geometry"
)

var (
	// ErrDegenerateGeometry is returned when a primitive receives fewer
	// points than its minimum (3 for polygons, 2 for strokes and lines).
	ErrDegenerateGeometry = errors.New("not enough points for shape")

	// ErrEmptyRegion is returned when a primitive produces a mask with no
	// covered pixels.
	ErrEmptyRegion = errors.New("mask covers no pixels")

	// ErrOutOfBounds is returned when a flood-fill seed lies outside the
	// raster.
	ErrOutOfBounds = errors.New("seed point outside raster")
)

// Connectivity selects the neighborhood used by flood fill.
type Connectivity int

const (
	Connect4 Connectivity = 4
	Connect8 Connectivity = 8
)

// Engine holds the process-wide painting configuration. It is plain mutable
// state with explicit setters; callers hold or pass the instance, there is
// no package-level singleton.
type Engine struct {
	tolerance       uint8
	lineThickness   int
	strokeThickness int
	connectivity    Connectivity
}

// DefaultTolerance and friends are the engine defaults, matching the values
// the segmenter ships with.
const (
	DefaultTolerance     = 5
	DefaultLineThickness = 3
)

// NewEngine creates an engine with default tolerance and thickness.
func NewEngine() *Engine {
	return &Engine{
		tolerance:       DefaultTolerance,
		lineThickness:   DefaultLineThickness,
		strokeThickness: DefaultLineThickness * 3,
		connectivity:    Connect4,
	}
}

// SetTolerance sets the per-channel flood-fill color tolerance.
func (e *Engine) SetTolerance(tol uint8) { e.tolerance = tol }

// Tolerance returns the per-channel flood-fill color tolerance.
func (e *Engine) Tolerance() uint8 { return e.tolerance }

// SetLineThickness sets the width of line-chain masks. Freeform strokes use
// three times this width.
func (e *Engine) SetLineThickness(px int) {
	if px < 1 {
		px = 1
	}
	e.lineThickness = px
	e.strokeThickness = px * 3
}

// LineThickness returns the line-chain stroke width.
func (e *Engine) LineThickness() int { return e.lineThickness }

// SetConnectivity selects 4- or 8-connected flood fill.
func (e *Engine) SetConnectivity(c Connectivity) {
	if c != Connect8 {
		c = Connect4
	}
	e.connectivity = c
}

// FloodFill grows a connected region from seed over all pixels whose color
// is within the engine tolerance of the SEED color on every channel
// (fixed-range fill). The result depends only on the raster, the seed and
// the tolerance.
func (e *Engine) FloodFill(raster image.Image, seed image.Point) (*mask.Mask, error) {
	if raster == nil {
		return nil, fmt.Errorf("flood fill: %w", ErrOutOfBounds)
	}
	rgba := ensureRGBA(raster)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()

	m := mask.New(w, h)
	if seed.X < 0 || seed.X >= w || seed.Y < 0 || seed.Y >= h {
		return m, fmt.Errorf("flood fill seed (%d,%d): %w", seed.X, seed.Y, ErrOutOfBounds)
	}

	seedColor := rgbaAt(rgba, seed.X, seed.Y)
	tol := e.tolerance

	visited := make([]bool, w*h)
	queue := make([]image.Point, 0, 256)

	try := func(x, y int) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		idx := y*w + x
		if visited[idx] {
			return
		}
		visited[idx] = true
		if !colorutil.WithinTolerance(rgbaAt(rgba, x, y), seedColor, tol) {
			return
		}
		m.Set(x, y)
		queue = append(queue, image.Point{X: x, Y: y})
	}

	try(seed.X, seed.Y)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		try(p.X-1, p.Y)
		try(p.X+1, p.Y)
		try(p.X, p.Y-1)
		try(p.X, p.Y+1)
		if e.connectivity == Connect8 {
			try(p.X-1, p.Y-1)
			try(p.X+1, p.Y-1)
			try(p.X-1, p.Y+1)
			try(p.X+1, p.Y+1)
		}
	}

	if !m.Any() {
		return m, fmt.Errorf("flood fill at (%d,%d): %w", seed.X, seed.Y, ErrEmptyRegion)
	}
	return m, nil
}

// PolygonMask rasterizes a closed polygon. The polygon is auto-closed and
// filled with the non-zero winding rule (see mask.FillPolygon for the
// self-intersection semantics). Requires at least 3 points.
func (e *Engine) PolygonMask(width, height int, points []geometry.PointInt) (*mask.Mask, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("polygon needs >=3 points, got %d: %w", len(points), ErrDegenerateGeometry)
	}
	m := mask.FillPolygon(width, height, toFloat(points))
	if !m.Any() {
		return m, fmt.Errorf("polygon mask: %w", ErrEmptyRegion)
	}
	return m, nil
}

// FreeformMask rasterizes a freeform stroke as thick segments with round
// caps and joins. Requires at least 2 points.
func (e *Engine) FreeformMask(width, height int, points []geometry.PointInt) (*mask.Mask, error) {
	return e.strokeMask(width, height, points, e.strokeThickness)
}

// LineMask rasterizes a structural line chain (spar, longeron). The
// geometry is identical to FreeformMask at line thickness; only the
// semantic role differs.
func (e *Engine) LineMask(width, height int, points []geometry.PointInt) (*mask.Mask, error) {
	return e.strokeMask(width, height, points, e.lineThickness)
}

func (e *Engine) strokeMask(width, height int, points []geometry.PointInt, thickness int) (*mask.Mask, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("stroke needs >=2 points, got %d: %w", len(points), ErrDegenerateGeometry)
	}
	m := mask.Stroke(width, height, toFloat(points), thickness)
	if !m.Any() {
		return m, fmt.Errorf("stroke mask: %w", ErrEmptyRegion)
	}
	return m, nil
}

func toFloat(points []geometry.PointInt) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = p.ToFloat()
	}
	return out
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	i := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	return color.RGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: img.Pix[i+3]}
}

// ensureRGBA returns img as *image.RGBA, converting once if necessary.
func ensureRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
