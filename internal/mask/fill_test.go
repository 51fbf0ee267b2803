package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plan-segmenter/pkg/geometry"
)

func pts(xy ...float64) []geometry.Point2D {
	out := make([]geometry.Point2D, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geometry.Point2D{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestFillPolygonSquare(t *testing.T) {
	m := FillPolygon(40, 40, pts(10, 10, 20, 10, 20, 20, 10, 20))
	assert.Equal(t, 100, m.Area())
	assert.True(t, m.At(10, 10))
	assert.True(t, m.At(19, 19))
	assert.False(t, m.At(20, 20))
	assert.False(t, m.At(9, 15))
}

func TestFillPolygonTriangleArea(t *testing.T) {
	poly := pts(5, 5, 35, 5, 5, 35)
	m := FillPolygon(40, 40, poly)
	want := geometry.PolygonArea(poly)
	assert.InEpsilon(t, want, float64(m.Area()), 0.05)
}

func TestFillPolygonTooFewPoints(t *testing.T) {
	m := FillPolygon(10, 10, pts(1, 1, 5, 5))
	assert.False(t, m.Any())
}

func TestFillPolygonWindingNotParity(t *testing.T) {
	// The same square traced twice has winding 2 everywhere inside. The
	// even-odd rule would empty it; non-zero winding keeps it filled.
	twice := pts(
		10, 10, 20, 10, 20, 20, 10, 20,
		10, 10, 20, 10, 20, 20, 10, 20,
	)
	m := FillPolygon(40, 40, twice)
	assert.Equal(t, 100, m.Area())
}

func TestFillPolygonBowTie(t *testing.T) {
	// A continuous bow-tie keeps winding ±1 in both lobes; both fill.
	m := FillPolygon(40, 40, pts(0, 0, 20, 20, 20, 0, 0, 20))
	assert.True(t, m.At(2, 10))
	assert.True(t, m.At(18, 10))
	assert.False(t, m.At(10, 2))
	assert.False(t, m.At(10, 18))
}

func TestStroke(t *testing.T) {
	m := Stroke(40, 40, pts(5, 20, 35, 20), 5)
	assert.True(t, m.At(20, 20))
	assert.True(t, m.At(20, 18))
	assert.False(t, m.At(20, 10))
	assert.False(t, m.At(0, 0))

	empty := Stroke(40, 40, pts(5, 20), 5)
	assert.False(t, empty.Any())
}
