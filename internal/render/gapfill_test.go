package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-segmenter/internal/mask"
)

func rectMask(w, h, x0, y0, x1, y1 int) *mask.Mask {
	m := mask.New(w, h)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.Set(x, y)
		}
	}
	return m
}

func TestReconstructGapsBridgesNarrowStrip(t *testing.T) {
	// Two fragments split by a 3px hide strip merge back into one region.
	m := rectMask(60, 20, 5, 2, 25, 18)
	m2 := rectMask(60, 20, 28, 2, 48, 18)
	require.NoError(t, m.Union(m2))
	hidden := rectMask(60, 20, 25, 0, 28, 20)

	out := ReconstructGaps(m, hidden, DefaultGapFillPolicy())
	require.NotNil(t, out)
	assert.True(t, out.At(26, 10), "the hidden strip should be regrown")
	assert.True(t, out.At(10, 10))
	assert.True(t, out.At(40, 10))
}

func TestReconstructGapsRespectsDistance(t *testing.T) {
	// Fragments 100px apart with no intervening hide-mask stay separate.
	m := rectMask(200, 40, 5, 10, 25, 30)
	m2 := rectMask(200, 40, 125, 10, 145, 30)
	require.NoError(t, m.Union(m2))
	hidden := rectMask(200, 40, 0, 0, 3, 3) // far corner, irrelevant

	out := ReconstructGaps(m, hidden, DefaultGapFillPolicy())
	require.NotNil(t, out)
	assert.False(t, out.At(75, 20), "growth must not cross unhidden space")
}

func TestReconstructGapsGrowthStaysInsideHideMask(t *testing.T) {
	m := rectMask(60, 60, 20, 20, 30, 30)
	hidden := rectMask(60, 60, 30, 20, 40, 30)

	out := ReconstructGaps(m, hidden, DefaultGapFillPolicy())
	require.NotNil(t, out)
	assert.True(t, out.At(35, 25), "mask grows into the adjacent hidden area")
	assert.False(t, out.At(50, 25), "growth never leaves mask+hide union")
	assert.False(t, out.At(25, 45))
}

func TestReconstructGapsNilAndMismatch(t *testing.T) {
	m := rectMask(20, 20, 5, 5, 10, 10)
	assert.Same(t, m, ReconstructGaps(m, nil, DefaultGapFillPolicy()))
	assert.Same(t, m, ReconstructGaps(m, mask.New(30, 30), DefaultGapFillPolicy()))
	assert.Same(t, m, ReconstructGaps(m, mask.New(20, 20), DefaultGapFillPolicy()))
}

func TestReconstructGapsClosesModeratelyFragmented(t *testing.T) {
	// Two fragments flank a hidden island that is separated from both by
	// a 2px unhidden gap. Constrained dilation cannot cross the gap, and
	// two large fragments are below every fragmentation threshold, so
	// only the conservative closing can bridge the island.
	m := rectMask(60, 40, 8, 5, 19, 35)
	m2 := rectMask(60, 40, 28, 5, 40, 35)
	require.NoError(t, m.Union(m2))
	hidden := rectMask(60, 40, 21, 5, 26, 35)

	out := ReconstructGaps(m, hidden, DefaultGapFillPolicy())
	require.NotNil(t, out)
	assert.True(t, out.At(23, 20), "closing should fill the hidden island")
	assert.False(t, out.At(19, 20), "closed pixels outside the hide-mask are discarded")
	assert.False(t, out.At(27, 20))
	assert.True(t, out.At(10, 20))
	assert.True(t, out.At(35, 20))
}

func TestReconstructGapsHullFillsFragmentedCluster(t *testing.T) {
	// Five small dots inside a hidden patch classify as fragmented and
	// compact, so the convex hull fills the cluster solid.
	m := mask.New(80, 80)
	for _, c := range [][2]int{{20, 20}, {60, 20}, {20, 60}, {60, 60}, {40, 40}} {
		m.StampDisc(c[0], c[1], 2)
	}
	hidden := rectMask(80, 80, 15, 15, 66, 66)

	out := ReconstructGaps(m, hidden, DefaultGapFillPolicy())
	require.NotNil(t, out)
	assert.True(t, out.At(40, 30), "hull interior should be filled")
	assert.True(t, out.At(30, 40))
	assert.GreaterOrEqual(t, out.Area(), m.Area())
}

func TestDefaultGapFillPolicy(t *testing.T) {
	p := DefaultGapFillPolicy()
	assert.Equal(t, 100, p.MaxGrowIterations)
	assert.Equal(t, 5, p.FragmentThreshold)
	assert.Equal(t, 2000, p.SmallFragmentArea)
	assert.Equal(t, 3, p.SmallFragmentThreshold)
}
