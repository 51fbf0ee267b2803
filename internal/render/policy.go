package render

// GapFillPolicy tunes how instance masks are regrown across hidden text
// and hatching regions before compositing. Zero values are not usable;
// start from DefaultGapFillPolicy.
type GapFillPolicy struct {
	// MaxGrowIterations caps the constrained dilation loop.
	MaxGrowIterations int
	// FragmentThreshold is the component count at which a mask counts as
	// fragmented regardless of fragment size.
	FragmentThreshold int
	// SmallFragmentArea is the pixel area below which a component counts
	// as small.
	SmallFragmentArea int
	// SmallFragmentThreshold is the small-component count at which a mask
	// counts as fragmented.
	SmallFragmentThreshold int
	// MaxHullAspect rejects convex-hull filling for elongated shapes,
	// where a hull would bloat the silhouette.
	MaxHullAspect float64
	// MinHullFill rejects convex-hull filling for sparse shapes whose
	// pixels cover less than this fraction of their bounding box.
	MinHullFill float64
	// ClosingKernel is the square kernel size of the morphological closing
	// fallback.
	ClosingKernel int
}

// DefaultGapFillPolicy returns the tuning that works well for scanned
// plans at 150-300 DPI.
func DefaultGapFillPolicy() GapFillPolicy {
	return GapFillPolicy{
		MaxGrowIterations:      100,
		FragmentThreshold:      5,
		SmallFragmentArea:      2000,
		SmallFragmentThreshold: 3,
		MaxHullAspect:          5.0,
		MinHullFill:            0.05,
		ClosingKernel:          11,
	}
}
