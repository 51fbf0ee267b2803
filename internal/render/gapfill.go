package render

import (
	"image"

	"gocv.io/x/gocv"

	"plan-segmenter/internal/mask"
	"plan-segmenter/pkg/geometry"
)

// ReconstructGaps regrows an instance mask across the hidden text and
// hatching pixels it abuts, so that a part painted around a dimension
// label renders as one solid region. Growth never leaves the union of the
// original mask and the hidden area. On any conversion failure the
// original mask is returned untouched.
func ReconstructGaps(m, hidden *mask.Mask, policy GapFillPolicy) *mask.Mask {
	if m == nil || hidden == nil || !m.SameSize(hidden) || !hidden.Any() {
		return m
	}

	src, err := m.ToMat()
	if err != nil {
		Logger().Warn("gap fill skipped", "err", err)
		return m
	}
	defer src.Close()
	hideMat, err := hidden.ToMat()
	if err != nil {
		Logger().Warn("gap fill skipped", "err", err)
		return m
	}
	defer hideMat.Close()

	allowed := gocv.NewMat()
	defer allowed.Close()
	gocv.BitwiseOr(src, hideMat, &allowed)

	grown := grow(src, allowed, policy.MaxGrowIterations)
	defer grown.Close()

	if fragmented(src, policy) {
		// Highly fragmented masks get the hull fill when compact enough;
		// a rejected hull falls through with growth only.
		if hull := hullFill(grown, policy); hull != nil {
			return hull
		}
	} else if componentCount(grown) > 1 {
		// Moderately fragmented: a conservative closing bridges what the
		// constrained dilation could not reach.
		closeGaps(grown, allowed, policy.ClosingKernel)
	}

	out, err := mask.FromMat(grown)
	if err != nil {
		Logger().Warn("gap fill skipped", "err", err)
		return m
	}
	return out
}

// grow dilates src with a 3x3 ellipse, clamped to allowed, until the mask
// stops changing or the iteration cap is hit. Growth is monotonic, so an
// unchanged pixel count means convergence.
func grow(src, allowed gocv.Mat, maxIters int) gocv.Mat {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3))
	defer kernel.Close()

	grown := src.Clone()
	dilated := gocv.NewMat()
	defer dilated.Close()

	count := gocv.CountNonZero(grown)
	for i := 0; i < maxIters; i++ {
		gocv.Dilate(grown, &dilated, kernel)
		gocv.BitwiseAnd(dilated, allowed, &grown)
		next := gocv.CountNonZero(grown)
		if next == count {
			break
		}
		count = next
	}
	return grown
}

// componentCount returns the number of external contours in the mask.
func componentCount(src gocv.Mat) int {
	contours := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	return contours.Size()
}

// fragmented classifies a mask as broken into pieces: either many
// components overall, or several small slivers typical of paint chopped up
// by hatching.
func fragmented(src gocv.Mat, policy GapFillPolicy) bool {
	contours := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	total := contours.Size()
	small := 0
	for i := 0; i < total; i++ {
		if gocv.ContourArea(contours.At(i)) < float64(policy.SmallFragmentArea) {
			small++
		}
	}
	return total >= policy.FragmentThreshold || small >= policy.SmallFragmentThreshold
}

// hullFill replaces a fragmented mask with its filled convex hull, but
// only for compact shapes. Elongated or sparse masks would be badly
// over-approximated, so they keep the grown form unchanged.
func hullFill(grown gocv.Mat, policy GapFillPolicy) *mask.Mask {
	m, err := mask.FromMat(grown)
	if err != nil {
		return nil
	}
	bounds, ok := m.Bounds()
	if !ok {
		return nil
	}
	if bounds.AspectRatio() >= policy.MaxHullAspect {
		return nil
	}
	hull := geometry.ConvexHull(m.InsidePoints())
	if len(hull) < 3 {
		return nil
	}
	hullArea := geometry.PolygonArea(hull)
	if hullArea <= 0 || float64(m.Area())/hullArea <= policy.MinHullFill {
		return nil
	}
	filled := mask.FillPolygon(m.Width(), m.Height(), hull)
	filled.Union(m)
	return filled
}

// closeGaps bridges remaining fragment gaps with a morphological closing,
// keeping the new pixels inside the allowed area.
func closeGaps(grown, allowed gocv.Mat, kernelSize int) {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(kernelSize, kernelSize))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(grown, &closed, gocv.MorphClose, kernel)
	gocv.BitwiseAnd(closed, allowed, &closed)
	gocv.BitwiseOr(grown, closed, &grown)
}
