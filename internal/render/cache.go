package render

import (
	"image"
	"math"
)

// signature captures everything the cached base image depends on. The page
// version counter stands in for the object graph and hide-region state,
// since every mutation that can change the base bumps it.
type signature struct {
	version         uint64
	planformOpacity float64
	hideBackground  bool
	textSum         uint64
	hatchSum        uint64
}

// pageCache holds the per-page render state: the composited base image and
// resampled copies per zoom level. Selection and labels are never cached.
type pageCache struct {
	sig    signature
	base   *image.RGBA
	zoomed map[float64]*image.RGBA

	rebuilds int
}

func newPageCache() *pageCache {
	return &pageCache{zoomed: make(map[float64]*image.RGBA)}
}

// valid reports whether the cached base can be reused for sig.
func (c *pageCache) valid(sig signature) bool {
	return c.base != nil && c.sig == sig
}

// store replaces the base image and drops all zoomed copies.
func (c *pageCache) store(sig signature, base *image.RGBA) {
	c.sig = sig
	c.base = base
	c.zoomed = make(map[float64]*image.RGBA)
	c.rebuilds++
}

// zoomedBase returns the cached resampling of the base for the zoom level,
// computing and caching it on first use. Zoom 1 returns the base itself.
func (c *pageCache) zoomedBase(zoom float64) *image.RGBA {
	if zoomIsUnity(zoom) {
		return c.base
	}
	if img, ok := c.zoomed[zoom]; ok {
		return img
	}
	img := resample(c.base, zoom)
	c.zoomed[zoom] = img
	return img
}

func zoomIsUnity(zoom float64) bool {
	return zoom == 0 || math.Abs(zoom-1) < 1e-9
}
