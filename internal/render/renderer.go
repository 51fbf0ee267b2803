package render

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"plan-segmenter/internal/mask"
	"plan-segmenter/internal/model"
	"plan-segmenter/internal/page"
)

// DefaultPlanformOpacity is the overlay opacity of the planform category.
// The planform usually underlies everything else, so it is kept faint.
const DefaultPlanformOpacity = 0.3

// objectOpacity is the overlay opacity of every non-planform category.
const objectOpacity = 0.7

// Options are the per-call render parameters. The zero value renders at
// native resolution with labels off and the background visible.
type Options struct {
	// Zoom is the resampling factor; 0 and 1 both mean native resolution.
	Zoom float64
	// ShowLabels draws one name label per instance.
	ShowLabels bool
	// PlanformOpacity overrides DefaultPlanformOpacity when non-zero.
	PlanformOpacity float64
	// HideBackground composites onto a blank page instead of the raster.
	HideBackground bool
	// HideText suppresses the page's combined text regions.
	HideText bool
	// HideHatch suppresses the page's combined hatching regions.
	HideHatch bool
}

// layer is one instance's contribution to the base image: a reconstructed
// mask, its category color, and opacity. The base is a pure fold over the
// collected layers.
type layer struct {
	mask  *mask.Mask
	color color.RGBA
	alpha float64
}

// Renderer composites pages from the document graph, caching the
// selection-independent base image per page and invalidating it off the
// page version counter.
type Renderer struct {
	caches map[string]*pageCache
	policy GapFillPolicy
}

// New creates a renderer with the default gap-fill policy.
func New() *Renderer {
	return &Renderer{
		caches: make(map[string]*pageCache),
		policy: DefaultGapFillPolicy(),
	}
}

// SetGapFillPolicy replaces the occlusion-recovery tuning and forces a
// rebuild of every cached page.
func (r *Renderer) SetGapFillPolicy(p GapFillPolicy) {
	r.policy = p
	r.InvalidateAll()
}

// Invalidate drops the cached base of one page.
func (r *Renderer) Invalidate(pageID string) {
	delete(r.caches, pageID)
}

// InvalidateAll drops every cached base.
func (r *Renderer) InvalidateAll() {
	r.caches = make(map[string]*pageCache)
}

// Rebuilds returns how many times the page's base image has been rebuilt.
func (r *Renderer) Rebuilds(pageID string) int {
	if c, ok := r.caches[pageID]; ok {
		return c.rebuilds
	}
	return 0
}

// Render composites the page into a display-ready image: cached base,
// then per-frame selection highlight, pending-group outlines and labels,
// then zoom resampling. A missing page or raster yields a placeholder.
func (r *Renderer) Render(doc *model.Document, pageID string, state *model.EditorState, opts Options) *image.RGBA {
	pg, ok := doc.Page(pageID)
	if !ok || pg.Raster == nil {
		Logger().Warn("rendering placeholder", "page", pageID)
		return page.Placeholder()
	}

	var textMask, hatchMask *mask.Mask
	if opts.HideText {
		textMask = pg.CombinedTextMask()
	}
	if opts.HideHatch {
		hatchMask = pg.CombinedHatchMask()
	}

	opacity := opts.PlanformOpacity
	if opacity == 0 {
		opacity = DefaultPlanformOpacity
	}

	sig := signature{
		version:         pg.Version(),
		planformOpacity: opacity,
		hideBackground:  opts.HideBackground,
	}
	if textMask != nil {
		sig.textSum = textMask.Checksum()
	}
	if hatchMask != nil {
		sig.hatchSum = hatchMask.Checksum()
	}

	cache, ok := r.caches[pageID]
	if !ok {
		cache = newPageCache()
		r.caches[pageID] = cache
	}
	if !cache.valid(sig) {
		Logger().Debug("rebuilding base", "page", pageID, "version", sig.version)
		cache.store(sig, r.rebuildBase(doc, pg, opacity, opts.HideBackground, textMask, hatchMask))
	}

	zoom := opts.Zoom
	if zoomIsUnity(zoom) {
		zoom = 1
	}
	frame := cloneRGBA(cache.zoomedBase(zoom))
	drawOverlay(frame, doc, pageID, state, zoom, opts.ShowLabels)
	return frame
}

// Thumbnail renders the page's base image (no overlay) scaled so its long
// side is maxDim pixels. It renders with the caller's options so the cached
// base is shared with the interactive view; zoom and labels are forced off.
func (r *Renderer) Thumbnail(doc *model.Document, pageID string, maxDim int, opts Options) *image.RGBA {
	opts.Zoom = 0
	opts.ShowLabels = false
	full := r.Render(doc, pageID, nil, opts)
	w, h := full.Rect.Dx(), full.Rect.Dy()
	long := w
	if h > long {
		long = h
	}
	if long <= maxDim || long == 0 {
		return full
	}
	return resample(full, float64(maxDim)/float64(long))
}

// rebuildBase composites the selection-independent page image: cleaned
// raster (or blank), then every visible instance's reconstructed mask as
// one accumulated (mask, color, alpha) layer.
func (r *Renderer) rebuildBase(doc *model.Document, pg *model.Page, planformOpacity float64, hideBackground bool, textMask, hatchMask *mask.Mask) *image.RGBA {
	w, h := pg.Size()
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	if hideBackground {
		fillWhite(canvas)
	} else {
		copy(canvas.Pix, pg.Raster.Pix)
	}

	hidden := combineHidden(w, h, textMask, hatchMask)
	if hidden != nil && !hideBackground {
		paintMask(canvas, hidden, color.RGBA{255, 255, 255, 255}, 1)
	}

	for _, l := range r.collectLayers(doc, pg, planformOpacity, hidden) {
		paintMask(canvas, l.mask, l.color, l.alpha)
	}
	return canvas
}

// collectLayers walks the visible objects on the page and produces one
// layer per instance, never merging masks across instances. Element masks
// that do not match the raster are skipped and logged.
func (r *Renderer) collectLayers(doc *model.Document, pg *model.Page, planformOpacity float64, hidden *mask.Mask) []layer {
	w, h := pg.Size()
	cats := doc.CategoryMap()
	var layers []layer
	for _, obj := range doc.ObjectsForPage(pg.ID) {
		cat := cats[obj.Category]
		if cat == nil || !cat.Visible {
			continue
		}
		alpha := objectOpacity
		if obj.Category == model.CategoryPlanform {
			alpha = planformOpacity
		}
		for _, inst := range obj.Instances {
			if inst.PageID != pg.ID {
				continue
			}
			union := mask.New(w, h)
			any := false
			for _, elem := range inst.Elements {
				if elem.Mask == nil || !elem.Mask.Matches(w, h) {
					Logger().Warn("skipping mismatched element mask",
						"object", obj.Name, "element", elem.ID)
					continue
				}
				union.Union(elem.Mask)
				any = true
			}
			if !any {
				continue
			}
			if hidden != nil {
				union = ReconstructGaps(union, hidden, r.policy)
			}
			layers = append(layers, layer{mask: union, color: cat.Color, alpha: alpha})
		}
	}
	return layers
}

func combineHidden(w, h int, textMask, hatchMask *mask.Mask) *mask.Mask {
	var hidden *mask.Mask
	for _, m := range []*mask.Mask{textMask, hatchMask} {
		if m == nil || !m.Matches(w, h) || !m.Any() {
			continue
		}
		if hidden == nil {
			hidden = m.Clone()
		} else {
			hidden.Union(m)
		}
	}
	return hidden
}

// paintMask alpha-blends a solid color over the canvas wherever the mask
// is inside.
func paintMask(dst *image.RGBA, m *mask.Mask, c color.RGBA, alpha float64) {
	w, h := m.Width(), m.Height()
	pix := m.Pix()
	for y := 0; y < h; y++ {
		row := pix[y*w : (y+1)*w]
		for x, v := range row {
			if v == 0 {
				continue
			}
			o := dst.PixOffset(x, y)
			dst.Pix[o+0] = blend(dst.Pix[o+0], c.R, alpha)
			dst.Pix[o+1] = blend(dst.Pix[o+1], c.G, alpha)
			dst.Pix[o+2] = blend(dst.Pix[o+2], c.B, alpha)
			dst.Pix[o+3] = 255
		}
	}
}

func blend(dst, src uint8, alpha float64) uint8 {
	return uint8(float64(dst)*(1-alpha) + float64(src)*alpha + 0.5)
}

func fillWhite(img *image.RGBA) {
	for i := range img.Pix {
		img.Pix[i] = 255
	}
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// resample scales the image by factor using bilinear interpolation.
func resample(src *image.RGBA, factor float64) *image.RGBA {
	w := int(float64(src.Rect.Dx())*factor + 0.5)
	h := int(float64(src.Rect.Dy())*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
	return dst
}
