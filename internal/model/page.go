package model

import (
	"image"

	"plan-segmenter/internal/mask"
)

// RegionSource records where a hide-region came from.
type RegionSource string

const (
	SourceAuto   RegionSource = "auto"   // supplied by an external detector
	SourceManual RegionSource = "manual" // marked by the user
)

// HideRegion is one text or hatching sub-region to visually suppress. The
// page keeps these individually so single regions can be reviewed and
// removed; rendering uses the combined union.
type HideRegion struct {
	ID     string
	Source RegionSource
	Mode   Mode
	Mask   *mask.Mask
}

// NewHideRegion creates a hide-region with a fresh identifier.
func NewHideRegion(source RegionSource, mode Mode, m *mask.Mask) *HideRegion {
	return &HideRegion{ID: newID(), Source: source, Mode: mode, Mask: m}
}

// Page is one raster drawing sheet. The raster is the single fixed image
// every mask on the page is aligned with. A nil raster is legal; rendering
// degrades to a placeholder.
type Page struct {
	ID        string
	ModelName string
	PageName  string
	Raster    *image.RGBA
	// PixelsPerInch is the physical scale of the sheet, 0 when unknown.
	PixelsPerInch float64
	// Rotation is the quarter-turn count applied when the page was
	// imported, kept for provenance only.
	Rotation int

	textRegions   []*HideRegion
	hatchRegions  []*HideRegion
	combinedText  *mask.Mask
	combinedHatch *mask.Mask

	// version counts every mutation that can change this page's rendered
	// base image. The renderer compares it instead of hashing content.
	version uint64
}

// NewPage creates a page with a fresh identifier.
func NewPage(modelName, pageName string, raster *image.RGBA) *Page {
	return &Page{ID: newID(), ModelName: modelName, PageName: pageName, Raster: raster}
}

// Size returns the raster dimensions, or (0, 0) when no raster is loaded.
func (p *Page) Size() (w, h int) {
	if p.Raster == nil {
		return 0, 0
	}
	return p.Raster.Rect.Dx(), p.Raster.Rect.Dy()
}

// Version returns the page's mutation counter.
func (p *Page) Version() uint64 { return p.version }

func (p *Page) bump() { p.version++ }

// TextRegions returns the individual text hide-regions.
func (p *Page) TextRegions() []*HideRegion { return p.textRegions }

// HatchRegions returns the individual hatching hide-regions.
func (p *Page) HatchRegions() []*HideRegion { return p.hatchRegions }

// AddTextRegion records a text sub-region to suppress.
func (p *Page) AddTextRegion(r *HideRegion) {
	p.textRegions = append(p.textRegions, r)
	p.combinedText = nil
	p.bump()
}

// AddHatchRegion records a hatching sub-region to suppress.
func (p *Page) AddHatchRegion(r *HideRegion) {
	p.hatchRegions = append(p.hatchRegions, r)
	p.combinedHatch = nil
	p.bump()
}

// RemoveTextRegion deletes a text sub-region by ID.
func (p *Page) RemoveTextRegion(id string) bool {
	if removeRegion(&p.textRegions, id) {
		p.combinedText = nil
		p.bump()
		return true
	}
	return false
}

// RemoveHatchRegion deletes a hatching sub-region by ID.
func (p *Page) RemoveHatchRegion(id string) bool {
	if removeRegion(&p.hatchRegions, id) {
		p.combinedHatch = nil
		p.bump()
		return true
	}
	return false
}

// CombinedTextMask returns the cached union of all text hide-regions, or
// nil when there are none.
func (p *Page) CombinedTextMask() *mask.Mask {
	if p.combinedText == nil {
		p.combinedText = p.combineRegions(p.textRegions)
	}
	return p.combinedText
}

// CombinedHatchMask returns the cached union of all hatching hide-regions,
// or nil when there are none.
func (p *Page) CombinedHatchMask() *mask.Mask {
	if p.combinedHatch == nil {
		p.combinedHatch = p.combineRegions(p.hatchRegions)
	}
	return p.combinedHatch
}

func (p *Page) combineRegions(regions []*HideRegion) *mask.Mask {
	w, h := p.Size()
	if w == 0 || h == 0 || len(regions) == 0 {
		return nil
	}
	union := mask.New(w, h)
	any := false
	for _, r := range regions {
		if r.Mask == nil || !r.Mask.Matches(w, h) {
			continue
		}
		union.Union(r.Mask)
		any = true
	}
	if !any {
		return nil
	}
	return union
}

func removeRegion(regions *[]*HideRegion, id string) bool {
	for i, r := range *regions {
		if r.ID == id {
			*regions = append((*regions)[:i], (*regions)[i+1:]...)
			return true
		}
	}
	return false
}
