package render

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/stat"

	"plan-segmenter/internal/mask"
	"plan-segmenter/internal/model"
	"plan-segmenter/pkg/colorutil"
)

// labelShadowOffsets are the pixel offsets the light halo is stamped at
// before the dark fill, keeping labels legible on busy line work.
var labelShadowOffsets = [][2]int{{1, 1}, {2, 2}, {1, 2}, {2, 1}}

// drawOverlay paints the per-frame decorations onto the (possibly zoomed)
// base copy: selection highlight, pending group outlines, labels.
func drawOverlay(dst *image.RGBA, doc *model.Document, pageID string, state *model.EditorState, zoom float64, showLabels bool) {
	if state != nil {
		for _, elem := range selectedElements(doc, pageID, state) {
			drawHighlight(dst, elem.Mask, zoom)
		}
		for _, pe := range state.PendingElements {
			if pe.PageID != pageID {
				continue
			}
			drawDashedOutline(dst, pe.Element.Mask, zoom)
		}
	}
	if showLabels {
		drawLabels(dst, doc, pageID, zoom)
	}
}

// selectedElements resolves the selection to the element masks to
// highlight. Explicit element selection wins over instance selection,
// which wins over object selection; the levels never mix.
func selectedElements(doc *model.Document, pageID string, state *model.EditorState) []*model.Element {
	var out []*model.Element
	appendInstance := func(inst *model.Instance) {
		if inst.PageID != pageID {
			return
		}
		out = append(out, inst.Elements...)
	}

	if len(state.SelectedElements) > 0 {
		for id := range state.SelectedElements {
			if _, inst, elem, ok := doc.FindElement(id); ok && inst.PageID == pageID {
				out = append(out, elem)
			}
		}
		return out
	}
	if len(state.SelectedInstances) > 0 {
		for id := range state.SelectedInstances {
			if _, inst, ok := doc.FindInstance(id); ok {
				appendInstance(inst)
			}
		}
		return out
	}
	for id := range state.SelectedObjects {
		if obj, ok := doc.Object(id); ok {
			for _, inst := range obj.Instances {
				appendInstance(inst)
			}
		}
	}
	return out
}

// drawHighlight traces the mask's external contour, dark pass first, then
// a bright pass on top.
func drawHighlight(dst *image.RGBA, m *mask.Mask, zoom float64) {
	if m == nil {
		return
	}
	edge := m.EdgePixels()
	outer := discRadius(2, zoom)
	inner := discRadius(1, zoom)
	for _, p := range edge {
		stampDisc(dst, scaleCoord(p.X, zoom), scaleCoord(p.Y, zoom), outer, colorutil.Black)
	}
	for _, p := range edge {
		stampDisc(dst, scaleCoord(p.X, zoom), scaleCoord(p.Y, zoom), inner, colorutil.Cyan)
	}
}

// drawDashedOutline marks a pending group element with a broken yellow
// contour so it reads as staged rather than committed.
func drawDashedOutline(dst *image.RGBA, m *mask.Mask, zoom float64) {
	if m == nil {
		return
	}
	r := discRadius(1, zoom)
	for _, p := range m.EdgePixels() {
		if (p.X+p.Y)%8 >= 4 {
			continue
		}
		stampDisc(dst, scaleCoord(p.X, zoom), scaleCoord(p.Y, zoom), r, colorutil.Yellow)
	}
}

// drawLabels places one label per instance at the centroid of its union
// mask. The instance index is shown only when the object recurs.
func drawLabels(dst *image.RGBA, doc *model.Document, pageID string, zoom float64) {
	w, h := 0, 0
	if pg, ok := doc.Page(pageID); ok {
		w, h = pg.Size()
	}
	if w == 0 || h == 0 {
		return
	}
	for _, obj := range doc.ObjectsForPage(pageID) {
		for _, inst := range obj.Instances {
			if inst.PageID != pageID {
				continue
			}
			union, ok := inst.UnionMask(w, h)
			if !ok {
				continue
			}
			cx, cy, ok := maskCentroid(union)
			if !ok {
				continue
			}
			text := obj.Name
			if len(obj.Instances) > 1 {
				text = fmt.Sprintf("%s[%d]", obj.Name, inst.Num)
			}
			drawLabel(dst, scaleCoord(cx, zoom), scaleCoord(cy, zoom), text)
		}
	}
}

// maskCentroid averages the inside pixel coordinates.
func maskCentroid(m *mask.Mask) (cx, cy int, ok bool) {
	pts := m.InsidePoints()
	if len(pts) == 0 {
		return 0, 0, false
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return int(stat.Mean(xs, nil) + 0.5), int(stat.Mean(ys, nil) + 0.5), true
}

// drawLabel renders centered text with a light halo under a dark fill.
func drawLabel(dst *image.RGBA, cx, cy int, text string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	x := cx - width/2
	y := cy + face.Height/2

	for _, off := range labelShadowOffsets {
		drawString(dst, x+off[0], y+off[1], text, colorutil.LightTextGray)
	}
	drawString(dst, x, y, text, colorutil.DarkTextGray)
}

func drawString(dst *image.RGBA, x, y int, text string, c color.RGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// stampDisc paints a filled disc clipped to the image bounds.
func stampDisc(dst *image.RGBA, cx, cy, radius int, c color.RGBA) {
	b := dst.Rect
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
				continue
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

func scaleCoord(v int, zoom float64) int {
	if zoom == 1 {
		return v
	}
	return int(float64(v)*zoom + 0.5)
}

// discRadius grows the stamp with zoom so scaled contours stay connected.
func discRadius(base int, zoom float64) int {
	if zoom <= 1 {
		return base
	}
	return int(float64(base)*zoom + 0.5)
}
