package model

import (
	"image/color"

	"plan-segmenter/internal/mask"
	"plan-segmenter/pkg/geometry"
)

// Attributes holds the free-form per-instance properties a builder cares
// about when turning a delineated part into a cut list entry.
type Attributes struct {
	Material    string  `json:"material,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Depth       float64 `json:"depth,omitempty"`
	Type        string  `json:"type,omitempty"`
	View        string  `json:"view,omitempty"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`
}

// Materials, Types and Views are the documented option lists offered for
// the corresponding attribute fields.
var (
	Materials = []string{"balsa", "basswood", "plywood", "spruce", "wire", "lite-ply", "foam", "other"}
	Types     = []string{"stick", "sheet", "block", "hardware", "covering", "other"}
	Views     = []string{"top", "side", "front", "isometric", "section", "detail", "template"}
)

// Element is one atomic painted shape. Its mask is immutable once created;
// edits produce a new element.
type Element struct {
	ID          string
	Category    string
	Mode        Mode
	Points      []geometry.PointInt
	Mask        *mask.Mask
	Color       color.RGBA
	LabelAnchor string
}

// NewElement creates an element with a fresh identifier.
func NewElement(category string, mode Mode, points []geometry.PointInt, m *mask.Mask, c color.RGBA) *Element {
	return &Element{
		ID:          newID(),
		Category:    category,
		Mode:        mode,
		Points:      points,
		Mask:        m,
		Color:       c,
		LabelAnchor: "center",
	}
}

// clone deep-copies the element, mask included, under a new identity.
func (e *Element) clone() *Element {
	pts := make([]geometry.PointInt, len(e.Points))
	copy(pts, e.Points)
	var m *mask.Mask
	if e.Mask != nil {
		m = e.Mask.Clone()
	}
	return &Element{
		ID:          newID(),
		Category:    e.Category,
		Mode:        e.Mode,
		Points:      pts,
		Mask:        m,
		Color:       e.Color,
		LabelAnchor: e.LabelAnchor,
	}
}

// Instance is one occurrence of an object on one page: a rib's side view on
// sheet 1 and its template on sheet 3 are two instances of the same object.
// An instance with no elements is invalid and is removed by the mutation
// that emptied it.
type Instance struct {
	ID         string
	Num        int // 1-based, contiguous within the owning object
	PageID     string
	View       string
	Attributes Attributes
	Elements   []*Element
}

// NewInstance creates an instance with a fresh identifier.
func NewInstance(num int, pageID, view string) *Instance {
	return &Instance{ID: newID(), Num: num, PageID: pageID, View: view}
}

// UnionMask returns the union of the instance's element masks, skipping any
// mask that does not match the (w, h) raster. ok is false when nothing
// usable was found.
func (inst *Instance) UnionMask(w, h int) (m *mask.Mask, ok bool) {
	union := mask.New(w, h)
	for _, elem := range inst.Elements {
		if elem.Mask == nil || !elem.Mask.Matches(w, h) {
			continue
		}
		union.Union(elem.Mask)
		ok = true
	}
	if !ok || !union.Any() {
		return union, false
	}
	return union, true
}

// clone deep-copies the instance and its elements under new identities.
func (inst *Instance) clone() *Instance {
	c := &Instance{
		ID:         newID(),
		Num:        inst.Num,
		PageID:     inst.PageID,
		View:       inst.View,
		Attributes: inst.Attributes,
	}
	for _, elem := range inst.Elements {
		c.Elements = append(c.Elements, elem.clone())
	}
	return c
}

// Object is a named real-world part that can recur across pages and views.
// Its category is fixed at creation; an object with no instances is invalid
// and is removed by the mutation that emptied it.
type Object struct {
	ID        string
	Name      string
	Category  string
	Instances []*Instance
}

// NewObject creates an object with a fresh identifier.
func NewObject(name, category string) *Object {
	return &Object{ID: newID(), Name: name, Category: category}
}

// ElementCount returns the number of elements across all instances.
func (o *Object) ElementCount() int {
	n := 0
	for _, inst := range o.Instances {
		n += len(inst.Elements)
	}
	return n
}

// HasInstanceOnPage reports whether any instance lives on the given page.
func (o *Object) HasInstanceOnPage(pageID string) bool {
	for _, inst := range o.Instances {
		if inst.PageID == pageID {
			return true
		}
	}
	return false
}

// renumber restores the 1..n instance numbering invariant.
func (o *Object) renumber() {
	for i, inst := range o.Instances {
		inst.Num = i + 1
	}
}

// pageIDs returns the distinct pages this object touches.
func (o *Object) pageIDs() []string {
	seen := make(map[string]bool, len(o.Instances))
	var ids []string
	for _, inst := range o.Instances {
		if inst.PageID != "" && !seen[inst.PageID] {
			seen[inst.PageID] = true
			ids = append(ids, inst.PageID)
		}
	}
	return ids
}
