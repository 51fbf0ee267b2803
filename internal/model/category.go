package model

import (
	"image/color"

	"plan-segmenter/pkg/colorutil"
)

// Mode identifies how an element's mask was painted.
type Mode string

const (
	ModeFlood    Mode = "flood"
	ModePolygon  Mode = "polygon"
	ModeFreeform Mode = "freeform"
	ModeLine     Mode = "line"
)

// CategoryPlanform is the distinguished category whose overlay opacity is
// user-adjustable; it usually covers most of a sheet.
const CategoryPlanform = "planform"

// CategoryEraser is the pseudo-category whose paint action removes elements
// under the painted region instead of creating one.
const CategoryEraser = "eraser"

// Category classifies objects: ribs, formers, spars and so on. Identity is
// the Name; two categories with the same name are the same category.
type Category struct {
	Name        string     `json:"name"`
	Prefix      string     `json:"prefix"`
	DisplayName string     `json:"display_name"`
	Color       color.RGBA `json:"-"`
	Visible     bool       `json:"visible"`
	// SelectionMode is the paint mode the UI switches to when the
	// category is picked.
	SelectionMode Mode `json:"selection_mode"`
	// Protected categories ship with the application and cannot be
	// deleted.
	Protected bool `json:"protected,omitempty"`
}

// DefaultCategories returns the built-in category set in display order.
func DefaultCategories() []*Category {
	return []*Category{
		{Name: CategoryPlanform, Prefix: "P", DisplayName: "Planform/View",
			Color: color.RGBA{G: 160, A: 255}, Visible: true, SelectionMode: ModePolygon, Protected: true},
		{Name: "rib", Prefix: "R", DisplayName: "Rib",
			Color: color.RGBA{R: 220, A: 255}, Visible: true, SelectionMode: ModeFlood},
		{Name: "former", Prefix: "F", DisplayName: "Former",
			Color: color.RGBA{R: 160, B: 220, A: 255}, Visible: true, SelectionMode: ModeFlood},
		{Name: "spar", Prefix: "S", DisplayName: "Spar",
			Color: color.RGBA{R: 255, G: 128, A: 255}, Visible: true, SelectionMode: ModeLine},
		{Name: "longeron", Prefix: "L", DisplayName: "Longeron",
			Color: color.RGBA{B: 220, A: 255}, Visible: true, SelectionMode: ModeLine},
		{Name: "textbox", Prefix: "T", DisplayName: "Text/Description",
			Color: color.RGBA{R: 200, G: 200, B: 100, A: 255}, Visible: true, SelectionMode: ModePolygon},
		{Name: CategoryEraser, Prefix: "E", DisplayName: "Eraser",
			Color: colorutil.White, Visible: true, SelectionMode: ModeFlood, Protected: true},
	}
}

// NewUserCategory creates a user-defined category with a palette color
// chosen from the number of existing categories.
func NewUserCategory(name, prefix string, existing int) *Category {
	return &Category{
		Name:          name,
		Prefix:        prefix,
		DisplayName:   name,
		Color:         colorutil.NextColor(existing),
		Visible:       true,
		SelectionMode: ModeFlood,
	}
}
