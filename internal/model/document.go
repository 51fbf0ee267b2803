package model

import (
	"fmt"

	"plan-segmenter/internal/mask"
	"plan-segmenter/pkg/geometry"
)

// EventType identifies document change notifications.
type EventType int

const (
	// EventGraphChanged fires after any object/instance/element mutation.
	EventGraphChanged EventType = iota
	// EventCategoryChanged fires after category add/delete/visibility.
	EventCategoryChanged
	// EventPageChanged fires after a page or its hide-regions change.
	EventPageChanged
)

// Event carries a change notification. Pages lists the affected page IDs;
// empty means all pages.
type Event struct {
	Type  EventType
	Pages []string
}

// EventListener receives document change notifications.
type EventListener func(Event)

// Document is the in-memory object graph of a workspace: categories, pages
// and segmented objects in insertion order. All mutation goes through the
// operations in mutations.go, which maintain the graph invariants and bump
// the page version counters the renderer keys its cache on.
//
// The document is single-threaded by design; it cooperates with a UI event
// loop and is not safe for concurrent use.
type Document struct {
	categories map[string]*Category
	catOrder   []string

	objects []*Object

	pages     map[string]*Page
	pageOrder []string

	listeners []EventListener
}

// NewDocument creates a document seeded with the default categories.
func NewDocument() *Document {
	d := &Document{
		categories: make(map[string]*Category),
		pages:      make(map[string]*Page),
	}
	for _, cat := range DefaultCategories() {
		d.categories[cat.Name] = cat
		d.catOrder = append(d.catOrder, cat.Name)
	}
	return d
}

// Subscribe registers a change listener. Listeners run synchronously inside
// the mutation call, before it returns.
func (d *Document) Subscribe(fn EventListener) {
	d.listeners = append(d.listeners, fn)
}

func (d *Document) notify(ev Event) {
	for _, fn := range d.listeners {
		fn(ev)
	}
}

// touchPages bumps the version of the named pages (all pages when none are
// named) and emits the event.
func (d *Document) touchPages(t EventType, pageIDs ...string) {
	if len(pageIDs) == 0 {
		for _, p := range d.pages {
			p.bump()
		}
	} else {
		for _, id := range pageIDs {
			if p, ok := d.pages[id]; ok {
				p.bump()
			}
		}
	}
	d.notify(Event{Type: t, Pages: pageIDs})
}

// Categories returns the categories in display order.
func (d *Document) Categories() []*Category {
	out := make([]*Category, 0, len(d.catOrder))
	for _, name := range d.catOrder {
		out = append(out, d.categories[name])
	}
	return out
}

// CategoryMap returns the categories keyed by name. The map is shared;
// treat it as read-only.
func (d *Document) CategoryMap() map[string]*Category { return d.categories }

// Category looks a category up by name.
func (d *Document) Category(name string) (*Category, bool) {
	cat, ok := d.categories[name]
	return cat, ok
}

// AddPage registers a page, preserving insertion order.
func (d *Document) AddPage(p *Page) {
	if _, exists := d.pages[p.ID]; exists {
		return
	}
	d.pages[p.ID] = p
	d.pageOrder = append(d.pageOrder, p.ID)
	d.notify(Event{Type: EventPageChanged, Pages: []string{p.ID}})
}

// Page looks a page up by ID.
func (d *Document) Page(id string) (*Page, bool) {
	p, ok := d.pages[id]
	return p, ok
}

// Pages returns the pages in insertion order.
func (d *Document) Pages() []*Page {
	out := make([]*Page, 0, len(d.pageOrder))
	for _, id := range d.pageOrder {
		out = append(out, d.pages[id])
	}
	return out
}

// Objects returns all objects in insertion order. The slice is shared;
// treat it as read-only.
func (d *Document) Objects() []*Object { return d.objects }

// ObjectsForPage returns the objects having at least one instance on the
// page, preserving insertion order.
func (d *Document) ObjectsForPage(pageID string) []*Object {
	var out []*Object
	for _, obj := range d.objects {
		if obj.HasInstanceOnPage(pageID) {
			out = append(out, obj)
		}
	}
	return out
}

// Object looks an object up by ID.
func (d *Document) Object(id string) (*Object, bool) {
	for _, obj := range d.objects {
		if obj.ID == id {
			return obj, true
		}
	}
	return nil, false
}

// FindInstance locates an instance and its owning object by instance ID.
func (d *Document) FindInstance(id string) (*Object, *Instance, bool) {
	for _, obj := range d.objects {
		for _, inst := range obj.Instances {
			if inst.ID == id {
				return obj, inst, true
			}
		}
	}
	return nil, nil, false
}

// FindElement locates an element and its owners by element ID.
func (d *Document) FindElement(id string) (*Object, *Instance, *Element, bool) {
	for _, obj := range d.objects {
		for _, inst := range obj.Instances {
			for _, elem := range inst.Elements {
				if elem.ID == id {
					return obj, inst, elem, true
				}
			}
		}
	}
	return nil, nil, nil, false
}

// ElementAt returns the topmost element whose mask covers (x, y) on the
// page, or false when the point is unpainted. Later-inserted objects win,
// matching the compositing order.
func (d *Document) ElementAt(pageID string, x, y int) (*Object, *Instance, *Element, bool) {
	for i := len(d.objects) - 1; i >= 0; i-- {
		obj := d.objects[i]
		for j := len(obj.Instances) - 1; j >= 0; j-- {
			inst := obj.Instances[j]
			if inst.PageID != pageID {
				continue
			}
			for k := len(inst.Elements) - 1; k >= 0; k-- {
				elem := inst.Elements[k]
				if elem.Mask != nil && elem.Mask.At(x, y) {
					return obj, inst, elem, true
				}
			}
		}
	}
	return nil, nil, nil, false
}

// InstanceMask returns the union of an instance's element masks together
// with its tight bounding box. This is the contract nesting and export
// tooling consume.
func (d *Document) InstanceMask(instanceID string) (*mask.Mask, geometry.RectInt, error) {
	_, inst, ok := d.FindInstance(instanceID)
	if !ok {
		return nil, geometry.RectInt{}, fmt.Errorf("instance %q: %w", instanceID, ErrUnknownID)
	}
	page, ok := d.pages[inst.PageID]
	if !ok || page.Raster == nil {
		return nil, geometry.RectInt{}, fmt.Errorf("instance %q has no usable page raster: %w", instanceID, ErrUnknownID)
	}
	w, h := page.Size()
	union, any := inst.UnionMask(w, h)
	if !any {
		return union, geometry.RectInt{}, fmt.Errorf("instance %q: %w", instanceID, ErrEmptyRegion)
	}
	bounds, _ := union.Bounds()
	return union, bounds, nil
}

// TargetObjectID resolves the editor selection to the object a freshly
// painted element should join: a selected instance's object wins over a
// selected object; element-level selection does not capture new paint.
func (d *Document) TargetObjectID(state *EditorState) string {
	if state == nil {
		return ""
	}
	for instID := range state.SelectedInstances {
		if obj, _, ok := d.FindInstance(instID); ok {
			return obj.ID
		}
	}
	for objID := range state.SelectedObjects {
		if _, ok := d.Object(objID); ok {
			return objID
		}
	}
	return ""
}

// countCategory returns how many objects carry the category.
func (d *Document) countCategory(category string) int {
	n := 0
	for _, obj := range d.objects {
		if obj.Category == category {
			n++
		}
	}
	return n
}
