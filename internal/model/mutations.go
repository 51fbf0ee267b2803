package model

import (
	"fmt"
)

// AddCategory creates a user-defined category with the next palette color.
func (d *Document) AddCategory(name, prefix string) (*Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name must not be empty: %w", ErrInvalidGraphState)
	}
	if _, exists := d.categories[name]; exists {
		return nil, fmt.Errorf("category %q already exists: %w", name, ErrInvalidGraphState)
	}
	cat := NewUserCategory(name, prefix, len(d.catOrder))
	d.categories[name] = cat
	d.catOrder = append(d.catOrder, name)
	d.notify(Event{Type: EventCategoryChanged})
	return cat, nil
}

// DeleteCategory removes a category. Protected categories and categories
// still referenced by objects are refused.
func (d *Document) DeleteCategory(name string) error {
	cat, ok := d.categories[name]
	if !ok {
		return fmt.Errorf("category %q: %w", name, ErrUnknownID)
	}
	if cat.Protected {
		return fmt.Errorf("category %q: %w", name, ErrCategoryProtected)
	}
	if d.countCategory(name) > 0 {
		return fmt.Errorf("category %q: %w", name, ErrCategoryInUse)
	}
	delete(d.categories, name)
	for i, n := range d.catOrder {
		if n == name {
			d.catOrder = append(d.catOrder[:i], d.catOrder[i+1:]...)
			break
		}
	}
	d.notify(Event{Type: EventCategoryChanged})
	return nil
}

// SetCategoryVisible toggles a category's visibility. All pages rebuild on
// the next render.
func (d *Document) SetCategoryVisible(name string, visible bool) error {
	cat, ok := d.categories[name]
	if !ok {
		return fmt.Errorf("category %q: %w", name, ErrUnknownID)
	}
	if cat.Visible == visible {
		return nil
	}
	cat.Visible = visible
	d.touchPages(EventCategoryChanged)
	return nil
}

// AddElement attaches a freshly painted element to the graph. With a
// selected target object of the same category the element joins that
// object's last instance; otherwise a new object is created with an
// auto-generated "<prefix><count>" name. In group mode the element is
// parked on the editor state instead and the graph is untouched.
func (d *Document) AddElement(pageID string, elem *Element, state *EditorState) (*Object, error) {
	if elem == nil || elem.Mask == nil || !elem.Mask.Any() {
		return nil, fmt.Errorf("add element: %w", ErrEmptyRegion)
	}
	if elem.Category == CategoryEraser {
		return nil, fmt.Errorf("eraser paints are handled by EraseAt: %w", ErrCategoryMismatch)
	}
	cat, ok := d.categories[elem.Category]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", elem.Category, ErrUnknownID)
	}
	page, ok := d.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("page %q: %w", pageID, ErrUnknownID)
	}
	if w, h := page.Size(); page.Raster != nil && !elem.Mask.Matches(w, h) {
		return nil, fmt.Errorf("element mask %dx%d on %dx%d page: %w",
			elem.Mask.Width(), elem.Mask.Height(), w, h, ErrDimensionMismatch)
	}

	if state != nil && state.GroupMode {
		state.PendingElements = append(state.PendingElements, PendingElement{PageID: pageID, Element: elem})
		return nil, nil
	}

	if targetID := d.TargetObjectID(state); targetID != "" {
		obj, _ := d.Object(targetID)
		if obj != nil && obj.Category == elem.Category && len(obj.Instances) > 0 {
			last := obj.Instances[len(obj.Instances)-1]
			last.Elements = append(last.Elements, elem)
			obj.renumber()
			d.touchPages(EventGraphChanged, pageID)
			return obj, nil
		}
		// Category mismatch falls through to a new object.
	}

	view := ""
	if state != nil {
		view = state.ActiveView
	}
	obj := NewObject(fmt.Sprintf("%s%d", cat.Prefix, d.countCategory(elem.Category)+1), elem.Category)
	inst := NewInstance(1, pageID, view)
	inst.Elements = append(inst.Elements, elem)
	obj.Instances = append(obj.Instances, inst)
	d.objects = append(d.objects, obj)
	d.touchPages(EventGraphChanged, pageID)
	return obj, nil
}

// AddInstance appends an empty staged instance to an object on the given
// page. The caller should select it so subsequent paints attach there; a
// staged instance that never receives elements is swept by the next
// cascading mutation on its object.
func (d *Document) AddInstance(objectID, pageID, view string) (*Instance, error) {
	obj, ok := d.Object(objectID)
	if !ok {
		return nil, fmt.Errorf("object %q: %w", objectID, ErrUnknownID)
	}
	if _, ok := d.pages[pageID]; !ok {
		return nil, fmt.Errorf("page %q: %w", pageID, ErrUnknownID)
	}
	obj.renumber()
	inst := NewInstance(len(obj.Instances)+1, pageID, view)
	obj.Instances = append(obj.Instances, inst)
	// No page touch: an empty instance has no visual effect.
	d.notify(Event{Type: EventGraphChanged, Pages: []string{pageID}})
	return inst, nil
}

// FinishGroup turns the pending group-mode elements into one new object
// with a single instance and clears the pending list.
func (d *Document) FinishGroup(state *EditorState, name, category, pageID string) (*Object, error) {
	if state == nil || len(state.PendingElements) == 0 {
		return nil, fmt.Errorf("no pending group elements: %w", ErrInvalidGraphState)
	}
	cat, ok := d.categories[category]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", category, ErrUnknownID)
	}
	if _, ok := d.pages[pageID]; !ok {
		return nil, fmt.Errorf("page %q: %w", pageID, ErrUnknownID)
	}
	if name == "" {
		name = fmt.Sprintf("%s%d", cat.Prefix, d.countCategory(category)+1)
	}
	obj := NewObject(name, category)
	inst := NewInstance(1, pageID, state.ActiveView)
	for _, pe := range state.PendingElements {
		inst.Elements = append(inst.Elements, pe.Element)
	}
	obj.Instances = append(obj.Instances, inst)
	d.objects = append(d.objects, obj)
	state.PendingElements = nil
	d.touchPages(EventGraphChanged, pageID)
	return obj, nil
}

// MergeAsInstances concatenates the instance lists of two or more objects
// of identical category into the first one, renumbered, and discards the
// rest. An empty name keeps the first object's name.
func (d *Document) MergeAsInstances(objectIDs []string, name string) (*Object, error) {
	if len(objectIDs) < 2 {
		return nil, fmt.Errorf("merge needs >=2 objects: %w", ErrInvalidGraphState)
	}
	objs := make([]*Object, 0, len(objectIDs))
	for _, id := range objectIDs {
		obj, ok := d.Object(id)
		if !ok {
			return nil, fmt.Errorf("object %q: %w", id, ErrUnknownID)
		}
		objs = append(objs, obj)
	}
	target := objs[0]
	for _, other := range objs[1:] {
		if other.Category != target.Category {
			return nil, fmt.Errorf("cannot merge %q into %q: %w", other.Category, target.Category, ErrCategoryMismatch)
		}
	}

	var pages []string
	for _, other := range objs[1:] {
		pages = append(pages, other.pageIDs()...)
		target.Instances = append(target.Instances, other.Instances...)
		other.Instances = nil
		d.removeObject(other.ID)
	}
	target.renumber()
	if name != "" {
		target.Name = name
	}
	pages = append(pages, target.pageIDs()...)
	d.touchPages(EventGraphChanged, dedup(pages)...)
	return target, nil
}

// MergeAsGroup collects two or more elements, possibly from different
// objects, into one new instance of one new object. Source instances and
// objects left empty are removed.
func (d *Document) MergeAsGroup(elementIDs []string, name, category, pageID string) (*Object, error) {
	if len(elementIDs) < 2 {
		return nil, fmt.Errorf("group merge needs >=2 elements: %w", ErrInvalidGraphState)
	}
	cat, ok := d.categories[category]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", category, ErrUnknownID)
	}
	if _, ok := d.pages[pageID]; !ok {
		return nil, fmt.Errorf("page %q: %w", pageID, ErrUnknownID)
	}

	var elems []*Element
	touched := make(map[*Object]bool)
	var pages []string
	for _, id := range elementIDs {
		obj, inst, elem, ok := d.FindElement(id)
		if !ok {
			return nil, fmt.Errorf("element %q: %w", id, ErrUnknownID)
		}
		removeElement(inst, id)
		elems = append(elems, elem)
		touched[obj] = true
		pages = append(pages, inst.PageID)
	}
	for obj := range touched {
		pages = append(pages, obj.pageIDs()...)
		d.sweepObject(obj)
	}

	if name == "" {
		name = fmt.Sprintf("%s%d", cat.Prefix, d.countCategory(category)+1)
	}
	obj := NewObject(name, category)
	inst := NewInstance(1, pageID, "")
	inst.Elements = elems
	obj.Instances = append(obj.Instances, inst)
	d.objects = append(d.objects, obj)
	pages = append(pages, pageID)
	d.touchPages(EventGraphChanged, dedup(pages)...)
	return obj, nil
}

// SeparateInstances moves all but the first of the selected instances of
// one object into newly created single-instance objects named
// "<name>_1", "<name>_2", ...
func (d *Document) SeparateInstances(objectID string, instanceIDs []string) ([]*Object, error) {
	obj, ok := d.Object(objectID)
	if !ok {
		return nil, fmt.Errorf("object %q: %w", objectID, ErrUnknownID)
	}
	selected := make(map[string]bool, len(instanceIDs))
	for _, id := range instanceIDs {
		selected[id] = true
	}
	var toSeparate []*Instance
	for _, inst := range obj.Instances {
		if selected[inst.ID] {
			toSeparate = append(toSeparate, inst)
		}
	}
	if len(toSeparate) < 2 {
		return nil, fmt.Errorf("separation needs >=2 instances of %q: %w", obj.Name, ErrInvalidGraphState)
	}

	var created []*Object
	var pages []string
	for i, inst := range toSeparate[1:] {
		d.detachInstance(obj, inst.ID)
		newObj := NewObject(fmt.Sprintf("%s_%d", obj.Name, i+1), obj.Category)
		inst.Num = 1
		newObj.Instances = append(newObj.Instances, inst)
		d.objects = append(d.objects, newObj)
		created = append(created, newObj)
		pages = append(pages, inst.PageID)
	}
	obj.renumber()
	pages = append(pages, obj.pageIDs()...)
	d.touchPages(EventGraphChanged, dedup(pages)...)
	return created, nil
}

// Duplicate deep-copies an object under a new identity, "<name>_copy",
// with value-copied element masks.
func (d *Document) Duplicate(objectID string) (*Object, error) {
	obj, ok := d.Object(objectID)
	if !ok {
		return nil, fmt.Errorf("object %q: %w", objectID, ErrUnknownID)
	}
	dup := NewObject(obj.Name+"_copy", obj.Category)
	for _, inst := range obj.Instances {
		dup.Instances = append(dup.Instances, inst.clone())
	}
	d.objects = append(d.objects, dup)
	d.touchPages(EventGraphChanged, dup.pageIDs()...)
	return dup, nil
}

// RenameObject changes an object's display name.
func (d *Document) RenameObject(objectID, name string) error {
	obj, ok := d.Object(objectID)
	if !ok {
		return fmt.Errorf("object %q: %w", objectID, ErrUnknownID)
	}
	if name == "" {
		return fmt.Errorf("object name must not be empty: %w", ErrInvalidGraphState)
	}
	obj.Name = name
	d.touchPages(EventGraphChanged, obj.pageIDs()...)
	return nil
}

// Delete removes the selected elements, instances and objects, cascading
// so that no empty instances or objects survive, and renumbers what
// remains. The selection is cleared afterwards. Returns the number of
// objects removed outright or emptied away.
func (d *Document) Delete(state *EditorState) int {
	if state == nil {
		return 0
	}
	touched := make(map[*Object]bool)
	var pages []string

	for elemID := range state.SelectedElements {
		if obj, inst, _, ok := d.FindElement(elemID); ok {
			removeElement(inst, elemID)
			touched[obj] = true
			pages = append(pages, inst.PageID)
		}
	}
	// Selecting an instance also marks its object; such objects are
	// deleted at instance granularity, not outright.
	instanceLevel := make(map[string]bool)
	for instID := range state.SelectedInstances {
		if obj, inst, ok := d.FindInstance(instID); ok {
			pages = append(pages, inst.PageID)
			d.detachInstance(obj, instID)
			touched[obj] = true
			instanceLevel[obj.ID] = true
		}
	}

	removed := 0
	for objID := range state.SelectedObjects {
		if instanceLevel[objID] {
			continue
		}
		if obj, ok := d.Object(objID); ok {
			pages = append(pages, obj.pageIDs()...)
			d.removeObject(objID)
			delete(touched, obj)
			removed++
		}
	}
	for obj := range touched {
		if d.sweepObject(obj) {
			removed++
		}
	}

	state.ClearSelection()
	d.touchPages(EventGraphChanged, dedup(pages)...)
	return removed
}

// EraseAt removes every element whose mask covers (x, y) on the page,
// cascading empty instances and objects away. Returns the number of
// elements removed.
func (d *Document) EraseAt(pageID string, x, y int) int {
	removed := 0
	touched := make(map[*Object]bool)
	for _, obj := range d.objects {
		for _, inst := range obj.Instances {
			if inst.PageID != pageID {
				continue
			}
			kept := inst.Elements[:0]
			for _, elem := range inst.Elements {
				if elem.Mask != nil && elem.Mask.At(x, y) {
					removed++
					touched[obj] = true
					continue
				}
				kept = append(kept, elem)
			}
			inst.Elements = kept
		}
	}
	for obj := range touched {
		d.sweepObject(obj)
	}
	if removed > 0 {
		d.touchPages(EventGraphChanged, pageID)
	}
	return removed
}

// sweepObject drops empty instances, renumbers, and removes the object
// entirely when no instances remain. Reports whether the object was
// removed.
func (d *Document) sweepObject(obj *Object) bool {
	kept := obj.Instances[:0]
	for _, inst := range obj.Instances {
		if len(inst.Elements) > 0 {
			kept = append(kept, inst)
		}
	}
	obj.Instances = kept
	obj.renumber()
	if len(obj.Instances) == 0 {
		d.removeObject(obj.ID)
		return true
	}
	return false
}

// detachInstance removes an instance from its object and renumbers; the
// object itself is removed when emptied.
func (d *Document) detachInstance(obj *Object, instanceID string) {
	for i, inst := range obj.Instances {
		if inst.ID == instanceID {
			obj.Instances = append(obj.Instances[:i], obj.Instances[i+1:]...)
			break
		}
	}
	obj.renumber()
	if len(obj.Instances) == 0 {
		d.removeObject(obj.ID)
	}
}

func (d *Document) removeObject(id string) {
	for i, obj := range d.objects {
		if obj.ID == id {
			d.objects = append(d.objects[:i], d.objects[i+1:]...)
			return
		}
	}
}

func removeElement(inst *Instance, elementID string) {
	for i, elem := range inst.Elements {
		if elem.ID == elementID {
			inst.Elements = append(inst.Elements[:i], inst.Elements[i+1:]...)
			return
		}
	}
}

func dedup(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
