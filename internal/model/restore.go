package model

// RestoreCategory installs a category exactly as persisted, replacing any
// default of the same name. Persistence hydration only; user category
// creation goes through AddCategory.
func (d *Document) RestoreCategory(cat *Category) {
	if _, exists := d.categories[cat.Name]; !exists {
		d.catOrder = append(d.catOrder, cat.Name)
	}
	d.categories[cat.Name] = cat
}

// RestoreObject appends a persisted object without renaming, renumbering
// or page version bumps.
func (d *Document) RestoreObject(obj *Object) {
	d.objects = append(d.objects, obj)
}
