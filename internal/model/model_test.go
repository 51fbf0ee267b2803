package model

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-segmenter/internal/mask"
	"plan-segmenter/pkg/colorutil"
)

const testW, testH = 100, 100

func newTestDoc(t *testing.T) (*Document, *Page) {
	t.Helper()
	doc := NewDocument()
	pg := NewPage("Sparrow", "sheet1", image.NewRGBA(image.Rect(0, 0, testW, testH)))
	doc.AddPage(pg)
	return doc, pg
}

// squareElement paints a filled square at (x, y) with the given side.
func squareElement(t *testing.T, category string, x, y, side int) *Element {
	t.Helper()
	m := mask.New(testW, testH)
	for dy := 0; dy < side; dy++ {
		for dx := 0; dx < side; dx++ {
			m.Set(x+dx, y+dy)
		}
	}
	require.True(t, m.Any())
	return NewElement(category, ModeFlood, nil, m, colorutil.Palette[0])
}

func addSquare(t *testing.T, doc *Document, pg *Page, category string, x, y int) *Object {
	t.Helper()
	obj, err := doc.AddElement(pg.ID, squareElement(t, category, x, y, 10), nil)
	require.NoError(t, err)
	require.NotNil(t, obj)
	return obj
}

func TestAddElementCreatesAutoNamedObject(t *testing.T) {
	doc, pg := newTestDoc(t)

	obj := addSquare(t, doc, pg, "rib", 10, 10)
	assert.Equal(t, "R1", obj.Name)
	assert.Equal(t, "rib", obj.Category)
	require.Len(t, obj.Instances, 1)
	assert.Equal(t, 1, obj.Instances[0].Num)
	assert.Len(t, obj.Instances[0].Elements, 1)

	obj2 := addSquare(t, doc, pg, "rib", 30, 30)
	assert.Equal(t, "R2", obj2.Name)
}

func TestAddElementJoinsSelectedObject(t *testing.T) {
	doc, pg := newTestDoc(t)
	obj := addSquare(t, doc, pg, "rib", 10, 10)

	state := NewEditorState()
	state.SelectObject(obj.ID)
	joined, err := doc.AddElement(pg.ID, squareElement(t, "rib", 30, 30, 10), state)
	require.NoError(t, err)
	assert.Same(t, obj, joined)
	assert.Len(t, obj.Instances[0].Elements, 2)
}

func TestAddElementCategoryMismatchMakesNewObject(t *testing.T) {
	doc, pg := newTestDoc(t)
	rib := addSquare(t, doc, pg, "rib", 10, 10)

	state := NewEditorState()
	state.SelectObject(rib.ID)
	spar, err := doc.AddElement(pg.ID, squareElement(t, "spar", 30, 30, 10), state)
	require.NoError(t, err)
	assert.NotEqual(t, rib.ID, spar.ID)
	assert.Equal(t, "S1", spar.Name)
	assert.Len(t, rib.Instances[0].Elements, 1)
}

func TestAddElementRejections(t *testing.T) {
	doc, pg := newTestDoc(t)

	_, err := doc.AddElement(pg.ID, NewElement("rib", ModeFlood, nil, mask.New(testW, testH), colorutil.Black), nil)
	assert.ErrorIs(t, err, ErrEmptyRegion)

	small := mask.New(10, 10)
	small.Set(1, 1)
	_, err = doc.AddElement(pg.ID, NewElement("rib", ModeFlood, nil, small, colorutil.Black), nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = doc.AddElement(pg.ID, squareElement(t, "nosuch", 10, 10, 5), nil)
	assert.ErrorIs(t, err, ErrUnknownID)

	_, err = doc.AddElement("nosuchpage", squareElement(t, "rib", 10, 10, 5), nil)
	assert.ErrorIs(t, err, ErrUnknownID)

	_, err = doc.AddElement(pg.ID, squareElement(t, CategoryEraser, 10, 10, 5), nil)
	assert.Error(t, err)
}

func TestAddInstanceStagedThenPainted(t *testing.T) {
	doc, pg := newTestDoc(t)
	obj := addSquare(t, doc, pg, "rib", 10, 10)

	inst, err := doc.AddInstance(obj.ID, pg.ID, "top")
	require.NoError(t, err)
	assert.Equal(t, 2, inst.Num)
	assert.Empty(t, inst.Elements)

	state := NewEditorState()
	state.SelectInstance(obj.ID, inst.ID)
	_, err = doc.AddElement(pg.ID, squareElement(t, "rib", 50, 50, 10), state)
	require.NoError(t, err)
	assert.Len(t, inst.Elements, 1)
	assert.Len(t, obj.Instances[0].Elements, 1)
}

func TestGroupModeAndFinish(t *testing.T) {
	doc, pg := newTestDoc(t)
	state := NewEditorState()
	state.GroupMode = true
	state.ActiveView = "side"

	for i := 0; i < 3; i++ {
		obj, err := doc.AddElement(pg.ID, squareElement(t, "former", 10+20*i, 10, 8), state)
		require.NoError(t, err)
		assert.Nil(t, obj)
	}
	assert.Empty(t, doc.Objects(), "pending elements must not enter the graph")
	assert.Len(t, state.PendingElements, 3)

	obj, err := doc.FinishGroup(state, "F-nose", "former", pg.ID)
	require.NoError(t, err)
	assert.Equal(t, "F-nose", obj.Name)
	require.Len(t, obj.Instances, 1)
	assert.Equal(t, "side", obj.Instances[0].View)
	assert.Len(t, obj.Instances[0].Elements, 3)
	assert.Empty(t, state.PendingElements)

	_, err = doc.FinishGroup(state, "", "former", pg.ID)
	assert.ErrorIs(t, err, ErrInvalidGraphState)
}

func TestMergeAsInstances(t *testing.T) {
	doc, pg := newTestDoc(t)
	a := addSquare(t, doc, pg, "rib", 10, 10)
	b := addSquare(t, doc, pg, "rib", 30, 30)
	c := addSquare(t, doc, pg, "rib", 50, 50)

	merged, err := doc.MergeAsInstances([]string{a.ID, b.ID, c.ID}, "")
	require.NoError(t, err)
	assert.Same(t, a, merged)
	require.Len(t, merged.Instances, 3)
	for i, inst := range merged.Instances {
		assert.Equal(t, i+1, inst.Num)
	}
	assert.Len(t, doc.Objects(), 1)

	_, ok := doc.Object(b.ID)
	assert.False(t, ok)
}

func TestMergeAsInstancesCategoryMismatch(t *testing.T) {
	doc, pg := newTestDoc(t)
	a := addSquare(t, doc, pg, "rib", 10, 10)
	b := addSquare(t, doc, pg, "spar", 30, 30)

	_, err := doc.MergeAsInstances([]string{a.ID, b.ID}, "")
	assert.ErrorIs(t, err, ErrCategoryMismatch)
	assert.Len(t, doc.Objects(), 2, "failed merge must not mutate the graph")
}

func TestMergeAsGroup(t *testing.T) {
	doc, pg := newTestDoc(t)
	a := addSquare(t, doc, pg, "rib", 10, 10)
	b := addSquare(t, doc, pg, "rib", 30, 30)

	elemA := a.Instances[0].Elements[0]
	elemB := b.Instances[0].Elements[0]
	grouped, err := doc.MergeAsGroup([]string{elemA.ID, elemB.ID}, "wing", "rib", pg.ID)
	require.NoError(t, err)
	assert.Equal(t, "wing", grouped.Name)
	require.Len(t, grouped.Instances, 1)
	assert.Len(t, grouped.Instances[0].Elements, 2)

	// Both source objects were emptied and cascade-removed.
	assert.Len(t, doc.Objects(), 1)
}

func TestSeparateInstances(t *testing.T) {
	doc, pg := newTestDoc(t)
	a := addSquare(t, doc, pg, "rib", 10, 10)
	b := addSquare(t, doc, pg, "rib", 30, 30)
	c := addSquare(t, doc, pg, "rib", 50, 50)
	merged, err := doc.MergeAsInstances([]string{a.ID, b.ID, c.ID}, "R1")
	require.NoError(t, err)

	ids := []string{merged.Instances[0].ID, merged.Instances[1].ID, merged.Instances[2].ID}
	created, err := doc.SeparateInstances(merged.ID, ids)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "R1_1", created[0].Name)
	assert.Equal(t, "R1_2", created[1].Name)

	require.Len(t, merged.Instances, 1)
	assert.Equal(t, 1, merged.Instances[0].Num)
	for _, obj := range created {
		require.Len(t, obj.Instances, 1)
		assert.Equal(t, 1, obj.Instances[0].Num)
	}

	_, err = doc.SeparateInstances(merged.ID, []string{merged.Instances[0].ID})
	assert.ErrorIs(t, err, ErrInvalidGraphState)
}

func TestDuplicate(t *testing.T) {
	doc, pg := newTestDoc(t)
	obj := addSquare(t, doc, pg, "rib", 10, 10)

	dup, err := doc.Duplicate(obj.ID)
	require.NoError(t, err)
	assert.Equal(t, "R1_copy", dup.Name)
	assert.NotEqual(t, obj.ID, dup.ID)
	assert.NotEqual(t, obj.Instances[0].ID, dup.Instances[0].ID)

	// Masks are value copies, not shared.
	dup.Instances[0].Elements[0].Mask.Set(90, 90)
	assert.False(t, obj.Instances[0].Elements[0].Mask.At(90, 90))
}

func TestDeleteElementCascades(t *testing.T) {
	doc, pg := newTestDoc(t)
	obj := addSquare(t, doc, pg, "rib", 10, 10)

	state := NewEditorState()
	state.SelectElement(obj.Instances[0].Elements[0].ID)
	removed := doc.Delete(state)
	assert.Equal(t, 1, removed)
	assert.Empty(t, doc.Objects())
	assert.False(t, state.HasSelection())
}

func TestDeleteInstanceRenumbers(t *testing.T) {
	doc, pg := newTestDoc(t)
	a := addSquare(t, doc, pg, "rib", 10, 10)
	b := addSquare(t, doc, pg, "rib", 30, 30)
	merged, err := doc.MergeAsInstances([]string{a.ID, b.ID}, "")
	require.NoError(t, err)

	// SelectInstance also marks the owning object; delete must stay at
	// instance granularity.
	state := NewEditorState()
	state.SelectInstance(merged.ID, merged.Instances[0].ID)
	doc.Delete(state)

	require.Len(t, merged.Instances, 1)
	assert.Equal(t, 1, merged.Instances[0].Num)
}

func TestDeleteObject(t *testing.T) {
	doc, pg := newTestDoc(t)
	obj := addSquare(t, doc, pg, "rib", 10, 10)
	keep := addSquare(t, doc, pg, "spar", 30, 30)

	state := NewEditorState()
	state.SelectObject(obj.ID)
	removed := doc.Delete(state)
	assert.Equal(t, 1, removed)
	require.Len(t, doc.Objects(), 1)
	assert.Equal(t, keep.ID, doc.Objects()[0].ID)
}

func TestEraseAt(t *testing.T) {
	doc, pg := newTestDoc(t)
	addSquare(t, doc, pg, "rib", 10, 10)          // covers (15,15)
	overlapped := addSquare(t, doc, pg, "spar", 15, 15) // also covers (15,15)
	far := addSquare(t, doc, pg, "rib", 60, 60)

	removed := doc.EraseAt(pg.ID, 15, 15)
	assert.Equal(t, 2, removed)
	require.Len(t, doc.Objects(), 1)
	assert.Equal(t, far.ID, doc.Objects()[0].ID)
	_, ok := doc.Object(overlapped.ID)
	assert.False(t, ok)

	assert.Equal(t, 0, doc.EraseAt(pg.ID, 0, 0))
}

func TestCategoryLifecycle(t *testing.T) {
	doc, pg := newTestDoc(t)

	cat, err := doc.AddCategory("wheel", "W")
	require.NoError(t, err)
	assert.True(t, cat.Visible)

	_, err = doc.AddCategory("wheel", "W")
	assert.ErrorIs(t, err, ErrInvalidGraphState)

	assert.ErrorIs(t, doc.DeleteCategory(CategoryPlanform), ErrCategoryProtected)
	assert.ErrorIs(t, doc.DeleteCategory("nosuch"), ErrUnknownID)

	addSquare(t, doc, pg, "wheel", 10, 10)
	assert.ErrorIs(t, doc.DeleteCategory("wheel"), ErrCategoryInUse)

	state := NewEditorState()
	state.SelectObject(doc.Objects()[0].ID)
	doc.Delete(state)
	assert.NoError(t, doc.DeleteCategory("wheel"))
	_, ok := doc.Category("wheel")
	assert.False(t, ok)
}

func TestCategoryVisibilityBumpsPages(t *testing.T) {
	doc, pg := newTestDoc(t)
	before := pg.Version()
	require.NoError(t, doc.SetCategoryVisible("rib", false))
	assert.Greater(t, pg.Version(), before)

	// No-op toggle does not invalidate.
	mid := pg.Version()
	require.NoError(t, doc.SetCategoryVisible("rib", false))
	assert.Equal(t, mid, pg.Version())
}

func TestVersionStrictlyIncreases(t *testing.T) {
	doc, pg := newTestDoc(t)
	last := pg.Version()
	check := func() {
		if v := pg.Version(); v > last {
			last = v
			return
		}
		t.Fatalf("version did not increase past %d", last)
	}

	obj := addSquare(t, doc, pg, "rib", 10, 10)
	check()
	_, err := doc.Duplicate(obj.ID)
	require.NoError(t, err)
	check()
	require.NoError(t, doc.RenameObject(obj.ID, "root rib"))
	check()
	doc.EraseAt(pg.ID, 15, 15)
	check()
}

func TestObjectsForPageOrder(t *testing.T) {
	doc, pg := newTestDoc(t)
	pg2 := NewPage("Sparrow", "sheet2", image.NewRGBA(image.Rect(0, 0, testW, testH)))
	doc.AddPage(pg2)

	a := addSquare(t, doc, pg, "rib", 10, 10)
	b, err := doc.AddElement(pg2.ID, squareElement(t, "rib", 10, 10, 10), nil)
	require.NoError(t, err)
	c := addSquare(t, doc, pg, "spar", 30, 30)

	onPage := doc.ObjectsForPage(pg.ID)
	require.Len(t, onPage, 2)
	assert.Equal(t, a.ID, onPage[0].ID)
	assert.Equal(t, c.ID, onPage[1].ID)
	assert.Equal(t, b.ID, doc.ObjectsForPage(pg2.ID)[0].ID)
}

func TestElementAtTopmost(t *testing.T) {
	doc, pg := newTestDoc(t)
	addSquare(t, doc, pg, "rib", 10, 10)
	top := addSquare(t, doc, pg, "spar", 15, 15)

	obj, _, _, ok := doc.ElementAt(pg.ID, 17, 17)
	require.True(t, ok)
	assert.Equal(t, top.ID, obj.ID)

	_, _, _, ok = doc.ElementAt(pg.ID, 90, 90)
	assert.False(t, ok)
}

func TestInstanceMask(t *testing.T) {
	doc, pg := newTestDoc(t)
	obj := addSquare(t, doc, pg, "rib", 10, 10)

	state := NewEditorState()
	state.SelectObject(obj.ID)
	_, err := doc.AddElement(pg.ID, squareElement(t, "rib", 30, 30, 10), state)
	require.NoError(t, err)

	union, bounds, err := doc.InstanceMask(obj.Instances[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 200, union.Area())
	assert.Equal(t, 10, bounds.X)
	assert.Equal(t, 10, bounds.Y)
	assert.Equal(t, 30, bounds.Width)
	assert.Equal(t, 30, bounds.Height)

	_, _, err = doc.InstanceMask("nosuch")
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestHideRegions(t *testing.T) {
	_, pg := newTestDoc(t)
	assert.Nil(t, pg.CombinedTextMask())

	m1 := mask.New(testW, testH)
	m1.Set(1, 1)
	m2 := mask.New(testW, testH)
	m2.Set(2, 2)
	r1 := NewHideRegion(SourceAuto, ModePolygon, m1)
	pg.AddTextRegion(r1)
	pg.AddTextRegion(NewHideRegion(SourceManual, ModePolygon, m2))

	combined := pg.CombinedTextMask()
	require.NotNil(t, combined)
	assert.Equal(t, 2, combined.Area())

	require.True(t, pg.RemoveTextRegion(r1.ID))
	assert.Equal(t, 1, pg.CombinedTextMask().Area())
	assert.False(t, pg.RemoveTextRegion(r1.ID))
}
