package workspace

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-segmenter/internal/mask"
	"plan-segmenter/internal/model"
	"plan-segmenter/pkg/geometry"
)

func buildWorkspace(t *testing.T) *model.Document {
	t.Helper()
	doc := model.NewDocument()
	_, err := doc.AddCategory("wheel", "W")
	require.NoError(t, err)

	raster := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			raster.SetRGBA(x, y, color.RGBA{uint8(x * 6), uint8(y * 8), 200, 255})
		}
	}
	pg := model.NewPage("Sparrow", "sheet1", raster)
	pg.PixelsPerInch = 300
	doc.AddPage(pg)

	hide := mask.New(40, 30)
	hide.StampDisc(10, 10, 3)
	pg.AddTextRegion(model.NewHideRegion(model.SourceAuto, model.ModePolygon, hide))

	m := mask.New(40, 30)
	m.StampDisc(20, 15, 6)
	elem := model.NewElement("rib", model.ModeFlood,
		[]geometry.PointInt{{X: 20, Y: 15}}, m, color.RGBA{220, 0, 0, 255})
	obj, err := doc.AddElement(pg.ID, elem, nil)
	require.NoError(t, err)
	obj.Instances[0].Attributes = model.Attributes{
		Material: "balsa",
		Quantity: 2,
		Width:    3.5,
		Type:     "sheet",
	}
	require.NoError(t, doc.RenameObject(obj.ID, "wing rib"))
	return doc
}

func TestRoundTrip(t *testing.T) {
	doc := buildWorkspace(t)
	path := filepath.Join(t.TempDir(), "sparrow.json")

	require.NoError(t, Save(doc, Settings{Tolerance: 12, LineThickness: 4, PlanformOpacity: 0.25}, path))
	loaded, settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, settings.Tolerance)
	assert.Equal(t, 4, settings.LineThickness)
	assert.InDelta(t, 0.25, settings.PlanformOpacity, 1e-9)

	// Categories survive with order, color and flags.
	want := doc.Categories()
	got := loaded.Categories()
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Color, got[i].Color)
		assert.Equal(t, want[i].Protected, got[i].Protected)
		assert.Equal(t, want[i].SelectionMode, got[i].SelectionMode)
	}

	// Pages: identity, scale, raster pixels, hide regions.
	require.Len(t, loaded.Pages(), 1)
	wantPg := doc.Pages()[0]
	gotPg := loaded.Pages()[0]
	assert.Equal(t, wantPg.ID, gotPg.ID)
	assert.Equal(t, wantPg.ModelName, gotPg.ModelName)
	assert.InDelta(t, 300, gotPg.PixelsPerInch, 1e-9)
	require.NotNil(t, gotPg.Raster)
	assert.Equal(t, wantPg.Raster.Rect, gotPg.Raster.Rect)
	assert.Equal(t, wantPg.Raster.Pix, gotPg.Raster.Pix)
	require.Len(t, gotPg.TextRegions(), 1)
	assert.True(t, wantPg.TextRegions()[0].Mask.Equal(gotPg.TextRegions()[0].Mask))

	// Objects: same graph, pixel-for-pixel masks.
	require.Len(t, loaded.Objects(), 1)
	wantObj := doc.Objects()[0]
	gotObj := loaded.Objects()[0]
	assert.Equal(t, wantObj.ID, gotObj.ID)
	assert.Equal(t, "wing rib", gotObj.Name)
	assert.Equal(t, "rib", gotObj.Category)
	require.Len(t, gotObj.Instances, 1)
	assert.Equal(t, wantObj.Instances[0].ID, gotObj.Instances[0].ID)
	assert.Equal(t, 1, gotObj.Instances[0].Num)
	assert.Equal(t, wantObj.Instances[0].Attributes, gotObj.Instances[0].Attributes)

	wantElem := wantObj.Instances[0].Elements[0]
	gotElem := gotObj.Instances[0].Elements[0]
	assert.Equal(t, wantElem.ID, gotElem.ID)
	assert.Equal(t, wantElem.Mode, gotElem.Mode)
	assert.Equal(t, wantElem.Points, gotElem.Points)
	assert.Equal(t, wantElem.Color, gotElem.Color)
	assert.True(t, wantElem.Mask.Equal(gotElem.Mask), "masks must round-trip pixel for pixel")
}

func TestSecondRoundTripIsStable(t *testing.T) {
	doc := buildWorkspace(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.json")

	require.NoError(t, Save(doc, Settings{}, first))
	loaded, _, err := Load(first)
	require.NoError(t, err)
	require.NoError(t, Save(loaded, Settings{}, second))
	again, _, err := Load(second)
	require.NoError(t, err)

	assert.Equal(t, loaded.Objects()[0].ID, again.Objects()[0].ID)
	assert.True(t, loaded.Objects()[0].Instances[0].Elements[0].Mask.Equal(
		again.Objects()[0].Instances[0].Elements[0].Mask))
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
