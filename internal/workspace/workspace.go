// Package workspace persists the document graph as a JSON file with the
// page rasters stored as side PNG files. Element and hide-region masks
// are embedded as base64 PNG, so a save/load round trip reproduces every
// mask pixel for pixel.
package workspace

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"plan-segmenter/internal/mask"
	"plan-segmenter/internal/model"
	"plan-segmenter/internal/page"
	"plan-segmenter/pkg/colorutil"
	"plan-segmenter/pkg/geometry"
)

const fileVersion = 1

// Settings are the user preferences persisted with the workspace.
type Settings struct {
	Tolerance       int     `json:"tolerance,omitempty"`
	LineThickness   int     `json:"line_thickness,omitempty"`
	PlanformOpacity float64 `json:"planform_opacity,omitempty"`
}

type fileDoc struct {
	Version    int           `json:"version"`
	Modified   time.Time     `json:"modified"`
	Settings   Settings      `json:"settings,omitempty"`
	Categories []categoryDTO `json:"categories"`
	Pages      []pageDTO     `json:"pages"`
	Objects    []objectDTO   `json:"objects"`
}

type categoryDTO struct {
	Name          string     `json:"name"`
	Prefix        string     `json:"prefix"`
	DisplayName   string     `json:"display_name"`
	Color         string     `json:"color"`
	Visible       bool       `json:"visible"`
	SelectionMode model.Mode `json:"selection_mode"`
	Protected     bool       `json:"protected,omitempty"`
}

type pageDTO struct {
	ID            string      `json:"id"`
	ModelName     string      `json:"model_name,omitempty"`
	PageName      string      `json:"page_name,omitempty"`
	RasterFile    string      `json:"raster_file,omitempty"`
	PixelsPerInch float64     `json:"pixels_per_inch,omitempty"`
	Rotation      int         `json:"rotation,omitempty"`
	TextRegions   []regionDTO `json:"text_regions,omitempty"`
	HatchRegions  []regionDTO `json:"hatch_regions,omitempty"`
}

type regionDTO struct {
	ID     string             `json:"id"`
	Source model.RegionSource `json:"source"`
	Mode   model.Mode         `json:"mode"`
	Mask   string             `json:"mask"`
}

type objectDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Instances []instanceDTO `json:"instances"`
}

type instanceDTO struct {
	ID         string           `json:"id"`
	Num        int              `json:"num"`
	PageID     string           `json:"page_id"`
	View       string           `json:"view,omitempty"`
	Attributes model.Attributes `json:"attributes,omitempty"`
	Elements   []elementDTO     `json:"elements"`
}

type elementDTO struct {
	ID          string              `json:"id"`
	Category    string              `json:"category"`
	Mode        model.Mode          `json:"mode"`
	Points      []geometry.PointInt `json:"points,omitempty"`
	Mask        string              `json:"mask,omitempty"`
	Color       string              `json:"color"`
	LabelAnchor string              `json:"label_anchor,omitempty"`
}

// Save writes the workspace JSON to path and each page raster as a PNG
// under "<base>_pages/".
func Save(doc *model.Document, settings Settings, path string) error {
	f := fileDoc{Version: fileVersion, Modified: time.Now(), Settings: settings}

	for _, cat := range doc.Categories() {
		f.Categories = append(f.Categories, categoryDTO{
			Name:          cat.Name,
			Prefix:        cat.Prefix,
			DisplayName:   cat.DisplayName,
			Color:         colorutil.Hex(cat.Color),
			Visible:       cat.Visible,
			SelectionMode: cat.SelectionMode,
			Protected:     cat.Protected,
		})
	}

	pagesDir := pagesDirFor(path)
	for _, pg := range doc.Pages() {
		dto := pageDTO{
			ID:            pg.ID,
			ModelName:     pg.ModelName,
			PageName:      pg.PageName,
			PixelsPerInch: pg.PixelsPerInch,
			Rotation:      pg.Rotation,
		}
		if pg.Raster != nil {
			if err := os.MkdirAll(pagesDir, 0755); err != nil {
				return fmt.Errorf("failed to create pages dir: %w", err)
			}
			name := pg.ID + ".png"
			if err := writeRaster(filepath.Join(pagesDir, name), pg); err != nil {
				return err
			}
			dto.RasterFile = name
		}
		var err error
		if dto.TextRegions, err = encodeRegions(pg.TextRegions()); err != nil {
			return err
		}
		if dto.HatchRegions, err = encodeRegions(pg.HatchRegions()); err != nil {
			return err
		}
		f.Pages = append(f.Pages, dto)
	}

	for _, obj := range doc.Objects() {
		dto := objectDTO{ID: obj.ID, Name: obj.Name, Category: obj.Category}
		for _, inst := range obj.Instances {
			idto := instanceDTO{
				ID:         inst.ID,
				Num:        inst.Num,
				PageID:     inst.PageID,
				View:       inst.View,
				Attributes: inst.Attributes,
			}
			for _, elem := range inst.Elements {
				encoded, err := encodeMask(elem.Mask)
				if err != nil {
					return fmt.Errorf("element %s: %w", elem.ID, err)
				}
				idto.Elements = append(idto.Elements, elementDTO{
					ID:          elem.ID,
					Category:    elem.Category,
					Mode:        elem.Mode,
					Points:      elem.Points,
					Mask:        encoded,
					Color:       colorutil.Hex(elem.Color),
					LabelAnchor: elem.LabelAnchor,
				})
			}
			dto.Instances = append(dto.Instances, idto)
		}
		f.Objects = append(f.Objects, dto)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workspace: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a workspace JSON and rebuilds the document graph, page
// rasters included.
func Load(path string) (*model.Document, Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Settings{}, err
	}
	var f fileDoc
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, Settings{}, fmt.Errorf("failed to parse workspace: %w", err)
	}

	doc := model.NewDocument()
	for _, dto := range f.Categories {
		c, err := colorutil.ParseHex(dto.Color)
		if err != nil {
			return nil, Settings{}, fmt.Errorf("category %q color: %w", dto.Name, err)
		}
		doc.RestoreCategory(&model.Category{
			Name:          dto.Name,
			Prefix:        dto.Prefix,
			DisplayName:   dto.DisplayName,
			Color:         c,
			Visible:       dto.Visible,
			SelectionMode: dto.SelectionMode,
			Protected:     dto.Protected,
		})
	}

	pagesDir := pagesDirFor(path)
	for _, dto := range f.Pages {
		pg := model.NewPage(dto.ModelName, dto.PageName, nil)
		pg.ID = dto.ID
		pg.PixelsPerInch = dto.PixelsPerInch
		pg.Rotation = dto.Rotation
		if dto.RasterFile != "" {
			raster, err := page.Load(filepath.Join(pagesDir, dto.RasterFile))
			if err != nil {
				return nil, Settings{}, fmt.Errorf("page %s raster: %w", dto.ID, err)
			}
			pg.Raster = raster.Image
		}
		if err := restoreRegions(dto.TextRegions, pg.AddTextRegion); err != nil {
			return nil, Settings{}, err
		}
		if err := restoreRegions(dto.HatchRegions, pg.AddHatchRegion); err != nil {
			return nil, Settings{}, err
		}
		doc.AddPage(pg)
	}

	for _, dto := range f.Objects {
		obj := model.NewObject(dto.Name, dto.Category)
		obj.ID = dto.ID
		for _, idto := range dto.Instances {
			inst := model.NewInstance(idto.Num, idto.PageID, idto.View)
			inst.ID = idto.ID
			inst.Attributes = idto.Attributes
			for _, edto := range idto.Elements {
				m, err := decodeMask(edto.Mask)
				if err != nil {
					return nil, Settings{}, fmt.Errorf("element %s: %w", edto.ID, err)
				}
				c, err := colorutil.ParseHex(edto.Color)
				if err != nil {
					return nil, Settings{}, fmt.Errorf("element %s color: %w", edto.ID, err)
				}
				elem := model.NewElement(edto.Category, edto.Mode, edto.Points, m, c)
				elem.ID = edto.ID
				if edto.LabelAnchor != "" {
					elem.LabelAnchor = edto.LabelAnchor
				}
				inst.Elements = append(inst.Elements, elem)
			}
			obj.Instances = append(obj.Instances, inst)
		}
		doc.RestoreObject(obj)
	}

	return doc, f.Settings, nil
}

func pagesDirFor(path string) string {
	base := path[:len(path)-len(filepath.Ext(path))]
	return base + "_pages"
}

func writeRaster(path string, pg *model.Page) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, pg.Raster); err != nil {
		return fmt.Errorf("failed to encode page %s raster: %w", pg.ID, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func encodeRegions(regions []*model.HideRegion) ([]regionDTO, error) {
	var out []regionDTO
	for _, r := range regions {
		encoded, err := encodeMask(r.Mask)
		if err != nil {
			return nil, fmt.Errorf("hide region %s: %w", r.ID, err)
		}
		out = append(out, regionDTO{ID: r.ID, Source: r.Source, Mode: r.Mode, Mask: encoded})
	}
	return out, nil
}

func restoreRegions(dtos []regionDTO, add func(*model.HideRegion)) error {
	for _, dto := range dtos {
		m, err := decodeMask(dto.Mask)
		if err != nil {
			return fmt.Errorf("hide region %s: %w", dto.ID, err)
		}
		r := model.NewHideRegion(dto.Source, dto.Mode, m)
		r.ID = dto.ID
		add(r)
	}
	return nil
}

func encodeMask(m *mask.Mask) (string, error) {
	if m == nil {
		return "", nil
	}
	data, err := m.EncodePNG()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func decodeMask(s string) (*mask.Mask, error) {
	if s == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("mask is not valid base64: %w", err)
	}
	return mask.DecodePNG(data)
}
