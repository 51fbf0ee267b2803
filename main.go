// Command plan-segmenter renders the pages of a saved workspace to PNG
// files: the composited base with optional labels, background hiding and
// text/hatch suppression, at a chosen zoom.
//
// Usage: plan-segmenter [options] <workspace.json>
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"plan-segmenter/internal/model"
	"plan-segmenter/internal/render"
	"plan-segmenter/internal/workspace"
)

var (
	flagVerbose        = flag.Bool("v", false, "Verbose output")
	flagOut            = flag.String("out", ".", "Output directory")
	flagPage           = flag.String("page", "", "Render only this page ID (default: all pages)")
	flagZoom           = flag.Float64("zoom", 1.0, "Zoom factor")
	flagLabels         = flag.Bool("labels", false, "Draw instance labels")
	flagHideBackground = flag.Bool("hide-background", false, "Composite onto a blank page")
	flagHideText       = flag.Bool("hide-text", false, "Suppress detected text regions")
	flagHideHatch      = flag.Bool("hide-hatch", false, "Suppress detected hatching regions")
	flagThumb          = flag.Int("thumb", 0, "Also write a thumbnail with this long-side size")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <workspace.json>\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *flagVerbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	doc, settings, err := workspace.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load workspace: %v\n", err)
		os.Exit(1)
	}

	opts := render.Options{
		Zoom:            *flagZoom,
		ShowLabels:      *flagLabels,
		PlanformOpacity: settings.PlanformOpacity,
		HideBackground:  *flagHideBackground,
		HideText:        *flagHideText,
		HideHatch:       *flagHideHatch,
	}

	r := render.New()
	rendered := 0
	for _, pg := range doc.Pages() {
		if *flagPage != "" && pg.ID != *flagPage {
			continue
		}
		img := r.Render(doc, pg.ID, nil, opts)
		out := filepath.Join(*flagOut, pageFileName(pg, ""))
		if err := writePNG(out, img); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%dx%d)\n", out, img.Rect.Dx(), img.Rect.Dy())

		if *flagThumb > 0 {
			thumb := r.Thumbnail(doc, pg.ID, *flagThumb, opts)
			out := filepath.Join(*flagOut, pageFileName(pg, "_thumb"))
			if err := writePNG(out, thumb); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Wrote %s (%dx%d)\n", out, thumb.Rect.Dx(), thumb.Rect.Dy())
		}
		rendered++
	}

	if rendered == 0 {
		fmt.Fprintln(os.Stderr, "Error: no matching pages")
		os.Exit(1)
	}
}

func pageFileName(pg *model.Page, suffix string) string {
	name := pg.PageName
	if name == "" {
		name = pg.ID
	}
	return name + suffix + ".png"
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
