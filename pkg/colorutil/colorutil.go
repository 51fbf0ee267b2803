// Package colorutil provides shared color utilities for the plan segmenter.
package colorutil

import (
	"fmt"
	"image/color"
)

// Common overlay colors used throughout the application.
var (
	Black         = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White         = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan          = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Yellow        = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	DarkTextGray  = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	LightTextGray = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// Palette holds the rotation of display colors assigned to user-created
// categories, highly saturated for visibility on a white plan sheet.
var Palette = []color.RGBA{
	{R: 255, G: 0, B: 0, A: 255},   // Red
	{R: 0, G: 160, B: 0, A: 255},   // Green
	{R: 0, G: 0, B: 255, A: 255},   // Blue
	{R: 255, G: 128, B: 0, A: 255}, // Orange
	{R: 160, G: 0, B: 255, A: 255}, // Purple
	{R: 0, G: 160, B: 160, A: 255}, // Teal
	{R: 200, G: 0, B: 128, A: 255}, // Rose
	{R: 128, G: 128, B: 0, A: 255}, // Olive
}

// NextColor returns the next palette color based on how many categories exist.
func NextColor(categoryCount int) color.RGBA {
	return Palette[categoryCount%len(Palette)]
}

// WithinTolerance reports whether every channel of c is within tol of the
// corresponding channel of ref. Alpha is ignored.
func WithinTolerance(c, ref color.RGBA, tol uint8) bool {
	return absDiff(c.R, ref.R) <= tol &&
		absDiff(c.G, ref.G) <= tol &&
		absDiff(c.B, ref.B) <= tol
}

// Brightness returns the mean of the RGB channels (0-255).
func Brightness(c color.RGBA) float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3
}

// ParseHex parses a "#RRGGBB" string into an opaque RGBA color.
func ParseHex(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats an RGBA color as "#RRGGBB".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
