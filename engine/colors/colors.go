// Package colors holds the RGBA palette used by the touch overlay.
package colors

import "github.com/hubastard/grovetouch/engine/touch"

type Color [4]float32

var (
	White    = Color{1, 1, 1, 1}
	Red      = Color{1, 0, 0, 1}
	Green    = Color{0, 1, 0, 1}
	Blue     = Color{0, 0, 1, 1}
	Black    = Color{0, 0, 0, 1}
	Magenta  = Color{1, 0, 1, 1}
	Cyan     = Color{0, 1, 1, 1}
	Yellow   = Color{1, 1, 0, 1}
	Gray     = Color{0.5, 0.5, 0.5, 1}
	DarkGray = Color{0.08, 0.10, 0.12, 1}
)

// Palette cycles through these for successive touches.
var Palette = []Color{Cyan, Magenta, Yellow, Green, Red, Blue}

func (c Color) WithAlpha(a float32) Color {
	c[3] = a
	return c
}

// ForTouch picks a stable color for a contact. Double taps are white and
// grabbed touches are drawn opaque, free ones slightly transparent.
func ForTouch(t *touch.Touch) Color {
	c := Palette[t.UID%uint64(len(Palette))]
	if t.IsDoubleTap {
		c = White
	}
	if len(t.GrabList) == 0 {
		c = c.WithAlpha(0.7)
	}
	return c
}
