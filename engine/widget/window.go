package widget

import (
	"fmt"

	"github.com/hubastard/grovetouch/engine/touch"
)

// Window is the root of a widget tree. It is registered with the event loop
// as a listener: every touch it receives is scaled from normalized system
// coordinates into its pixel space before being handed to its children.
type Window struct {
	Common[*Window]
	systemSize [2]float64
	rotation   int
	onRotate   func(rotation int)
	onResize   func(w, h float64)
}

func NewWindow(reg *Registry, w, h float64) *Window {
	win := &Window{systemSize: [2]float64{w, h}}
	win.Common = NewCommon(win)
	reg.Register(win)
	win.base.size = win.systemSize
	return win
}

// SystemSize is the unrotated size of the surface.
func (w *Window) SystemSize() (float64, float64) { return w.systemSize[0], w.systemSize[1] }

func (w *Window) SetSystemSize(width, height float64) {
	w.systemSize = [2]float64{width, height}
	w.base.SetSize(w.rotatedSize())
}

func (w *Window) Rotation() int { return w.rotation }

// SetRotation rotates the window content. Only right angles are accepted;
// any other value leaves the window untouched.
func (w *Window) SetRotation(deg int) error {
	deg = ((deg % 360) + 360) % 360
	switch deg {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("set rotation %d: %w", deg, ErrInvalidRotation)
	}
	if deg == w.rotation {
		return nil
	}
	w.rotation = deg
	w.base.SetSize(w.rotatedSize())
	if w.onRotate != nil {
		w.onRotate(deg)
	}
	return nil
}

func (w *Window) OnRotateFunc(fn func(rotation int)) *Window  { w.onRotate = fn; return w }
func (w *Window) OnResizeFunc(fn func(w, h float64)) *Window { w.onResize = fn; return w }

func (w *Window) OnResize(width, height float64) {
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *Window) rotatedSize() (float64, float64) {
	if w.rotation == 90 || w.rotation == 270 {
		return w.systemSize[1], w.systemSize[0]
	}
	return w.systemSize[0], w.systemSize[1]
}

func (w *Window) scale(t *touch.Touch) {
	t.ScaleForScreen(w.systemSize[0], w.systemSize[1], w.rotation)
}

func (w *Window) OnTouchDown(t *touch.Touch) bool {
	w.scale(t)
	return DispatchChildren(w, touch.Down, t)
}

func (w *Window) OnTouchMove(t *touch.Touch) bool {
	w.scale(t)
	return DispatchChildren(w, touch.Move, t)
}

func (w *Window) OnTouchUp(t *touch.Touch) bool {
	w.scale(t)
	return DispatchChildren(w, touch.Up, t)
}
