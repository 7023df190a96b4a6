package widget

import "github.com/hubastard/grovetouch/engine/touch"

// Widget is a plain container. It does no hit testing of its own and hands
// every event to its children, topmost first.
type Widget struct {
	Common[*Widget]
}

func New(reg *Registry, children ...Element) *Widget {
	w := &Widget{}
	w.Common = NewCommon(w)
	reg.Register(w)
	w.Children(children...)
	return w
}

func (w *Widget) OnTouchDown(t *touch.Touch) bool { return DispatchChildren(w, touch.Down, t) }
func (w *Widget) OnTouchMove(t *touch.Touch) bool { return DispatchChildren(w, touch.Move, t) }
func (w *Widget) OnTouchUp(t *touch.Touch) bool   { return DispatchChildren(w, touch.Up, t) }
