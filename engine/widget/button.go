package widget

import "github.com/hubastard/grovetouch/engine/touch"

// Button claims touches that land on it, grabs them and reports a press when
// a grabbed touch is released while still over the button.
type Button struct {
	Common[*Button]
	label   string
	pressed bool
	touches int
	onPress func(*Button)
}

func NewButton(reg *Registry, label string) *Button {
	b := &Button{label: label}
	b.Common = NewCommon(b)
	reg.Register(b)
	return b
}

func (b *Button) OnPress(fn func(*Button)) *Button { b.onPress = fn; return b }
func (b *Button) Label() string                    { return b.label }
func (b *Button) Pressed() bool                    { return b.pressed }

func (b *Button) OnTouchDown(t *touch.Touch) bool {
	if !CollidePoint(b.base.owner, t.X, t.Y) {
		return false
	}
	t.Grab(b.base.ref)
	b.touches++
	b.pressed = true
	return true
}

func (b *Button) OnTouchMove(t *touch.Touch) bool {
	if t.GrabCurrent != b.base.ref {
		return false
	}
	b.pressed = CollidePoint(b.base.owner, t.X, t.Y)
	return true
}

func (b *Button) OnTouchUp(t *touch.Touch) bool {
	if t.GrabCurrent != b.base.ref {
		return false
	}
	t.Ungrab(b.base.ref)
	if b.touches > 0 {
		b.touches--
	}
	hit := CollidePoint(b.base.owner, t.X, t.Y)
	if b.touches == 0 {
		b.pressed = false
	}
	if hit && b.onPress != nil {
		b.onPress(b)
	}
	return true
}
