package widget

import (
	"math"

	"github.com/hubastard/grovetouch/engine/touch"
	"golang.org/x/image/math/f64"
)

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// Scatter is a container with its own affine coordinate space. Its children
// receive touches in that local space. A touch that lands on the scatter but
// on none of its children is grabbed and drags the whole scatter.
type Scatter struct {
	Common[*Scatter]
	m, inv    f64.Aff3
	draggable bool
}

func NewScatter(reg *Registry, children ...Element) *Scatter {
	s := &Scatter{m: identity, inv: identity, draggable: true}
	s.Common = NewCommon(s)
	reg.Register(s)
	s.Children(children...)
	return s
}

func (s *Scatter) Draggable(d bool) *Scatter { s.draggable = d; return s }

// Transform returns the local-to-parent matrix.
func (s *Scatter) Transform() f64.Aff3 { return s.m }

func (s *Scatter) SetTransform(m f64.Aff3) *Scatter {
	s.m = m
	s.inv = invert(m)
	return s
}

func (s *Scatter) Translate(dx, dy float64) *Scatter {
	m := s.m
	m[2] += dx
	m[5] += dy
	return s.SetTransform(m)
}

// Rotate rotates the local space by deg degrees around its origin.
func (s *Scatter) Rotate(deg float64) *Scatter {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return s.SetTransform(mul(s.m, f64.Aff3{cos, -sin, 0, sin, cos, 0}))
}

func (s *Scatter) Scale(k float64) *Scatter {
	return s.SetTransform(mul(s.m, f64.Aff3{k, 0, 0, 0, k, 0}))
}

func (s *Scatter) ToLocal(x, y float64) (float64, float64)  { return touch.Apply(s.inv, x, y) }
func (s *Scatter) ToParent(x, y float64) (float64, float64) { return touch.Apply(s.m, x, y) }

// CollidePoint takes a point in parent space and tests it against the
// scatter's local bounds.
func (s *Scatter) CollidePoint(x, y float64) bool {
	lx, ly := s.ToLocal(x, y)
	w, h := s.base.Size()
	return lx > 0 && lx < w && ly > 0 && ly < h
}

func (s *Scatter) dispatchLocal(kind touch.Kind, t *touch.Touch) bool {
	t.Push()
	defer t.Pop()
	t.Transform(s.inv)
	return DispatchChildren(s, kind, t)
}

func (s *Scatter) OnTouchDown(t *touch.Touch) bool {
	if !s.CollidePoint(t.X, t.Y) {
		return false
	}
	if s.dispatchLocal(touch.Down, t) {
		return true
	}
	if !s.draggable {
		return false
	}
	t.Grab(s.base.ref)
	return true
}

func (s *Scatter) OnTouchMove(t *touch.Touch) bool {
	if t.GrabCurrent == s.base.ref {
		s.Translate(t.X-t.PX, t.Y-t.PY)
		return true
	}
	return s.dispatchLocal(touch.Move, t)
}

func (s *Scatter) OnTouchUp(t *touch.Touch) bool {
	if t.GrabCurrent == s.base.ref {
		t.Ungrab(s.base.ref)
		return true
	}
	return s.dispatchLocal(touch.Up, t)
}

func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func invert(m f64.Aff3) f64.Aff3 {
	det := m[0]*m[4] - m[1]*m[3]
	if det == 0 {
		return identity
	}
	a, b, d, e := m[4]/det, -m[1]/det, -m[3]/det, m[0]/det
	return f64.Aff3{
		a, b, -(a*m[2] + b*m[5]),
		d, e, -(d*m[2] + e*m[5]),
	}
}
