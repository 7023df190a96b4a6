package widget

import "math"

// Circle is a Button with a circular hit area inscribed in its bounds.
type Circle struct {
	Button
}

func NewCircle(reg *Registry, label string) *Circle {
	c := &Circle{}
	c.label = label
	c.Common = NewCommon(&c.Button)
	reg.Register(c)
	return c
}

func (c *Circle) Radius() float64 {
	w, h := c.base.Size()
	return math.Min(w, h) / 2
}

func (c *Circle) CollidePoint(x, y float64) bool {
	cx, cy := c.base.Center()
	r := c.Radius()
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy < r*r
}
