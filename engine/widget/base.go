// Package widget is the dispatch-facing side of the widget tree: nodes that
// receive touch events, claim grabs, hit-test and map coordinates between
// their local space and their parent's.
package widget

import (
	"errors"

	"github.com/hubastard/grovetouch/engine/touch"
)

var (
	// ErrDetached is returned by coordinate walks that cross a parent handle
	// that no longer resolves.
	ErrDetached = errors.New("widget: ancestor detached")
	// ErrInvalidRotation is returned for rotations other than 0, 90, 180, 270.
	ErrInvalidRotation = errors.New("widget: rotation must be 0, 90, 180 or 270 degrees")
)

// Element is any node that can take part in touch dispatch.
type Element interface {
	Node() *Base
	OnTouchDown(t *touch.Touch) bool
	OnTouchMove(t *touch.Touch) bool
	OnTouchUp(t *touch.Touch) bool
}

// Collider overrides the default rectangle hit test.
type Collider interface {
	CollidePoint(x, y float64) bool
}

// Mapper converts points between a node's local space and its parent's.
// Nodes that do not implement it share their parent's space.
type Mapper interface {
	ToLocal(x, y float64) (float64, float64)
	ToParent(x, y float64) (float64, float64)
}

// Resizer and Mover are notified when Base geometry changes.
type Resizer interface{ OnResize(w, h float64) }
type Mover interface{ OnMove(x, y float64) }

type Base struct {
	reg      *Registry
	ref      touch.Ref
	owner    Element
	parent   touch.Ref // back-reference only
	children []Element
	id       string
	position [2]float64
	size     [2]float64
	hidden   bool
}

func (b *Base) Ref() touch.Ref          { return b.ref }
func (b *Base) Registry() *Registry     { return b.reg }
func (b *Base) Children() []Element     { return b.children }
func (b *Base) Pos() (x, y float64)     { return b.position[0], b.position[1] }
func (b *Base) Size() (w, h float64)    { return b.size[0], b.size[1] }
func (b *Base) Visible() bool           { return !b.hidden }
func (b *Base) ID() string              { return b.id }
func (b *Base) Center() (x, y float64)  { return b.position[0] + b.size[0]/2, b.position[1] + b.size[1]/2 }
func (b *Base) HasParent() bool         { return b.parent != 0 }
func (b *Base) Show()                   { b.hidden = false }
func (b *Base) Hide()                   { b.hidden = true }
func (b *Base) SetVisible(visible bool) { b.hidden = !visible }

// Parent resolves the parent handle. It returns ErrDetached when the parent
// was released while b still points at it.
func (b *Base) Parent() (Element, error) {
	if b.parent == 0 {
		return nil, nil
	}
	if b.reg == nil {
		return nil, ErrDetached
	}
	p, ok := b.reg.Resolve(b.parent)
	if !ok {
		return nil, ErrDetached
	}
	return p, nil
}

func (b *Base) SetID(id string) {
	if b.reg == nil {
		b.id = id
		return
	}
	b.reg.setID(b, id)
}

func (b *Base) SetPos(x, y float64) {
	if b.position == [2]float64{x, y} {
		return
	}
	b.position = [2]float64{x, y}
	if m, ok := b.owner.(Mover); ok {
		m.OnMove(x, y)
	}
}

func (b *Base) SetSize(w, h float64) {
	if b.size == [2]float64{w, h} {
		return
	}
	b.size = [2]float64{w, h}
	if r, ok := b.owner.(Resizer); ok {
		r.OnResize(w, h)
	}
}

// CollidePoint is the default hit test: strictly inside the rectangle.
func (b *Base) CollidePoint(x, y float64) bool {
	return x > b.position[0] && x < b.position[0]+b.size[0] &&
		y > b.position[1] && y < b.position[1]+b.size[1]
}

// AddWidget attaches w on top of the children, or at the bottom when
// front is false. A w that already has a parent is detached from it first.
func (b *Base) AddWidget(w Element, front bool) {
	if old, err := w.Node().Parent(); err == nil && old != nil {
		old.Node().RemoveWidget(w)
	}
	if front {
		b.children = append(b.children, w)
	} else {
		b.children = append([]Element{w}, b.children...)
	}
	w.Node().parent = b.ref
}

func (b *Base) RemoveWidget(w Element) {
	for i, c := range b.children {
		if c == w {
			b.children = append(b.children[:i], b.children[i+1:]...)
			w.Node().parent = 0
			return
		}
	}
}

// BringToFront moves the node to the top of its parent's children.
func (b *Base) BringToFront() {
	p, err := b.Parent()
	if err != nil || p == nil {
		return
	}
	pb := p.Node()
	pb.RemoveWidget(b.owner)
	pb.AddWidget(b.owner, true)
}

// ------ Helper ------

type Common[T Element] struct {
	owner T
	base  Base
}

func NewCommon[T Element](owner T) Common[T] {
	return Common[T]{owner: owner}
}

func (c *Common[T]) Node() *Base               { return &c.base }
func (c *Common[T]) Position(x, y float64) T   { c.base.SetPos(x, y); return c.owner }
func (c *Common[T]) Size(w, h float64) T       { c.base.SetSize(w, h); return c.owner }
func (c *Common[T]) Visible(visible bool) T    { c.base.SetVisible(visible); return c.owner }
func (c *Common[T]) WithID(id string) T        { c.base.SetID(id); return c.owner }
func (c *Common[T]) Bounds(x, y, w, h float64) T {
	c.base.SetPos(x, y)
	c.base.SetSize(w, h)
	return c.owner
}

func (c *Common[T]) Children(kids ...Element) T {
	for _, k := range kids {
		c.base.AddWidget(k, true)
	}
	return c.owner
}
