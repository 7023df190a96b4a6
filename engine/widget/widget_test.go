package widget

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hubastard/grovetouch/engine/touch"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRegistryHandles(t *testing.T) {
	reg := NewRegistry()
	a := New(reg)
	ref := a.Node().Ref()
	if el, ok := reg.Resolve(ref); !ok || el != Element(a) {
		t.Fatalf("expected ref to resolve to a")
	}
	reg.Release(ref)
	if _, ok := reg.Resolve(ref); ok {
		t.Fatalf("expected released ref not to resolve")
	}
	b := New(reg)
	if b.Node().Ref() == ref {
		t.Fatalf("expected a reused slot to get a new generation")
	}
	if _, ok := reg.Resolve(ref); ok {
		t.Errorf("expected the stale ref to stay dead after slot reuse")
	}
	if _, ok := reg.Resolve(0); ok {
		t.Errorf("expected the zero ref never to resolve")
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 live widget, got %d", reg.Len())
	}
}

func TestRegistryLookupAndDestroy(t *testing.T) {
	reg := NewRegistry()
	child := NewButton(reg, "x").WithID("ok")
	root := New(reg, child)
	if el, ok := reg.Lookup("ok"); !ok || el != Element(child) {
		t.Fatalf("expected lookup by id")
	}
	reg.Destroy(root)
	if _, ok := reg.Lookup("ok"); ok {
		t.Errorf("expected destroyed widget not to be found")
	}
	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d", reg.Len())
	}
}

func TestCollidePointStrict(t *testing.T) {
	reg := NewRegistry()
	b := NewButton(reg, "b").Bounds(10, 10, 20, 20)
	tests := []struct {
		x, y float64
		want bool
	}{
		{20, 20, true},
		{10, 20, false},
		{30, 20, false},
		{20, 30, false},
		{11, 29, true},
	}
	for _, tc := range tests {
		if got := CollidePoint(b, tc.x, tc.y); got != tc.want {
			t.Errorf("collide(%v, %v): expected %v, got %v", tc.x, tc.y, tc.want, got)
		}
	}
}

func TestCircleCollide(t *testing.T) {
	reg := NewRegistry()
	c := NewCircle(reg, "c")
	c.Bounds(0, 0, 20, 20)
	if !CollidePoint(c, 10, 10) {
		t.Errorf("expected the center to collide")
	}
	if CollidePoint(c, 1, 1) {
		t.Errorf("expected the corner not to collide")
	}
}

func TestDispatchReverseOrderStopsAtFirst(t *testing.T) {
	reg := NewRegistry()
	bottom := NewButton(reg, "bottom").Bounds(0, 0, 100, 100)
	top := NewButton(reg, "top").Bounds(0, 0, 100, 100)
	root := New(reg, bottom, top)
	tc := touch.New("test", 1, 0, 0, time.Time{})
	tc.X, tc.Y = 50, 50
	if !Dispatch(root, touch.Down, tc) {
		t.Fatalf("expected the down to be handled")
	}
	if !top.Pressed() || bottom.Pressed() {
		t.Errorf("expected only the top button pressed")
	}

	top.Visible(false)
	tc2 := touch.New("test", 2, 0, 0, time.Time{})
	tc2.X, tc2.Y = 50, 50
	Dispatch(root, touch.Down, tc2)
	if !bottom.Pressed() {
		t.Errorf("expected the hidden top to be skipped")
	}
}

func TestAddWidgetBack(t *testing.T) {
	reg := NewRegistry()
	root := New(reg)
	a, b := New(reg), New(reg)
	root.Node().AddWidget(a, true)
	root.Node().AddWidget(b, false)
	kids := root.Node().Children()
	if len(kids) != 2 || kids[0] != Element(b) {
		t.Fatalf("expected b at the bottom")
	}
	if p, err := b.Node().Parent(); err != nil || p != Element(root) {
		t.Errorf("expected root parent, got %v %v", p, err)
	}
	root.Node().RemoveWidget(b)
	if b.Node().HasParent() {
		t.Errorf("expected b to be orphaned")
	}
}

func TestAddWidgetReparents(t *testing.T) {
	reg := NewRegistry()
	first, second := New(reg), New(reg)
	child := New(reg)
	first.Node().AddWidget(child, true)
	second.Node().AddWidget(child, true)
	if n := len(first.Node().Children()); n != 0 {
		t.Fatalf("expected the old parent to lose the child, got %d children", n)
	}
	if kids := second.Node().Children(); len(kids) != 1 || kids[0] != Element(child) {
		t.Fatalf("expected the new parent to hold the child, got %v", kids)
	}
	if p, _ := child.Node().Parent(); p != Element(second) {
		t.Errorf("expected second as parent, got %v", p)
	}

	second.Node().AddWidget(child, true)
	if n := len(second.Node().Children()); n != 1 {
		t.Errorf("expected re-adding to the same parent to keep one entry, got %d", n)
	}
}

func TestCoordinateChain(t *testing.T) {
	reg := NewRegistry()
	inner := NewScatter(reg).Translate(5, 0)
	outer := NewScatter(reg, inner).Translate(10, 20)
	win := NewWindow(reg, 100, 100).Children(outer)

	x, y, err := ToWidget(inner, 50, 50)
	if err != nil || x != 35 || y != 30 {
		t.Fatalf("expected (35, 30), got (%v, %v) %v", x, y, err)
	}
	x, y, err = ToWindow(inner, 35, 30)
	if err != nil || x != 50 || y != 50 {
		t.Fatalf("expected (50, 50), got (%v, %v) %v", x, y, err)
	}
	root, err := RootWindow(inner)
	if err != nil || root != win {
		t.Fatalf("expected the window as root")
	}

	reg.Release(outer.Node().Ref())
	if _, _, err := ToWidget(inner, 0, 0); !errors.Is(err, ErrDetached) {
		t.Errorf("expected ErrDetached, got %v", err)
	}
	if _, err := RootWindow(inner); !errors.Is(err, ErrDetached) {
		t.Errorf("expected ErrDetached from RootWindow, got %v", err)
	}
}

func TestScatterRotateScaleRoundTrip(t *testing.T) {
	reg := NewRegistry()
	s := NewScatter(reg).Translate(10, 10).Rotate(90).Scale(2)
	lx, ly := s.ToLocal(30, 40)
	px, py := s.ToParent(lx, ly)
	if !near(px, 30) || !near(py, 40) {
		t.Fatalf("expected round trip to (30, 40), got (%v, %v)", px, py)
	}
}

func TestScatterDrag(t *testing.T) {
	reg := NewRegistry()
	s := NewScatter(reg).Size(50, 50)
	tc := touch.New("test", 1, 0, 0, time.Time{})
	tc.X, tc.Y, tc.PX, tc.PY = 10, 10, 10, 10
	if !s.OnTouchDown(tc) || !tc.IsGrabbed(s.Node().Ref()) {
		t.Fatalf("expected the scatter to grab an unclaimed touch")
	}
	tc.PX, tc.PY, tc.X, tc.Y = 10, 10, 15, 12
	tc.GrabCurrent = s.Node().Ref()
	s.OnTouchMove(tc)
	m := s.Transform()
	if m[2] != 5 || m[5] != 2 {
		t.Errorf("expected translation (5, 2), got (%v, %v)", m[2], m[5])
	}
	s.OnTouchUp(tc)
	if tc.IsGrabbed(s.Node().Ref()) {
		t.Errorf("expected the grab released on up")
	}
	if tc.Depth() != 0 {
		t.Errorf("expected balanced stack, got %d", tc.Depth())
	}
}

func TestWindowRotation(t *testing.T) {
	reg := NewRegistry()
	var rotated []int
	w := NewWindow(reg, 200, 100).OnRotateFunc(func(r int) { rotated = append(rotated, r) })
	if err := w.SetRotation(90); err != nil {
		t.Fatal(err)
	}
	if sw, sh := w.Node().Size(); sw != 100 || sh != 200 {
		t.Errorf("expected rotated size 100x200, got %vx%v", sw, sh)
	}
	if sw, sh := w.SystemSize(); sw != 200 || sh != 100 {
		t.Errorf("expected system size unchanged, got %vx%v", sw, sh)
	}
	if err := w.SetRotation(-90); err != nil || w.Rotation() != 270 {
		t.Errorf("expected -90 to normalize to 270, got %d %v", w.Rotation(), err)
	}
	if err := w.SetRotation(45); !errors.Is(err, ErrInvalidRotation) {
		t.Errorf("expected ErrInvalidRotation, got %v", err)
	}
	if w.Rotation() != 270 {
		t.Errorf("expected rotation unchanged after an invalid value, got %d", w.Rotation())
	}
	if len(rotated) != 2 {
		t.Errorf("expected two rotate callbacks, got %v", rotated)
	}
}

func TestWindowScalesTouches(t *testing.T) {
	reg := NewRegistry()
	b := NewButton(reg, "b").Bounds(0, 0, 50, 50)
	w := NewWindow(reg, 200, 100).Children(b)
	tc := touch.New("test", 1, 0.1, 0.2, time.Time{})
	if !w.OnTouchDown(tc) {
		t.Fatalf("expected the button to take the touch")
	}
	if tc.X != 20 || tc.Y != 20 {
		t.Errorf("expected (20, 20), got (%v, %v)", tc.X, tc.Y)
	}
}
