package widget

import "github.com/hubastard/grovetouch/engine/touch"

// Dispatch delivers one event to el, skipping nodes that are not visible.
func Dispatch(el Element, kind touch.Kind, t *touch.Touch) bool {
	if !el.Node().Visible() {
		return false
	}
	switch kind {
	case touch.Down:
		return el.OnTouchDown(t)
	case touch.Move:
		return el.OnTouchMove(t)
	case touch.Up:
		return el.OnTouchUp(t)
	}
	return false
}

// DispatchChildren delivers the event to the children of el from the
// topmost (last added) down. The first child that handles it stops the walk.
func DispatchChildren(el Element, kind touch.Kind, t *touch.Touch) bool {
	kids := el.Node().children
	if len(kids) == 0 {
		return false
	}
	// handlers may reorder or remove siblings
	snapshot := make([]Element, len(kids))
	copy(snapshot, kids)
	for i := len(snapshot) - 1; i >= 0; i-- {
		if Dispatch(snapshot[i], kind, t) {
			return true
		}
	}
	return false
}

// CollidePoint hit-tests el with its own Collider when it has one.
func CollidePoint(el Element, x, y float64) bool {
	if c, ok := el.(Collider); ok {
		return c.CollidePoint(x, y)
	}
	return el.Node().CollidePoint(x, y)
}

// ToLocal maps a point from the parent's space into el's.
func ToLocal(el Element, x, y float64) (float64, float64) {
	if m, ok := el.(Mapper); ok {
		return m.ToLocal(x, y)
	}
	return x, y
}

// ToParent maps a point from el's space into its parent's.
func ToParent(el Element, x, y float64) (float64, float64) {
	if m, ok := el.(Mapper); ok {
		return m.ToParent(x, y)
	}
	return x, y
}

// Ancestors returns the chain from the tree root down to el, inclusive.
func Ancestors(el Element) ([]Element, error) {
	chain := []Element{el}
	cur := el
	for {
		p, err := cur.Node().Parent()
		if err != nil {
			return nil, err
		}
		if p == nil {
			break
		}
		chain = append(chain, p)
		cur = p
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// ToWidget maps a point from root space into el's local space.
func ToWidget(el Element, x, y float64) (float64, float64, error) {
	chain, err := Ancestors(el)
	if err != nil {
		return x, y, err
	}
	for _, n := range chain {
		x, y = ToLocal(n, x, y)
	}
	return x, y, nil
}

// ToWindow maps a point from el's local space back into root space.
func ToWindow(el Element, x, y float64) (float64, float64, error) {
	chain, err := Ancestors(el)
	if err != nil {
		return x, y, err
	}
	for i := len(chain) - 1; i >= 0; i-- {
		x, y = ToParent(chain[i], x, y)
	}
	return x, y, nil
}

// RootWindow returns the Window at the top of el's tree, or nil when the
// tree is not attached to one.
func RootWindow(el Element) (*Window, error) {
	chain, err := Ancestors(el)
	if err != nil {
		return nil, err
	}
	if w, ok := chain[0].(*Window); ok {
		return w, nil
	}
	return nil, nil
}

// WidgetTransform and ParentTransform adapt ToWidget and ToParent to
// touch.TransformFunc.
func WidgetTransform(el Element) touch.TransformFunc {
	return func(x, y float64) (float64, float64, error) { return ToWidget(el, x, y) }
}

func ParentTransform(el Element) touch.TransformFunc {
	return func(x, y float64) (float64, float64, error) {
		x, y = ToParent(el, x, y)
		return x, y, nil
	}
}
