package widget

import (
	"github.com/hubastard/grovetouch/engine/touch"
)

// Registry is an arena of live widgets. It issues generation-checked
// touch.Ref handles so that touches can refer to widgets without keeping
// them alive: once a widget is released, every handle to it stops resolving.
type Registry struct {
	slots []slot
	free  []uint32
	ids   map[string]touch.Ref
}

type slot struct {
	gen uint32
	el  Element
}

func NewRegistry() *Registry {
	return &Registry{ids: map[string]touch.Ref{}}
}

func makeRef(index, gen uint32) touch.Ref {
	return touch.Ref(uint64(gen)<<32 | uint64(index+1))
}

func splitRef(ref touch.Ref) (index, gen uint32, ok bool) {
	lo := uint32(uint64(ref) & 0xffffffff)
	if lo == 0 {
		return 0, 0, false
	}
	return lo - 1, uint32(uint64(ref) >> 32), true
}

// Register adds el to the arena and binds its Base to the returned handle.
// Registering an element twice returns its existing handle.
func (r *Registry) Register(el Element) touch.Ref {
	b := el.Node()
	if b.reg == r && r.alive(b.ref) {
		return b.ref
	}
	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		index = uint32(len(r.slots) - 1)
	}
	s := &r.slots[index]
	s.gen++
	s.el = el
	b.reg = r
	b.ref = makeRef(index, s.gen)
	b.owner = el
	if b.id != "" {
		r.ids[b.id] = b.ref
	}
	return b.ref
}

// Resolve returns the widget behind ref, or false when it has been released.
func (r *Registry) Resolve(ref touch.Ref) (Element, bool) {
	index, gen, ok := splitRef(ref)
	if !ok || int(index) >= len(r.slots) {
		return nil, false
	}
	s := r.slots[index]
	if s.gen != gen || s.el == nil {
		return nil, false
	}
	return s.el, true
}

func (r *Registry) alive(ref touch.Ref) bool {
	_, ok := r.Resolve(ref)
	return ok
}

// Release frees the handle of a single widget. Its children keep their
// slots but their parent handle no longer resolves, so they are detached.
func (r *Registry) Release(ref touch.Ref) {
	index, gen, ok := splitRef(ref)
	if !ok || int(index) >= len(r.slots) {
		return
	}
	s := &r.slots[index]
	if s.gen != gen || s.el == nil {
		return
	}
	if id := s.el.Node().id; id != "" && r.ids[id] == ref {
		delete(r.ids, id)
	}
	s.el = nil
	r.free = append(r.free, index)
}

// Destroy removes el from its parent and releases it together with all of
// its descendants.
func (r *Registry) Destroy(el Element) {
	b := el.Node()
	if parent, ok := r.Resolve(b.parent); ok {
		parent.Node().RemoveWidget(el)
	}
	var walk func(Element)
	walk = func(e Element) {
		for _, c := range e.Node().children {
			walk(c)
		}
		r.Release(e.Node().ref)
	}
	walk(el)
}

// Lookup finds a widget by its string id.
func (r *Registry) Lookup(id string) (Element, bool) {
	ref, ok := r.ids[id]
	if !ok {
		return nil, false
	}
	return r.Resolve(ref)
}

// Len reports the number of live widgets.
func (r *Registry) Len() int { return len(r.slots) - len(r.free) }

func (r *Registry) setID(b *Base, id string) {
	if b.id != "" && r.ids[b.id] == b.ref {
		delete(r.ids, b.id)
	}
	b.id = id
	if id != "" {
		r.ids[id] = b.ref
	}
}
