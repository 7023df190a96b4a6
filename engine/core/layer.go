package core

import "reflect"

// ListenerStack is the ordered set of event listeners.
type ListenerStack struct{ list []Listener }

// Push appends l unless it is already present.
func (ls *ListenerStack) Push(l Listener) bool {
	if ls.index(l) >= 0 {
		return false
	}
	ls.list = append(ls.list, l)
	return true
}

func (ls *ListenerStack) Remove(l Listener) bool {
	i := ls.index(l)
	if i < 0 {
		return false
	}
	ls.list = append(ls.list[:i], ls.list[i+1:]...)
	return true
}

func (ls *ListenerStack) Len() int { return len(ls.list) }

// ForEach walks a snapshot so listeners may unregister themselves.
func (ls *ListenerStack) ForEach(f func(Listener)) {
	snapshot := append([]Listener(nil), ls.list...)
	for _, l := range snapshot {
		f(l)
	}
}

func (ls *ListenerStack) index(l Listener) int {
	for i, x := range ls.list {
		if same(x, l) {
			return i
		}
	}
	return -1
}

// same compares two interface values without panicking on uncomparable
// dynamic types such as funcs.
func same(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
