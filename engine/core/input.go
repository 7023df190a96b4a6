package core

import (
	"sort"

	"github.com/hubastard/grovetouch/engine/touch"
)

// Touches is the registry of live touches, keyed by UID.
type Touches struct {
	live map[uint64]*touch.Touch
}

func NewTouches() *Touches { return &Touches{live: map[uint64]*touch.Touch{}} }

func (ts *Touches) Add(t *touch.Touch)    { ts.live[t.UID] = t }
func (ts *Touches) Remove(t *touch.Touch) { delete(ts.live, t.UID) }
func (ts *Touches) Len() int              { return len(ts.live) }

func (ts *Touches) Has(t *touch.Touch) bool {
	_, ok := ts.live[t.UID]
	return ok
}

// List returns the live touches ordered by UID.
func (ts *Touches) List() []*touch.Touch {
	out := make([]*touch.Touch, 0, len(ts.live))
	for _, t := range ts.live {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}
