package postproc

import "github.com/hubastard/grovetouch/engine/touch"

// Zone is a normalized rectangle, X1,Y1 top-left and X2,Y2 bottom-right.
type Zone struct {
	X1, Y1, X2, Y2 float64
}

func (z Zone) Contains(x, y float64) bool {
	return x >= z.X1 && x <= z.X2 && y >= z.Y1 && y <= z.Y2
}

// IgnoreList drops touches that start inside one of its zones, together
// with every later event of those touches.
type IgnoreList struct {
	Zones []Zone

	dropped map[uint64]bool
}

func NewIgnoreList(zones ...Zone) *IgnoreList {
	return &IgnoreList{Zones: zones}
}

func (s *IgnoreList) Process(events []touch.Event) []touch.Event {
	if len(s.Zones) == 0 {
		return events
	}
	if s.dropped == nil {
		s.dropped = map[uint64]bool{}
	}
	out := events[:0]
	for _, ev := range events {
		t := ev.Touch
		if ev.Kind == touch.Down && s.inside(t.SX, t.SY) {
			s.dropped[t.UID] = true
		}
		if s.dropped[t.UID] {
			if ev.Kind == touch.Up {
				delete(s.dropped, t.UID)
			}
			continue
		}
		out = append(out, ev)
	}
	return out
}

func (s *IgnoreList) inside(x, y float64) bool {
	for _, z := range s.Zones {
		if z.Contains(x, y) {
			return true
		}
	}
	return false
}
