package postproc

import (
	"math"

	"github.com/hubastard/grovetouch/engine/touch"
)

// Dejitter drops moves that stay within Distance (normalized) of the last
// position delivered for the touch. Devices in IgnoreDevices pass through.
type Dejitter struct {
	Distance      float64
	IgnoreDevices []string

	last map[uint64][2]float64
}

func NewDejitter(distance float64, ignore ...string) *Dejitter {
	return &Dejitter{Distance: distance, IgnoreDevices: ignore}
}

func (s *Dejitter) ignored(device string) bool {
	for _, d := range s.IgnoreDevices {
		if d == device {
			return true
		}
	}
	return false
}

func (s *Dejitter) Process(events []touch.Event) []touch.Event {
	if s.Distance <= 0 {
		return events
	}
	if s.last == nil {
		s.last = map[uint64][2]float64{}
	}
	out := events[:0]
	for _, ev := range events {
		t := ev.Touch
		if s.ignored(t.Device) {
			out = append(out, ev)
			continue
		}
		switch ev.Kind {
		case touch.Down:
			s.last[t.UID] = [2]float64{t.SX, t.SY}
		case touch.Move:
			p, ok := s.last[t.UID]
			if ok && dist(p[0], p[1], t.SX, t.SY) < s.Distance {
				t.SX, t.SY = p[0], p[1]
				continue
			}
			s.last[t.UID] = [2]float64{t.SX, t.SY}
		case touch.Up:
			delete(s.last, t.UID)
		}
		out = append(out, ev)
	}
	return out
}

func dist(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}
