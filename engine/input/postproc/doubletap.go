package postproc

import (
	"time"

	"github.com/hubastard/grovetouch/engine/touch"
)

const (
	DefaultDoubleTapTime     = 250 * time.Millisecond
	DefaultDoubleTapDistance = 0.02
)

// DoubleTap marks a down as a double tap when an up from the same device
// ended within Time and within Distance (normalized) of it.
type DoubleTap struct {
	Time     time.Duration
	Distance float64

	ups map[string][]tap
}

type tap struct {
	sx, sy float64
	at     time.Time
}

func NewDoubleTap(d time.Duration, distance float64) *DoubleTap {
	return &DoubleTap{Time: d, Distance: distance}
}

func (s *DoubleTap) Process(events []touch.Event) []touch.Event {
	if s.ups == nil {
		s.ups = map[string][]tap{}
	}
	for _, ev := range events {
		t := ev.Touch
		switch ev.Kind {
		case touch.Down:
			s.expire(t.Device, t.TimeStart)
			for i, u := range s.ups[t.Device] {
				if dist(u.sx, u.sy, t.SX, t.SY) > s.Distance {
					continue
				}
				t.IsDoubleTap = true
				t.DoubleTapTime = t.TimeStart.Sub(u.at)
				list := s.ups[t.Device]
				s.ups[t.Device] = append(list[:i], list[i+1:]...)
				break
			}
		case touch.Up:
			if t.IsDoubleTap {
				// a double tap never starts a new one
				continue
			}
			s.ups[t.Device] = append(s.ups[t.Device], tap{t.SX, t.SY, t.TimeUpdate})
		}
	}
	return events
}

func (s *DoubleTap) expire(device string, now time.Time) {
	list := s.ups[device]
	kept := list[:0]
	for _, u := range list {
		if now.Sub(u.at) <= s.Time {
			kept = append(kept, u)
		}
	}
	if len(kept) == 0 {
		delete(s.ups, device)
		return
	}
	s.ups[device] = kept
}
