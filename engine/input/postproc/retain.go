package postproc

import (
	"time"

	"github.com/hubastard/grovetouch/engine/touch"
)

// Retain holds back ups for Time. A down landing within Distance of a held
// touch resumes that touch instead of starting a new one: the down becomes a
// move of the held touch and the new touch's later events are forwarded to
// it. Held touches whose time ran out are released with their up.
type Retain struct {
	Time     time.Duration
	Distance float64
	Now      func() time.Time

	held    []held
	aliases map[uint64]*touch.Touch
}

type held struct {
	t  *touch.Touch
	at time.Time
}

func NewRetain(d time.Duration, distance float64) *Retain {
	return &Retain{Time: d, Distance: distance, Now: time.Now}
}

// Held reports how many touches are currently retained.
func (s *Retain) Held() int { return len(s.held) }

func (s *Retain) Process(events []touch.Event) []touch.Event {
	if s.Time <= 0 {
		return s.flush(events)
	}
	if s.aliases == nil {
		s.aliases = map[uint64]*touch.Touch{}
	}
	now := s.now()
	out := make([]touch.Event, 0, len(events))
	out = s.expire(out, now)
	for _, ev := range events {
		t := ev.Touch
		if target, ok := s.aliases[t.UID]; ok {
			target.Move(t.SX, t.SY, t.TimeUpdate)
			if ev.Kind == touch.Up {
				delete(s.aliases, t.UID)
				s.held = append(s.held, held{target, now})
				continue
			}
			out = append(out, touch.Event{Kind: touch.Move, Touch: target})
			continue
		}
		switch ev.Kind {
		case touch.Down:
			if i := s.nearest(t); i >= 0 {
				target := s.held[i].t
				s.held = append(s.held[:i], s.held[i+1:]...)
				s.aliases[t.UID] = target
				target.Move(t.SX, t.SY, t.TimeStart)
				out = append(out, touch.Event{Kind: touch.Move, Touch: target})
				continue
			}
		case touch.Up:
			s.held = append(s.held, held{t, now})
			continue
		}
		out = append(out, ev)
	}
	return out
}

func (s *Retain) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Retain) nearest(t *touch.Touch) int {
	best, bestDist := -1, s.Distance
	for i, h := range s.held {
		if h.t.Device != t.Device {
			continue
		}
		if d := dist(h.t.SX, h.t.SY, t.SX, t.SY); d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (s *Retain) expire(out []touch.Event, now time.Time) []touch.Event {
	kept := s.held[:0]
	for _, h := range s.held {
		if now.Sub(h.at) >= s.Time {
			out = append(out, touch.Event{Kind: touch.Up, Touch: h.t})
			continue
		}
		kept = append(kept, h)
	}
	s.held = kept
	return out
}

func (s *Retain) flush(events []touch.Event) []touch.Event {
	if len(s.held) == 0 {
		return events
	}
	out := make([]touch.Event, 0, len(s.held)+len(events))
	for _, h := range s.held {
		out = append(out, touch.Event{Kind: touch.Up, Touch: h.t})
	}
	s.held = nil
	return append(out, events...)
}
