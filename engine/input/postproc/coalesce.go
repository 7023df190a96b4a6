// Package postproc holds the built-in postprocessing stages run by the
// dispatch loop over each cycle's batch of touch events.
package postproc

import "github.com/hubastard/grovetouch/engine/touch"

// Coalesce keeps only the last move of each touch between its other events.
type Coalesce struct{}

func (Coalesce) Process(events []touch.Event) []touch.Event {
	if len(events) < 2 {
		return events
	}
	seen := map[uint64]bool{}
	keep := make([]bool, len(events))
	n := 0
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		uid := ev.Touch.UID
		if ev.Kind != touch.Move {
			delete(seen, uid)
			keep[i] = true
			n++
			continue
		}
		if seen[uid] {
			continue
		}
		seen[uid] = true
		keep[i] = true
		n++
	}
	out := make([]touch.Event, 0, n)
	for i, ev := range events {
		if keep[i] {
			out = append(out, ev)
		}
	}
	return out
}
