package input

import (
	"sort"
	"time"

	"github.com/hubastard/grovetouch/engine/touch"
)

// Raw is a provider-level event before it is bound to a Touch. Positions are
// normalized to 0..1 with the origin at the top-left corner.
type Raw struct {
	Kind touch.Kind
	ID   int
	X, Y float64
	Time time.Time

	FiducialID int
	Angle      float64
	HasAngle   bool
}

// Tracker binds raw provider ids to Touch objects. It must only be used
// from the dispatch loop.
type Tracker struct {
	device  string
	touches map[int]*touch.Touch
	now     func() time.Time
}

func NewTracker(device string) *Tracker {
	return &Tracker{device: device, touches: map[int]*touch.Touch{}, now: time.Now}
}

// SetClock replaces the time source used for events without a timestamp.
func (tr *Tracker) SetClock(now func() time.Time) { tr.now = now }

// Apply updates the touch behind r.ID and emits the matching event. A move
// for an unknown id starts a new touch; an up for an unknown id is ignored.
func (tr *Tracker) Apply(r Raw, emit EmitFunc) {
	at := r.Time
	if at.IsZero() {
		at = tr.now()
	}
	t, live := tr.touches[r.ID]
	switch r.Kind {
	case touch.Down, touch.Move:
		if !live {
			t = touch.New(tr.device, r.ID, r.X, r.Y, at)
			applyProfile(t, r)
			tr.touches[r.ID] = t
			emit(touch.Down, t)
			return
		}
		t.Move(r.X, r.Y, at)
		applyProfile(t, r)
		emit(touch.Move, t)
	case touch.Up:
		if !live {
			return
		}
		if r.X != t.SX || r.Y != t.SY {
			t.Move(r.X, r.Y, at)
		}
		delete(tr.touches, r.ID)
		emit(touch.Up, t)
	}
}

func applyProfile(t *touch.Touch, r Raw) {
	if r.HasAngle {
		t.Angle = r.Angle
		t.HasAngle = true
		t.FiducialID = r.FiducialID
	}
}

// Live returns the ids of the touches currently tracked, sorted.
func (tr *Tracker) Live() []int {
	ids := make([]int, 0, len(tr.touches))
	for id := range tr.touches {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (tr *Tracker) Get(id int) (*touch.Touch, bool) {
	t, ok := tr.touches[id]
	return t, ok
}

// ReleaseAll emits an up for every live touch.
func (tr *Tracker) ReleaseAll(emit EmitFunc) {
	for _, id := range tr.Live() {
		t := tr.touches[id]
		delete(tr.touches, id)
		emit(touch.Up, t)
	}
}
