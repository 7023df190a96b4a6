package postproc

import (
	"testing"
	"time"

	"github.com/hubastard/grovetouch/engine/touch"
)

var epoch = time.Unix(1000, 0)

func newTouch(device string, x, y float64, at time.Time) *touch.Touch {
	return touch.New(device, 0, x, y, at)
}

func kinds(events []touch.Event) []touch.Kind {
	out := make([]touch.Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestCoalesceKeepsLastMove(t *testing.T) {
	a := newTouch("m", 0, 0, epoch)
	b := newTouch("m", 0, 0, epoch)
	events := []touch.Event{
		{Kind: touch.Move, Touch: a},
		{Kind: touch.Move, Touch: b},
		{Kind: touch.Move, Touch: a},
		{Kind: touch.Up, Touch: a},
		{Kind: touch.Move, Touch: b},
	}
	got := Coalesce{}.Process(events)
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Touch != a || got[0].Kind != touch.Move {
		t.Errorf("expected move of a first, got %s", got[0].Kind)
	}
	if got[1].Touch != a || got[1].Kind != touch.Up {
		t.Errorf("expected up of a second, got %s", got[1].Kind)
	}
	if got[2].Touch != b {
		t.Errorf("expected final move of b")
	}
}

func TestDoubleTap(t *testing.T) {
	s := NewDoubleTap(DefaultDoubleTapTime, DefaultDoubleTapDistance)

	first := newTouch("mouse", 0.5, 0.5, epoch)
	first.TimeUpdate = epoch.Add(50 * time.Millisecond)
	s.Process([]touch.Event{{Kind: touch.Down, Touch: first}, {Kind: touch.Up, Touch: first}})
	if first.IsDoubleTap {
		t.Fatalf("expected first tap not to be a double tap")
	}

	second := newTouch("mouse", 0.505, 0.5, epoch.Add(150*time.Millisecond))
	s.Process([]touch.Event{{Kind: touch.Down, Touch: second}})
	if !second.IsDoubleTap {
		t.Fatalf("expected second tap to be a double tap")
	}
	if second.DoubleTapTime != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", second.DoubleTapTime)
	}
}

func TestDoubleTapRejects(t *testing.T) {
	tests := []struct {
		name   string
		device string
		x      float64
		after  time.Duration
	}{
		{"too late", "mouse", 0.5, time.Second},
		{"too far", "mouse", 0.9, 10 * time.Millisecond},
		{"other device", "tuio", 0.5, 10 * time.Millisecond},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewDoubleTap(DefaultDoubleTapTime, DefaultDoubleTapDistance)
			first := newTouch("mouse", 0.5, 0.5, epoch)
			s.Process([]touch.Event{{Kind: touch.Up, Touch: first}})
			second := newTouch(tc.device, tc.x, 0.5, epoch.Add(tc.after))
			s.Process([]touch.Event{{Kind: touch.Down, Touch: second}})
			if second.IsDoubleTap {
				t.Errorf("expected no double tap")
			}
		})
	}
}

func TestDejitter(t *testing.T) {
	s := NewDejitter(0.01, "tuio")
	tc := newTouch("mouse", 0.5, 0.5, epoch)
	out := s.Process([]touch.Event{{Kind: touch.Down, Touch: tc}})
	if len(out) != 1 {
		t.Fatalf("expected down to pass")
	}

	tc.Move(0.505, 0.5, epoch)
	out = s.Process([]touch.Event{{Kind: touch.Move, Touch: tc}})
	if len(out) != 0 {
		t.Fatalf("expected jitter move to be dropped, got %d events", len(out))
	}
	if tc.SX != 0.5 {
		t.Errorf("expected position restored to 0.5, got %v", tc.SX)
	}

	tc.Move(0.6, 0.5, epoch)
	out = s.Process([]touch.Event{{Kind: touch.Move, Touch: tc}})
	if len(out) != 1 {
		t.Fatalf("expected large move to pass")
	}

	ignored := newTouch("tuio", 0.5, 0.5, epoch)
	s.Process([]touch.Event{{Kind: touch.Down, Touch: ignored}})
	ignored.Move(0.501, 0.5, epoch)
	out = s.Process([]touch.Event{{Kind: touch.Move, Touch: ignored}})
	if len(out) != 1 {
		t.Errorf("expected ignored device to pass through")
	}
}

func TestIgnoreList(t *testing.T) {
	s := NewIgnoreList(Zone{0, 0, 0.1, 0.1})
	in := newTouch("mouse", 0.05, 0.05, epoch)
	outside := newTouch("mouse", 0.5, 0.5, epoch)

	got := s.Process([]touch.Event{
		{Kind: touch.Down, Touch: in},
		{Kind: touch.Down, Touch: outside},
	})
	if len(got) != 1 || got[0].Touch != outside {
		t.Fatalf("expected only the outside touch, got %d events", len(got))
	}

	in.Move(0.5, 0.5, epoch)
	got = s.Process([]touch.Event{
		{Kind: touch.Move, Touch: in},
		{Kind: touch.Up, Touch: in},
		{Kind: touch.Up, Touch: outside},
	})
	if len(got) != 1 || got[0].Touch != outside {
		t.Fatalf("expected later events of the ignored touch to be dropped, got %d", len(got))
	}
}

func TestRetainResumesNearbyTouch(t *testing.T) {
	now := epoch
	s := NewRetain(time.Second, 0.05)
	s.Now = func() time.Time { return now }

	first := newTouch("mouse", 0.5, 0.5, now)
	got := s.Process([]touch.Event{{Kind: touch.Down, Touch: first}, {Kind: touch.Up, Touch: first}})
	if len(got) != 1 || got[0].Kind != touch.Down {
		t.Fatalf("expected up to be held, got %v", kinds(got))
	}
	if s.Held() != 1 {
		t.Fatalf("expected 1 held touch, got %d", s.Held())
	}

	now = now.Add(100 * time.Millisecond)
	second := newTouch("mouse", 0.52, 0.5, now)
	got = s.Process([]touch.Event{{Kind: touch.Down, Touch: second}})
	if len(got) != 1 || got[0].Kind != touch.Move || got[0].Touch != first {
		t.Fatalf("expected a move of the held touch, got %v", kinds(got))
	}
	if first.SX != 0.52 {
		t.Errorf("expected held touch to follow, got %v", first.SX)
	}

	second.Move(0.6, 0.5, now)
	got = s.Process([]touch.Event{{Kind: touch.Move, Touch: second}})
	if len(got) != 1 || got[0].Touch != first || first.SX != 0.6 {
		t.Fatalf("expected move forwarded to held touch")
	}

	got = s.Process([]touch.Event{{Kind: touch.Up, Touch: second}})
	if len(got) != 0 {
		t.Fatalf("expected forwarded up to be held, got %v", kinds(got))
	}

	now = now.Add(2 * time.Second)
	got = s.Process(nil)
	if len(got) != 1 || got[0].Kind != touch.Up || got[0].Touch != first {
		t.Fatalf("expected expired up of the original touch, got %v", kinds(got))
	}
	if s.Held() != 0 {
		t.Errorf("expected nothing held, got %d", s.Held())
	}
}

func TestRetainFarDownStartsNewTouch(t *testing.T) {
	now := epoch
	s := NewRetain(time.Second, 0.05)
	s.Now = func() time.Time { return now }
	first := newTouch("mouse", 0.1, 0.1, now)
	s.Process([]touch.Event{{Kind: touch.Up, Touch: first}})
	second := newTouch("mouse", 0.9, 0.9, now)
	got := s.Process([]touch.Event{{Kind: touch.Down, Touch: second}})
	if len(got) != 1 || got[0].Touch != second || got[0].Kind != touch.Down {
		t.Fatalf("expected the new down to pass through")
	}
}

func TestRetainDisabled(t *testing.T) {
	s := NewRetain(0, 0.05)
	tc := newTouch("mouse", 0.1, 0.1, epoch)
	got := s.Process([]touch.Event{{Kind: touch.Up, Touch: tc}})
	if len(got) != 1 || got[0].Kind != touch.Up {
		t.Fatalf("expected up to pass through when disabled")
	}
}
