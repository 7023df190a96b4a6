package touch

import (
	"errors"
	"math"
	"testing"
	"time"

	"golang.org/x/image/math/f64"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScaleForScreen(t *testing.T) {
	tests := []struct {
		rotation int
		x, y     float64
	}{
		{0, 20, 60},
		{90, 60, 180},
		{180, 180, 40},
		{270, 40, 20},
	}
	for _, tc := range tests {
		tt := New("test", 1, 0.1, 0.6, time.Time{})
		tt.ScaleForScreen(200, 100, tc.rotation)
		if !near(tt.X, tc.x) || !near(tt.Y, tc.y) {
			t.Errorf("rotation %d: expected (%v, %v), got (%v, %v)", tc.rotation, tc.x, tc.y, tt.X, tt.Y)
		}
	}
}

func TestScaleForScreenPrevious(t *testing.T) {
	tt := New("test", 1, 0.1, 0.1, time.Time{})
	tt.Move(0.5, 0.5, time.Time{})
	tt.ScaleForScreen(100, 100, 0)
	if tt.PX != 10 || tt.X != 50 {
		t.Fatalf("expected previous 10 and current 50, got %v and %v", tt.PX, tt.X)
	}
	if tt.DX() != 40 {
		t.Errorf("expected dx 40, got %v", tt.DX())
	}
}

func TestMoveUpdatesRootPosition(t *testing.T) {
	tt := New("test", 1, 5, 5, time.Time{})
	tt.ScaleForScreen(100, 100, 0)
	tt.Move(6, 5, time.Time{})
	if tt.X != 6 || tt.Y != 5 || tt.PX != 5 || tt.PY != 5 {
		t.Fatalf("expected (6, 5) from (5, 5), got (%v, %v) from (%v, %v)", tt.X, tt.Y, tt.PX, tt.PY)
	}
	if tt.DX() != 1 {
		t.Errorf("expected dx 1, got %v", tt.DX())
	}
}

func TestPushPop(t *testing.T) {
	tt := New("test", 1, 0.5, 0.5, time.Time{})
	tt.ScaleForScreen(100, 100, 0)
	tt.Push()
	tt.Transform(f64.Aff3{1, 0, -10, 0, 1, -20})
	if tt.X != 40 || tt.Y != 30 || tt.Depth() != 1 {
		t.Fatalf("expected (40, 30) at depth 1, got (%v, %v) at %d", tt.X, tt.Y, tt.Depth())
	}
	if !tt.Pop() {
		t.Fatalf("expected pop to succeed")
	}
	if tt.X != 50 || tt.Y != 50 {
		t.Errorf("expected restored (50, 50), got (%v, %v)", tt.X, tt.Y)
	}
	if tt.Pop() {
		t.Errorf("expected pop on an empty stack to report false")
	}
}

func TestApplyTransform2DError(t *testing.T) {
	tt := New("test", 1, 0.5, 0.5, time.Time{})
	boom := errors.New("boom")
	calls := 0
	err := tt.ApplyTransform2D(func(x, y float64) (float64, float64, error) {
		calls++
		if calls == 2 {
			return 0, 0, boom
		}
		return x + 1, y + 1, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if tt.X != 0.5 || tt.PX != 0.5 {
		t.Errorf("expected the touch unchanged, got %v %v", tt.X, tt.PX)
	}
}

func TestGrab(t *testing.T) {
	tt := New("test", 1, 0, 0, time.Time{})
	tt.Grab(7)
	tt.Grab(7)
	tt.Grab(0)
	if len(tt.GrabList) != 1 {
		t.Fatalf("expected a single grab, got %v", tt.GrabList)
	}
	snap := tt.GrabSnapshot()
	tt.Grab(8)
	if len(snap) != 1 {
		t.Errorf("expected snapshot to be independent, got %v", snap)
	}
	if !tt.Ungrab(7) || tt.IsGrabbed(7) {
		t.Errorf("expected 7 ungrabbed")
	}
	if tt.Ungrab(7) {
		t.Errorf("expected second ungrab to report false")
	}
}

func TestUIDUnique(t *testing.T) {
	a := New("test", 1, 0, 0, time.Time{})
	b := New("test", 1, 0, 0, time.Time{})
	if a.UID == b.UID {
		t.Fatalf("expected distinct uids")
	}
	if Up.String() != "up" || Kind(9).String() != "kind(9)" {
		t.Errorf("unexpected kind names")
	}
}
