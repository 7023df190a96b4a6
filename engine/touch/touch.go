// Package touch holds the Touch entity tracked by the input pipeline: its
// identity, normalized and pixel positions, transform stack and grab
// bookkeeping. Touches carry no dispatch behavior of their own.
package touch

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/image/math/f64"
)

// Kind is the event kind of a dispatched touch.
type Kind uint8

const (
	Down Kind = iota
	Move
	Up
)

func (k Kind) String() string {
	switch k {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Ref is a weak handle to a widget, issued by a widget registry. The zero
// Ref never resolves.
type Ref uint64

var nextUID atomic.Uint64

// Touch is one tracked contact. All fields are owned by the dispatch loop;
// providers only mutate a Touch from inside their Update call.
type Touch struct {
	UID    uint64 // process-unique, registry key
	Device string // provider name
	ID     int    // provider-assigned id, stable for the contact

	// Normalized system position (0..1, origin top-left) and previous.
	SX, SY   float64
	PSX, PSY float64

	// Position in the current coordinate space and previous.
	X, Y   float64
	PX, PY float64

	TimeStart  time.Time
	TimeUpdate time.Time

	IsDoubleTap   bool
	DoubleTapTime time.Duration

	// Object profile (TUIO fiducials).
	FiducialID int
	Angle      float64
	HasAngle   bool

	GrabList           []Ref
	GrabExclusiveClass string
	GrabCurrent        Ref
	GrabState          bool

	stack []state
}

type state struct {
	x, y, px, py float64
}

// New creates a touch at normalized position (sx, sy).
func New(device string, id int, sx, sy float64, now time.Time) *Touch {
	return &Touch{
		UID:        nextUID.Add(1),
		Device:     device,
		ID:         id,
		SX:         sx,
		SY:         sy,
		PSX:        sx,
		PSY:        sy,
		X:          sx,
		Y:          sy,
		PX:         sx,
		PY:         sy,
		TimeStart:  now,
		TimeUpdate: now,
	}
}

// Move records a new normalized position; the current one becomes previous.
// The root-space position follows the normalized one until a surface
// rescales it.
func (t *Touch) Move(sx, sy float64, now time.Time) {
	t.PSX, t.PSY = t.SX, t.SY
	t.SX, t.SY = sx, sy
	t.TimeUpdate = now
	t.ResetPosition()
}

// ResetPosition drops any surface scaling: X, Y and PX, PY take the
// normalized values again.
func (t *Touch) ResetPosition() {
	t.X, t.Y = t.SX, t.SY
	t.PX, t.PY = t.PSX, t.PSY
}

func (t *Touch) DX() float64 { return t.X - t.PX }
func (t *Touch) DY() float64 { return t.Y - t.PY }

// Distance returns the normalized distance between t and o.
func (t *Touch) Distance(o *Touch) float64 {
	return math.Hypot(t.SX-o.SX, t.SY-o.SY)
}

// ScaleForScreen maps the normalized positions into the pixel space of a
// surface whose unrotated size is w×h and whose content is rotated by
// rotation degrees (0, 90, 180 or 270). Other rotations are treated as 0.
func (t *Touch) ScaleForScreen(w, h float64, rotation int) {
	t.X, t.Y = scale(t.SX, t.SY, w, h, rotation)
	t.PX, t.PY = scale(t.PSX, t.PSY, w, h, rotation)
}

func scale(sx, sy, w, h float64, rotation int) (float64, float64) {
	switch rotation {
	case 90:
		sx, sy = sy, 1-sx
		return sx * h, sy * w
	case 180:
		sx, sy = 1-sx, 1-sy
		return sx * w, sy * h
	case 270:
		sx, sy = 1-sy, sx
		return sx * h, sy * w
	default:
		return sx * w, sy * h
	}
}

// Push saves the current coordinates on the transform stack.
func (t *Touch) Push() {
	t.stack = append(t.stack, state{t.X, t.Y, t.PX, t.PY})
}

// Pop restores the coordinates saved by the matching Push. It reports false
// when the stack is empty.
func (t *Touch) Pop() bool {
	n := len(t.stack)
	if n == 0 {
		return false
	}
	s := t.stack[n-1]
	t.stack = t.stack[:n-1]
	t.X, t.Y, t.PX, t.PY = s.x, s.y, s.px, s.py
	return true
}

// Depth is the current transform stack depth.
func (t *Touch) Depth() int { return len(t.stack) }

// TransformFunc maps a point from one coordinate space into another.
type TransformFunc func(x, y float64) (float64, float64, error)

// ApplyTransform2D maps the current and previous positions through fn. On
// error the touch is left unchanged.
func (t *Touch) ApplyTransform2D(fn TransformFunc) error {
	x, y, err := fn(t.X, t.Y)
	if err != nil {
		return err
	}
	px, py, err := fn(t.PX, t.PY)
	if err != nil {
		return err
	}
	t.X, t.Y, t.PX, t.PY = x, y, px, py
	return nil
}

// Transform applies the affine matrix m to the current and previous positions.
func (t *Touch) Transform(m f64.Aff3) {
	t.X, t.Y = Apply(m, t.X, t.Y)
	t.PX, t.PY = Apply(m, t.PX, t.PY)
}

// Apply maps (x, y) through m.
func Apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Grab registers ref for exclusive move/up delivery. Grabbing twice is a no-op.
func (t *Touch) Grab(ref Ref) {
	if ref == 0 || t.IsGrabbed(ref) {
		return
	}
	t.GrabList = append(t.GrabList, ref)
}

// Ungrab removes ref from the grab list and reports whether it was present.
func (t *Touch) Ungrab(ref Ref) bool {
	for i, r := range t.GrabList {
		if r == ref {
			t.GrabList = append(t.GrabList[:i], t.GrabList[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Touch) IsGrabbed(ref Ref) bool {
	for _, r := range t.GrabList {
		if r == ref {
			return true
		}
	}
	return false
}

// GrabSnapshot returns a copy of the grab list safe to iterate while the
// list is modified.
func (t *Touch) GrabSnapshot() []Ref {
	if len(t.GrabList) == 0 {
		return nil
	}
	out := make([]Ref, len(t.GrabList))
	copy(out, t.GrabList)
	return out
}

func (t *Touch) String() string {
	return fmt.Sprintf("<Touch %s#%d uid=%d pos=(%.3f,%.3f)>", t.Device, t.ID, t.UID, t.X, t.Y)
}

// Event pairs an event kind with its touch.
type Event struct {
	Kind  Kind
	Touch *Touch
}
