// Package evdev reads Linux multitouch devices (/dev/input/event*) using
// the kernel's type B slot protocol, with a single-touch fallback for
// devices that only report ABS_X/ABS_Y and BTN_TOUCH.
package evdev

import (
	"encoding/binary"
	"strconv"

	"github.com/hubastard/grovetouch/engine/input"
	"github.com/hubastard/grovetouch/engine/touch"
)

// Event types and codes from linux/input-event-codes.h.
const (
	EV_SYN = 0x00
	EV_KEY = 0x01
	EV_ABS = 0x03

	SYN_REPORT = 0x00

	BTN_TOUCH = 0x14a

	ABS_X              = 0x00
	ABS_Y              = 0x01
	ABS_MT_SLOT        = 0x2f
	ABS_MT_POSITION_X  = 0x35
	ABS_MT_POSITION_Y  = 0x36
	ABS_MT_TRACKING_ID = 0x39
)

// EventSize is the size of struct input_event: a timeval of two longs
// followed by type, code and value.
var EventSize = 2*(strconv.IntSize/8) + 8

// Parse decodes whole input_event records from buf and returns the number
// of bytes consumed.
func Parse(buf []byte, fn func(typ, code uint16, value int32)) int {
	n := 0
	for len(buf)-n >= EventSize {
		ev := buf[n : n+EventSize]
		off := EventSize - 8
		fn(binary.LittleEndian.Uint16(ev[off:off+2]),
			binary.LittleEndian.Uint16(ev[off+2:off+4]),
			int32(binary.LittleEndian.Uint32(ev[off+4:off+8])))
		n += EventSize
	}
	return n
}

// Range is the reported extent of an absolute axis.
type Range struct{ Min, Max int32 }

func (r Range) normalize(v int32, invert bool) float64 {
	span := float64(r.Max - r.Min)
	f := 0.0
	if span > 0 {
		f = float64(v-r.Min) / span
	}
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	if invert {
		f = 1 - f
	}
	return f
}

type slot struct {
	id     int32 // tracking id, -1 when empty
	lifted int32 // id to release at the next report, -1 for none
	x, y   int32
	active bool
	fresh  bool
	dirty  bool
}

// Decoder accumulates evdev events between SYN_REPORTs and turns each
// report into raw touch events.
type Decoder struct {
	X, Y             Range
	InvertX, InvertY bool

	slots      []slot
	cur        int
	multitouch bool
}

func NewDecoder(x, y Range) *Decoder {
	return &Decoder{X: x, Y: y}
}

func (d *Decoder) slot(i int) *slot {
	for len(d.slots) <= i {
		d.slots = append(d.slots, slot{id: -1, lifted: -1})
	}
	return &d.slots[i]
}

// Feed consumes one event. Raw events are passed to out on SYN_REPORT.
func (d *Decoder) Feed(typ, code uint16, value int32, out func(input.Raw)) {
	switch typ {
	case EV_ABS:
		d.feedAbs(code, value)
	case EV_KEY:
		if code == BTN_TOUCH && !d.multitouch {
			s := d.slot(0)
			if value != 0 {
				d.begin(s, 0)
			} else {
				d.end(s)
			}
		}
	case EV_SYN:
		if code == SYN_REPORT {
			d.report(out)
		}
	}
}

func (d *Decoder) feedAbs(code uint16, value int32) {
	switch code {
	case ABS_MT_SLOT:
		d.multitouch = true
		if value >= 0 {
			d.cur = int(value)
		}
	case ABS_MT_TRACKING_ID:
		d.multitouch = true
		s := d.slot(d.cur)
		if value < 0 {
			d.end(s)
		} else {
			d.begin(s, value)
		}
	case ABS_MT_POSITION_X:
		d.multitouch = true
		s := d.slot(d.cur)
		s.x, s.dirty = value, true
	case ABS_MT_POSITION_Y:
		d.multitouch = true
		s := d.slot(d.cur)
		s.y, s.dirty = value, true
	case ABS_X, ABS_Y:
		if d.multitouch {
			return
		}
		s := d.slot(0)
		if code == ABS_X {
			s.x = value
		} else {
			s.y = value
		}
		s.dirty = true
	}
}

func (d *Decoder) begin(s *slot, id int32) {
	if s.active && s.id != id {
		s.lifted = s.id
	}
	s.id, s.active, s.fresh = id, true, true
}

func (d *Decoder) end(s *slot) {
	if s.active {
		s.lifted = s.id
	}
	s.active, s.fresh = false, false
	s.id = -1
}

func (d *Decoder) report(out func(input.Raw)) {
	for i := range d.slots {
		s := &d.slots[i]
		x := d.X.normalize(s.x, d.InvertX)
		y := d.Y.normalize(s.y, d.InvertY)
		if s.lifted >= 0 {
			out(input.Raw{Kind: touch.Up, ID: int(s.lifted), X: x, Y: y})
			s.lifted = -1
		}
		switch {
		case s.fresh:
			out(input.Raw{Kind: touch.Down, ID: int(s.id), X: x, Y: y})
		case s.active && s.dirty:
			out(input.Raw{Kind: touch.Move, ID: int(s.id), X: x, Y: y})
		}
		s.fresh, s.dirty = false, false
	}
}

// Active reports the number of contacts currently down.
func (d *Decoder) Active() int {
	n := 0
	for _, s := range d.slots {
		if s.active {
			n++
		}
	}
	return n
}
