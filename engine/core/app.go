// Package core runs the touch dispatch loop: it collects events from input
// providers, runs them through the postprocessing stages and delivers them
// to listeners and grab holders, once per frame.
package core

import (
	"errors"

	"github.com/hubastard/grovetouch/engine/touch"
)

var (
	ErrClosed  = errors.New("core: loop closed")
	ErrRunning = errors.New("core: loop already running")
)

// Surface is the platform window driven by the loop each frame.
type Surface interface {
	DispatchEvents() // poll OS events
	OnUpdate(dt float64)
	OnDraw()
	OnFlip() // present
	ShouldClose() bool
	Close() error
}

// Listener receives every dispatched event, in registration order. Root
// widget windows are the usual listeners.
type Listener interface {
	OnTouchDown(t *touch.Touch) bool
	OnTouchMove(t *touch.Touch) bool
	OnTouchUp(t *touch.Touch) bool
}

// State of the loop's provider lifecycle.
type State int

const (
	Idle State = iota
	Started
	Stopped
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	case Closed:
		return "closed"
	}
	return "unknown"
}
