// Package input defines the producer side of the touch pipeline: providers
// that turn hardware or network input into touch events, the buffers they
// use to hand events to the dispatch loop, and the postprocessing stage
// contract.
package input

import (
	"github.com/hubastard/grovetouch/engine/touch"
)

// EmitFunc receives one normalized event from a provider.
type EmitFunc func(kind touch.Kind, t *touch.Touch)

// Provider produces touch events from one input source.
//
// Start must not block; background work runs on the provider's own
// goroutines and only ever appends to an internal buffer. Stop must be safe
// to call more than once and without a prior Start. Update is called once
// per cycle from the dispatch loop and flushes buffered events through emit.
type Provider interface {
	Name() string
	Start() error
	Stop() error
	Update(emit EmitFunc)
}

// Stage is a postprocessing step over one cycle's events.
type Stage interface {
	Process(events []touch.Event) []touch.Event
}

// StageFunc adapts a function to Stage.
type StageFunc func(events []touch.Event) []touch.Event

func (f StageFunc) Process(events []touch.Event) []touch.Event { return f(events) }
