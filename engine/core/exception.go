package core

import (
	"fmt"
	"runtime/debug"
)

// HandlerPanic is a panic recovered from a touch handler.
type HandlerPanic struct {
	Value any
	Stack []byte
}

func (p *HandlerPanic) Error() string { return fmt.Sprintf("touch handler panic: %v", p.Value) }

// Unwrap exposes a panicked error value to errors.Is and errors.As.
func (p *HandlerPanic) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}

func recovered(v any) *HandlerPanic {
	return &HandlerPanic{Value: v, Stack: debug.Stack()}
}

type ExceptionAction int

const (
	Raise ExceptionAction = iota
	Pass
)

func (a ExceptionAction) String() string {
	if a == Pass {
		return "pass"
	}
	return "raise"
}

// ExceptionHandler inspects a recovered handler failure.
type ExceptionHandler func(err error) ExceptionAction

// ExceptionPolicy decides whether a handler failure stops the loop. Any
// handler answering Pass lets the loop continue; otherwise Default applies.
type ExceptionPolicy struct {
	Default  ExceptionAction
	handlers []ExceptionHandler
}

func (p *ExceptionPolicy) Add(h ExceptionHandler) { p.handlers = append(p.handlers, h) }

func (p *ExceptionPolicy) Handle(err error) ExceptionAction {
	action := p.Default
	for _, h := range p.handlers {
		if h(err) == Pass {
			action = Pass
		}
	}
	return action
}
