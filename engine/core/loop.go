package core

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hubastard/grovetouch/engine/input"
	"github.com/hubastard/grovetouch/engine/profiler"
	"github.com/hubastard/grovetouch/engine/touch"
	"github.com/hubastard/grovetouch/engine/widget"
)

// Options configures a Loop.
type Options struct {
	Logger   *slog.Logger
	Registry *widget.Registry // resolves grab handles
	Surface  Surface          // optional
	MaxFPS   int              // 0 runs unpaced
	Policy   *ExceptionPolicy // nil raises every handler panic
	Now      func() time.Time
}

// Loop is the event loop. DispatchInput, Idle and Run must be called from a
// single goroutine; Close may be called from any goroutine.
type Loop struct {
	logger  *slog.Logger
	reg     *widget.Registry
	surface Surface
	clock   *Clock
	maxFPS  int
	policy  *ExceptionPolicy

	mu        sync.Mutex // guards providers, active and state
	providers []input.Provider
	active    []input.Provider
	state     State

	stages    []input.Stage
	listeners ListenerStack
	touches   *Touches
	pending   []touch.Event

	quit    atomic.Bool
	running atomic.Bool
}

func NewLoop(opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = widget.NewRegistry()
	}
	policy := opts.Policy
	if policy == nil {
		policy = &ExceptionPolicy{Default: Raise}
	}
	return &Loop{
		logger:  logger,
		reg:     reg,
		surface: opts.Surface,
		clock:   NewClock(opts.Now),
		maxFPS:  opts.MaxFPS,
		policy:  policy,
		touches: NewTouches(),
	}
}

func (l *Loop) Registry() *widget.Registry   { return l.reg }
func (l *Loop) Clock() *Clock                { return l.clock }
func (l *Loop) Exceptions() *ExceptionPolicy { return l.policy }
func (l *Loop) Touches() []*touch.Touch      { return l.touches.List() }
func (l *Loop) LiveTouches() int             { return l.touches.Len() }

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// ------ Registration ------

// AddInputProvider appends p unless it is already registered. Providers
// added after Start are started on the next Start.
func (l *Loop) AddInputProvider(p input.Provider) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, x := range l.providers {
		if same(x, p) {
			return
		}
	}
	l.providers = append(l.providers, p)
}

// RemoveInputProvider unregisters p without stopping it.
func (l *Loop) RemoveInputProvider(p input.Provider) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.providers = removeProvider(l.providers, p)
	l.active = removeProvider(l.active, p)
}

func removeProvider(list []input.Provider, p input.Provider) []input.Provider {
	for i, x := range list {
		if same(x, p) {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Providers returns the registered providers in registration order.
func (l *Loop) Providers() []input.Provider {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]input.Provider(nil), l.providers...)
}

// Active returns the providers that started successfully.
func (l *Loop) Active() []input.Provider {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]input.Provider(nil), l.active...)
}

func (l *Loop) AddEventListener(ls Listener)    { l.listeners.Push(ls) }
func (l *Loop) RemoveEventListener(ls Listener) { l.listeners.Remove(ls) }
func (l *Loop) Listeners() int                  { return l.listeners.Len() }

// AddPostprocStage appends s to the chain unless it is already present.
func (l *Loop) AddPostprocStage(s input.Stage) {
	for _, x := range l.stages {
		if same(x, s) {
			return
		}
	}
	l.stages = append(l.stages, s)
}

func (l *Loop) RemovePostprocStage(s input.Stage) {
	for i, x := range l.stages {
		if same(x, s) {
			l.stages = append(l.stages[:i], l.stages[i+1:]...)
			return
		}
	}
}

// ------ Lifecycle ------

// Start starts every registered provider in order. A provider that fails
// to start is logged and left out of the active set.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case Closed:
		return ErrClosed
	case Started:
		return nil
	}
	l.active = l.active[:0]
	for _, p := range l.providers {
		if err := p.Start(); err != nil {
			l.logger.Error("input provider failed to start", "provider", p.Name(), "err", err)
			continue
		}
		l.logger.Debug("input provider started", "provider", p.Name())
		l.active = append(l.active, p)
	}
	l.state = Started
	return nil
}

// Stop stops the active providers in reverse start order. It does nothing
// unless the loop is started.
func (l *Loop) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopLocked()
}

func (l *Loop) stopLocked() error {
	if l.state != Started {
		return nil
	}
	var errs []error
	for i := len(l.active) - 1; i >= 0; i-- {
		p := l.active[i]
		if err := p.Stop(); err != nil {
			l.logger.Warn("input provider failed to stop", "provider", p.Name(), "err", err)
			errs = append(errs, fmt.Errorf("stop %s: %w", p.Name(), err))
		}
	}
	l.active = nil
	l.state = Stopped
	return errors.Join(errs...)
}

// Close requests the loop to quit. While Run is active the providers and
// the surface are closed by Run between cycles; otherwise they are closed
// immediately.
func (l *Loop) Close() error {
	l.quit.Store(true)
	if l.running.Load() {
		return nil
	}
	return l.shutdown()
}

func (l *Loop) shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Closed {
		return nil
	}
	err := l.stopLocked()
	if l.surface != nil {
		if cerr := l.surface.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close surface: %w", cerr))
		}
	}
	l.state = Closed
	return err
}

// Quitting reports whether Close was requested.
func (l *Loop) Quitting() bool { return l.quit.Load() }

// ------ Dispatch ------

// emit records one event for this cycle. A repeated (kind, touch) pair
// replaces the earlier entry and moves to the end.
func (l *Loop) emit(kind touch.Kind, t *touch.Touch) {
	for i, ev := range l.pending {
		if ev.Kind == kind && ev.Touch == t {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			break
		}
	}
	l.pending = append(l.pending, touch.Event{Kind: kind, Touch: t})
}

// DispatchInput runs one input cycle: collect from the active providers,
// postprocess, then deliver. Panics in providers, stages and handlers go
// through the exception policy; a raised one ends the cycle and is returned
// as a *HandlerPanic. A passed provider or stage panic skips that provider
// or stage for this cycle.
func (l *Loop) DispatchInput() error {
	end := profiler.Start("DispatchInput")
	defer end()
	defer func() { l.pending = l.pending[:0] }()

	for _, p := range l.Active() {
		if err := guard(func() { p.Update(l.emit) }); err != nil {
			if l.policy.Handle(err) == Raise {
				return err
			}
			l.logger.Error("provider update failed", "provider", p.Name(), "err", err)
		}
	}
	events := l.pending
	for i, s := range l.stages {
		var out []touch.Event
		if err := guard(func() { out = s.Process(events) }); err != nil {
			if l.policy.Handle(err) == Raise {
				return err
			}
			l.logger.Error("postproc stage failed", "stage", i, "err", err)
			continue
		}
		events = out
	}

	for _, ev := range events {
		err := l.dispatch(ev)
		if err == nil {
			continue
		}
		if l.policy.Handle(err) == Raise {
			return err
		}
		l.logger.Error("touch handler failed", "err", err, "touch", ev.Touch.String(), "kind", ev.Kind.String())
	}
	return nil
}

// guard runs fn and turns a panic into a *HandlerPanic.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	fn()
	return nil
}

// dispatch delivers ev to the listeners then to the grab holders.
func (l *Loop) dispatch(ev touch.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	t := ev.Touch
	if ev.Kind == touch.Down {
		l.touches.Add(t)
	}
	if ev.Kind == touch.Up {
		defer l.touches.Remove(t)
	}

	// every listener starts from the normalized position, whatever an
	// earlier one scaled it to
	if t.GrabExclusiveClass == "" {
		l.listeners.ForEach(func(ls Listener) {
			t.ResetPosition()
			deliver(ls, ev.Kind, t)
		})
	}

	if ev.Kind == touch.Down || len(t.GrabList) == 0 {
		return nil
	}
	t.ResetPosition()
	t.GrabState = true
	defer func() { t.GrabState = false }()
	for _, ref := range t.GrabSnapshot() {
		l.deliverGrab(ref, ev.Kind, t)
	}
	return nil
}

// deliverGrab sends a move or up to one grab holder in the coordinate space
// of the holder's parent.
func (l *Loop) deliverGrab(ref touch.Ref, kind touch.Kind, t *touch.Touch) {
	el, ok := l.reg.Resolve(ref)
	if !ok {
		t.Ungrab(ref)
		return
	}
	root, err := widget.RootWindow(el)
	if err != nil {
		l.logger.Debug("grab holder detached", "touch", t.String(), "err", err)
		return
	}
	if !el.Node().Visible() {
		return
	}

	t.Push()
	defer t.Pop()
	if root != nil && widget.Element(root) != el {
		w, h := root.SystemSize()
		t.ScaleForScreen(w, h, root.Rotation())
		parent, err := el.Node().Parent()
		if err == nil && parent != nil {
			err = t.ApplyTransform2D(widget.WidgetTransform(parent))
		} else if err == nil {
			if err = t.ApplyTransform2D(widget.WidgetTransform(el)); err == nil {
				err = t.ApplyTransform2D(widget.ParentTransform(el))
			}
		}
		if err != nil {
			l.logger.Debug("grab transform failed", "touch", t.String(), "err", err)
			return
		}
	}

	t.GrabCurrent = ref
	defer func() { t.GrabCurrent = 0 }()
	deliver(el, kind, t)
}

func deliver(ls Listener, kind touch.Kind, t *touch.Touch) bool {
	switch kind {
	case touch.Down:
		return ls.OnTouchDown(t)
	case touch.Move:
		return ls.OnTouchMove(t)
	case touch.Up:
		return ls.OnTouchUp(t)
	}
	return false
}
