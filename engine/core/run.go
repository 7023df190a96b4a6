package core

import (
	"context"
	"runtime"
	"time"

	"github.com/hubastard/grovetouch/engine/profiler"
)

// Idle runs one frame: tick the clock, dispatch input and drive the
// surface. The loop asks itself to quit once no listener is left or the
// surface wants to close.
func (l *Loop) Idle() error {
	dt := l.clock.Tick()

	if err := l.DispatchInput(); err != nil {
		return err
	}

	if s := l.surface; s != nil {
		end := profiler.Start("Surface")
		s.DispatchEvents()
		s.OnUpdate(dt.Seconds())
		s.OnDraw()
		s.OnFlip()
		end()
		if s.ShouldClose() {
			l.logger.Info("surface closed")
			l.quit.Store(true)
		}
	}

	if l.listeners.Len() == 0 {
		l.logger.Info("no event listeners left, quitting")
		l.quit.Store(true)
	}
	return nil
}

// Run starts the providers and repeats Idle until Close is called, the
// context is cancelled or a handler failure is raised. Providers and the
// surface are closed before it returns.
func (l *Loop) Run(ctx context.Context) (err error) {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := l.Start(); err != nil {
		return err
	}
	defer func() {
		if cerr := l.shutdown(); cerr != nil && err == nil {
			err = cerr
		}
		l.logger.Info("loop exit", "frames", l.clock.Frames(), "uptime", l.clock.Uptime())
	}()

	var frame time.Duration
	if l.maxFPS > 0 {
		frame = time.Second / time.Duration(l.maxFPS)
	}

	for !l.quit.Load() {
		if ctx.Err() != nil {
			return nil
		}
		if err := l.Idle(); err != nil {
			return err
		}
		if frame > 0 {
			if wait := frame - l.clock.SinceTick(); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil
				case <-timer.C:
				}
			}
		}
	}
	return nil
}
