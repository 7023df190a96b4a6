// Package platform hosts the GLFW window that drives the dispatch loop's
// frame and feeds the mouse provider.
package platform

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/grovetouch/engine/colors"
	"github.com/hubastard/grovetouch/engine/config"
	glbackend "github.com/hubastard/grovetouch/engine/gfx/gl"
	"github.com/hubastard/grovetouch/engine/input/mouse"
	"github.com/hubastard/grovetouch/engine/touch"
)

// GLFWSurface implements core.Surface and mouse.Source. All methods must be
// called from the thread that created it.
type GLFWSurface struct {
	w       *glfw.Window
	overlay *glbackend.Overlay
	logger  *slog.Logger

	mu      sync.Mutex
	handler mouse.Handler

	touches    func() []*touch.Touch
	onResize   func(w, h int)
	background colors.Color
	closed     bool
}

// NewGLFWSurface must be called on the main thread before any GL calls.
func NewGLFWSurface(cfg config.Graphics, logger *slog.Logger) (*GLFWSurface, error) {
	if logger == nil {
		logger = slog.Default()
	}
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, err
	}

	// GL 3.2+ core profile (Mac requires forward-compatible flag).
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}
	logger.Info("gl ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	s := &GLFWSurface{w: win, logger: logger, background: colors.DarkGray}
	if cfg.ShowTouches {
		s.overlay, err = glbackend.NewOverlay()
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	fw, fh := win.GetFramebufferSize()
	s.resize(fw, fh)

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) { s.resize(w, h) })
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if h := s.mouse(); h != nil {
			nx, ny := s.normalize(x, y)
			h.Pointer(nx, ny)
		}
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		h := s.mouse()
		if h == nil {
			return
		}
		btn, ok := translateButton(b)
		if !ok {
			return
		}
		nx, ny := s.normalize(win.GetCursorPos())
		switch action {
		case glfw.Press:
			h.Press(btn, nx, ny)
		case glfw.Release:
			h.Release(btn, nx, ny)
		}
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	return s, nil
}

func translateButton(b glfw.MouseButton) (mouse.Button, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return mouse.Left, true
	case glfw.MouseButtonRight:
		return mouse.Right, true
	case glfw.MouseButtonMiddle:
		return mouse.Middle, true
	}
	return 0, false
}

func (s *GLFWSurface) normalize(x, y float64) (float64, float64) {
	w, h := s.w.GetSize()
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return x / float64(w), y / float64(h)
}

func (s *GLFWSurface) resize(w, h int) {
	if s.overlay != nil {
		s.overlay.Resize(w, h)
	} else {
		gl.Viewport(0, 0, int32(w), int32(h))
	}
	if s.onResize != nil {
		s.onResize(w, h)
	}
}

func (s *GLFWSurface) mouse() mouse.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

// SetMouseHandler implements mouse.Source. A nil handler detaches it.
func (s *GLFWSurface) SetMouseHandler(h mouse.Handler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// SetTouches sets the source of touches drawn by the overlay.
func (s *GLFWSurface) SetTouches(fn func() []*touch.Touch) { s.touches = fn }

// OnResize registers fn for framebuffer size changes; it is called at once
// with the current size.
func (s *GLFWSurface) OnResize(fn func(w, h int)) {
	s.onResize = fn
	if fn != nil {
		fn(s.w.GetFramebufferSize())
	}
}

func (s *GLFWSurface) SetTitle(t string) { s.w.SetTitle(t) }

// core.Surface impl
func (s *GLFWSurface) DispatchEvents()     { glfw.PollEvents() }
func (s *GLFWSurface) OnUpdate(dt float64) {}
func (s *GLFWSurface) OnFlip()             { s.w.SwapBuffers() }
func (s *GLFWSurface) ShouldClose() bool   { return s.w.ShouldClose() }

func (s *GLFWSurface) OnDraw() {
	if s.overlay == nil {
		gl.ClearColor(s.background[0], s.background[1], s.background[2], s.background[3])
		gl.Clear(gl.COLOR_BUFFER_BIT)
		return
	}
	s.overlay.Clear(s.background)
	if s.touches != nil {
		s.overlay.Draw(s.touches())
	}
}

func (s *GLFWSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.overlay != nil {
		s.overlay.Shutdown()
	}
	s.w.Destroy()
	glfw.Terminate()
	s.logger.Debug("surface closed")
	return nil
}
