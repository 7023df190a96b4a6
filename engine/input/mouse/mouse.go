// Package mouse turns a pointing device into touches. Holding the right
// button (or clicking with multitouch simulation) leaves a sticky touch on
// the surface so several contacts can be simulated with one mouse.
package mouse

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/hubastard/grovetouch/engine/input"
	"github.com/hubastard/grovetouch/engine/touch"
)

type Button int

const (
	Left Button = iota
	Right
	Middle
)

// Handler receives pointer events in normalized surface coordinates.
type Handler interface {
	Pointer(x, y float64)
	Press(b Button, x, y float64)
	Release(b Button, x, y float64)
}

// Source is a surface able to report pointer events.
type Source interface {
	SetMouseHandler(h Handler)
}

const defaultPickRadius = 0.01

type Provider struct {
	input.Buffered
	src    Source
	logger *slog.Logger

	mu         sync.Mutex
	nextID     int
	drag       int // 0 when not dragging
	dragButton Button
	last       [2]float64
	sticky     map[int][2]float64
	pickRadius float64
	multitouch bool
}

func New(name string, src Source, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		Buffered:   input.NewBuffered(name, 256),
		src:        src,
		logger:     logger,
		sticky:     map[int][2]float64{},
		pickRadius: defaultPickRadius,
		multitouch: true,
	}
}

// Constructor adapts New to an input.Factory entry bound to src. Args is a
// comma separated list: "radius=0.02", "disable_multitouch".
func Constructor(src Source) input.Constructor {
	return func(key, args string, logger *slog.Logger) (input.Provider, error) {
		p := New(key, src, logger)
		if err := p.parseArgs(args); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (p *Provider) parseArgs(args string) error {
	for _, opt := range strings.Split(args, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		k, v, _ := strings.Cut(opt, "=")
		switch k {
		case "radius":
			r, err := strconv.ParseFloat(v, 64)
			if err != nil || r < 0 {
				return fmt.Errorf("mouse: bad radius %q", v)
			}
			p.pickRadius = r
		case "disable_multitouch":
			p.multitouch = false
		default:
			return fmt.Errorf("mouse: unknown option %q", k)
		}
	}
	return nil
}

func (p *Provider) Start() error {
	if p.src == nil {
		return fmt.Errorf("mouse %s: no pointer source", p.Name())
	}
	p.src.SetMouseHandler(p)
	return nil
}

func (p *Provider) Stop() error {
	if p.src != nil {
		p.src.SetMouseHandler(nil)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sticky[p.drag]; p.drag != 0 && !ok {
		p.Push(input.Raw{Kind: touch.Up, ID: p.drag, X: p.last[0], Y: p.last[1]})
	}
	for id, pos := range p.sticky {
		p.Push(input.Raw{Kind: touch.Up, ID: id, X: pos[0], Y: pos[1]})
	}
	p.sticky = map[int][2]float64{}
	p.drag = 0
	return nil
}

// Sticky reports how many sticky touches are on the surface.
func (p *Provider) Sticky() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sticky)
}

func (p *Provider) Pointer(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = [2]float64{x, y}
	if p.drag == 0 {
		return
	}
	if _, ok := p.sticky[p.drag]; ok {
		p.sticky[p.drag] = [2]float64{x, y}
	}
	p.Push(input.Raw{Kind: touch.Move, ID: p.drag, X: x, Y: y})
}

func (p *Provider) Press(b Button, x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = [2]float64{x, y}
	// one drag at a time; other buttons are ignored until it ends
	if b == Middle || p.drag != 0 {
		return
	}
	if id, ok := p.pick(x, y); ok {
		if b == Right {
			// right click on a sticky touch lifts it
			delete(p.sticky, id)
			p.Push(input.Raw{Kind: touch.Up, ID: id, X: x, Y: y})
			return
		}
		p.drag, p.dragButton = id, b
		p.sticky[id] = [2]float64{x, y}
		p.Push(input.Raw{Kind: touch.Move, ID: id, X: x, Y: y})
		return
	}
	p.nextID++
	id := p.nextID
	p.Push(input.Raw{Kind: touch.Down, ID: id, X: x, Y: y})
	if b == Right && p.multitouch {
		p.sticky[id] = [2]float64{x, y}
		return
	}
	p.drag, p.dragButton = id, b
}

func (p *Provider) Release(b Button, x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = [2]float64{x, y}
	if p.drag == 0 || b != p.dragButton {
		return
	}
	id := p.drag
	p.drag = 0
	if _, ok := p.sticky[id]; ok {
		return
	}
	p.Push(input.Raw{Kind: touch.Up, ID: id, X: x, Y: y})
}

func (p *Provider) pick(x, y float64) (int, bool) {
	best, bestDist := 0, p.pickRadius
	for id, pos := range p.sticky {
		if d := math.Hypot(pos[0]-x, pos[1]-y); d <= bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != 0
}
