// Package term turns terminal mouse reports into touches. The terminal's
// cell grid is mapped onto the normalized surface.
package term

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hubastard/grovetouch/engine/input"
	"github.com/hubastard/grovetouch/engine/touch"
)

var (
	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5")).
			Background(lipgloss.Color("#1f2335")).
			Padding(0, 1)

	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#9ece6a"))
)

type Provider struct {
	input.Buffered
	logger *slog.Logger
	opts   []tea.ProgramOption

	mu     sync.Mutex
	prog   *tea.Program
	done   chan struct{}
	onQuit func()
}

func New(name string, logger *slog.Logger, opts ...tea.ProgramOption) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	}
	return &Provider{Buffered: input.NewBuffered(name, 256), logger: logger, opts: opts}
}

func Constructor(key, _ string, logger *slog.Logger) (input.Provider, error) {
	return New(key, logger), nil
}

// OnQuit registers fn to run when the user quits the terminal program.
func (p *Provider) OnQuit(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onQuit = fn
}

func (p *Provider) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.prog != nil {
		return nil
	}
	m := newModel(p)
	prog := tea.NewProgram(m, p.opts...)
	done := make(chan struct{})
	p.prog, p.done = prog, done
	go func() {
		defer close(done)
		_, err := prog.Run()
		m.release()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			p.logger.Error("terminal input stopped", "err", err)
			return
		}
		p.mu.Lock()
		quit, stopping := p.onQuit, p.prog != prog
		p.mu.Unlock()
		if quit != nil && !stopping {
			quit()
		}
	}()
	return nil
}

func (p *Provider) Stop() error {
	p.mu.Lock()
	prog, done := p.prog, p.done
	p.prog, p.done = nil, nil
	p.mu.Unlock()
	if prog == nil {
		return nil
	}
	prog.Kill()
	<-done
	return nil
}

type model struct {
	p      *Provider
	w, h   int
	nextID int
	active int // id of the contact held by the mouse, 0 when none
	x, y   float64
}

func newModel(p *Provider) *model { return &model{p: p, w: 80, h: 24} }

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.mouse(tea.MouseEvent(msg))
	}
	return m, nil
}

func (m *model) mouse(ev tea.MouseEvent) {
	m.x, m.y = m.normalize(ev.X, ev.Y)
	switch ev.Action {
	case tea.MouseActionPress:
		if ev.Button != tea.MouseButtonLeft {
			return
		}
		m.release()
		m.nextID++
		m.active = m.nextID
		m.p.Push(input.Raw{Kind: touch.Down, ID: m.active, X: m.x, Y: m.y})
	case tea.MouseActionMotion:
		if m.active != 0 {
			m.p.Push(input.Raw{Kind: touch.Move, ID: m.active, X: m.x, Y: m.y})
		}
	case tea.MouseActionRelease:
		m.release()
	}
}

// release lifts the held contact, if any.
func (m *model) release() {
	if m.active == 0 {
		return
	}
	m.p.Push(input.Raw{Kind: touch.Up, ID: m.active, X: m.x, Y: m.y})
	m.active = 0
}

// normalize maps a cell to the center of its normalized rectangle.
func (m *model) normalize(cx, cy int) (float64, float64) {
	w, h := max(m.w, 1), max(m.h, 1)
	return (float64(cx) + 0.5) / float64(w), (float64(cy) + 0.5) / float64(h)
}

func (m *model) View() string {
	status := "idle"
	if m.active != 0 {
		status = activeStyle.Render(fmt.Sprintf("touch %d at %.2f,%.2f", m.active, m.x, m.y))
	}
	return barStyle.Width(m.w).Render(fmt.Sprintf("%s · %s · q to quit", m.p.Name(), status))
}
