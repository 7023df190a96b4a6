package term

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hubastard/grovetouch/engine/touch"
)

func drain(p *Provider) ([]string, [][2]float64) {
	var kinds []string
	var pos [][2]float64
	p.Update(func(kind touch.Kind, t *touch.Touch) {
		kinds = append(kinds, kind.String())
		pos = append(pos, [2]float64{t.SX, t.SY})
	})
	return kinds, pos
}

func TestMouseDrag(t *testing.T) {
	p := New("term", nil)
	m := newModel(p)
	m.Update(tea.WindowSizeMsg{Width: 10, Height: 4})
	m.Update(tea.MouseMsg{X: 2, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 7, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 7, Y: 3, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone})

	kinds, pos := drain(p)
	if strings.Join(kinds, ",") != "down,move,up" {
		t.Fatalf("expected down,move,up, got %v", kinds)
	}
	want := [][2]float64{{0.25, 0.375}, {0.75, 0.375}, {0.75, 0.875}}
	for i, w := range want {
		if pos[i] != w {
			t.Errorf("event %d: expected %v, got %v", i, w, pos[i])
		}
	}
}

func TestMotionWithoutPressIgnored(t *testing.T) {
	p := New("term", nil)
	m := newModel(p)
	m.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionMotion})
	m.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	if kinds, _ := drain(p); len(kinds) != 0 {
		t.Fatalf("expected no events, got %v", kinds)
	}
}

func TestQuitKey(t *testing.T) {
	m := newModel(New("term", nil))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}

func TestViewShowsContact(t *testing.T) {
	p := New("term", nil)
	m := newModel(p)
	m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if v := m.View(); !strings.Contains(v, "touch 1") {
		t.Errorf("expected the held contact in the view, got %q", v)
	}
}

func TestStopWithoutStart(t *testing.T) {
	if err := New("term", nil).Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
