package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Horse-MA00/portfolio/internal/layout"
	"github.com/Horse-MA00/portfolio/internal/rotation"
)

func TestScaleSpan(t *testing.T) {
	tests := []struct {
		from, to float64
		n        int
		lo, hi   int
	}{
		{0, 100, 10, 0, 10},
		{25, 75, 100, 25, 75},
		{25, 50, 20, 5, 10},
		{99.9, 100, 10, 9, 10},
		{100, 100, 10, 9, 10},
	}

	for _, tt := range tests {
		lo, hi := scaleSpan(tt.from, tt.to, tt.n)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("scaleSpan(%g, %g, %d) = %d, %d, want %d, %d", tt.from, tt.to, tt.n, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestRenderLayoutMap(t *testing.T) {
	cfg := layout.DefaultConfig()
	res := layout.Result{Placements: []layout.Placement{
		{Rect: layout.Rect{Top: 5, Left: 5, Width: 10, Height: 16}},
		{Rect: layout.Rect{Top: 5, Left: 85, Width: 10, Height: 16}, Fallback: true},
	}}

	out := renderLayoutMap(cfg, res, 50, 20)
	for _, want := range []string{"0", "1", string(glyphZone), string(glyphEmpty)} {
		if !strings.Contains(out, want) {
			t.Errorf("map missing %q:\n%s", want, out)
		}
	}

	table := renderPlacementTable(DefaultContent().Cards, res)
	for _, want := range []string{"Web Development", "CUHK Student", "fallback", "random"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q:\n%s", want, table)
		}
	}
}

func TestRenderLayoutMapDegenerateSize(t *testing.T) {
	cfg := layout.DefaultConfig()
	res := layout.Result{Placements: []layout.Placement{
		{Rect: layout.Rect{Top: 5, Left: 5, Width: 10, Height: 16}},
	}}

	for _, size := range [][2]int{{0, 12}, {40, 0}, {-3, -3}} {
		if out := renderLayoutMap(cfg, res, size[0], size[1]); out == "" {
			t.Errorf("renderLayoutMap(%dx%d) rendered nothing", size[0], size[1])
		}
	}
}

func TestCardGlyph(t *testing.T) {
	for i, want := range map[int]rune{0: '0', 9: '9', 10: 'a', 35: 'z', 36: '0'} {
		if got := cardGlyph(i); got != want {
			t.Errorf("cardGlyph(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestRotateModel(t *testing.T) {
	ch := make(chan rotation.State, 1)
	m := newRotateModel("Horse-MA00", ch, rotation.State{Text: "Horse-MA00"})

	if m.Init() == nil {
		t.Fatal("Init() should wait for the rotator")
	}

	next, cmd := m.Update(rotationMsg(rotation.State{Index: 1, Text: "CUHK Student", Phase: rotation.Settled}))
	m = next.(rotateModel)
	if m.state.Text != "CUHK Student" {
		t.Errorf("state = %+v", m.state)
	}
	if cmd == nil {
		t.Error("expected a command waiting for the next state")
	}
	if !strings.Contains(m.View(), "CUHK Student") {
		t.Errorf("View() = %q", m.View())
	}

	close(ch)
	if msg := waitForRotation(ch)(); msg != (rotationClosedMsg{}) {
		t.Errorf("closed channel produced %T", msg)
	}

	next, cmd = m.Update(rotationClosedMsg{})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("closed rotator should quit the program")
	}
	if next.(rotateModel).View() != "" {
		t.Error("finished model should render nothing")
	}
}

func TestRotateModelQuitKey(t *testing.T) {
	m := newRotateModel("x", make(chan rotation.State), rotation.State{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not produce QuitMsg")
	}
}
