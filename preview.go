package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Horse-MA00/portfolio/internal/layout"
	"github.com/Horse-MA00/portfolio/internal/rotation"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorYellow = lipgloss.Color("220")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")

	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleFallback = lipgloss.NewStyle().Foreground(colorYellow)
	styleMapFrame = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

const (
	glyphEmpty = '·'
	glyphZone  = '░'
)

// cardGlyph labels card i on the map: 0-9, then a-z.
func cardGlyph(i int) rune {
	return []rune(strconv.FormatInt(int64(i%36), 36))[0]
}

// renderLayoutMap draws the viewport as a cols x rows character grid, at
// least one cell each way.
func renderLayoutMap(cfg layout.Config, res layout.Result, cols, rows int) string {
	cols, rows = max(cols, 1), max(rows, 1)
	grid := make([][]rune, rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(string(glyphEmpty), cols))
	}

	fill := func(r layout.Rect, glyph rune) {
		x0, x1 := scaleSpan(r.Left, r.Right(), cols)
		y0, y1 := scaleSpan(r.Top, r.Bottom(), rows)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				grid[y][x] = glyph
			}
		}
	}

	fill(cfg.Zone, glyphZone)
	for i, p := range res.Placements {
		fill(p.Rect, cardGlyph(i))
	}

	lines := make([]string, rows)
	for y, row := range grid {
		lines[y] = string(row)
	}
	return styleMapFrame.Render(strings.Join(lines, "\n"))
}

// scaleSpan maps a percent interval onto [0, n) cells, at least one wide.
func scaleSpan(from, to float64, n int) (int, int) {
	lo := int(math.Floor(from / 100 * float64(n)))
	hi := int(math.Ceil(to / 100 * float64(n)))
	lo = max(0, min(lo, n-1))
	hi = max(lo+1, min(hi, n))
	return lo, hi
}

func renderPlacementTable(cards []Card, res layout.Result) string {
	rows := make([][]string, len(res.Placements))
	for i, p := range res.Placements {
		title := "-"
		if i < len(cards) {
			title = cards[i].Title
		}
		source := "random"
		if p.Fallback {
			source = "fallback"
		}
		rows[i] = []string{
			string(cardGlyph(i)),
			title,
			fmt.Sprintf("%.1f", p.Top),
			fmt.Sprintf("%.1f", p.Left),
			strconv.Itoa(p.Attempts),
			source,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Card", "Top %", "Left %", "Attempts", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(res.Placements) && res.Placements[row].Fallback {
				return styleFallback
			}
			return lipgloss.NewStyle()
		})
	return t.String()
}

// rotateModel shows a live rotator in the terminal. The rotator belongs to
// the caller, which stops it once the program exits.
type rotateModel struct {
	name    string
	updates <-chan rotation.State
	state   rotation.State
	done    bool
}

type rotationMsg rotation.State

type rotationClosedMsg struct{}

func newRotateModel(name string, updates <-chan rotation.State, initial rotation.State) rotateModel {
	return rotateModel{name: name, updates: updates, state: initial}
}

func waitForRotation(ch <-chan rotation.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return rotationClosedMsg{}
		}
		return rotationMsg(st)
	}
}

func (m rotateModel) Init() tea.Cmd {
	return waitForRotation(m.updates)
}

func (m rotateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		}
	case rotationMsg:
		m.state = rotation.State(msg)
		return m, waitForRotation(m.updates)
	case rotationClosedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m rotateModel) View() string {
	if m.done {
		return ""
	}

	text := styleTitle.Render(m.state.Text)
	if m.state.Phase == rotation.Transitioning {
		text = styleDim.Render(m.state.Text)
	}

	var b strings.Builder
	b.WriteString(styleDim.Render("My name is:"))
	b.WriteString("\n\n  ")
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("%s · %d/%s · q quit", m.name, m.state.Index, m.state.Phase)))
	b.WriteString("\n")
	return b.String()
}
