package layout

import (
	"fmt"
	"math/rand/v2"
)

// Sampler yields uniform values in [0, 1). *rand.Rand satisfies it.
type Sampler interface {
	Float64() float64
}

// SamplerFunc adapts a plain function to Sampler.
type SamplerFunc func() float64

func (f SamplerFunc) Float64() float64 { return f() }

// NewSeededSampler returns a deterministic sampler for the given seed.
func NewSeededSampler(seed uint64) Sampler {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Placement is one card's accepted position.
type Placement struct {
	Rect
	Attempts int  `json:"attempts"`
	Fallback bool `json:"fallback"`
}

// Result is the index-aligned layout for a set of cards.
type Result struct {
	Placements []Placement `json:"placements"`
}

// Rects returns the accepted rectangles in card order.
func (r Result) Rects() []Rect {
	rects := make([]Rect, len(r.Placements))
	for i, p := range r.Placements {
		rects[i] = p.Rect
	}
	return rects
}

// Fallbacks counts cards that were placed from the fallback table.
func (r Result) Fallbacks() int {
	n := 0
	for _, p := range r.Placements {
		if p.Fallback {
			n++
		}
	}
	return n
}

// Generator places cards one at a time, first fit, treating every card it
// has already accepted as an obstacle. Earlier cards therefore get priority.
type Generator struct {
	cfg     Config
	sampler Sampler
}

// NewGenerator validates cfg and returns a generator drawing from sampler.
// A nil sampler uses the process-wide random source.
func NewGenerator(cfg Config, sampler Sampler) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}
	if sampler == nil {
		sampler = SamplerFunc(rand.Float64)
	}
	return &Generator{cfg: cfg, sampler: sampler}, nil
}

// Config returns the generator's geometry.
func (g *Generator) Config() Config {
	return g.cfg
}

// Place lays out n cards. It always succeeds: a card whose random search
// runs out of attempts takes its fallback position instead.
func (g *Generator) Place(n int) Result {
	if n <= 0 {
		return Result{Placements: []Placement{}}
	}

	placements := make([]Placement, 0, n)
	accepted := make([]Rect, 0, n)
	for i := range n {
		p := g.placeCard(i, accepted)
		accepted = append(accepted, p.Rect)
		placements = append(placements, p)
	}
	return Result{Placements: placements}
}

func (g *Generator) placeCard(index int, accepted []Rect) Placement {
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		candidate := g.sample()
		if g.Accepts(accepted, candidate) {
			return Placement{Rect: candidate, Attempts: attempt}
		}
	}
	return Placement{Rect: g.Fallback(index), Attempts: g.cfg.MaxAttempts, Fallback: true}
}

// sample draws a candidate whose unpadded box already fits the margins.
func (g *Generator) sample() Rect {
	c := g.cfg
	top := g.sampler.Float64()*(100-c.CardHeight-2*c.EdgeMargin) + c.EdgeMargin
	left := g.sampler.Float64()*(100-c.CardWidth-2*c.EdgeMargin) + c.EdgeMargin
	return g.card(top, left)
}

// Accepts reports whether candidate is in bounds, clear of the exclusion
// zone, and clear of every rectangle in placed.
func (g *Generator) Accepts(placed []Rect, candidate Rect) bool {
	if !candidate.Within(g.cfg.EdgeMargin) {
		return false
	}
	if OverlapsZone(candidate, g.cfg.Zone, g.cfg.ZoneBuffer()) {
		return false
	}
	for _, other := range placed {
		if Overlap(candidate, other, g.cfg.MinSpacing) {
			return false
		}
	}
	return true
}

// Fallback returns the fixed position for the card at index. Indexes past
// the table walk a grid anchored at the base point: down by FallbackStride,
// then over by one card plus spacing into the next column, wrapping once the
// grid is used up. Grid positions are distinct from one another for one full
// pass but may still overlap table entries or the exclusion zone.
func (g *Generator) Fallback(index int) Rect {
	c := g.cfg
	if index >= 0 && index < len(c.Fallbacks) {
		p := c.Fallbacks[index]
		return g.card(p.Top, p.Left)
	}

	maxTop := 100 - c.EdgeMargin - c.CardHeight
	maxLeft := 100 - c.EdgeMargin - c.CardWidth
	baseTop := clamp(c.FallbackBase.Top, c.EdgeMargin, maxTop)
	baseLeft := clamp(c.FallbackBase.Left, c.EdgeMargin, maxLeft)
	colStep := c.CardWidth + c.MinSpacing

	rows := int((maxTop-baseTop)/c.FallbackStride) + 1
	cols := int((maxLeft-baseLeft)/colStep) + 1
	index = max(index, 0) % (rows * cols)

	top := baseTop + float64(index%rows)*c.FallbackStride
	left := baseLeft + float64(index/rows)*colStep
	return g.card(top, left)
}

func (g *Generator) card(top, left float64) Rect {
	return Rect{Top: top, Left: left, Width: g.cfg.CardWidth, Height: g.cfg.CardHeight}
}
