package layout

import (
	"errors"
	"fmt"
)

// Point is a top/left pair used by the fallback table.
type Point struct {
	Top  float64 `json:"top" toml:"top"`
	Left float64 `json:"left" toml:"left"`
}

// Config holds the card geometry and the placement budget.
type Config struct {
	CardWidth   float64
	CardHeight  float64
	MinSpacing  float64
	EdgeMargin  float64
	Zone        Rect
	MaxAttempts int

	// Fallbacks is indexed by card order. Cards past the end of the table are
	// laid out on a grid starting at FallbackBase, FallbackStride apart
	// vertically.
	Fallbacks      []Point
	FallbackBase   Point
	FallbackStride float64
}

// DefaultConfig returns the geometry of the portfolio page: 10x16 cards kept
// 5 apart and 3 off the edges, around the identity card in the middle.
func DefaultConfig() Config {
	return Config{
		CardWidth:   10,
		CardHeight:  16,
		MinSpacing:  5,
		EdgeMargin:  3,
		Zone:        Rect{Top: 24, Left: 36, Width: 28, Height: 52},
		MaxAttempts: 200,
		Fallbacks: []Point{
			{Top: 5, Left: 5},   // top-left
			{Top: 5, Left: 85},  // top-right
			{Top: 78, Left: 5},  // bottom-left
			{Top: 78, Left: 85}, // bottom-right
			{Top: 40, Left: 3},  // middle-left
			{Top: 40, Left: 87}, // middle-right
		},
		FallbackBase:   Point{Top: 5, Left: 5},
		FallbackStride: 15,
	}
}

// ZoneBuffer is the extra room kept around the exclusion zone.
func (c Config) ZoneBuffer() float64 {
	return c.MinSpacing + 2
}

// Validate reports geometry that cannot produce any in-bounds card.
func (c Config) Validate() error {
	var errs []error
	if c.CardWidth <= 0 || c.CardHeight <= 0 {
		errs = append(errs, fmt.Errorf("card size must be positive, got %gx%g", c.CardWidth, c.CardHeight))
	}
	if c.EdgeMargin < 0 {
		errs = append(errs, fmt.Errorf("edge margin must not be negative, got %g", c.EdgeMargin))
	}
	if c.MinSpacing < 0 {
		errs = append(errs, fmt.Errorf("min spacing must not be negative, got %g", c.MinSpacing))
	}
	if c.CardWidth > 100-2*c.EdgeMargin || c.CardHeight > 100-2*c.EdgeMargin {
		errs = append(errs, fmt.Errorf("card %gx%g does not fit inside margin %g", c.CardWidth, c.CardHeight, c.EdgeMargin))
	}
	if c.FallbackStride <= 0 {
		errs = append(errs, fmt.Errorf("fallback stride must be positive, got %g", c.FallbackStride))
	}
	if c.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts))
	}
	return errors.Join(errs...)
}
