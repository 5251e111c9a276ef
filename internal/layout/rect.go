// Package layout scatters fixed-size cards across a percent-based viewport
// without overlapping a central exclusion zone or each other.
package layout

// Rect is an axis-aligned box in viewport percent (0-100 on both axes).
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Overlap reports whether a and b intersect on both axes once pad is added
// between them. A pad of zero is the plain AABB test.
func Overlap(a, b Rect, pad float64) bool {
	horizontal := a.Left < b.Right()+pad && a.Right()+pad > b.Left
	vertical := a.Top < b.Bottom()+pad && a.Bottom()+pad > b.Top
	return horizontal && vertical
}

// OverlapsZone reports whether c, grown by buffer on every side, intersects
// zone.
func OverlapsZone(c, zone Rect, buffer float64) bool {
	return Overlap(c, zone, buffer)
}

// Within reports whether r lies inside [margin, 100-margin] on both axes.
func (r Rect) Within(margin float64) bool {
	return r.Top >= margin &&
		r.Bottom() <= 100-margin &&
		r.Left >= margin &&
		r.Right() <= 100-margin
}

func clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
