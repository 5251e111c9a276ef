package layout

import "testing"

func TestOverlap(t *testing.T) {
	base := Rect{Top: 10, Left: 10, Width: 10, Height: 10}

	tests := []struct {
		name  string
		other Rect
		pad   float64
		want  bool
	}{
		{"identical", base, 0, true},
		{"contained", Rect{Top: 12, Left: 12, Width: 2, Height: 2}, 0, true},
		{"touching edges", Rect{Top: 10, Left: 20, Width: 10, Height: 10}, 0, false},
		{"touching edges padded", Rect{Top: 10, Left: 20, Width: 10, Height: 10}, 1, true},
		{"gap smaller than pad", Rect{Top: 10, Left: 24, Width: 10, Height: 10}, 5, true},
		{"gap equal to pad", Rect{Top: 10, Left: 25, Width: 10, Height: 10}, 5, false},
		{"horizontal only", Rect{Top: 40, Left: 12, Width: 5, Height: 5}, 5, false},
		{"vertical only", Rect{Top: 12, Left: 40, Width: 5, Height: 5}, 5, false},
		{"above within pad", Rect{Top: 0, Left: 10, Width: 10, Height: 7}, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlap(base, tt.other, tt.pad); got != tt.want {
				t.Errorf("Overlap(base, %+v, %g) = %v, want %v", tt.other, tt.pad, got, tt.want)
			}
			if got := Overlap(tt.other, base, tt.pad); got != tt.want {
				t.Errorf("Overlap(%+v, base, %g) = %v, want %v (not symmetric)", tt.other, tt.pad, got, tt.want)
			}
		})
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"inside", Rect{Top: 3, Left: 3, Width: 10, Height: 16}, true},
		{"flush with far edge", Rect{Top: 81, Left: 87, Width: 10, Height: 16}, true},
		{"left of margin", Rect{Top: 10, Left: 2, Width: 10, Height: 16}, false},
		{"past right margin", Rect{Top: 10, Left: 88, Width: 10, Height: 16}, false},
		{"past bottom margin", Rect{Top: 82, Left: 10, Width: 10, Height: 16}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Within(3); got != tt.want {
				t.Errorf("Within(3) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlapsZone(t *testing.T) {
	zone := Rect{Top: 24, Left: 36, Width: 28, Height: 52}

	tests := []struct {
		name string
		c    Rect
		want bool
	}{
		{"far corner", Rect{Top: 5, Left: 5, Width: 10, Height: 16}, false},
		{"within buffer on the left", Rect{Top: 30, Left: 20, Width: 10, Height: 16}, true},
		{"within buffer below", Rect{Top: 78, Left: 40, Width: 10, Height: 16}, true},
		{"just clear below", Rect{Top: 83, Left: 40, Width: 10, Height: 16}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverlapsZone(tt.c, zone, 7); got != tt.want {
				t.Errorf("OverlapsZone(%+v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}
