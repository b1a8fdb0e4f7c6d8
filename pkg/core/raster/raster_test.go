package raster

import (
	"image"
	"math"
	"slices"
	"testing"
)

func TestGridKnownPath(t *testing.T) {
	a := Position{X: 2, Y: 5}
	b := Position{X: 6, Y: 8}

	want := []image.Point{
		{2, 5}, {3, 5}, {3, 6}, {4, 6}, {4, 7}, {5, 7}, {5, 8}, {6, 8},
	}

	got := Grid{}.Rasterize(a, b)
	if len(got) != len(want) {
		t.Fatalf("Rasterize(a, b) returned %d samples, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s.Pixel != want[i] {
			t.Errorf("sample %d = %v, want %v", i, s.Pixel, want[i])
		}
		if s.Weight != 1 {
			t.Errorf("sample %d weight = %v, want 1", i, s.Weight)
		}
	}

	slices.Reverse(want)
	back := Grid{}.Rasterize(b, a)
	for i, s := range back {
		if s.Pixel != want[i] {
			t.Errorf("reverse sample %d = %v, want %v", i, s.Pixel, want[i])
		}
	}
}

func TestGridCellCount(t *testing.T) {
	tests := []struct {
		name     string
		from, to Position
		want     int
	}{
		{"single point", Position{3, 3}, Position{3, 3}, 1},
		{"horizontal", Position{0, 2}, Position{9, 2}, 10},
		{"vertical", Position{4, 9}, Position{4, 0}, 10},
		{"diagonal", Position{0, 0}, Position{3, 3}, 7},
		{"fractional endpoints truncate", Position{1.9, 1.2}, Position{4.7, 2.99}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Grid{}.Rasterize(tt.from, tt.to)
			if len(got) != tt.want {
				t.Errorf("got %d cells, want %d", len(got), tt.want)
			}
		})
	}
}

func TestGridEndpoints(t *testing.T) {
	got := Grid{}.Rasterize(Position{7, 1}, Position{2, 6})
	if got[0].Pixel != image.Pt(7, 1) {
		t.Errorf("first sample = %v, want (7,1)", got[0].Pixel)
	}
	if got[len(got)-1].Pixel != image.Pt(2, 6) {
		t.Errorf("last sample = %v, want (2,6)", got[len(got)-1].Pixel)
	}
}

func TestGridContiguous(t *testing.T) {
	got := Grid{}.Rasterize(Position{0, 0}, Position{13, 5})
	for i := 1; i < len(got); i++ {
		d := got[i].Pixel.Sub(got[i-1].Pixel)
		if abs(d.X)+abs(d.Y) != 1 {
			t.Fatalf("samples %d and %d are not 4-connected: %v -> %v", i-1, i, got[i-1].Pixel, got[i].Pixel)
		}
	}
}

func ringPositions(n int, cx, cy, r float64) []Position {
	ps := make([]Position, n)
	for i := range ps {
		theta := 2 * math.Pi * float64(i) / float64(n)
		ps[i] = Position{X: cx + r*math.Cos(theta), Y: cy + r*math.Sin(theta)}
	}
	return ps
}

func TestRasterizersReversible(t *testing.T) {
	points := ringPositions(24, 20, 20, 15)
	points = append(points, Position{0, 0}, Position{1, 1}, Position{5, 0}, Position{0, 5})

	rasterizers := map[string]Rasterizer{
		"grid":        Grid{},
		"antialiased": Antialiased{Width: 1.5},
	}

	for name, r := range rasterizers {
		t.Run(name, func(t *testing.T) {
			for _, a := range points {
				for _, b := range points {
					fwd := r.Rasterize(a, b)
					back := r.Rasterize(b, a)
					slices.Reverse(back)
					if !slices.Equal(fwd, back) {
						t.Fatalf("Rasterize(%v, %v) is not the reverse of Rasterize(%v, %v)", a, b, b, a)
					}
				}
			}
		})
	}
}

func TestAntialiasedWeights(t *testing.T) {
	got := Antialiased{Width: 1}.Rasterize(Position{2.5, 10.5}, Position{30.5, 10.5})
	if len(got) == 0 {
		t.Fatal("expected samples for a horizontal stroke")
	}
	var total float64
	for _, s := range got {
		if s.Weight <= 0 || s.Weight > 1 {
			t.Errorf("weight %v of %v outside (0, 1]", s.Weight, s.Pixel)
		}
		total += s.Weight
	}
	// A 28px long, 1px wide stroke covers about 28 pixels worth of area.
	if math.Abs(total-28) > 1.5 {
		t.Errorf("total coverage = %.2f, want about 28", total)
	}
}

func TestAntialiasedDegenerate(t *testing.T) {
	if got := (Antialiased{}).Rasterize(Position{4, 4}, Position{4, 4}); len(got) != 0 {
		t.Errorf("zero-length stroke produced %d samples", len(got))
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"grid", true},
		{"", true},
		{"antialiased", true},
		{"bresenham", false},
	}
	for _, tt := range tests {
		if _, ok := New(tt.name); ok != tt.ok {
			t.Errorf("New(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}

func TestRasterizerFunc(t *testing.T) {
	called := false
	var r Rasterizer = RasterizerFunc(func(from, to Position) []Sample {
		called = true
		return nil
	})
	r.Rasterize(Position{}, Position{})
	if !called {
		t.Error("RasterizerFunc did not call the wrapped function")
	}
}
