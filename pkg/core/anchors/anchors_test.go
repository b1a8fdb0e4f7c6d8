package anchors

import (
	"math"
	"testing"
)

func TestCircle(t *testing.T) {
	got := Circle(8, 10, 10, 4)
	if len(got) != 8 {
		t.Fatalf("got %d anchors, want 8", len(got))
	}
	for i, p := range got {
		r := math.Hypot(p.X-5, p.Y-5)
		if math.Abs(r-4) > 1e-9 {
			t.Errorf("anchor %d at distance %v from centre, want 4", i, r)
		}
	}
	if got[0].X != 9 || got[0].Y != 5 {
		t.Errorf("first anchor = %v, want (9, 5)", got[0])
	}
}

func TestCircleRadiusClamp(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		want   float64
	}{
		{"fits", 10, 10},
		{"too large", 500, 20},
		{"zero means max", 0, 20},
		{"negative means max", -3, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Circle(4, 40, 60, tt.radius)
			r := math.Hypot(got[0].X-20, got[0].Y-30)
			if math.Abs(r-tt.want) > 1e-9 {
				t.Errorf("radius = %v, want %v", r, tt.want)
			}
		})
	}
}

func TestRectangle(t *testing.T) {
	got := Rectangle(4, 11, 11)
	want := [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if len(got) != len(want) {
		t.Fatalf("got %d anchors, want %d", len(got), len(want))
	}
	for i, p := range got {
		if math.Abs(p.X-want[i][0]) > 1e-9 || math.Abs(p.Y-want[i][1]) > 1e-9 {
			t.Errorf("anchor %d = %v, want %v", i, p, want[i])
		}
	}
}

func TestRectangleInBounds(t *testing.T) {
	for _, p := range Rectangle(101, 64, 48) {
		if p.X < 0 || p.Y < 0 || p.X > 63 || p.Y > 47 {
			t.Errorf("anchor %v outside 64x48 image", p)
		}
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		shape   string
		wantErr bool
	}{
		{"circle", false},
		{"", false},
		{"rectangle", false},
		{"hexagon", true},
	}
	for _, tt := range tests {
		_, err := Generate(tt.shape, 12, 20, 20, 0)
		if (err != nil) != tt.wantErr {
			t.Errorf("Generate(%q) error = %v, wantErr %v", tt.shape, err, tt.wantErr)
		}
	}
}

func TestEmpty(t *testing.T) {
	if got := Circle(0, 10, 10, 0); got != nil {
		t.Errorf("Circle(0) = %v, want nil", got)
	}
	if got := Rectangle(-1, 10, 10); got != nil {
		t.Errorf("Rectangle(-1) = %v, want nil", got)
	}
}
