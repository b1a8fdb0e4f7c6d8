package io

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stringbean/pkg/core/raster"
	"github.com/matzehuels/stringbean/pkg/errors"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadImageConvertsToGray(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.White)
	src.Set(1, 0, color.RGBA{R: 255, A: 255})
	src.Set(2, 1, color.Black)

	g, err := ReadImage(bytes.NewReader(encodePNG(t, src)))
	if err != nil {
		t.Fatal(err)
	}
	if g.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds = %v", g.Bounds())
	}
	if v := g.GrayAt(0, 0).Y; v != 255 {
		t.Errorf("white = %d, want 255", v)
	}
	if v := g.GrayAt(2, 1).Y; v != 0 {
		t.Errorf("black = %d, want 0", v)
	}
	if v := g.GrayAt(1, 0).Y; v == 0 || v == 255 {
		t.Errorf("red luma = %d, want a mid-tone", v)
	}
}

func TestReadImageInvalid(t *testing.T) {
	_, err := ReadImage(strings.NewReader("definitely not an image"))
	if !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("err = %v, want INVALID_IMAGE", err)
	}
}

func TestLoadImageMissing(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestToGrayMovesOrigin(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	g.SetGray(2, 2, color.Gray{Y: 77})
	sub := g.SubImage(image.Rect(2, 2, 4, 4))

	out := ToGray(sub)
	if out.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if v := out.GrayAt(0, 0).Y; v != 77 {
		t.Errorf("GrayAt(0, 0) = %d, want 77", v)
	}
	if ToGray(g) != g {
		t.Error("ToGray copied an image already at the origin")
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{"fits", 100, 50, 200, 100, 50},
		{"disabled", 100, 50, 0, 100, 50},
		{"landscape", 400, 200, 100, 100, 50},
		{"portrait", 300, 900, 300, 100, 300},
		{"thin", 1000, 1, 10, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewGray(image.Rect(0, 0, tt.w, tt.h))
			out := Resize(img, tt.max)
			if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
				t.Errorf("Resize = %dx%d, want %dx%d", out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func testDocument() *Document {
	anchors := []raster.Position{{X: 0, Y: 0}, {X: 9, Y: 0}, {X: 9, Y: 9}, {X: 0, Y: 9}}
	d := NewDocument("0f8fad5b-d9cb-469f-a165-70867728950e", 10, 10, anchors, []int{0, 2, 1, 3}, 0.2, 42.5)
	d.Options = []byte(`{"chords":3}`)
	return d
}

func TestDocumentFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans", "plan.json")
	d := testDocument()

	if err := ExportJSON(d, path); err != nil {
		t.Fatal(err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.ID != d.ID || got.Width != 10 || got.Lines() != 3 || got.Loss != 42.5 {
		t.Errorf("imported %+v", got)
	}
	if !got.Created.Equal(d.Created) {
		t.Errorf("Created = %v, want %v", got.Created, d.Created)
	}
	if p := got.Positions(); p[2] != (raster.Position{X: 9, Y: 9}) {
		t.Errorf("Positions()[2] = %v", p[2])
	}

	var opts struct{ Chords int }
	if err := got.UnmarshalOptions(&opts); err != nil || opts.Chords != 3 {
		t.Errorf("UnmarshalOptions = %+v, %v", opts, err)
	}
}

func TestDocumentValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
		code   errors.Code
	}{
		{"valid", func(*Document) {}, ""},
		{"version", func(d *Document) { d.Version = 7 }, errors.ErrCodeUnsupported},
		{"size", func(d *Document) { d.Height = 0 }, errors.ErrCodeInvalidInput},
		{"no anchors", func(d *Document) { d.Anchors = nil }, errors.ErrCodeInvalidInput},
		{"empty order", func(d *Document) { d.Order = nil }, errors.ErrCodeInvalidInput},
		{"order out of range", func(d *Document) { d.Order = []int{0, 4} }, errors.ErrCodeInvalidInput},
		{"negative index", func(d *Document) { d.Order = []int{-1} }, errors.ErrCodeInvalidInput},
		{"opacity", func(d *Document) { d.LineOpacity = 1 }, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDocument()
			tt.mutate(d)
			err := d.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestUnmarshalJSONRejectsInvalid(t *testing.T) {
	if _, err := UnmarshalJSON([]byte(`{"version":1,"width":10,"height":10,"anchors":[[0,0]],"order":[3]}`)); err == nil {
		t.Error("accepted an order that references a missing anchor")
	}
	if _, err := UnmarshalJSON([]byte(`{`)); err == nil {
		t.Error("accepted malformed JSON")
	}

	data, err := MarshalJSON(testDocument())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalJSON(data); err != nil {
		t.Errorf("UnmarshalJSON(MarshalJSON(d)) = %v", err)
	}
}
