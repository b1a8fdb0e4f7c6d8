package io

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/stringbean/pkg/core/raster"
	"github.com/matzehuels/stringbean/pkg/errors"
)

// DocumentVersion is the current document format version.
const DocumentVersion = 1

// Document is a planned anchor order together with everything needed to
// render it. Exhausted is set when planning stopped early because no
// eligible anchor was left; the order is then partial.
type Document struct {
	Version     int             `json:"version"`
	ID          string          `json:"id"`
	Created     time.Time       `json:"created"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Anchors     [][2]float64    `json:"anchors"`
	Order       []int           `json:"order"`
	LineOpacity float64         `json:"line_opacity"`
	Loss        float64         `json:"loss"`
	Exhausted   bool            `json:"exhausted,omitempty"`
	Options     json.RawMessage `json:"options,omitempty"`
}

// NewDocument builds a document from a planning result.
func NewDocument(id string, width, height int, anchors []raster.Position, order []int, lineOpacity, loss float64) *Document {
	pts := make([][2]float64, len(anchors))
	for i, a := range anchors {
		pts[i] = [2]float64{a.X, a.Y}
	}
	return &Document{
		Version:     DocumentVersion,
		ID:          id,
		Created:     time.Now().UTC(),
		Width:       width,
		Height:      height,
		Anchors:     pts,
		Order:       order,
		LineOpacity: lineOpacity,
		Loss:        loss,
	}
}

// Positions returns the anchors as raster positions.
func (d *Document) Positions() []raster.Position {
	ps := make([]raster.Position, len(d.Anchors))
	for i, a := range d.Anchors {
		ps[i] = raster.Position{X: a[0], Y: a[1]}
	}
	return ps
}

// Lines returns the number of lines in the plan.
func (d *Document) Lines() int {
	return max(len(d.Order)-1, 0)
}

// Validate checks that the document can be rendered.
func (d *Document) Validate() error {
	if d.Version != DocumentVersion {
		return errors.New(errors.ErrCodeUnsupported, "unsupported document version %d", d.Version)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid image size %dx%d", d.Width, d.Height)
	}
	if len(d.Anchors) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "document has no anchors")
	}
	if len(d.Order) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "document has an empty order")
	}
	for i, a := range d.Order {
		if a < 0 || a >= len(d.Anchors) {
			return errors.New(errors.ErrCodeInvalidInput, "order[%d] = %d is not an anchor index", i, a)
		}
	}
	if err := errors.ValidateUnitInterval("line_opacity", d.LineOpacity); err != nil {
		return err
	}
	return nil
}

// UnmarshalOptions decodes the stored options into v.
func (d *Document) UnmarshalOptions(v any) error {
	if len(d.Options) == 0 {
		return nil
	}
	if err := json.Unmarshal(d.Options, v); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}
