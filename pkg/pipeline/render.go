package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/stringbean/pkg/core/render"
	sbio "github.com/matzehuels/stringbean/pkg/io"
	"github.com/matzehuels/stringbean/pkg/observability"
)

// Render generates output artifacts for doc in the requested formats.
func Render(ctx context.Context, doc *sbio.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, doc, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, doc *sbio.Document, format string, opts Options) ([]byte, error) {
	observability.Render().OnRenderStart(ctx, format)
	start := time.Now()

	var data []byte
	var err error
	if format == FormatJSON {
		var buf bytes.Buffer
		err = sbio.WriteJSON(doc, &buf)
		data = buf.Bytes()
	} else {
		data, err = render.Render(format, renderPlan(doc), renderOptions(opts)...)
	}

	observability.Render().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

func renderPlan(doc *sbio.Document) render.Plan {
	return render.Plan{
		Width:   doc.Width,
		Height:  doc.Height,
		Anchors: doc.Positions(),
		Order:   doc.Order,
		Opacity: doc.LineOpacity,
	}
}

func renderOptions(opts Options) []render.Option {
	ro := []render.Option{
		render.WithSize(opts.Width, opts.Height),
		render.WithStrokeWidth(opts.StrokeWidth),
	}
	if opts.Background {
		ro = append(ro, render.WithBackground())
	}
	return ro
}
