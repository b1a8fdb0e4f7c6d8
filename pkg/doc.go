// Package pkg provides the core libraries for Stringbean string art planning.
//
// # Overview
//
// Stringbean turns a grayscale image into string art: one continuous thread
// wound around anchors on a frame. The planner picks the thread's next anchor
// greedily, always drawing the line that best darkens what is still too
// light. The pkg directory is organized into these areas:
//
//  1. [core] - Domain logic (rasterization, anchors, planning, rendering)
//  2. [pipeline] - Orchestration (image → plan → artifacts) with caching
//  3. [io] - Image decoding and the JSON plan document
//  4. [cache], [store] - Plan/artifact cache and plan record storage
//  5. [server] - HTTP API over the pipeline
//
// # Architecture
//
// The typical data flow through Stringbean:
//
//	Image file (png, jpeg, gif, bmp, tiff, webp)
//	         ↓
//	    [io] package (decode, grayscale, resize)
//	         ↓
//	    [core/anchors] package (anchor positions on a circle or rectangle)
//	         ↓
//	    [core/plan] package (greedy anchor order over a residual buffer)
//	         ↓
//	    [core/render] package (SVG, PNG, PDF)
//
// # Quick Start
//
// Plan 500 lines for an image and render it:
//
//	import (
//	    "context"
//	    sbio "github.com/matzehuels/stringbean/pkg/io"
//	    "github.com/matzehuels/stringbean/pkg/pipeline"
//	)
//
//	img, _ := sbio.LoadImage("portrait.jpg")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), img, pipeline.Options{
//	    Chords:  500,
//	    Formats: []string{"svg", "json"},
//	})
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/raster] - Line rasterizers: an exact grid traversal and an
// anti-aliased coverage rasterizer. Both yield weighted pixel samples.
//
// [core/anchors] - Anchor layouts: evenly spaced on a circle, or walked
// around the image border.
//
// [core/plan] - The greedy planner: residual buffer, candidate search with
// an exclusion gap, and termination strategies (fixed count, loss threshold).
//
// [core/render] - Drawing a plan as SVG, PNG (golang.org/x/image/vector) or
// PDF (rsvg-convert).
//
// ## Infrastructure
//
// [pipeline] - Complete planning pipeline used by CLI and HTTP server.
// Ensures consistent defaults and validation across entry points.
//
// [cache] - Content-addressed cache for plans and artifacts with file, Redis
// and null backends.
//
// [store] - Plan records for the HTTP API with memory, file and MongoDB
// backends.
//
// [observability] - Hooks for plan, render, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/plan/...          # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/core
// [core/raster]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/core/raster
// [core/anchors]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/core/anchors
// [core/plan]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/core/plan
// [core/render]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/core/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/stringbean/pkg/observability
package pkg
