// Package raster converts continuous line segments into weighted pixel samples.
//
// A [Rasterizer] turns a segment between two [Position] values into a sequence of
// [Sample] values, one per grid cell touched by the segment. The planner in
// package plan consumes rasterizers through this single-method interface, so any
// line drawing algorithm can be substituted without touching the planner.
//
// # Implementations
//
//   - [Grid]: integer grid traversal. Every cell the segment passes through gets
//     weight 1.0; a segment covers exactly 1 + |dx| + |dy| cells.
//   - [Antialiased]: fractional coverage weights computed with
//     [golang.org/x/image/vector] for a stroke of configurable width.
//
// Both implementations are reversible: rasterizing B→A yields exactly the reverse
// of rasterizing A→B. Samples may lie outside any particular image; callers are
// responsible for dropping pixels that fall outside their buffers.
//
// # Concurrency
//
// Grid and Antialiased hold no mutable state and are safe for concurrent use.
package raster
