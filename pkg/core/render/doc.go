// Package render draws planned thread art.
//
// A [Plan] holds anchors in the pixel space of the planning image. Every
// renderer maps that space onto the output canvas with a uniform scale and
// centres it, so the aspect ratio of the source is kept whatever the canvas
// size.
//
// Three formats are supported:
//   - SVG: one <line> per consecutive anchor pair ([RenderSVG])
//   - PNG: anti-aliased raster composited on white ([RenderPNG])
//   - PDF: the SVG converted by rsvg-convert ([RenderPDF])
package render
