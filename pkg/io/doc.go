// Package io reads source images and reads and writes plan documents.
//
// # Images
//
// [ReadImage] and [LoadImage] decode PNG, JPEG, GIF, BMP, TIFF and WebP and
// convert the result to 8-bit grayscale. [Resize] bounds the longest side,
// which keeps planning time predictable for large photos.
//
// # Plan documents
//
// A [Document] is the persisted result of a planning run:
//
//	{
//	  "version": 1,
//	  "id": "0f8fad5b-d9cb-469f-a165-70867728950e",
//	  "created": "2026-01-02T15:04:05Z",
//	  "width": 400,
//	  "height": 400,
//	  "anchors": [[400, 200], [399.9, 204.4]],
//	  "order": [0, 143, 12],
//	  "line_opacity": 0.2,
//	  "loss": 1843520.5,
//	  "options": {"chords": 500}
//	}
//
// width and height describe the planning image, and anchors are given in its
// pixel space. Renderers map them onto the output canvas. options holds the
// settings the plan was created with and is not interpreted by this package.
//
// Use [ExportJSON] and [ImportJSON] for files, [WriteJSON] and [ReadJSON]
// for streams.
package io
