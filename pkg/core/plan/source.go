package plan

import "image"

// Source is a dense row-major 8-bit grayscale image.
type Source struct {
	Width, Height int
	Pix           []uint8
}

// SourceFromGray copies img into a dense Source, dropping any stride padding.
func SourceFromGray(img *image.Gray) Source {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint8, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		pix = append(pix, img.Pix[off:off+w]...)
	}
	return Source{Width: w, Height: h, Pix: pix}
}

// Valid reports whether the buffer length matches the dimensions.
func (s Source) Valid() bool {
	return s.Width >= 0 && s.Height >= 0 && len(s.Pix) == s.Width*s.Height
}
