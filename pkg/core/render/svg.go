package render

import (
	"bytes"
	"fmt"
	"strconv"
)

// RenderSVG draws p as an SVG document with one line element per segment.
func RenderSVG(p Plan, opts ...Option) ([]byte, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", o.width, o.height)
	if o.background {
		fmt.Fprintf(&buf, `<rect width="%d" height="%d" fill="white" />`+"\n", o.width, o.height)
	}

	opacity := num(p.Opacity)
	stroke := num(o.strokeWidth)
	for _, s := range p.segments(o.width, o.height) {
		fmt.Fprintf(&buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" opacity="%s" style="stroke:rgb(0,0,0); stroke-width:%s" />`+"\n",
			num(s.x0), num(s.y0), num(s.x1), num(s.y1), opacity, stroke)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// num formats v with at most three decimals and no trailing zeros.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
