package export

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/matelas/pkg/tufting"
)

// RenderSVG renders a vector preview of l.
func RenderSVG(l *tufting.Layout, opts ...PreviewOption) []byte {
	p := newPreview(l, opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
		p.width, p.height, p.width, p.height)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", colorBackground)
	fmt.Fprintf(&buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
		p.margin, p.margin, p.layoutWidth*p.scale, p.layoutHeight*p.scale, colorRectangle)

	if p.distances {
		for _, g := range guides(l) {
			x1, y1 := p.toCanvas(g[0])
			x2, y2 := p.toCanvas(g[1])
			fmt.Fprintf(&buf, `  <line class="guide" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-dasharray="4 3"/>`+"\n",
				x1, y1, x2, y2, colorGuide)
		}
	}

	for i, pt := range l.Points {
		x, y := p.toCanvas(pt)
		fill := colorPoint
		class := "point"
		if i == 0 && p.highlight {
			fill = colorFirst
			class = "point first"
		}
		fmt.Fprintf(&buf, `  <circle class="%s" cx="%.2f" cy="%.2f" r="%.1f" fill="%s"><title>(%g, %g)</title></circle>`+"\n",
			class, x, y, p.radius, fill, pt.X, pt.Y)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
