package export

import (
	"bytes"

	"github.com/gogpu/gg"

	"github.com/matzehuels/matelas/pkg/tufting"
)

// RenderPNG rasterizes the same drawing as [RenderSVG] using the gg
// software renderer.
func RenderPNG(l *tufting.Layout, opts ...PreviewOption) ([]byte, error) {
	p := newPreview(l, opts...)

	dc := gg.NewContext(int(p.width), int(p.height))
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(colorBackground))

	dc.SetHexColor(colorRectangle)
	dc.SetLineWidth(2)
	dc.DrawRectangle(p.margin, p.margin, p.layoutWidth*p.scale, p.layoutHeight*p.scale)
	if err := dc.Stroke(); err != nil {
		return nil, err
	}

	if p.distances {
		dc.SetHexColor(colorGuide)
		dc.SetLineWidth(1)
		dc.SetDash(4, 3)
		for _, g := range guides(l) {
			x1, y1 := p.toCanvas(g[0])
			x2, y2 := p.toCanvas(g[1])
			dc.DrawLine(x1, y1, x2, y2)
			if err := dc.Stroke(); err != nil {
				return nil, err
			}
		}
		dc.ClearDash()
	}

	for i, pt := range l.Points {
		x, y := p.toCanvas(pt)
		if i == 0 && p.highlight {
			dc.SetHexColor(colorFirst)
		} else {
			dc.SetHexColor(colorPoint)
		}
		dc.DrawCircle(x, y, p.radius)
		if err := dc.Fill(); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
