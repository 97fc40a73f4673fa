package export

import (
	"math"

	"github.com/matzehuels/matelas/pkg/errors"
	"github.com/matzehuels/matelas/pkg/tufting"
)

// Default preview settings.
const (
	DefaultPreviewWidth = 800  // pixels, longest side of the drawing area
	MaxPreviewSize      = 4096 // pixels, upper bound for WithSize
	defaultMargin       = 20   // pixels around the rectangle
	defaultPointRadius  = 4    // pixels
)

// Preview colors, shared by the SVG and PNG renderers.
const (
	colorBackground = "#ffffff"
	colorRectangle  = "#333333"
	colorPoint      = "#1f77b4"
	colorFirst      = "#d62728"
	colorGuide      = "#999999"
)

// PreviewOption configures SVG and PNG previews.
type PreviewOption func(*preview)

type preview struct {
	size         int
	margin       float64
	radius       float64
	distances    bool
	highlight    bool
	scale        float64
	width        float64
	height       float64
	layoutWidth  float64
	layoutHeight float64
}

// ValidatePreviewSize checks that px is a usable preview size.
func ValidatePreviewSize(px int) error {
	if px <= 0 || px > MaxPreviewSize {
		return errors.New(errors.ErrCodeInvalidInput,
			"preview size must be between 1 and %d pixels, got %d", MaxPreviewSize, px)
	}
	return nil
}

// WithSize sets the pixel length of the longest rectangle side, clamped to
// [MaxPreviewSize].
func WithSize(px int) PreviewOption {
	return func(p *preview) {
		if px > 0 {
			p.size = min(px, MaxPreviewSize)
		}
	}
}

// WithDistanceLines draws dashed lines from the first point to its nearest
// row and column neighbours.
func WithDistanceLines() PreviewOption { return func(p *preview) { p.distances = true } }

// WithoutHighlight draws the first point like every other point.
func WithoutHighlight() PreviewOption { return func(p *preview) { p.highlight = false } }

func newPreview(l *tufting.Layout, opts ...PreviewOption) preview {
	p := preview{
		size:      DefaultPreviewWidth,
		margin:    defaultMargin,
		radius:    defaultPointRadius,
		highlight: true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	p.layoutWidth = l.Params.Width
	p.layoutHeight = l.Params.Height
	p.scale = float64(p.size) / math.Max(p.layoutWidth, p.layoutHeight)
	p.width = math.Ceil(p.layoutWidth*p.scale + 2*p.margin)
	p.height = math.Ceil(p.layoutHeight*p.scale + 2*p.margin)
	return p
}

// toCanvas converts layout centimeters (origin bottom-left) to canvas
// pixels (origin top-left).
func (p *preview) toCanvas(pt tufting.Point) (float64, float64) {
	return p.margin + pt.X*p.scale, p.margin + (p.layoutHeight-pt.Y)*p.scale
}

// guides returns the segments drawn by WithDistanceLines: first point to the
// next point in the bottom row, and first point to the first point of the
// next even row.
func guides(l *tufting.Layout) [][2]tufting.Point {
	first, ok := l.Points.First()
	if !ok {
		return nil
	}
	var out [][2]tufting.Point
	if bottom := l.Row(0); len(bottom) > 1 {
		out = append(out, [2]tufting.Point{first, bottom[1]})
	}
	if up := l.Row(2); len(up) > 0 {
		out = append(out, [2]tufting.Point{first, up[0]})
	} else if up := l.Row(1); len(up) > 0 {
		out = append(out, [2]tufting.Point{first, up[0]})
	}
	return out
}
