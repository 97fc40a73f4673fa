package export

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/matzehuels/matelas/pkg/errors"
	"github.com/matzehuels/matelas/pkg/tufting"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// Formats lists the supported formats in display order.
var Formats = []string{FormatJSON, FormatCSV, FormatSVG, FormatPNG}

// ContentTypes maps formats to HTTP content types.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatCSV:  "text/csv",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: json, csv, svg, png)", format)
	}
	return nil
}

// Response is the JSON body returned by the calculate endpoint.
type Response struct {
	Points    tufting.PointSet  `json:"points"`
	Rectangle tufting.Rectangle `json:"rectangle"`
}

// NewResponse builds the API response for l. The rectangle is echoed from
// the layout's input parameters.
func NewResponse(l *tufting.Layout) Response {
	points := l.Points
	if points == nil {
		points = tufting.PointSet{}
	}
	return Response{Points: points, Rectangle: l.Params.Rectangle}
}

// MarshalResponse encodes the API response for l.
func MarshalResponse(l *tufting.Layout) ([]byte, error) {
	return json.Marshal(NewResponse(l))
}

// Render produces the artifact for format. Preview options apply to svg and
// png only.
func Render(l *tufting.Layout, format string, opts ...PreviewOption) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		if err := WriteCSV(&buf, l.Points); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatSVG:
		return RenderSVG(l, opts...), nil
	case FormatPNG:
		return RenderPNG(l, opts...)
	default:
		return MarshalResponse(l)
	}
}
