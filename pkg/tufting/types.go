package tufting

import (
	"encoding/json"
	"fmt"
)

// Default spacing values, matching the historical fixed layout of the
// calculator (30 cm columns, 40 cm rows, 15 cm from every edge).
const (
	DefaultMinDistX     = 30.0
	DefaultMinDistY     = 40.0
	DefaultEdgeDistance = 15.0

	// DefaultMaxPoints bounds the size of a single layout. Requests that would
	// produce more points are rejected rather than allocated.
	DefaultMaxPoints = 1_000_000

	// MaxPointsCeiling is the largest limit [WithMaxPoints] accepts.
	MaxPointsCeiling = 10_000_000
)

// Rectangle is the mattress surface in centimeters.
type Rectangle struct {
	Width  float64 `json:"x"`
	Height float64 `json:"y"`
}

// Spacing holds the minimum distances between buttons and the offset from
// the rectangle's edges.
type Spacing struct {
	MinDistX     float64 `json:"min_dist_x"`
	MinDistY     float64 `json:"min_dist_y"`
	EdgeDistance float64 `json:"edge_distance"`
}

// Params is the complete input of [Compute].
type Params struct {
	Rectangle
	Spacing
}

// DefaultSpacing returns the spacing used when a caller only supplies the
// rectangle.
func DefaultSpacing() Spacing {
	return Spacing{
		MinDistX:     DefaultMinDistX,
		MinDistY:     DefaultMinDistY,
		EdgeDistance: DefaultEdgeDistance,
	}
}

// String returns a compact representation used in logs.
func (p Params) String() string {
	return fmt.Sprintf("%gx%g dx>=%g dy>=%g edge=%g",
		p.Width, p.Height, p.MinDistX, p.MinDistY, p.EdgeDistance)
}

// Point is a button position in centimeters. It encodes to JSON as a
// two-element array [x, y].
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a point from [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy [2]float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// PointSet is an ordered sequence of points: bottom row to top row, left to
// right within a row.
type PointSet []Point

// First returns the first generated point (the bottom-left corner of the
// layout). ok is false for an empty set.
func (s PointSet) First() (p Point, ok bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[0], true
}

// Layout is the result of [Compute].
type Layout struct {
	Params Params `json:"params"`

	// Columns and Rows are the derived interval counts along each axis
	// (nb_points_x and nb_points_y). Even rows hold Columns+1 points, odd
	// rows hold Columns points, and there are Rows+1 rows in total.
	Columns int `json:"columns"`
	Rows    int `json:"rows"`

	// Dx and Dy are the actual spacings, usable span divided by count.
	Dx float64 `json:"dx"`
	Dy float64 `json:"dy"`

	Points PointSet `json:"points"`
}

// Count returns the number of points in the layout.
func (l *Layout) Count() int { return len(l.Points) }

// RowCount returns the number of generated rows.
func (l *Layout) RowCount() int { return l.Rows + 1 }

// Row returns the points of row j (0 = bottom) as a sub-slice of Points.
// It returns nil when j is out of range.
func (l *Layout) Row(j int) PointSet {
	if j < 0 || j > l.Rows {
		return nil
	}
	start := pointsBefore(j, l.Columns)
	return l.Points[start : start+rowLen(j, l.Columns)]
}
