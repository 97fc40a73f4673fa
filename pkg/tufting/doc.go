// Package tufting computes button layouts for mattress tufting.
//
// A layout is a staggered grid of points inside a rectangle. Even rows
// (0-based, counted from the bottom) run from the left edge offset to the
// right edge offset and include both corners; odd rows are shifted right by
// half a column spacing and have one point less. Spacing along each axis is
// derived from an integer count so that the outermost points sit exactly on
// the edge offset:
//
//	usable  = side - 2*edge
//	count   = max(1, round(usable / minDist))   // round half up
//	spacing = usable / count
//
// # Usage
//
//	l, err := tufting.Compute(tufting.Params{
//	    Rectangle: tufting.Rectangle{Width: 220, Height: 240},
//	    Spacing:   tufting.Spacing{MinDistX: 30, MinDistY: 40, EdgeDistance: 15},
//	})
//	if err != nil {
//	    // err is a *errors.Error with an INVALID_* or LAYOUT_TOO_DENSE code
//	}
//	first, _ := l.Points.First() // (15, 15)
//
// # Ordering
//
// [PointSet] is row-major: bottom row first, left to right within a row.
// Renderers rely on this to highlight the first point and draw distance
// lines from it.
//
// # Coordinates
//
// Coordinates are in centimeters with the origin at the bottom-left corner of
// the rectangle, rounded to two decimal places.
//
// Compute is a pure function and safe for concurrent use.
package tufting
