package tufting

import (
	"math"

	"github.com/matzehuels/matelas/pkg/errors"
)

// Validate checks p against the input constraints of [Compute] without
// computing the layout. Checks run in a fixed order and the first failure
// is returned.
func Validate(p Params) error {
	fields := []struct {
		name  string
		value float64
		code  errors.Code
	}{
		{"width", p.Width, errors.ErrCodeInvalidDimension},
		{"height", p.Height, errors.ErrCodeInvalidDimension},
		{"min_dist_x", p.MinDistX, errors.ErrCodeInvalidSpacing},
		{"min_dist_y", p.MinDistY, errors.ErrCodeInvalidSpacing},
		{"edge_distance", p.EdgeDistance, errors.ErrCodeInvalidEdgeDistance},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.New(f.code, "%s must be a finite number", f.name)
		}
	}

	if p.Width <= 0 || p.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidDimension,
			"all dimensions must be positive (width=%g, height=%g)", p.Width, p.Height)
	}
	if p.MinDistX <= 0 || p.MinDistY <= 0 {
		return errors.New(errors.ErrCodeInvalidSpacing,
			"minimum distances must be positive (min_dist_x=%g, min_dist_y=%g)", p.MinDistX, p.MinDistY)
	}
	if p.EdgeDistance < 0 {
		return errors.New(errors.ErrCodeInvalidEdgeDistance,
			"edge_distance must not be negative, got %g", p.EdgeDistance)
	}
	if p.Width-2*p.EdgeDistance <= 0 {
		return errors.New(errors.ErrCodeInvalidEdgeDistance,
			"edge_distance %g leaves no usable width in %g", p.EdgeDistance, p.Width)
	}
	if p.Height-2*p.EdgeDistance <= 0 {
		return errors.New(errors.ErrCodeInvalidEdgeDistance,
			"edge_distance %g leaves no usable height in %g", p.EdgeDistance, p.Height)
	}
	return nil
}
