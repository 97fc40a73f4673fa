package tufting

import (
	"math"

	"github.com/matzehuels/matelas/pkg/errors"
)

// Option configures [Compute].
type Option func(*computeConfig)

type computeConfig struct {
	maxPoints int
}

// WithMaxPoints overrides [DefaultMaxPoints]. Values <= 0 keep the default;
// values above [MaxPointsCeiling] are clamped to it.
func WithMaxPoints(n int) Option {
	return func(c *computeConfig) {
		if n > 0 {
			c.maxPoints = min(n, MaxPointsCeiling)
		}
	}
}

// ComputePoints is the five-argument form of [Compute] returning only the
// points.
func ComputePoints(width, height, minDistX, minDistY, edgeDistance float64) (PointSet, error) {
	l, err := Compute(Params{
		Rectangle: Rectangle{Width: width, Height: height},
		Spacing:   Spacing{MinDistX: minDistX, MinDistY: minDistY, EdgeDistance: edgeDistance},
	})
	if err != nil {
		return nil, err
	}
	return l.Points, nil
}

// Compute builds the staggered button layout for p.
//
// It returns a validation *errors.Error when a dimension or minimum distance
// is not strictly positive, the edge distance is negative, the usable span
// on either axis is not positive, any input is NaN or infinite, or the
// layout would exceed the point limit.
func Compute(p Params, opts ...Option) (*Layout, error) {
	cfg := computeConfig{maxPoints: DefaultMaxPoints}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := Validate(p); err != nil {
		return nil, err
	}

	usableX := p.Width - 2*p.EdgeDistance
	usableY := p.Height - 2*p.EdgeDistance

	// Counts and the total are bounded in float64 before any int
	// conversion or multiplication.
	fx := max(1, math.Round(usableX/p.MinDistX))
	fy := max(1, math.Round(usableY/p.MinDistY))
	rows := fy + 1
	even := math.Ceil(rows / 2)
	if even*(fx+1)+(rows-even)*fx > float64(cfg.maxPoints) {
		return nil, tooDense(p, cfg.maxPoints)
	}

	nx := int(fx)
	ny := int(fy)

	dx := usableX / float64(nx)
	dy := usableY / float64(ny)

	points := make(PointSet, 0, pointsBefore(ny+1, nx))
	for j := 0; j <= ny; j++ {
		y := round2(p.EdgeDistance + float64(j)*dy)
		if j%2 == 0 {
			for i := 0; i <= nx; i++ {
				points = append(points, Point{X: round2(p.EdgeDistance + float64(i)*dx), Y: y})
			}
			continue
		}
		for i := 0; i < nx; i++ {
			points = append(points, Point{X: round2(p.EdgeDistance + dx/2 + float64(i)*dx), Y: y})
		}
	}

	return &Layout{
		Params:  p,
		Columns: nx,
		Rows:    ny,
		Dx:      dx,
		Dy:      dy,
		Points:  points,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// rowLen is the number of points in row j of a layout with n column
// intervals.
func rowLen(j, n int) int {
	if j%2 == 0 {
		return n + 1
	}
	return n
}

// pointsBefore counts the points in rows 0..j-1.
func pointsBefore(j, n int) int {
	even := (j + 1) / 2
	odd := j / 2
	return even*(n+1) + odd*n
}

func tooDense(p Params, limit int) error {
	return errors.New(errors.ErrCodeLayoutTooDense,
		"layout %s would exceed %d points; increase the minimum distances", p, limit)
}
