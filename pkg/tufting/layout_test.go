package tufting

import (
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/matelas/pkg/errors"
)

func standardParams() Params {
	return Params{
		Rectangle: Rectangle{Width: 220, Height: 240},
		Spacing:   Spacing{MinDistX: 30, MinDistY: 40, EdgeDistance: 15},
	}
}

func params(w, h, mx, my, e float64) Params {
	return Params{
		Rectangle: Rectangle{Width: w, Height: h},
		Spacing:   Spacing{MinDistX: mx, MinDistY: my, EdgeDistance: e},
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeStandard(t *testing.T) {
	l, err := Compute(standardParams())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if l.Columns != 6 {
		t.Errorf("Columns = %d, want 6", l.Columns)
	}
	if l.Rows != 5 {
		t.Errorf("Rows = %d, want 5", l.Rows)
	}
	if l.RowCount() != 6 {
		t.Errorf("RowCount() = %d, want 6", l.RowCount())
	}
	if l.Count() != 39 {
		t.Errorf("Count() = %d, want 39", l.Count())
	}
	if !approx(l.Dy, 42) {
		t.Errorf("Dy = %v, want 42", l.Dy)
	}

	first, ok := l.Points.First()
	if !ok || first != (Point{X: 15, Y: 15}) {
		t.Errorf("First() = %v, %v, want (15, 15), true", first, ok)
	}

	bottom := l.Row(0)
	if got := bottom[len(bottom)-1]; got != (Point{X: 205, Y: 15}) {
		t.Errorf("rightmost bottom point = %v, want (205, 15)", got)
	}

	top := l.Row(l.Rows)
	for _, p := range top {
		if p.Y != 225 {
			t.Errorf("top row point %v, want y = 225", p)
		}
	}
}

func TestComputeRowStructure(t *testing.T) {
	l, err := Compute(standardParams())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	for j := 0; j <= l.Rows; j++ {
		row := l.Row(j)
		if j%2 == 0 {
			if len(row) != l.Columns+1 {
				t.Fatalf("row %d has %d points, want %d", j, len(row), l.Columns+1)
			}
			if row[0].X != 15 || row[len(row)-1].X != 205 {
				t.Errorf("even row %d spans %v..%v, want 15..205", j, row[0].X, row[len(row)-1].X)
			}
		} else {
			if len(row) != l.Columns {
				t.Fatalf("row %d has %d points, want %d", j, len(row), l.Columns)
			}
			if want := round2(15 + l.Dx/2); row[0].X != want {
				t.Errorf("odd row %d starts at %v, want %v", j, row[0].X, want)
			}
		}
		for _, p := range row {
			if p.Y != row[0].Y {
				t.Errorf("row %d mixes y values: %v vs %v", j, p.Y, row[0].Y)
			}
		}
	}

	if l.Row(-1) != nil || l.Row(l.Rows+1) != nil {
		t.Error("Row() out of range should return nil")
	}
}

func TestComputeOrdering(t *testing.T) {
	l, err := Compute(standardParams())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	for i := 1; i < len(l.Points); i++ {
		prev, cur := l.Points[i-1], l.Points[i]
		if cur.Y < prev.Y {
			t.Fatalf("point %d %v below previous %v", i, cur, prev)
		}
		if cur.Y == prev.Y && cur.X <= prev.X {
			t.Fatalf("point %d %v not right of previous %v", i, cur, prev)
		}
	}
}

func TestComputeBounds(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"standard", standardParams()},
		{"small", params(50, 60, 15, 20, 10)},
		{"large", params(500, 800, 50, 60, 25)},
		{"minimal", params(20, 30, 10, 10, 5)},
		{"square", params(200, 200, 25, 25, 20)},
		{"zero edge", params(100, 100, 30, 30, 0)},
		{"fractional", params(137.5, 191.3, 17.7, 23.1, 7.25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.p)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			e := tt.p.EdgeDistance
			// Coordinates are rounded to 2 decimals, so allow half a unit in
			// the last place against the unrounded bounds.
			const slack = 0.005
			for _, p := range l.Points {
				if p.X < e-slack || p.X > tt.p.Width-e+slack || p.Y < e-slack || p.Y > tt.p.Height-e+slack {
					t.Errorf("point %v outside [%g,%g]x[%g,%g]", p, e, tt.p.Width-e, e, tt.p.Height-e)
				}
				if p.X < 0 || p.X > tt.p.Width || p.Y < 0 || p.Y > tt.p.Height {
					t.Errorf("point %v outside rectangle", p)
				}
			}

			bottom := l.Row(0)
			if bottom[0] != (Point{X: round2(e), Y: round2(e)}) {
				t.Errorf("bottom-left corner = %v, want (%g, %g)", bottom[0], e, e)
			}
			if got, want := bottom[len(bottom)-1], (Point{X: round2(tt.p.Width - e), Y: round2(e)}); got != want {
				t.Errorf("bottom-right corner = %v, want %v", got, want)
			}
		})
	}
}

func TestComputeZeroEdgeDistance(t *testing.T) {
	l, err := Compute(params(100, 100, 30, 30, 0))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	bottom := l.Row(0)
	if bottom[0] != (Point{X: 0, Y: 0}) || bottom[len(bottom)-1] != (Point{X: 100, Y: 0}) {
		t.Errorf("corners = %v, %v, want (0,0), (100,0)", bottom[0], bottom[len(bottom)-1])
	}
}

func TestComputeFloorsToOne(t *testing.T) {
	tests := []struct {
		name     string
		p        Params
		wantCols int
		wantRows int
	}{
		{"spacing larger than width", params(220, 240, 500, 40, 15), 1, 5},
		{"spacing larger than height", params(220, 240, 30, 1000, 15), 6, 1},
		{"both larger", params(220, 240, 1e6, 1e6, 15), 1, 1},
		{"ratio below half", params(40, 40, 100, 100, 5), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.p)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if l.Columns != tt.wantCols || l.Rows != tt.wantRows {
				t.Errorf("Columns, Rows = %d, %d, want %d, %d", l.Columns, l.Rows, tt.wantCols, tt.wantRows)
			}
			if l.Count() == 0 {
				t.Error("layout must never be empty")
			}
		})
	}
}

func TestComputeSingleColumnStagger(t *testing.T) {
	l, err := Compute(params(220, 240, 500, 40, 15))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if got := l.Row(0); len(got) != 2 {
		t.Fatalf("even row has %d points, want 2", len(got))
	}
	odd := l.Row(1)
	if len(odd) != 1 || odd[0].X != 110 {
		t.Errorf("odd row = %v, want single centered point at x=110", odd)
	}
}

func TestComputeRoundHalfUp(t *testing.T) {
	tests := []struct {
		name  string
		width float64
		want  int
	}{
		// usable span 90 with min distance 60 is exactly 1.5
		{"tie rounds up", 120, 2},
		{"below tie", 119.4, 1},
		{"above tie", 120.6, 2},
		{"rounds to nearest", 195, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(params(tt.width, 100, 60, 40, 15))
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if l.Columns != tt.want {
				t.Errorf("Columns = %d, want %d", l.Columns, tt.want)
			}
		})
	}
}

func TestComputeSpacingFlushToEdges(t *testing.T) {
	l, err := Compute(params(1000, 1000, 7, 7, 3))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	bottom := l.Row(0)
	if got := bottom[len(bottom)-1].X; got != 997 {
		t.Errorf("last column x = %v, want 997", got)
	}
	if got := l.Points[len(l.Points)-1].Y; got != 997 {
		t.Errorf("top row y = %v, want 997", got)
	}
}

func TestComputeIdempotent(t *testing.T) {
	a, err := Compute(standardParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(standardParams())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different layouts")
	}
}

func TestComputeSymmetry(t *testing.T) {
	p := params(220, 300, 30, 40, 15)
	swapped := params(300, 220, 40, 30, 15)

	a, err := Compute(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(swapped)
	if err != nil {
		t.Fatal(err)
	}

	if a.Columns != b.Rows || a.Rows != b.Columns {
		t.Errorf("counts not transposed: (%d,%d) vs (%d,%d)", a.Columns, a.Rows, b.Columns, b.Rows)
	}
	if !approx(a.Dx, b.Dy) || !approx(a.Dy, b.Dx) {
		t.Errorf("spacing not transposed: (%v,%v) vs (%v,%v)", a.Dx, a.Dy, b.Dx, b.Dy)
	}

	// Even-row x coordinates of one layout are the even-row y coordinates
	// of the other.
	xs := a.Row(0)
	for i := 0; i <= b.Rows; i += 2 {
		if got := b.Row(i)[0].Y; got != xs[i].X {
			t.Errorf("transposed row %d y = %v, want %v", i, got, xs[i].X)
		}
	}
}

func TestComputeConcurrent(t *testing.T) {
	want, err := Compute(standardParams())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Compute(standardParams())
			if err != nil {
				t.Error(err)
				return
			}
			if !reflect.DeepEqual(got, want) {
				t.Error("concurrent Compute() result differs")
			}
		}()
	}
	wg.Wait()
}

func TestComputeValidation(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name string
		p    Params
		code errors.Code
	}{
		{"negative width", params(-10, 240, 30, 40, 15), errors.ErrCodeInvalidDimension},
		{"zero width", params(0, 240, 30, 40, 15), errors.ErrCodeInvalidDimension},
		{"zero height", params(220, 0, 30, 40, 15), errors.ErrCodeInvalidDimension},
		{"negative min_dist_x", params(220, 240, -5, 40, 15), errors.ErrCodeInvalidSpacing},
		{"zero min_dist_x", params(220, 240, 0, 40, 15), errors.ErrCodeInvalidSpacing},
		{"zero min_dist_y", params(220, 240, 30, 0, 15), errors.ErrCodeInvalidSpacing},
		{"negative edge", params(220, 240, 30, 40, -1), errors.ErrCodeInvalidEdgeDistance},
		{"edge too large", params(220, 240, 30, 40, 150), errors.ErrCodeInvalidEdgeDistance},
		{"edge exactly half width", params(220, 240, 30, 40, 110), errors.ErrCodeInvalidEdgeDistance},
		{"edge too large for height", params(400, 100, 30, 40, 60), errors.ErrCodeInvalidEdgeDistance},
		{"NaN width", params(nan, 240, 30, 40, 15), errors.ErrCodeInvalidDimension},
		{"Inf height", params(220, inf, 30, 40, 15), errors.ErrCodeInvalidDimension},
		{"NaN spacing", params(220, 240, nan, 40, 15), errors.ErrCodeInvalidSpacing},
		{"NaN edge", params(220, 240, 30, 40, nan), errors.ErrCodeInvalidEdgeDistance},
		{"too dense", params(10000, 10000, 0.001, 0.001, 0), errors.ErrCodeLayoutTooDense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.p)
			if err == nil {
				t.Fatalf("Compute() = %d points, want error", l.Count())
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %v, want %v (%v)", errors.GetCode(err), tt.code, err)
			}
			if !errors.IsValidation(err) {
				t.Errorf("IsValidation(%v) = false", err)
			}
		})
	}
}

func TestWithMaxPoints(t *testing.T) {
	if _, err := Compute(standardParams(), WithMaxPoints(39)); err != nil {
		t.Errorf("limit equal to point count should pass: %v", err)
	}
	_, err := Compute(standardParams(), WithMaxPoints(38))
	if !errors.Is(err, errors.ErrCodeLayoutTooDense) {
		t.Errorf("error = %v, want LAYOUT_TOO_DENSE", err)
	}
	if _, err := Compute(standardParams(), WithMaxPoints(0)); err != nil {
		t.Errorf("non-positive limit should keep the default: %v", err)
	}
}

func TestWithMaxPointsClampsToCeiling(t *testing.T) {
	var cfg computeConfig
	WithMaxPoints(math.MaxInt)(&cfg)
	if cfg.maxPoints != MaxPointsCeiling {
		t.Errorf("maxPoints = %d, want %d", cfg.maxPoints, MaxPointsCeiling)
	}
}

func TestComputeHugeLayoutWithLargeLimit(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"square", Params{Rectangle: Rectangle{Width: 1e10, Height: 1e10}, Spacing: Spacing{MinDistX: 1, MinDistY: 1}}},
		{"wide", Params{Rectangle: Rectangle{Width: 1e300, Height: 10}, Spacing: Spacing{MinDistX: 1, MinDistY: 1}}},
		{"tall", Params{Rectangle: Rectangle{Width: 10, Height: 1e18}, Spacing: Spacing{MinDistX: 1, MinDistY: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.p, WithMaxPoints(math.MaxInt))
			if !errors.Is(err, errors.ErrCodeLayoutTooDense) {
				t.Errorf("error = %v, want LAYOUT_TOO_DENSE", err)
			}
		})
	}
}

func TestComputeLimitCountsExactTotal(t *testing.T) {
	// 6 column intervals, 1 row interval: 7 + 6 points.
	p := Params{Rectangle: Rectangle{Width: 220, Height: 70}, Spacing: Spacing{MinDistX: 30, MinDistY: 40, EdgeDistance: 15}}
	if _, err := Compute(p, WithMaxPoints(13)); err != nil {
		t.Errorf("limit equal to point count should pass: %v", err)
	}
	if _, err := Compute(p, WithMaxPoints(12)); !errors.Is(err, errors.ErrCodeLayoutTooDense) {
		t.Errorf("error = %v, want LAYOUT_TOO_DENSE", err)
	}
}

func TestComputePoints(t *testing.T) {
	pts, err := ComputePoints(220, 240, 30, 40, 15)
	if err != nil {
		t.Fatalf("ComputePoints() error = %v", err)
	}
	if len(pts) != 39 {
		t.Errorf("len = %d, want 39", len(pts))
	}

	if _, err := ComputePoints(-10, 240, 30, 40, 15); err == nil {
		t.Error("ComputePoints() with negative width should fail")
	}
}

func TestPointsBefore(t *testing.T) {
	tests := []struct {
		j, n, want int
	}{
		{0, 6, 0},
		{1, 6, 7},
		{2, 6, 13},
		{6, 6, 39},
		{2, 1, 3},
	}
	for _, tt := range tests {
		if got := pointsBefore(tt.j, tt.n); got != tt.want {
			t.Errorf("pointsBefore(%d, %d) = %d, want %d", tt.j, tt.n, got, tt.want)
		}
	}
}
