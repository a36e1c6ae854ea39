package curve

import (
	"errors"
	"math"
	"testing"
)

func TestNilCurveSamplesIdentity(t *testing.T) {
	var c *Curve
	if got := c.Sample(0.7); got != 1.0 {
		t.Fatalf("nil curve Sample = %v, want 1", got)
	}
	var s Sampler = c
	if got := s.Sample(0.2); got != 1.0 {
		t.Fatalf("nil curve behind interface Sample = %v, want 1", got)
	}
	var f Func
	if got := f.Sample(0.5); got != 1.0 {
		t.Fatalf("nil Func Sample = %v, want 1", got)
	}
}

func TestLinearCurve(t *testing.T) {
	c, err := New([]Point{{X: 1, Y: 2}, {X: 0, Y: 0.5}}, KindLinear)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tests := []struct{ x, want float64 }{
		{0, 0.5},
		{0.5, 1.25},
		{1, 2},
		{-1, 0.5},
		{3, 2},
	}
	for _, tt := range tests {
		if got := c.Sample(tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("Sample(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestMonotoneCurveStaysMonotone(t *testing.T) {
	c, err := New([]Point{{0, 0.4}, {0.2, 0.6}, {0.5, 1.0}, {1, 1.8}}, KindMonotone)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	prev := c.Sample(0)
	for x := 0.01; x <= 1.0; x += 0.01 {
		got := c.Sample(x)
		if got < prev-1e-12 {
			t.Fatalf("monotone curve decreased at x=%v: %v < %v", x, got, prev)
		}
		prev = got
	}
}

func TestAkimaCurvePassesThroughPoints(t *testing.T) {
	pts := []Point{{0, 1}, {0.25, 1.2}, {0.5, 1.1}, {0.75, 1.6}, {1, 2}}
	c, err := New(pts, KindAkima)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, p := range pts {
		if got := c.Sample(p.X); math.Abs(got-p.Y) > 1e-9 {
			t.Fatalf("Sample(%v) = %v, want %v", p.X, got, p.Y)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New([]Point{{0, 1}}, KindLinear); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("err = %v, want ErrTooFewPoints", err)
	}
	if _, err := New([]Point{{0, 1}, {0, 2}}, KindLinear); !errors.Is(err, ErrUnsortedX) {
		t.Fatalf("err = %v, want ErrUnsortedX", err)
	}
	if _, err := New([]Point{{0, 1}, {1, 2}}, "bezier"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
	if _, err := New([]Point{{0, 1}, {1, 2}, {2, 3}}, "bezier"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
	for _, kind := range []Kind{KindMonotone, KindAkima} {
		if _, err := New([]Point{{0, 1}, {1, 2}}, kind); !errors.Is(err, ErrTooFewPoints) {
			t.Fatalf("%s: err = %v, want ErrTooFewPoints", kind, err)
		}
	}
}

func TestConstant(t *testing.T) {
	if got := Constant(1.5).Sample(0.3); got != 1.5 {
		t.Fatalf("Constant Sample = %v", got)
	}
}
