// Package curve samples scalar response curves. A curve maps a normalized
// input in [0, 1] to a multiplier; the stabilizer uses one to scale its
// stiffness by how far the head has turned.
package curve

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

var (
	ErrTooFewPoints = errors.New("curve needs at least two points")
	ErrUnsortedX    = errors.New("curve x values must be strictly increasing")
	ErrUnknownKind  = errors.New("unknown curve kind")
)

// Sampler maps a normalized scalar to a multiplier.
type Sampler interface {
	Sample(x float64) float64
}

// Func adapts a plain function to Sampler.
type Func func(x float64) float64

func (f Func) Sample(x float64) float64 {
	if f == nil {
		return 1.0
	}
	return f(x)
}

// Constant always samples to v.
type Constant float64

func (c Constant) Sample(float64) float64 {
	return float64(c)
}

// Kind selects the interpolation between control points.
type Kind string

const (
	KindLinear   Kind = "linear"
	KindMonotone Kind = "monotone"
	KindAkima    Kind = "akima"
)

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type fitPredictor interface {
	Fit(xs, ys []float64) error
	Predict(x float64) float64
}

// Curve is an interpolated set of control points. A nil *Curve samples to
// 1.0 so an unset curve leaves its consumer unscaled.
type Curve struct {
	kind Kind
	minX float64
	maxX float64
	pred fitPredictor
}

func New(points []Point, kind Kind) (*Curve, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	if kind == "" {
		kind = KindLinear
	}

	sorted := append([]Point(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, p := range sorted {
		if i > 0 && p.X <= sorted[i-1].X {
			return nil, fmt.Errorf("%w: duplicate x=%v", ErrUnsortedX, p.X)
		}
		xs[i] = p.X
		ys[i] = p.Y
	}

	var pred fitPredictor
	switch kind {
	case KindLinear:
		pred = &interp.PiecewiseLinear{}
	case KindMonotone:
		pred = &interp.FritschButland{}
	case KindAkima:
		pred = &interp.AkimaSpline{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if kind != KindLinear && len(xs) < 3 {
		return nil, fmt.Errorf("%w: %s curves need three", ErrTooFewPoints, kind)
	}
	if err := pred.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit %s curve: %w", kind, err)
	}

	return &Curve{kind: kind, minX: xs[0], maxX: xs[len(xs)-1], pred: pred}, nil
}

// Sample evaluates the curve, holding the end values outside its domain.
func (c *Curve) Sample(x float64) float64 {
	if c == nil || c.pred == nil {
		return 1.0
	}
	if x < c.minX {
		x = c.minX
	} else if x > c.maxX {
		x = c.maxX
	}
	return c.pred.Predict(x)
}

func (c *Curve) Kind() Kind {
	if c == nil {
		return ""
	}
	return c.kind
}
