// Package tuning fits the head stabilizer's spring-damper gains offline by
// simulating a yaw step and minimizing a response score.
package tuning

import "github.com/Versifine/capsule/internal/stabilizer"

// ParamSpec is one optimizable gain with its search bounds.
type ParamSpec struct {
	Name string
	Min  float64
	Max  float64
}

// Params are the gains the tuner searches, in vector order.
var Params = []ParamSpec{
	{Name: "base_stiffness", Min: 2, Max: 150},
	{Name: "damping", Min: 0.5, Max: 80},
}

func vectorOf(cfg stabilizer.Config) []float64 {
	return []float64{cfg.BaseStiffness, cfg.Damping}
}

func applyVector(cfg stabilizer.Config, v []float64) stabilizer.Config {
	cfg.BaseStiffness = v[0]
	cfg.Damping = v[1]
	return cfg
}

// normalize maps raw gains to [0,1] so the simplex is well scaled.
func normalize(raw []float64) []float64 {
	out := make([]float64, len(Params))
	for i, p := range Params {
		out[i] = (raw[i] - p.Min) / (p.Max - p.Min)
	}
	return out
}

func denormalize(n []float64) []float64 {
	out := make([]float64, len(Params))
	for i, p := range Params {
		out[i] = p.Min + n[i]*(p.Max-p.Min)
	}
	return out
}

// clamp keeps every gain inside its bounds.
func clamp(v []float64) []float64 {
	out := make([]float64, len(Params))
	for i, p := range Params {
		val := v[i]
		if val < p.Min {
			val = p.Min
		}
		if val > p.Max {
			val = p.Max
		}
		out[i] = val
	}
	return out
}

// outOfBounds measures how far v strays outside the bounds, in normalized units.
func outOfBounds(v []float64) float64 {
	var d float64
	for i, p := range Params {
		span := p.Max - p.Min
		if v[i] < p.Min {
			d += (p.Min - v[i]) / span
		}
		if v[i] > p.Max {
			d += (v[i] - p.Max) / span
		}
	}
	return d
}
