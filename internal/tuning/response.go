package tuning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Versifine/capsule/internal/logger"
	"github.com/Versifine/capsule/internal/mathutil"
	"github.com/Versifine/capsule/internal/scene"
	"github.com/Versifine/capsule/internal/stabilizer"
)

// Response is the head's yaw relative to the body after a step, sampled once
// per frame tick.
type Response struct {
	Times  []float64
	Errors []float64

	// SettleTime is the last sample outside the settle band.
	SettleTime float64
	// Overshoot is the largest swing past zero, as a fraction of the step.
	Overshoot float64
	// Residual is the final absolute error in radians.
	Residual float64
	// PeakSpeed is the fastest body turn seen.
	PeakSpeed float64
}

// Simulate turns the head by step radians at t=0 and lets the stabilizer
// bring the body around for duration seconds at a fixed dt.
func Simulate(cfg stabilizer.Config, step, duration, dt float64) (Response, error) {
	if !(dt > 0) || !(duration > 0) {
		return Response{}, fmt.Errorf("simulate: dt and duration must be positive")
	}
	if step == 0 {
		return Response{}, fmt.Errorf("simulate: step must be non-zero")
	}

	body := scene.NewNode("body")
	head := scene.NewNode("head")
	body.AddChild(head)
	head.SetRotation(0, step)

	stab := stabilizer.New(cfg, stabilizer.Deps{Body: body, Head: head, Logger: logger.Discard()})
	if err := stab.Err(); err != nil {
		return Response{}, fmt.Errorf("simulate: %w", err)
	}

	n := int(math.Ceil(duration / dt))
	res := Response{
		Times:  make([]float64, 0, n),
		Errors: make([]float64, 0, n),
	}
	speeds := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		s := stab.Tick(dt)
		res.Times = append(res.Times, float64(i)*dt)
		res.Errors = append(res.Errors, mathutil.WrapAngle(head.Yaw()))
		speeds = append(speeds, math.Abs(s.AngularVelocity))
	}

	band := settleBand(cfg, step)
	for i := len(res.Errors) - 1; i >= 0; i-- {
		if math.Abs(res.Errors[i]) > band {
			res.SettleTime = res.Times[i]
			break
		}
	}

	// Errors carry the step's sign until the body passes the head.
	signed := make([]float64, len(res.Errors))
	copy(signed, res.Errors)
	floats.Scale(math.Copysign(1, step), signed)
	res.Overshoot = math.Max(0, -floats.Min(signed)) / math.Abs(step)
	res.Residual = math.Abs(res.Errors[len(res.Errors)-1])
	res.PeakSpeed = floats.Max(speeds)
	return res, nil
}

// settleBand is the error the stabilizer is allowed to leave behind: the
// dead zone, or two percent of the step when there is none.
func settleBand(cfg stabilizer.Config, step float64) float64 {
	return math.Max(mathutil.DegToRad(cfg.DeadZoneDegrees), 0.02*math.Abs(step))
}
