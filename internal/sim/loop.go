package sim

import (
	"math"

	"github.com/Versifine/capsule/internal/input"
	"github.com/Versifine/capsule/internal/stabilizer"
)

// FrameResult summarizes one frame.
type FrameResult struct {
	Substeps int
	// Dropped is simulated time discarded because the frame needed more
	// than MaxSubsteps physics ticks.
	Dropped float64
	Step    stabilizer.Step
}

// Loop runs the physics channel at a fixed dt from an accumulator and then
// the frame channel, so frame consumers always see the transforms left by
// the last completed physics tick.
type Loop struct {
	rig         *Rig
	physicsDT   float64
	maxSubsteps int

	accumulator float64
	tick        uint64
	elapsed     float64

	onPhysics []func(tick uint64, t float64)
}

func NewLoop(rig *Rig, physicsDT float64, maxSubsteps int) *Loop {
	if maxSubsteps < 1 {
		maxSubsteps = 1
	}
	return &Loop{rig: rig, physicsDT: physicsDT, maxSubsteps: maxSubsteps}
}

// OnPhysicsTick registers fn to run after every physics tick.
func (l *Loop) OnPhysicsTick(fn func(tick uint64, t float64)) {
	l.onPhysics = append(l.onPhysics, fn)
}

func (l *Loop) Rig() *Rig { return l.rig }

func (l *Loop) Ticks() uint64 { return l.tick }

// Elapsed is the simulated physics time.
func (l *Loop) Elapsed() float64 { return l.elapsed }

// Frame advances the simulation by frameDT of wall time with the intent
// held for the whole frame.
func (l *Loop) Frame(intent input.Intent, frameDT float64) FrameResult {
	var res FrameResult
	if !(frameDT > 0) || math.IsInf(frameDT, 0) || !(l.physicsDT > 0) {
		return res
	}

	l.accumulator += frameDT
	for l.accumulator >= l.physicsDT && res.Substeps < l.maxSubsteps {
		l.rig.PhysicsStep(l.rig.Sample(intent), l.physicsDT)
		l.accumulator -= l.physicsDT
		l.tick++
		l.elapsed += l.physicsDT
		res.Substeps++
		for _, fn := range l.onPhysics {
			fn(l.tick, l.elapsed)
		}
	}
	if l.accumulator >= l.physicsDT {
		keep := math.Mod(l.accumulator, l.physicsDT)
		res.Dropped = l.accumulator - keep
		l.accumulator = keep
	}

	res.Step = l.rig.FrameStep(intent.Look, frameDT)
	return res
}
