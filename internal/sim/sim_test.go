package sim

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/capsule/internal/config"
	"github.com/Versifine/capsule/internal/event"
	"github.com/Versifine/capsule/internal/input"
	"github.com/Versifine/capsule/internal/logger"
	"github.com/Versifine/capsule/internal/mathutil"
	"github.com/Versifine/capsule/internal/world"
)

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func newTestRig(t *testing.T) *Rig {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default: %v", err)
	}
	level, err := world.DefaultLevel()
	if err != nil {
		t.Fatalf("world.DefaultLevel: %v", err)
	}
	rig, err := NewRig(cfg, level, logger.Discard())
	if err != nil {
		t.Fatalf("NewRig: %v", err)
	}
	return rig
}

func TestNewRigStartsAtSpawn(t *testing.T) {
	rig := newTestRig(t)
	st := rig.Status()
	if st.Position != rig.Level.Spawn {
		t.Fatalf("position = %v, want spawn %v", st.Position, rig.Level.Spawn)
	}
	if got := rig.Modules.Names(); len(got) != 3 || got[0] != "movement" || got[1] != "jump" || got[2] != "crouch" {
		t.Fatalf("modules = %v", got)
	}
	approxEqual(t, rig.Head.Position().Y, 1.65, 1e-12, "eye height")
}

func TestNewRigRejectsMissingInputs(t *testing.T) {
	if _, err := NewRig(nil, &world.Level{}, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg, _ := config.Default()
	if _, err := NewRig(cfg, nil, nil); err == nil {
		t.Fatal("expected error for nil level")
	}
}

func TestLoopRunsFixedPhysicsTicks(t *testing.T) {
	rig := newTestRig(t)
	loop := NewLoop(rig, 1.0/64, 8)
	var ticks []uint64
	loop.OnPhysicsTick(func(tick uint64, _ float64) { ticks = append(ticks, tick) })

	frameDT := 5.0 / 128
	total := 0
	for i := 0; i < 4; i++ {
		total += loop.Frame(input.Intent{}, frameDT).Substeps
	}
	if total != 10 || loop.Ticks() != 10 || len(ticks) != 10 {
		t.Fatalf("substeps=%d ticks=%d observed=%d, want 10", total, loop.Ticks(), len(ticks))
	}
	approxEqual(t, loop.Elapsed(), 10.0/64, 1e-12, "elapsed")
}

func TestLoopCapsSubstepsAndDropsBacklog(t *testing.T) {
	rig := newTestRig(t)
	loop := NewLoop(rig, 1.0/60, 8)

	res := loop.Frame(input.Intent{}, 1.0)

	if res.Substeps != 8 {
		t.Fatalf("substeps = %d, want 8", res.Substeps)
	}
	if res.Dropped < 0.8 || res.Dropped > 1.0-8.0/60+1e-9 {
		t.Fatalf("dropped = %v", res.Dropped)
	}
	if next := loop.Frame(input.Intent{}, 1.0/60); next.Substeps > 1 {
		t.Fatalf("backlog leaked into the next frame: %d substeps", next.Substeps)
	}
}

func TestLoopIgnoresNonPositiveFrame(t *testing.T) {
	rig := newTestRig(t)
	loop := NewLoop(rig, 1.0/60, 8)
	for _, dt := range []float64{0, -1, math.NaN()} {
		if res := loop.Frame(input.Intent{Move: input.Vec2{Y: -1}}, dt); res.Substeps != 0 {
			t.Fatalf("dt=%v ran %d substeps", dt, res.Substeps)
		}
	}
	if loop.Ticks() != 0 {
		t.Fatal("no physics ticks expected")
	}
}

func TestLoopRecoversFromInfiniteFrame(t *testing.T) {
	rig := newTestRig(t)
	loop := NewLoop(rig, 1.0/60, 8)

	for _, dt := range []float64{math.Inf(1), math.Inf(-1)} {
		if res := loop.Frame(input.Intent{}, dt); res.Substeps != 0 {
			t.Fatalf("dt=%v ran %d substeps", dt, res.Substeps)
		}
		if loop.accumulator != 0 {
			t.Fatalf("dt=%v left accumulator at %v", dt, loop.accumulator)
		}
	}

	for i := 0; i < 60; i++ {
		loop.Frame(input.Intent{}, 1.0/60)
	}
	if loop.Ticks() < 59 {
		t.Fatalf("ticks = %d after one second, want about 60", loop.Ticks())
	}
}

func TestFrameChannelKeepsHeadWorldYaw(t *testing.T) {
	rig := newTestRig(t)
	loop := NewLoop(rig, 1.0/60, 8)

	loop.Frame(input.Intent{Look: input.Vec2{X: -100}}, 1.0/60)
	for i := 0; i < 120; i++ {
		loop.Frame(input.Intent{}, 1.0/60)
		approxEqual(t, rig.Head.GlobalYaw(), 0.2, 1e-9, "head world yaw")
	}
	if rig.Body.Yaw() <= 0 {
		t.Fatalf("body yaw = %v, want the body to follow the head left", rig.Body.Yaw())
	}
	if math.Abs(rig.Head.Yaw()) > mathutil.DegToRad(8)+1e-9 {
		t.Fatalf("head relative yaw %v should settle inside the dead zone", rig.Head.Yaw())
	}
}

func TestRespawnAfterFallingOutOfWorld(t *testing.T) {
	rig := newTestRig(t)
	var respawns []event.RespawnedEvent
	rig.Events.Subscribe(event.EventRespawned, func(raw any) {
		respawns = append(respawns, raw.(event.RespawnedEvent))
	})

	rig.Teleport(r3.Vec{X: 100, Z: 100})
	for i := 0; i < 120; i++ {
		rig.PhysicsStep(input.Snapshot{}, 1.0/60)
	}

	if len(respawns) != 1 {
		t.Fatalf("respawn events = %d, want 1", len(respawns))
	}
	st := rig.Status()
	approxEqual(t, st.Position.X, rig.Level.Spawn.X, 1e-9, "x after respawn")
	approxEqual(t, st.Position.Z, rig.Level.Spawn.Z, 1e-9, "z after respawn")
	if !st.Grounded {
		t.Fatal("character should land at the spawn point")
	}
}

func TestDefaultScenarioCrouchTunnel(t *testing.T) {
	rig := newTestRig(t)
	loop := NewLoop(rig, 1.0/60, 8)
	sc, err := DefaultScenario()
	if err != nil {
		t.Fatalf("DefaultScenario: %v", err)
	}

	records, err := sc.Run(loop, 1.0/60)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantTicks := int(math.Round(sc.Duration() * 60))
	if d := len(records) - wantTicks; d < -2 || d > 2 {
		t.Fatalf("records = %d, want about %d", len(records), wantTicks)
	}

	last := map[int]TraceRecord{}
	maxY := map[int]float64{}
	underRoof := 0
	for _, rec := range records {
		last[rec.Segment] = rec
		maxY[rec.Segment] = math.Max(maxY[rec.Segment], rec.Y)
		if (rec.Segment == 1 || rec.Segment == 2) && rec.X >= 6.3 && rec.X <= 9.7 {
			underRoof++
			if rec.HalfHeight > 0.5+1e-9 || !rec.Crouched {
				t.Fatalf("tick %d at x=%.3f: half height %.3f under the tunnel roof", rec.Tick, rec.X, rec.HalfHeight)
			}
			if rec.Segment == 2 && !rec.TargetCrouched {
				t.Fatalf("tick %d at x=%.3f: stand-up should be forced back to crouch", rec.Tick, rec.X)
			}
		}
	}
	if underRoof == 0 {
		t.Fatal("scenario never passed under the tunnel roof")
	}

	walkIn := last[1]
	if walkIn.X < 6.5 || walkIn.X > 9.5 {
		t.Fatalf("crouch walk ended at x=%.3f, want inside the tunnel", walkIn.X)
	}

	stand := last[2]
	approxEqual(t, stand.X, 13.7, 1e-6, "stopped by the step wall")
	approxEqual(t, stand.VX, 0, 1e-9, "vx against the wall")
	approxEqual(t, stand.HalfHeight, 0.9, 1e-9, "standing after the tunnel")
	if !stand.Grounded || stand.Crouched {
		t.Fatalf("after the tunnel: %+v", stand)
	}

	turned := last[3]
	if math.Abs(mathutil.WrapAngle(turned.BodyYaw+math.Pi/2)) < 0.5 {
		t.Fatalf("body yaw %.3f barely followed the head", turned.BodyYaw)
	}

	if maxY[4] < 1.4 || maxY[4] > 1.7 {
		t.Fatalf("hop apex = %.3f, want about 1.6", maxY[4])
	}
	hop := last[4]
	if !hop.Grounded || math.Abs(hop.Y) > 1e-9 {
		t.Fatalf("hop should land back on the floor, got y=%.6f grounded=%v", hop.Y, hop.Grounded)
	}
}

func TestScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "name: x\n"},
		{"zero duration", "segments:\n  - duration: 0\n"},
		{"move out of range", "segments:\n  - duration: 1\n    move: [0, -2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.yaml)); !errors.Is(err, ErrInvalidScenario) {
				t.Fatalf("ParseScenario() error = %v, want ErrInvalidScenario", err)
			}
		})
	}
}

func TestScenarioRunDetachesObserver(t *testing.T) {
	rig := newTestRig(t)
	loop := NewLoop(rig, 1.0/60, 8)
	sc, err := ParseScenario([]byte("segments:\n  - duration: 0.1\n"))
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}
	if _, err := sc.Run(loop, 1.0/60); err != nil {
		t.Fatalf("Run: %v", err)
	}
	records, err := sc.Run(loop, 1.0/60)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("second run recorded %d ticks, want 6", len(records))
	}
	if len(loop.onPhysics) != 0 {
		t.Fatalf("observers left attached: %d", len(loop.onPhysics))
	}
}

func TestTraceWriterWritesHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTraceWriter(&buf)
	if err := tw.Write(TraceRecord{Tick: 1, X: 0.5}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tw.Write(TraceRecord{Tick: 2}, TraceRecord{Tick: 3, Grounded: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want header + 3 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "tick,time,segment,x,y,z") {
		t.Fatalf("header = %q", lines[0])
	}
	if strings.Count(buf.String(), "tick,") != 1 {
		t.Fatal("header written more than once")
	}
	if !strings.HasPrefix(lines[3], "3,") || !strings.Contains(lines[3], "true") {
		t.Fatalf("last row = %q", lines[3])
	}
}
