package tuning

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/capsule/internal/logger"
	"github.com/Versifine/capsule/internal/mathutil"
	"github.com/Versifine/capsule/internal/stabilizer"
)

func TestSimulateDefaultGainsSettleWithoutOvershoot(t *testing.T) {
	cfg := stabilizer.DefaultConfig()
	step := mathutil.DegToRad(60)

	resp, err := Simulate(cfg, step, 2, 1.0/144)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(resp.Errors) != 288 || len(resp.Times) != 288 {
		t.Fatalf("samples = %d/%d, want 288", len(resp.Errors), len(resp.Times))
	}
	if resp.Overshoot != 0 {
		t.Fatalf("overshoot = %v, want none for an overdamped pair", resp.Overshoot)
	}
	if resp.SettleTime <= 0 || resp.SettleTime >= 1.5 {
		t.Fatalf("settle time = %v", resp.SettleTime)
	}
	if resp.Residual > mathutil.DegToRad(cfg.DeadZoneDegrees)+1e-9 {
		t.Fatalf("residual = %v outside the dead zone", resp.Residual)
	}
	if resp.PeakSpeed > cfg.MaxAngularVelocity+1e-9 {
		t.Fatalf("peak speed %v exceeds the clamp", resp.PeakSpeed)
	}
}

func TestSimulateNegativeStep(t *testing.T) {
	cfg := stabilizer.DefaultConfig()
	pos, err := Simulate(cfg, 0.8, 1, 1.0/120)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	neg, err := Simulate(cfg, -0.8, 1, 1.0/120)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	for i := range pos.Errors {
		if math.Abs(pos.Errors[i]+neg.Errors[i]) > 1e-12 {
			t.Fatalf("sample %d not mirrored: %v vs %v", i, pos.Errors[i], neg.Errors[i])
		}
	}
	if pos.SettleTime != neg.SettleTime {
		t.Fatalf("settle times differ: %v vs %v", pos.SettleTime, neg.SettleTime)
	}
}

func TestUnderdampedGainsScoreWorse(t *testing.T) {
	opts := DefaultOptions()
	good, err := Evaluate(stabilizer.DefaultConfig(), opts)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	bouncy := stabilizer.DefaultConfig()
	bouncy.BaseStiffness = 140
	bouncy.Damping = 1
	bad, err := Evaluate(bouncy, opts)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if bad.Overshoot <= 0 {
		t.Fatalf("overshoot = %v, want the body to swing past the head", bad.Overshoot)
	}
	if bad.Score <= good.Score {
		t.Fatalf("underdamped score %v should be worse than %v", bad.Score, good.Score)
	}
}

func TestSimulateRejectsBadInput(t *testing.T) {
	cfg := stabilizer.DefaultConfig()
	tests := []struct {
		name               string
		step, duration, dt float64
	}{
		{"zero dt", 1, 1, 0},
		{"zero duration", 1, 0, 0.01},
		{"zero step", 0, 1, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Simulate(cfg, tt.step, tt.duration, tt.dt); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	bad := cfg
	bad.MaxAngularVelocity = 0
	if _, err := Simulate(bad, 1, 1, 0.01); !errors.Is(err, stabilizer.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestTuneImprovesOnPoorStart(t *testing.T) {
	opts := DefaultOptions()
	opts.Base.BaseStiffness = 6
	opts.Base.Damping = 40
	opts.MaxEvals = 60
	opts.Logger = logger.Discard()

	res, err := Tune(opts)
	if err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if len(res.Evaluations) < 2 {
		t.Fatalf("evaluations = %d", len(res.Evaluations))
	}
	if res.BestScore >= res.Baseline.Score {
		t.Fatalf("best %v did not improve on baseline %v", res.BestScore, res.Baseline.Score)
	}
	for i, p := range Params {
		v := vectorOf(res.Best)[i]
		if v < p.Min || v > p.Max {
			t.Fatalf("%s = %v outside [%v, %v]", p.Name, v, p.Min, p.Max)
		}
	}
	if res.Best.MaxAngularVelocity != opts.Base.MaxAngularVelocity || res.Best.DeadZoneDegrees != opts.Base.DeadZoneDegrees {
		t.Fatal("untuned gains must be carried over from the base config")
	}
	for i, ev := range res.Evaluations {
		if ev.Eval != i {
			t.Fatalf("evaluation %d numbered %d", i, ev.Eval)
		}
	}
}

func TestTuneValidatesOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.StepDegrees = 0
	opts.MaxEvals = 0
	_, err := Tune(opts)
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("error = %v, want ErrInvalidOptions", err)
	}
	if !strings.Contains(err.Error(), "step_degrees") || !strings.Contains(err.Error(), "max_evals") {
		t.Fatalf("error should list every problem: %v", err)
	}
}

func TestBoundsHelpers(t *testing.T) {
	raw := []float64{Params[0].Min - 10, Params[1].Max + 5}
	c := clamp(raw)
	if c[0] != Params[0].Min || c[1] != Params[1].Max {
		t.Fatalf("clamp = %v", c)
	}
	if outOfBounds(c) != 0 {
		t.Fatal("clamped vector should be in bounds")
	}
	if outOfBounds(raw) <= 0 {
		t.Fatal("raw vector should be penalized")
	}
	back := denormalize(normalize([]float64{35, 22}))
	if math.Abs(back[0]-35) > 1e-12 || math.Abs(back[1]-22) > 1e-12 {
		t.Fatalf("normalize round trip = %v", back)
	}
}

func TestWriteLogAndSummary(t *testing.T) {
	evals := []Evaluation{
		{Eval: 0, Stiffness: 35, Damping: 22, Score: 0.5},
		{Eval: 1, Stiffness: 40, Damping: 20, Score: 0.4},
	}
	var csvBuf bytes.Buffer
	if err := WriteLog(&csvBuf, evals); err != nil {
		t.Fatalf("WriteLog: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvBuf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "eval,base_stiffness,damping,score") {
		t.Fatalf("log:\n%s", csvBuf.String())
	}

	res := &Result{Best: stabilizer.DefaultConfig(), BestScore: 0.4, Baseline: evals[0], Status: "FunctionEvaluationLimit", Evaluations: evals}
	var yamlBuf bytes.Buffer
	if err := WriteSummary(&yamlBuf, res); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	var back struct {
		Best      stabilizer.Config `yaml:"best"`
		BestScore float64           `yaml:"best_score"`
	}
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &back); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if back.Best != stabilizer.DefaultConfig() || back.BestScore != 0.4 {
		t.Fatalf("summary = %+v", back)
	}
	if strings.Contains(yamlBuf.String(), "evaluations") {
		t.Fatal("summary should not embed the evaluation log")
	}
}
