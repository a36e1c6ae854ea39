package tuning

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"
	"gopkg.in/yaml.v3"

	"github.com/Versifine/capsule/internal/mathutil"
	"github.com/Versifine/capsule/internal/stabilizer"
)

// Score weights. Settle time is in seconds; the others are fractions.
const (
	overshootWeight = 4.0
	residualWeight  = 2.0
	boundsPenalty   = 100.0
)

var ErrInvalidOptions = errors.New("invalid tuning options")

type Options struct {
	// Base supplies the gains that are not tuned.
	Base        stabilizer.Config
	StepDegrees float64
	Duration    float64
	DT          float64
	MaxEvals    int
	Logger      *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Base:        stabilizer.DefaultConfig(),
		StepDegrees: 60,
		Duration:    2,
		DT:          1.0 / 144,
		MaxEvals:    200,
	}
}

func (o Options) Validate() error {
	var errs []error
	if err := o.Base.Validate(); err != nil {
		errs = append(errs, err)
	}
	if o.StepDegrees == 0 || math.Abs(o.StepDegrees) >= 180 {
		errs = append(errs, fmt.Errorf("step_degrees must be non-zero and inside (-180, 180)"))
	}
	if !(o.Duration > 0) {
		errs = append(errs, fmt.Errorf("duration must be positive"))
	}
	if !(o.DT > 0) || o.DT > o.Duration {
		errs = append(errs, fmt.Errorf("dt must be positive and no longer than duration"))
	}
	if o.MaxEvals < 1 {
		errs = append(errs, fmt.Errorf("max_evals must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
	}
	return nil
}

// Evaluation is one scored candidate, as written to the evaluation log.
type Evaluation struct {
	Eval       int     `csv:"eval" yaml:"eval"`
	Stiffness  float64 `csv:"base_stiffness" yaml:"base_stiffness"`
	Damping    float64 `csv:"damping" yaml:"damping"`
	Score      float64 `csv:"score" yaml:"score"`
	SettleTime float64 `csv:"settle_time" yaml:"settle_time"`
	Overshoot  float64 `csv:"overshoot" yaml:"overshoot"`
	Residual   float64 `csv:"residual" yaml:"residual"`
}

type Result struct {
	Best        stabilizer.Config `yaml:"best"`
	BestScore   float64           `yaml:"best_score"`
	Baseline    Evaluation        `yaml:"baseline"`
	Status      string            `yaml:"status"`
	Evaluations []Evaluation      `yaml:"-"`
}

// Score rates a response; lower is better.
func Score(r Response) float64 {
	return r.SettleTime + overshootWeight*r.Overshoot + residualWeight*r.Residual
}

// Evaluate simulates cfg against the configured step and scores it.
func Evaluate(cfg stabilizer.Config, opts Options) (Evaluation, error) {
	resp, err := Simulate(cfg, mathutil.DegToRad(opts.StepDegrees), opts.Duration, opts.DT)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		Stiffness:  cfg.BaseStiffness,
		Damping:    cfg.Damping,
		Score:      Score(resp),
		SettleTime: resp.SettleTime,
		Overshoot:  resp.Overshoot,
		Residual:   resp.Residual,
	}, nil
}

// Tune minimizes Score over stiffness and damping with Nelder-Mead, starting
// from the base gains. Candidates outside the bounds are clamped before they
// are simulated and penalized by their distance from the box.
func Tune(opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "tuning")

	start := clamp(vectorOf(opts.Base))
	baseline, err := Evaluate(applyVector(opts.Base, start), opts)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	baseline.Eval = 0

	res := &Result{
		Best:        applyVector(opts.Base, start),
		BestScore:   baseline.Score,
		Baseline:    baseline,
		Evaluations: []Evaluation{baseline},
	}

	var simErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := denormalize(x)
			clamped := clamp(raw)
			cfg := applyVector(opts.Base, clamped)
			ev, err := Evaluate(cfg, opts)
			if err != nil {
				simErr = err
				return math.Inf(1)
			}
			ev.Eval = len(res.Evaluations)
			res.Evaluations = append(res.Evaluations, ev)
			if ev.Score < res.BestScore {
				res.BestScore = ev.Score
				res.Best = cfg
				log.Debug("New best gains", "eval", ev.Eval, "stiffness", cfg.BaseStiffness, "damping", cfg.Damping, "score", ev.Score)
			}
			return ev.Score + boundsPenalty*outOfBounds(raw)
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: opts.MaxEvals,
	}
	method := &optimize.NelderMead{SimplexSize: 0.2}

	result, err := optimize.Minimize(problem, normalize(start), settings, method)
	if simErr != nil {
		return nil, fmt.Errorf("simulate candidate: %w", simErr)
	}
	if err != nil {
		log.Warn("Optimization ended early", "error", err)
	}
	if result != nil {
		res.Status = result.Status.String()
	}

	log.Info("Tuning finished",
		"evaluations", len(res.Evaluations),
		"status", res.Status,
		"stiffness", res.Best.BaseStiffness,
		"damping", res.Best.Damping,
		"score", res.BestScore,
		"baseline_score", baseline.Score,
	)
	return res, nil
}

// WriteLog writes every evaluation as CSV with a header row.
func WriteLog(w io.Writer, evals []Evaluation) error {
	if err := gocsv.Marshal(evals, w); err != nil {
		return fmt.Errorf("writing evaluation log: %w", err)
	}
	return nil
}

// WriteSummary writes the best gains, the baseline and the stop status as YAML.
func WriteSummary(w io.Writer, res *Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("writing tuning summary: %w", err)
	}
	return enc.Close()
}
