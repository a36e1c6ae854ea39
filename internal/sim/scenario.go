package sim

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/capsule/internal/input"
	"github.com/Versifine/capsule/internal/mathutil"
)

//go:embed scenarios/crouch_tunnel.yaml
var defaultScenarioYAML []byte

var ErrInvalidScenario = errors.New("invalid scenario")

// Segment holds one input state for a stretch of time. Look is a per-frame
// delta; yaw fields are applied once when the segment starts.
type Segment struct {
	Name           string     `yaml:"name"`
	Duration       float64    `yaml:"duration"`
	Move           [2]float64 `yaml:"move"`
	Look           [2]float64 `yaml:"look"`
	Jump           bool       `yaml:"jump"`
	Crouch         bool       `yaml:"crouch"`
	Sprint         bool       `yaml:"sprint"`
	BodyYawDegrees *float64   `yaml:"body_yaw_deg,omitempty"`
	HeadYawDegrees *float64   `yaml:"head_yaw_deg,omitempty"`
}

func (s Segment) Intent() input.Intent {
	return input.Intent{
		Move:   input.Vec2{X: s.Move[0], Y: s.Move[1]},
		Look:   input.Vec2{X: s.Look[0], Y: s.Look[1]},
		Jump:   s.Jump,
		Crouch: s.Crouch,
		Sprint: s.Sprint,
	}
}

type Scenario struct {
	Name     string    `yaml:"name"`
	FrameHz  float64   `yaml:"frame_hz"`
	Segments []Segment `yaml:"segments"`
}

func DefaultScenario() (*Scenario, error) {
	return ParseScenario(defaultScenarioYAML)
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) Validate() error {
	if len(s.Segments) == 0 {
		return fmt.Errorf("%w: no segments", ErrInvalidScenario)
	}
	if s.FrameHz < 0 {
		return fmt.Errorf("%w: frame_hz must not be negative", ErrInvalidScenario)
	}
	for i, seg := range s.Segments {
		if !(seg.Duration > 0) {
			return fmt.Errorf("%w: segment %d duration must be positive", ErrInvalidScenario, i)
		}
		if math.Abs(seg.Move[0]) > 1 || math.Abs(seg.Move[1]) > 1 {
			return fmt.Errorf("%w: segment %d move must be within [-1, 1]", ErrInvalidScenario, i)
		}
	}
	return nil
}

// Duration is the total scripted time.
func (s *Scenario) Duration() float64 {
	var total float64
	for _, seg := range s.Segments {
		total += seg.Duration
	}
	return total
}

// Run plays the scenario on loop and returns one record per physics tick.
// frameDT is used unless the scenario sets its own frame rate.
func (s *Scenario) Run(loop *Loop, frameDT float64) ([]TraceRecord, error) {
	if s.FrameHz > 0 {
		frameDT = 1 / s.FrameHz
	}
	if !(frameDT > 0) {
		return nil, fmt.Errorf("%w: frame dt must be positive", ErrInvalidScenario)
	}

	rig := loop.Rig()
	var records []TraceRecord
	segment := 0
	observers := len(loop.onPhysics)
	loop.OnPhysicsTick(func(tick uint64, t float64) {
		records = append(records, NewTraceRecord(tick, t, segment, rig.Status()))
	})
	defer func() { loop.onPhysics = loop.onPhysics[:observers] }()

	for i, seg := range s.Segments {
		segment = i
		if seg.BodyYawDegrees != nil {
			rig.SetBodyYaw(mathutil.DegToRad(*seg.BodyYawDegrees))
		}
		if seg.HeadYawDegrees != nil {
			rig.SetHeadYaw(mathutil.DegToRad(*seg.HeadYawDegrees))
		}
		intent := seg.Intent()
		frames := int(math.Round(seg.Duration / frameDT))
		for f := 0; f < frames; f++ {
			loop.Frame(intent, frameDT)
		}
	}
	return records, nil
}
