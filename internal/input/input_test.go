package input

import (
	"math"
	"testing"
)

func TestSamplerJumpRisingEdge(t *testing.T) {
	s := NewSampler(DefaultMoveDeadzone)
	held := []bool{false, true, true, false, true}
	want := []bool{false, true, false, false, true}
	for i, h := range held {
		got := s.Sample(Intent{Jump: h})
		if got.JumpPressed != want[i] {
			t.Fatalf("tick %d: JumpPressed=%v want %v", i, got.JumpPressed, want[i])
		}
		if got.JumpHeld != h {
			t.Fatalf("tick %d: JumpHeld=%v want %v", i, got.JumpHeld, h)
		}
	}
}

func TestSamplerMoveDeadzone(t *testing.T) {
	s := NewSampler(0.2)
	tests := []struct {
		name    string
		in      Vec2
		wantLen float64
	}{
		{"inside deadzone", Vec2{X: 0.1, Y: 0.1}, 0},
		{"full forward", Vec2{Y: -1}, 1},
		{"diagonal clamped", Vec2{X: 1, Y: -1}, 1},
		{"half", Vec2{X: 0.6}, 0.5},
		{"nan", Vec2{X: math.NaN()}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sample(Intent{Move: tt.in}).Move
			if math.Abs(got.Length()-tt.wantLen) > 1e-9 {
				t.Fatalf("len(%+v)=%v want %v", got, got.Length(), tt.wantLen)
			}
		})
	}
}

func TestSnapshotForward(t *testing.T) {
	if !(Snapshot{Move: Vec2{X: 0.5, Y: -0.5}}).Forward() {
		t.Fatal("diagonal forward input should count as forward")
	}
	if (Snapshot{Move: Vec2{X: 1}}).Forward() {
		t.Fatal("pure strafe should not count as forward")
	}
}
