package dispatch

import (
	"testing"

	"github.com/jvchiappini/motioner"
)

func TestCurveCodeParallelSubset(t *testing.T) {
	tests := []struct {
		name   string
		easing motioner.Easing
		want   uint32
	}{
		{"linear", motioner.Linear(), CurveLinear},
		{"ease_in", motioner.EaseIn(2), CurveEaseIn},
		{"ease_out", motioner.EaseOut(3), CurveEaseOut},
		{"ease_in_out", motioner.EaseInOut(2), CurveEaseInOut},
		{"sine", motioner.Sine(), CurveSine},
		{"expo", motioner.Expo(), CurveExpo},
		{"circ", motioner.Circ(), CurveCirc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurveCode(tt.easing); got != tt.want {
				t.Errorf("CurveCode(%s) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestCurveCodeFallbackToLinear(t *testing.T) {
	// Every variant outside the parallel-path subset degrades to the
	// linear code. Exact mapping, not approximate: the execution stage
	// must behave identically for all of them.
	unsupported := []struct {
		name   string
		easing motioner.Easing
	}{
		{"bezier", motioner.Bezier(motioner.Vec2{X: 0.25, Y: 0.1}, motioner.Vec2{X: 0.25, Y: 1})},
		{"spring", motioner.Spring(10, 100, 1)},
		{"elastic", motioner.Elastic(1, 0.3)},
		{"bounce", motioner.Bounce(0.5)},
		{"step", motioner.Step()},
		{"custom", motioner.Custom([]motioner.CurvePoint{{Pos: motioner.Vec2{X: 0.5, Y: 0.5}}})},
		{"custom_bezier", motioner.CustomBezier([]motioner.CurvePoint{{Pos: motioner.Vec2{X: 0.5, Y: 0.5}}})},
	}
	for _, tt := range unsupported {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurveCode(tt.easing); got != CurveLinear {
				t.Errorf("CurveCode(%s) = %d, want %d (linear fallback)", tt.name, got, CurveLinear)
			}
		})
	}
}

func TestCurveParam(t *testing.T) {
	if got := CurveParam(motioner.EaseInOut(3.5)); got != 3.5 {
		t.Errorf("CurveParam(EaseInOut(3.5)) = %v, want 3.5", got)
	}
	if got := CurveParam(motioner.EaseIn(0)); got != motioner.DefaultPower {
		t.Errorf("CurveParam(EaseIn(0)) = %v, want default power", got)
	}
	if got := CurveParam(motioner.Sine()); got != 0 {
		t.Errorf("CurveParam(Sine) = %v, want 0", got)
	}
}

func TestShapeKindCode(t *testing.T) {
	if got := ShapeKindCode(motioner.ShapeCircle); got != 0 {
		t.Errorf("ShapeKindCode(circle) = %d, want 0", got)
	}
	if got := ShapeKindCode(motioner.ShapeRect); got != 1 {
		t.Errorf("ShapeKindCode(rect) = %d, want 1", got)
	}
	if got := ShapeKindCode(motioner.ShapeText); got != 2 {
		t.Errorf("ShapeKindCode(text) = %d, want 2", got)
	}
}

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		n    int
		want uint32
	}{
		{0, 0},
		{1, 1},
		{64, 1},
		{65, 2},
		{128, 2},
		{129, 3},
	}
	for _, tt := range tests {
		if got := WorkgroupCount(tt.n); got != tt.want {
			t.Errorf("WorkgroupCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
