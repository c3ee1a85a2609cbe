package motioner

import (
	"math"
	"testing"
)

func TestEvaluateEndpoints(t *testing.T) {
	// Every curve family starts at (or near) 0 and ends at (or near) 1.
	curves := []struct {
		name   string
		easing Easing
	}{
		{"linear", Linear()},
		{"ease_in", EaseIn(2)},
		{"ease_out", EaseOut(2)},
		{"ease_in_out", EaseInOut(2)},
		{"sine", Sine()},
		{"expo", Expo()},
		{"circ", Circ()},
		{"bezier", Bezier(Vec2{X: 0.25, Y: 0.1}, Vec2{X: 0.25, Y: 1})},
		{"elastic", Elastic(1, 0.3)},
		{"bounce", Bounce(0.5)},
		{"custom", Custom([]CurvePoint{{Pos: Vec2{X: 0.5, Y: 0.8}}})},
	}
	for _, tt := range curves {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.easing, 0); got < -0.01 || got > 0.01 {
				t.Errorf("Evaluate(%s, 0) = %v, want ~0", tt.name, got)
			}
			if got := Evaluate(tt.easing, 1); got < 0.99 || got > 1.01 {
				t.Errorf("Evaluate(%s, 1) = %v, want ~1", tt.name, got)
			}
		})
	}
}

func TestEvaluateClampsT(t *testing.T) {
	for _, e := range []Easing{Linear(), EaseInOut(2), Sine(), Step()} {
		if got := Evaluate(e, -5); got != Evaluate(e, 0) {
			t.Errorf("Evaluate(%v, -5) = %v, want clamped to t=0", e.Kind, got)
		}
		if got := Evaluate(e, 5); got != Evaluate(e, 1) {
			t.Errorf("Evaluate(%v, 5) = %v, want clamped to t=1", e.Kind, got)
		}
	}
}

func TestEvaluateMidpoints(t *testing.T) {
	tests := []struct {
		name   string
		easing Easing
		t      float32
		want   float32
		eps    float32
	}{
		{"linear half", Linear(), 0.5, 0.5, 1e-6},
		{"ease_in quadratic", EaseIn(2), 0.5, 0.25, 1e-6},
		{"ease_out quadratic", EaseOut(2), 0.5, 0.75, 1e-6},
		{"ease_in_out symmetric", EaseInOut(2), 0.5, 0.5, 1e-6},
		{"sine half", Sine(), 0.5, 0.5, 1e-5},
		{"circ half", Circ(), 0.5, 0.5, 1e-5},
		{"custom polyline", Custom([]CurvePoint{{Pos: Vec2{X: 0.5, Y: 0.8}}}), 0.25, 0.4, 1e-5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.easing, tt.t)
			if d := got - tt.want; d > tt.eps || d < -tt.eps {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateStep(t *testing.T) {
	// Step holds the start value until the very end of the segment.
	for _, tc := range []struct{ t, want float32 }{
		{0, 0}, {0.25, 0}, {0.99, 0}, {1, 1},
	} {
		if got := Evaluate(Step(), tc.t); got != tc.want {
			t.Errorf("Evaluate(Step, %v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestEvaluateEaseInOutStrictlyBetween(t *testing.T) {
	// Mid-segment the eased value is strictly between the endpoints; this
	// is the parallel-path half of the divergence from hold sampling.
	got := Evaluate(EaseInOut(2), 0.5)
	if !(got > 0 && got < 1) {
		t.Errorf("Evaluate(EaseInOut(2), 0.5) = %v, want strictly in (0, 1)", got)
	}
}

func TestEvaluateDegenerateParamsFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	curves := []Easing{
		EaseIn(nan),
		EaseIn(-1),
		EaseInOut(inf),
		Spring(nan, 0, -1),
		Elastic(0, nan),
		Bounce(inf),
		Bezier(Vec2{X: nan, Y: nan}, Vec2{X: inf, Y: inf}),
	}
	for _, e := range curves {
		for _, tv := range []float32{0, 0.25, 0.5, 0.75, 1, nan} {
			got := Evaluate(e, tv)
			if math.IsNaN(float64(got)) || math.IsInf(float64(got), 0) {
				t.Errorf("Evaluate(%v, %v) = %v, want finite", e.Kind, tv, got)
			}
		}
	}
}

func TestEvaluateSpringSettles(t *testing.T) {
	// A stiff, well-damped spring ends close to rest.
	got := Evaluate(Spring(10, 100, 1), 1)
	if got < 0.8 || got > 1.2 {
		t.Errorf("Evaluate(Spring, 1) = %v, want near 1", got)
	}
}

func TestEvaluateBounceDescends(t *testing.T) {
	// First segment is the initial fall, unaffected by bounciness.
	for _, b := range []float32{0, 0.5, 1} {
		got := Evaluate(Bounce(b), 0.2)
		want := float32(7.5625 * 0.2 * 0.2)
		if d := got - want; d > 1e-5 || d < -1e-5 {
			t.Errorf("Evaluate(Bounce(%v), 0.2) = %v, want %v", b, got, want)
		}
	}
}
