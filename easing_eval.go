package motioner

import "github.com/chewxy/math32"

// Evaluate remaps a normalized progress t through the easing curve.
//
// t is clamped to [0,1] before evaluation; callers never rely on
// out-of-range behavior. The result is always finite: degenerate
// parameters (NaN, Inf, non-positive power) substitute their defaults
// instead of propagating bad numerics into downstream buffers.
//
// All fourteen variants evaluate here; this is the CPU reference path used
// for curve editing and preview. The parallel execution stage evaluates
// only the subset {Linear, EaseIn, EaseOut, EaseInOut, Sine, Expo, Circ}
// with these same formulas; richer curves dispatch as linear there (see
// package dispatch), a documented approximation.
func Evaluate(e Easing, t float32) float32 {
	t = clamp01(t)
	switch e.Kind {
	case EasingLinear:
		return t
	case EasingEaseIn:
		return math32.Pow(t, safePower(e.Power))
	case EasingEaseOut:
		return 1 - math32.Pow(1-t, safePower(e.Power))
	case EasingEaseInOut:
		p := safePower(e.Power)
		if t < 0.5 {
			return 0.5 * math32.Pow(2*t, p)
		}
		return 1 - 0.5*math32.Pow(2*(1-t), p)
	case EasingSine:
		return -(math32.Cos(math32.Pi*t) - 1) / 2
	case EasingExpo:
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		case t < 0.5:
			return math32.Pow(2, 20*t-10) / 2
		default:
			return (2 - math32.Pow(2, -20*t+10)) / 2
		}
	case EasingCirc:
		if t < 0.5 {
			return (1 - math32.Sqrt(1-(2*t)*(2*t))) / 2
		}
		d := -2*t + 2
		return (math32.Sqrt(1-d*d) + 1) / 2
	case EasingBezier:
		return finite(solveBezier(t, e.P1, e.P2), t)
	case EasingSpring:
		return finite(springEval(t, e.Damping, e.Stiffness, e.Mass), t)
	case EasingElastic:
		return finite(elasticEval(t, e.Amplitude, e.Period), t)
	case EasingBounce:
		return finite(bounceEval(t, e.Bounciness), t)
	case EasingStep:
		if t >= 1 {
			return 1
		}
		return 0
	case EasingCustom:
		return finite(polylineEval(t, e.Points), t)
	case EasingCustomBezier:
		return finite(polyBezierEval(t, e.Points), t)
	default:
		return t
	}
}

// clamp01 clamps t into [0,1] and maps NaN to 0.
func clamp01(t float32) float32 {
	if math32.IsNaN(t) {
		return 0
	}
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// finite guards curve families whose parameters can make the math blow up:
// a non-finite result falls back to the linear value.
func finite(v, fallback float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return fallback
	}
	return v
}

// safePower sanitizes the power parameter of the power-curve family.
// Non-finite or non-positive powers would produce NaN/Inf at the domain
// endpoints, so they fall back to the default.
func safePower(p float32) float32 {
	if math32.IsNaN(p) || math32.IsInf(p, 0) || p <= 0 {
		return DefaultPower
	}
	return p
}

// solveBezier evaluates the two-control-point cubic at time t: Newton
// iteration finds the curve parameter whose x equals t, then the y at that
// parameter is the eased progress.
func solveBezier(t float32, p1, p2 Vec2) float32 {
	s := t
	for i := 0; i < 8; i++ {
		x := bezierAxis(s, p1.X, p2.X)
		slope := bezierAxisDeriv(s, p1.X, p2.X)
		if math32.Abs(slope) < 1e-6 {
			break
		}
		s -= (x - t) / slope
	}
	s = clamp01(s)
	return bezierAxis(s, p1.Y, p2.Y)
}

// bezierAxis is one axis of a cubic with implicit endpoints 0 and 1.
func bezierAxis(t, p1, p2 float32) float32 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

func bezierAxisDeriv(t, p1, p2 float32) float32 {
	u := 1 - t
	return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
}

// springEval is the step response of a damped harmonic oscillator,
// normalized so t=1 lands near the rest position.
func springEval(t, damping, stiffness, mass float32) float32 {
	if !(damping > 0) || math32.IsInf(damping, 0) {
		damping = DefaultDamping
	}
	if !(stiffness > 0) || math32.IsInf(stiffness, 0) {
		stiffness = DefaultStiffness
	}
	if !(mass > 0) || math32.IsInf(mass, 0) {
		mass = DefaultMass
	}
	w0 := math32.Sqrt(stiffness / mass)
	zeta := damping / (2 * math32.Sqrt(stiffness*mass))
	if zeta >= 1 {
		// Critically damped or overdamped: no oscillation.
		return 1 - math32.Exp(-w0*t)*(1+w0*t)
	}
	wd := w0 * math32.Sqrt(1-zeta*zeta)
	decay := math32.Exp(-zeta * w0 * t)
	return 1 - decay*(math32.Cos(wd*t)+(zeta*w0/wd)*math32.Sin(wd*t))
}

// elasticEval is the exponentially decaying sinusoid ease-out.
func elasticEval(t, amplitude, period float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if !(period > 0) || math32.IsInf(period, 0) {
		period = DefaultPeriod
	}
	if !(amplitude >= 1) || math32.IsInf(amplitude, 0) {
		amplitude = DefaultAmplitude
	}
	s := period / (2 * math32.Pi) * math32.Asin(1/amplitude)
	return amplitude*math32.Pow(2, -10*t)*math32.Sin((t-s)*(2*math32.Pi)/period) + 1
}

// bounceEval is a piecewise-parabolic bounce-out. Bounciness scales how far
// each rebound departs from the settled value; 0.5 is the classic curve.
func bounceEval(t, bounciness float32) float32 {
	b := bounciness
	if math32.IsNaN(b) || math32.IsInf(b, 0) || b < 0 {
		b = DefaultBounciness
	}
	if b > 1 {
		b = 1
	}
	const (
		n1 = 7.5625
		d1 = 2.75
	)
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return 1 - 2*b*(0.25-n1*t*t)
	case t < 2.5/d1:
		t -= 2.25 / d1
		return 1 - 2*b*(0.0625-n1*t*t)
	default:
		t -= 2.625 / d1
		return 1 - 2*b*(0.015625-n1*t*t)
	}
}

// polylineEval interpolates linearly along the sorted (t, value) samples.
// Implicit (0,0) and (1,1) endpoints apply when not explicitly authored.
func polylineEval(t float32, points []CurvePoint) float32 {
	prev := Vec2{X: 0, Y: 0}
	for _, p := range points {
		if t <= p.Pos.X {
			return segmentLerp(t, prev, p.Pos)
		}
		prev = p.Pos
	}
	return segmentLerp(t, prev, Vec2{X: 1, Y: 1})
}

func segmentLerp(t float32, a, b Vec2) float32 {
	if b.X-a.X < 1e-6 {
		return b.Y
	}
	local := (t - a.X) / (b.X - a.X)
	return a.Y + (b.Y-a.Y)*local
}

// polyBezierEval interpolates along a polyline whose points carry tangent
// handles: each segment is a full cubic from one point's outgoing handle to
// the next point's incoming handle. Handles are absolute curve-space
// positions, matching the authored textual form.
func polyBezierEval(t float32, points []CurvePoint) float32 {
	start := CurvePoint{Pos: Vec2{X: 0, Y: 0}, HandleRight: Vec2{X: 0, Y: 0}}
	end := CurvePoint{Pos: Vec2{X: 1, Y: 1}, HandleLeft: Vec2{X: 1, Y: 1}}

	prev := start
	for _, p := range points {
		if t <= p.Pos.X {
			return segmentBezier(t, prev, p)
		}
		prev = p
	}
	return segmentBezier(t, prev, end)
}

// segmentBezier solves one cubic segment between two handled points for the
// curve parameter whose x equals t, then returns the y there.
func segmentBezier(t float32, a, b CurvePoint) float32 {
	x0, y0 := a.Pos.X, a.Pos.Y
	x1, y1 := a.HandleRight.X, a.HandleRight.Y
	x2, y2 := b.HandleLeft.X, b.HandleLeft.Y
	x3, y3 := b.Pos.X, b.Pos.Y

	if x3-x0 < 1e-6 {
		return y3
	}
	// Zero handles mean "no handle authored": degrade to a straight segment.
	if x1 == 0 && y1 == 0 && (x0 != 0 || y0 != 0) {
		x1, y1 = x0, y0
	}
	if x2 == 0 && y2 == 0 {
		x2, y2 = x3, y3
	}

	s := clamp01((t - x0) / (x3 - x0))
	for i := 0; i < 8; i++ {
		x := cubic1D(s, x0, x1, x2, x3)
		slope := cubic1DDeriv(s, x0, x1, x2, x3)
		if math32.Abs(slope) < 1e-6 {
			break
		}
		s = clamp01(s - (x-t)/slope)
	}
	return cubic1D(s, y0, y1, y2, y3)
}

func cubic1D(t, p0, p1, p2, p3 float32) float32 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}

func cubic1DDeriv(t, p0, p1, p2, p3 float32) float32 {
	u := 1 - t
	return 3*u*u*(p1-p0) + 6*u*t*(p2-p1) + 3*t*t*(p3-p2)
}
