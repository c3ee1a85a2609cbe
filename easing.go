package motioner

// EasingKind discriminates the closed set of easing curve variants.
//
// The set is closed on purpose: the textual scene-description form, the
// evaluator, and the parallel-path curve codes (package dispatch) all
// enumerate it exhaustively. Adding a variant means touching all three.
type EasingKind uint8

const (
	// EasingLinear is the identity curve.
	EasingLinear EasingKind = iota

	// EasingEaseIn accelerates from rest: t^power.
	EasingEaseIn

	// EasingEaseOut decelerates to rest: 1-(1-t)^power.
	EasingEaseOut

	// EasingEaseInOut accelerates then decelerates, symmetric around t=0.5.
	EasingEaseInOut

	// EasingSine is the sinusoidal ease-in-out preset.
	EasingSine

	// EasingExpo is the exponential ease-in-out preset.
	EasingExpo

	// EasingCirc is the circular ease-in-out preset.
	EasingCirc

	// EasingBezier is a two-control-point cubic bezier curve.
	EasingBezier

	// EasingSpring is a damped spring response.
	EasingSpring

	// EasingElastic is an elastic overshoot curve.
	EasingElastic

	// EasingBounce is a bouncing settle curve.
	EasingBounce

	// EasingStep snaps instantly to the end value.
	EasingStep

	// EasingCustom is an explicit polyline of (t, value) samples.
	EasingCustom

	// EasingCustomBezier is a polyline with per-point tangent handles.
	EasingCustomBezier
)

// String returns the canonical curve name (the DSL keyword).
func (k EasingKind) String() string {
	switch k {
	case EasingLinear:
		return "linear"
	case EasingEaseIn:
		return "ease_in"
	case EasingEaseOut:
		return "ease_out"
	case EasingEaseInOut:
		return "ease_in_out"
	case EasingSine:
		return "sine"
	case EasingExpo:
		return "expo"
	case EasingCirc:
		return "circ"
	case EasingBezier:
		return "bezier"
	case EasingSpring:
		return "spring"
	case EasingElastic:
		return "elastic"
	case EasingBounce:
		return "bounce"
	case EasingStep:
		return "step"
	case EasingCustom:
		return "custom"
	case EasingCustomBezier:
		return "custom_bezier"
	default:
		return "linear"
	}
}

// Vec2 is a 2D float32 vector in curve/scene space.
type Vec2 struct {
	X, Y float32
}

// CurvePoint is one sample of a custom easing polyline.
// HandleLeft and HandleRight are only meaningful for EasingCustomBezier;
// they hold the incoming and outgoing tangent handles of the point.
type CurvePoint struct {
	Pos         Vec2
	HandleLeft  Vec2
	HandleRight Vec2
}

// Parameter defaults applied when the textual form omits an argument.
const (
	DefaultPower      float32 = 2.0
	DefaultDamping    float32 = 10.0
	DefaultStiffness  float32 = 100.0
	DefaultMass       float32 = 1.0
	DefaultAmplitude  float32 = 1.0
	DefaultPeriod     float32 = 0.3
	DefaultBounciness float32 = 0.5
)

// Easing describes a progress-remapping curve. The zero value is Linear.
//
// Easing is a tagged record: Kind selects the variant and only the fields
// belonging to that variant are meaningful. Construct values through the
// constructor functions (Linear, EaseIn, Bezier, ...) so unused fields stay
// zero and comparisons behave.
type Easing struct {
	Kind EasingKind

	// Power parametrizes EaseIn/EaseOut/EaseInOut.
	Power float32

	// P1, P2 are the control points of a Bezier curve.
	P1, P2 Vec2

	// Damping, Stiffness, Mass parametrize a Spring.
	Damping, Stiffness, Mass float32

	// Amplitude, Period parametrize an Elastic.
	Amplitude, Period float32

	// Bounciness parametrizes a Bounce.
	Bounciness float32

	// Points holds the polyline of Custom/CustomBezier curves, sorted
	// ascending by Pos.X. Implicit (0,0) and (1,1) endpoints are assumed
	// present unless explicitly authored.
	Points []CurvePoint
}

// Linear returns the identity easing.
func Linear() Easing { return Easing{Kind: EasingLinear} }

// EaseIn returns a power ease-in curve.
func EaseIn(power float32) Easing { return Easing{Kind: EasingEaseIn, Power: power} }

// EaseOut returns a power ease-out curve.
func EaseOut(power float32) Easing { return Easing{Kind: EasingEaseOut, Power: power} }

// EaseInOut returns a power ease-in-out curve.
func EaseInOut(power float32) Easing { return Easing{Kind: EasingEaseInOut, Power: power} }

// Sine returns the sinusoidal preset.
func Sine() Easing { return Easing{Kind: EasingSine} }

// Expo returns the exponential preset.
func Expo() Easing { return Easing{Kind: EasingExpo} }

// Circ returns the circular preset.
func Circ() Easing { return Easing{Kind: EasingCirc} }

// Bezier returns a cubic bezier easing with control points p1 and p2.
func Bezier(p1, p2 Vec2) Easing { return Easing{Kind: EasingBezier, P1: p1, P2: p2} }

// Spring returns a damped spring easing.
func Spring(damping, stiffness, mass float32) Easing {
	return Easing{Kind: EasingSpring, Damping: damping, Stiffness: stiffness, Mass: mass}
}

// Elastic returns an elastic easing.
func Elastic(amplitude, period float32) Easing {
	return Easing{Kind: EasingElastic, Amplitude: amplitude, Period: period}
}

// Bounce returns a bounce easing.
func Bounce(bounciness float32) Easing {
	return Easing{Kind: EasingBounce, Bounciness: bounciness}
}

// Step returns the instant-snap easing.
func Step() Easing { return Easing{Kind: EasingStep} }

// Custom returns a polyline easing over the given (t, value) samples.
// Points are assumed sorted ascending by t.
func Custom(points []CurvePoint) Easing {
	return Easing{Kind: EasingCustom, Points: points}
}

// CustomBezier returns a polyline easing with per-point tangent handles.
// Points are assumed sorted ascending by t.
func CustomBezier(points []CurvePoint) Easing {
	return Easing{Kind: EasingCustomBezier, Points: points}
}

// Equal reports whether two easings are the same variant with numerically
// equal parameters, comparing floats within eps. Fixed-precision textual
// round-trips quantize parameters, so exact == comparison is too strict.
func (e Easing) Equal(o Easing, eps float32) bool {
	if e.Kind != o.Kind {
		return false
	}
	if len(e.Points) != len(o.Points) {
		return false
	}
	eq := func(a, b float32) bool {
		d := a - b
		return d <= eps && d >= -eps
	}
	if !eq(e.Power, o.Power) ||
		!eq(e.P1.X, o.P1.X) || !eq(e.P1.Y, o.P1.Y) ||
		!eq(e.P2.X, o.P2.X) || !eq(e.P2.Y, o.P2.Y) ||
		!eq(e.Damping, o.Damping) || !eq(e.Stiffness, o.Stiffness) || !eq(e.Mass, o.Mass) ||
		!eq(e.Amplitude, o.Amplitude) || !eq(e.Period, o.Period) ||
		!eq(e.Bounciness, o.Bounciness) {
		return false
	}
	for i := range e.Points {
		p, q := e.Points[i], o.Points[i]
		if !eq(p.Pos.X, q.Pos.X) || !eq(p.Pos.Y, q.Pos.Y) ||
			!eq(p.HandleLeft.X, q.HandleLeft.X) || !eq(p.HandleLeft.Y, q.HandleLeft.Y) ||
			!eq(p.HandleRight.X, q.HandleRight.X) || !eq(p.HandleRight.Y, q.HandleRight.Y) {
			return false
		}
	}
	return true
}
