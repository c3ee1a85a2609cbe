// Package dispatch flattens authored keyframe tracks into contiguous buffers
// a parallel per-element execution stage can evaluate without pointer
// chasing, and owns the scene-version dirty gate that decides when the
// flatten must re-run.
package dispatch

import (
	"github.com/jvchiappini/motioner"
)

// NoKill is the Kill sentinel meaning the element is never killed.
const NoKill uint32 = 0xFFFF_FFFF

// WorkgroupSize is the compute-stage workgroup width. Dispatch widths are
// computed against it; the WGSL evaluator declares the same value.
const WorkgroupSize = 64

// KeyframeRec is the wire form of one keyframe in the shared keyframe
// buffer. Must match Keyframe in evaluate.wgsl.
type KeyframeRec struct {
	Frame uint32  // frame index
	Value float32 // channel value (already linearized for color channels)
	Curve uint32  // curve code, see CurveCode
	Param float32 // curve parameter (power), 0 when unused
}

// ElementDesc is the fixed-layout per-element descriptor: one
// (offset, count) pair per scalar channel into the shared keyframe buffer,
// plus shape kind, lifetime window, and the UV rectangle override for text.
// Must match ElementDesc in evaluate.wgsl.
type ElementDesc struct {
	XOffset, XCount           uint32
	YOffset, YCount           uint32
	RadiusOffset, RadiusCount uint32
	WOffset, WCount           uint32
	HOffset, HCount           uint32
	SizeOffset, SizeCount     uint32

	// Color expands to four scalar channels: r, g, b are sRGB-to-linear
	// converted, a is normalized to 0..1.
	ROffset, RCount uint32
	GOffset, GCount uint32
	BOffset, BCount uint32
	AOffset, ACount uint32

	ShapeKind uint32 // 0 circle, 1 rect, 2 text
	Spawn     uint32
	Kill      uint32 // NoKill when the element is never killed
	Padding   uint32 // alignment

	UV0 [2]float32
	UV1 [2]float32
}

// Uniforms is the small per-frame state written on every dispatch, whether
// or not the keyframe buffers were re-flattened. Must match Uniforms in
// evaluate.wgsl.
type Uniforms struct {
	Frame        uint32
	ElementCount uint32
	FPS          float32
	Time         float32 // Frame / FPS, in seconds
	Viewport     [2]float32
	Pad0         uint32
	Pad1         uint32
}

// Curve codes evaluable by the parallel execution stage. Every other easing
// variant deterministically degrades to CurveLinear; see CurveCode.
const (
	CurveLinear    uint32 = 0
	CurveEaseIn    uint32 = 1
	CurveEaseOut   uint32 = 2
	CurveEaseInOut uint32 = 3
	CurveSine      uint32 = 4
	CurveExpo      uint32 = 5
	CurveCirc      uint32 = 6
)

// CurveCode maps an easing to its parallel-path curve code.
//
// The execution stage evaluates a strict subset of the easing model:
// {Linear, EaseIn, EaseOut, EaseInOut, Sine, Expo, Circ}. Richer curves
// (Bezier, Spring, Elastic, Bounce, Step, Custom, CustomBezier) map to
// CurveLinear. This is a documented approximation, not an error: authored
// content round-trips those curves intact, they just play back linearly.
func CurveCode(e motioner.Easing) uint32 {
	switch e.Kind {
	case motioner.EasingLinear:
		return CurveLinear
	case motioner.EasingEaseIn:
		return CurveEaseIn
	case motioner.EasingEaseOut:
		return CurveEaseOut
	case motioner.EasingEaseInOut:
		return CurveEaseInOut
	case motioner.EasingSine:
		return CurveSine
	case motioner.EasingExpo:
		return CurveExpo
	case motioner.EasingCirc:
		return CurveCirc
	default:
		return CurveLinear
	}
}

// CurveParam returns the scalar parameter dispatched alongside the curve
// code. Only the power family carries one.
func CurveParam(e motioner.Easing) float32 {
	switch e.Kind {
	case motioner.EasingEaseIn, motioner.EasingEaseOut, motioner.EasingEaseInOut:
		if p := e.Power; p > 0 {
			return p
		}
		return motioner.DefaultPower
	default:
		return 0
	}
}

// ShapeKindCode maps a shape kind to its descriptor discriminant.
func ShapeKindCode(k motioner.ShapeKind) uint32 {
	switch k {
	case motioner.ShapeRect:
		return 1
	case motioner.ShapeText:
		return 2
	default:
		return 0
	}
}

// WorkgroupCount returns the number of workgroups needed to cover n
// elements at the compute stage's workgroup width.
func WorkgroupCount(n int) uint32 {
	if n <= 0 {
		return 0
	}
	return uint32((n + WorkgroupSize - 1) / WorkgroupSize)
}
