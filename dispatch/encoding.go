package dispatch

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/jvchiappini/motioner"
)

// Encoding holds the flattened buffers: one shared keyframe array and one
// fixed-layout descriptor per element. Descriptor i corresponds to element
// i of the scene's element list, so the execution stage's output buffer is
// indexed identically to the elements.
//
// An Encoding is reused across re-flattens via Reset to avoid reallocating
// the streams every scene change.
type Encoding struct {
	Keyframes   []KeyframeRec
	Descriptors []ElementDesc
}

// Reset clears the streams for reuse, keeping allocated capacity.
func (e *Encoding) Reset() {
	e.Keyframes = e.Keyframes[:0]
	e.Descriptors = e.Descriptors[:0]
}

// IsEmpty reports whether the encoding holds no elements.
func (e *Encoding) IsEmpty() bool { return len(e.Descriptors) == 0 }

// Hash returns an FNV-1a hash over both streams. Two encodings of identical
// content hash identically; the optional GPU target uses this to skip
// re-uploading unchanged buffers.
func (e *Encoding) Hash() uint64 {
	const (
		offset uint64 = 14695981039346656037
		prime  uint64 = 1099511628211
	)
	h := offset
	mix := func(v uint64) {
		h ^= v
		h *= prime
	}
	for i := range e.Keyframes {
		k := &e.Keyframes[i]
		mix(uint64(k.Frame))
		mix(uint64(math.Float32bits(k.Value)))
		mix(uint64(k.Curve))
		mix(uint64(math.Float32bits(k.Param)))
	}
	for i := range e.Descriptors {
		d := &e.Descriptors[i]
		mix(uint64(d.XOffset)<<32 | uint64(d.XCount))
		mix(uint64(d.YOffset)<<32 | uint64(d.YCount))
		mix(uint64(d.RadiusOffset)<<32 | uint64(d.RadiusCount))
		mix(uint64(d.WOffset)<<32 | uint64(d.WCount))
		mix(uint64(d.HOffset)<<32 | uint64(d.HCount))
		mix(uint64(d.SizeOffset)<<32 | uint64(d.SizeCount))
		mix(uint64(d.ROffset)<<32 | uint64(d.RCount))
		mix(uint64(d.GOffset)<<32 | uint64(d.GCount))
		mix(uint64(d.BOffset)<<32 | uint64(d.BCount))
		mix(uint64(d.AOffset)<<32 | uint64(d.ACount))
		mix(uint64(d.ShapeKind))
		mix(uint64(d.Spawn))
		mix(uint64(d.Kill))
		mix(uint64(math.Float32bits(d.UV0[0])) | uint64(math.Float32bits(d.UV0[1]))<<32)
		mix(uint64(math.Float32bits(d.UV1[0])) | uint64(math.Float32bits(d.UV1[1]))<<32)
	}
	return h
}

// AppendElement flattens one element's numeric tracks and appends its
// descriptor. The descriptor's UV rectangle is left zero; the dispatcher
// merges overrides afterwards.
func (e *Encoding) AppendElement(el *motioner.Element) {
	var d ElementDesc
	d.XOffset, d.XCount = e.appendScalarTrack(&el.X)
	d.YOffset, d.YCount = e.appendScalarTrack(&el.Y)
	d.RadiusOffset, d.RadiusCount = e.appendScalarTrack(&el.Radius)
	d.WOffset, d.WCount = e.appendScalarTrack(&el.W)
	d.HOffset, d.HCount = e.appendScalarTrack(&el.H)
	d.SizeOffset, d.SizeCount = e.appendScalarTrack(&el.Size)

	r, g, b, a := e.appendColorTrack(&el.Color)
	d.ROffset, d.RCount = r[0], r[1]
	d.GOffset, d.GCount = g[0], g[1]
	d.BOffset, d.BCount = b[0], b[1]
	d.AOffset, d.ACount = a[0], a[1]

	d.ShapeKind = ShapeKindCode(el.Kind)
	d.Spawn = uint32(el.SpawnFrame)
	d.Kill = NoKill
	if el.KillFrame != nil && *el.KillFrame >= 0 {
		d.Kill = uint32(*el.KillFrame)
	}
	e.Descriptors = append(e.Descriptors, d)
}

// appendScalarTrack appends one float track to the keyframe stream and
// returns its (offset, count) pair.
func (e *Encoding) appendScalarTrack(tr *motioner.Track[float32]) (uint32, uint32) {
	keys := tr.Keys()
	offset := uint32(len(e.Keyframes))
	for _, k := range keys {
		e.Keyframes = append(e.Keyframes, KeyframeRec{
			Frame: uint32(k.Frame),
			Value: sanitize(k.Value),
			Curve: CurveCode(k.Easing),
			Param: CurveParam(k.Easing),
		})
	}
	return offset, uint32(len(keys))
}

// appendColorTrack expands a color track into four scalar channels. The
// r, g, b bytes are sRGB and convert to linear; alpha normalizes to 0..1.
func (e *Encoding) appendColorTrack(tr *motioner.Track[[4]uint8]) (r, g, b, a [2]uint32) {
	keys := tr.Keys()
	channel := func(component int, convert func(uint8) float32) [2]uint32 {
		offset := uint32(len(e.Keyframes))
		for _, k := range keys {
			e.Keyframes = append(e.Keyframes, KeyframeRec{
				Frame: uint32(k.Frame),
				Value: convert(k.Value[component]),
				Curve: CurveCode(k.Easing),
				Param: CurveParam(k.Easing),
			})
		}
		return [2]uint32{offset, uint32(len(keys))}
	}
	r = channel(0, srgbByteToLinear)
	g = channel(1, srgbByteToLinear)
	b = channel(2, srgbByteToLinear)
	a = channel(3, func(v uint8) float32 { return float32(v) / 255 })
	return r, g, b, a
}

// sanitize keeps NaN/Inf out of the flattened buffers. A bad value is the
// author's problem; a poisoned buffer would be everyone's.
func sanitize(v float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		motioner.Logger().Warn("dispatch: non-finite keyframe value replaced with 0")
		return 0
	}
	return v
}

// srgbByteToLinear converts an 8-bit sRGB component to linear light.
func srgbByteToLinear(v uint8) float32 {
	c := float32(v) / 255
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}
