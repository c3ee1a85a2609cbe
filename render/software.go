package render

import (
	"sort"

	"github.com/jvchiappini/motioner"
	"github.com/jvchiappini/motioner/dispatch"
	"github.com/jvchiappini/motioner/internal/parallel"
)

// SoftwareTarget is the CPU reference implementation of the execution
// stage. It evaluates exactly the curves the compute shader would — the
// coded subset, with richer curves already degraded to linear in the
// buffers — so software and GPU output agree channel for channel.
//
// Note this path interpolates between bracketing keyframes, unlike the
// authoring-side hold sampler: a property mid-segment is strictly between
// its endpoint values here, while Element.Sample holds the earlier one.
// The two policies are intentional and separately tested.
type SoftwareTarget struct {
	pool *parallel.WorkerPool
}

// NewSoftwareTarget creates a software target with its own worker pool.
// workers <= 0 selects the default sizing.
func NewSoftwareTarget(workers int) *SoftwareTarget {
	return &SoftwareTarget{pool: parallel.NewWorkerPool(workers)}
}

// Name returns "software".
func (t *SoftwareTarget) Name() string { return "software" }

// Init is a no-op; the CPU is always available.
func (t *SoftwareTarget) Init() error { return nil }

// Close shuts down the worker pool.
func (t *SoftwareTarget) Close() { t.pool.Close() }

// Evaluate computes one ShapeRecord per descriptor, in parallel chunks the
// width of a compute workgroup.
func (t *SoftwareTarget) Evaluate(enc *dispatch.Encoding, u dispatch.Uniforms) ([]ShapeRecord, error) {
	records := make([]ShapeRecord, len(enc.Descriptors))
	if len(records) == 0 {
		return records, nil
	}

	chunk := dispatch.WorkgroupSize
	jobs := make([]func(), 0, (len(records)+chunk-1)/chunk)
	for start := 0; start < len(records); start += chunk {
		end := min(start+chunk, len(records))
		lo, hi := start, end
		jobs = append(jobs, func() {
			for i := lo; i < hi; i++ {
				records[i] = evalElement(enc, &enc.Descriptors[i], u)
			}
		})
	}
	t.pool.ExecuteAll(jobs)
	return records, nil
}

// evalElement evaluates every channel of one descriptor at the uniform
// frame. Mirrors the per-thread body of the WGSL evaluator.
func evalElement(enc *dispatch.Encoding, d *dispatch.ElementDesc, u dispatch.Uniforms) ShapeRecord {
	rec := ShapeRecord{
		Kind:    d.ShapeKind,
		UV0:     d.UV0,
		UV1:     d.UV1,
		Visible: true,
	}
	if u.Frame < d.Spawn || (d.Kill != dispatch.NoKill && u.Frame >= d.Kill) {
		return rec
	}
	rec.Alive = true

	frame := float32(u.Frame)
	keys := enc.Keyframes
	rec.X = evalChannel(keys, d.XOffset, d.XCount, frame, 0.5)
	rec.Y = evalChannel(keys, d.YOffset, d.YCount, frame, 0.5)
	rec.Radius = evalChannel(keys, d.RadiusOffset, d.RadiusCount, frame, 0)
	rec.W = evalChannel(keys, d.WOffset, d.WCount, frame, 0)
	rec.H = evalChannel(keys, d.HOffset, d.HCount, frame, 0)
	rec.Size = evalChannel(keys, d.SizeOffset, d.SizeCount, frame, 0)
	rec.Color = [4]float32{
		evalChannel(keys, d.ROffset, d.RCount, frame, 1),
		evalChannel(keys, d.GOffset, d.GCount, frame, 1),
		evalChannel(keys, d.BOffset, d.BCount, frame, 1),
		evalChannel(keys, d.AOffset, d.ACount, frame, 1),
	}
	return rec
}

// evalChannel interpolates one flattened track at the given frame. Outside
// the keyed range the nearest keyframe value holds; between keyframes the
// curve of the keyframe being approached remaps the local progress.
func evalChannel(keys []dispatch.KeyframeRec, offset, count uint32, frame, fallback float32) float32 {
	if count == 0 {
		return fallback
	}
	seg := keys[offset : offset+count]
	if frame <= float32(seg[0].Frame) {
		return seg[0].Value
	}
	if last := seg[len(seg)-1]; frame >= float32(last.Frame) {
		return last.Value
	}

	// First keyframe strictly past the frame; its predecessor starts the
	// active segment.
	i := sort.Search(len(seg), func(i int) bool {
		return float32(seg[i].Frame) > frame
	})
	k0, k1 := seg[i-1], seg[i]
	span := float32(k1.Frame - k0.Frame)
	local := (frame - float32(k0.Frame)) / span
	eased := evalCurve(k1.Curve, k1.Param, local)
	return k0.Value + (k1.Value-k0.Value)*eased
}

// evalCurve evaluates a coded curve, the same subset and formulas the
// compute shader carries.
func evalCurve(code uint32, param, t float32) float32 {
	var e motioner.Easing
	switch code {
	case dispatch.CurveEaseIn:
		e = motioner.EaseIn(param)
	case dispatch.CurveEaseOut:
		e = motioner.EaseOut(param)
	case dispatch.CurveEaseInOut:
		e = motioner.EaseInOut(param)
	case dispatch.CurveSine:
		e = motioner.Sine()
	case dispatch.CurveExpo:
		e = motioner.Expo()
	case dispatch.CurveCirc:
		e = motioner.Circ()
	default:
		e = motioner.Linear()
	}
	return motioner.Evaluate(e, t)
}
