//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"math"

	"github.com/jvchiappini/motioner/dispatch"
	"github.com/jvchiappini/motioner/render"
)

// GPU-side strides in bytes. Must match the struct layouts in
// evaluate.wgsl; array strides there follow WGSL storage layout rules.
const (
	keyframeStride   = 16  // Keyframe: frame, value, curve, param
	descriptorStride = 112 // ElementDesc: 10 channel pairs + meta + UVs
	uniformsSize     = 32  // Uniforms: frame, count, fps, time, viewport, pad
	shapeStride      = 64  // ShapeOut: scalars + alive + color + UVs
)

func putU32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func getU32(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

func getF32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

// encodeKeyframes serializes the shared keyframe stream for upload.
func encodeKeyframes(keys []dispatch.KeyframeRec) []byte {
	buf := make([]byte, len(keys)*keyframeStride)
	for i, k := range keys {
		off := i * keyframeStride
		putU32(buf, off+0, k.Frame)
		putF32(buf, off+4, k.Value)
		putU32(buf, off+8, k.Curve)
		putF32(buf, off+12, k.Param)
	}
	return buf
}

// encodeDescriptors serializes the per-element descriptors for upload.
func encodeDescriptors(descs []dispatch.ElementDesc) []byte {
	buf := make([]byte, len(descs)*descriptorStride)
	for i := range descs {
		d := &descs[i]
		off := i * descriptorStride
		pairs := [20]uint32{
			d.XOffset, d.XCount,
			d.YOffset, d.YCount,
			d.RadiusOffset, d.RadiusCount,
			d.WOffset, d.WCount,
			d.HOffset, d.HCount,
			d.SizeOffset, d.SizeCount,
			d.ROffset, d.RCount,
			d.GOffset, d.GCount,
			d.BOffset, d.BCount,
			d.AOffset, d.ACount,
		}
		for j, v := range pairs {
			putU32(buf, off+j*4, v)
		}
		putU32(buf, off+80, d.ShapeKind)
		putU32(buf, off+84, d.Spawn)
		putU32(buf, off+88, d.Kill)
		putU32(buf, off+92, d.Padding)
		putF32(buf, off+96, d.UV0[0])
		putF32(buf, off+100, d.UV0[1])
		putF32(buf, off+104, d.UV1[0])
		putF32(buf, off+108, d.UV1[1])
	}
	return buf
}

// encodeUniforms serializes the per-frame uniform block.
func encodeUniforms(u dispatch.Uniforms) []byte {
	buf := make([]byte, uniformsSize)
	putU32(buf, 0, u.Frame)
	putU32(buf, 4, u.ElementCount)
	putF32(buf, 8, u.FPS)
	putF32(buf, 12, u.Time)
	putF32(buf, 16, u.Viewport[0])
	putF32(buf, 20, u.Viewport[1])
	putU32(buf, 24, u.Pad0)
	putU32(buf, 28, u.Pad1)
	return buf
}

// decodeShapes converts the readback bytes into shape records. The Z and
// Visible fields stay at their defaults; the renderer overlays the discrete
// channels after evaluation, same as on the software path.
func decodeShapes(buf []byte, n int) []render.ShapeRecord {
	records := make([]render.ShapeRecord, n)
	for i := range records {
		off := i * shapeStride
		rec := &records[i]
		rec.Kind = getU32(buf, off+0)
		rec.X = getF32(buf, off+4)
		rec.Y = getF32(buf, off+8)
		rec.Radius = getF32(buf, off+12)
		rec.W = getF32(buf, off+16)
		rec.H = getF32(buf, off+20)
		rec.Size = getF32(buf, off+24)
		rec.Alive = getU32(buf, off+28) != 0
		rec.Color = [4]float32{
			getF32(buf, off+32),
			getF32(buf, off+36),
			getF32(buf, off+40),
			getF32(buf, off+44),
		}
		rec.UV0 = [2]float32{getF32(buf, off+48), getF32(buf, off+52)}
		rec.UV1 = [2]float32{getF32(buf, off+56), getF32(buf, off+60)}
		rec.Visible = true
	}
	return records
}
