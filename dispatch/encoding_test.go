package dispatch

import (
	"math"
	"testing"

	"github.com/jvchiappini/motioner"
)

func buildTestElement() *motioner.Element {
	el := motioner.NewElement("dot", motioner.ShapeCircle, 0)
	el.X.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.0, Easing: motioner.Linear()})
	el.X.Upsert(motioner.Keyframe[float32]{Frame: 30, Value: 1.0, Easing: motioner.EaseInOut(2)})
	el.Y.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.5, Easing: motioner.Linear()})
	return el
}

func TestAppendElementOffsets(t *testing.T) {
	var enc Encoding
	enc.AppendElement(buildTestElement())

	if len(enc.Descriptors) != 1 {
		t.Fatalf("Descriptors = %d, want 1", len(enc.Descriptors))
	}
	d := enc.Descriptors[0]

	if d.XOffset != 0 || d.XCount != 2 {
		t.Errorf("x channel = (%d, %d), want (0, 2)", d.XOffset, d.XCount)
	}
	if d.YOffset != 2 || d.YCount != 1 {
		t.Errorf("y channel = (%d, %d), want (2, 1)", d.YOffset, d.YCount)
	}
	if d.RadiusCount != 0 || d.SizeCount != 0 {
		t.Errorf("empty tracks got nonzero counts: radius %d size %d", d.RadiusCount, d.SizeCount)
	}
	if d.ShapeKind != 0 {
		t.Errorf("ShapeKind = %d, want 0 (circle)", d.ShapeKind)
	}
	if d.Spawn != 0 || d.Kill != NoKill {
		t.Errorf("lifetime = (%d, %#x), want (0, NoKill)", d.Spawn, d.Kill)
	}

	// Second keyframe of x carries the ease-in-out code and its power.
	k := enc.Keyframes[1]
	if k.Frame != 30 || k.Curve != CurveEaseInOut || k.Param != 2 {
		t.Errorf("keyframe = %+v, want frame 30 curve %d param 2", k, CurveEaseInOut)
	}
}

func TestAppendElementKillFrame(t *testing.T) {
	el := motioner.NewElement("gone", motioner.ShapeRect, 5)
	kill := 60
	el.KillFrame = &kill

	var enc Encoding
	enc.AppendElement(el)

	d := enc.Descriptors[0]
	if d.Spawn != 5 || d.Kill != 60 {
		t.Errorf("lifetime = (%d, %d), want (5, 60)", d.Spawn, d.Kill)
	}
}

func TestColorTrackExpansion(t *testing.T) {
	el := motioner.NewElement("tinted", motioner.ShapeRect, 0)
	el.Color.Upsert(motioner.Keyframe[[4]uint8]{
		Frame:  0,
		Value:  [4]uint8{255, 0, 128, 255},
		Easing: motioner.Linear(),
	})

	var enc Encoding
	enc.AppendElement(el)

	d := enc.Descriptors[0]
	if d.RCount != 1 || d.GCount != 1 || d.BCount != 1 || d.ACount != 1 {
		t.Fatalf("color channel counts = (%d, %d, %d, %d), want all 1",
			d.RCount, d.GCount, d.BCount, d.ACount)
	}

	r := enc.Keyframes[d.ROffset].Value
	g := enc.Keyframes[d.GOffset].Value
	b := enc.Keyframes[d.BOffset].Value
	a := enc.Keyframes[d.AOffset].Value

	if r != 1 {
		t.Errorf("r = %v, want 1 (255 sRGB is 1.0 linear)", r)
	}
	if g != 0 {
		t.Errorf("g = %v, want 0", g)
	}
	// 128/255 sRGB is about 0.216 linear, clearly below the 0.502
	// normalized value: the conversion must actually linearize.
	if b < 0.2 || b > 0.23 {
		t.Errorf("b = %v, want ~0.216 (linearized)", b)
	}
	if a != 1 {
		t.Errorf("a = %v, want 1 (alpha is normalized, not linearized)", a)
	}
}

func TestSanitizeNaN(t *testing.T) {
	el := motioner.NewElement("bad", motioner.ShapeCircle, 0)
	el.X.Upsert(motioner.Keyframe[float32]{
		Frame:  0,
		Value:  float32(math.NaN()),
		Easing: motioner.Linear(),
	})
	el.Y.Upsert(motioner.Keyframe[float32]{
		Frame:  0,
		Value:  float32(math.Inf(1)),
		Easing: motioner.Linear(),
	})

	var enc Encoding
	enc.AppendElement(el)

	for i, k := range enc.Keyframes {
		if math.IsNaN(float64(k.Value)) || math.IsInf(float64(k.Value), 0) {
			t.Errorf("keyframe %d holds non-finite value %v", i, k.Value)
		}
	}
	if enc.Keyframes[0].Value != 0 {
		t.Errorf("NaN sanitized to %v, want 0", enc.Keyframes[0].Value)
	}
}

func TestEncodingHash(t *testing.T) {
	var a, b Encoding
	a.AppendElement(buildTestElement())
	b.AppendElement(buildTestElement())

	if a.Hash() != b.Hash() {
		t.Error("identical content hashed differently")
	}

	// Re-flattening the same content through Reset keeps the hash stable.
	h := a.Hash()
	a.Reset()
	a.AppendElement(buildTestElement())
	if a.Hash() != h {
		t.Error("hash changed across Reset + identical re-flatten")
	}

	// Different content hashes differently.
	el := buildTestElement()
	el.X.Upsert(motioner.Keyframe[float32]{Frame: 30, Value: 0.9, Easing: motioner.EaseInOut(2)})
	var c Encoding
	c.AppendElement(el)
	if c.Hash() == h {
		t.Error("changed content produced the same hash")
	}
}

func TestEncodingReset(t *testing.T) {
	var enc Encoding
	enc.AppendElement(buildTestElement())
	enc.Reset()

	if !enc.IsEmpty() || len(enc.Keyframes) != 0 {
		t.Errorf("Reset left %d descriptors, %d keyframes",
			len(enc.Descriptors), len(enc.Keyframes))
	}
}
