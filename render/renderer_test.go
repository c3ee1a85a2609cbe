package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/jvchiappini/motioner"
)

func testScene() *motioner.Scene {
	s := motioner.NewScene()
	el := motioner.NewElement("dot", motioner.ShapeCircle, 0)
	el.X.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.5})
	el.Y.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.5})
	el.Radius.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.2})
	el.Color.Upsert(motioner.Keyframe[[4]uint8]{Frame: 0, Value: [4]uint8{255, 0, 0, 255}})
	s.Add(el)
	return s
}

func TestRenderFrameDrawsCircle(t *testing.T) {
	r, err := NewRenderer(testScene(), WithViewport(128, 128))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Close()

	f, err := r.RenderFrame(0)
	if err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	if f.Width != 128 || f.Height != 128 || len(f.Pixels) != 128*128*4 {
		t.Fatalf("frame = %dx%d, %d bytes", f.Width, f.Height, len(f.Pixels))
	}

	// Center pixel is inside the red circle.
	center := (64*128 + 64) * 4
	if f.Pixels[center] == 0 || f.Pixels[center+3] == 0 {
		t.Errorf("center pixel = %v, want opaque red", f.Pixels[center:center+4])
	}
	// A corner is outside the circle: transparent background.
	if f.Pixels[3] != 0 {
		t.Errorf("corner alpha = %d, want 0", f.Pixels[3])
	}

	if len(f.Records) != 1 || !f.Records[0].Alive {
		t.Errorf("records = %+v, want one alive record", f.Records)
	}
}

func TestRenderFrameTileCacheReuse(t *testing.T) {
	r, err := NewRenderer(testScene(), WithViewport(128, 128))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Close()

	if _, err := r.RenderFrame(0); err != nil {
		t.Fatalf("first RenderFrame() error = %v", err)
	}
	first := r.CacheStats()
	if first.Hits != 0 {
		t.Fatalf("first frame hits = %d, want 0", first.Hits)
	}

	// Same frame, untouched scene: every tile comes from the cache.
	if _, err := r.RenderFrame(0); err != nil {
		t.Fatalf("second RenderFrame() error = %v", err)
	}
	second := r.CacheStats()
	if second.Hits == 0 {
		t.Error("second render of an unchanged frame hit the cache 0 times")
	}
	if second.Misses != first.Misses {
		t.Errorf("second render added %d misses, want 0", second.Misses-first.Misses)
	}
}

func TestRenderFrameSceneEditInvalidates(t *testing.T) {
	scene := testScene()
	r, err := NewRenderer(scene, WithViewport(64, 64))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Close()

	f1, err := r.RenderFrame(0)
	if err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}

	// Move the circle and bump the version; the same frame must re-render.
	scene.Elements()[0].X.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.1})
	scene.Touch()

	f2, err := r.RenderFrame(0)
	if err != nil {
		t.Fatalf("RenderFrame() after edit error = %v", err)
	}
	if bytes.Equal(f1.Pixels, f2.Pixels) {
		t.Error("pixels unchanged after a scene edit")
	}
	if f2.Records[0].X != 0.1 {
		t.Errorf("record x = %v, want 0.1", f2.Records[0].X)
	}
}

func TestHitTest(t *testing.T) {
	scene := testScene()
	r, err := NewRenderer(scene, WithViewport(128, 128))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Close()

	if _, err := r.RenderFrame(0); err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}

	if hits := r.HitTest(0.5, 0.5); len(hits) != 1 || hits[0] != 0 {
		t.Errorf("HitTest(center) = %v, want [0]", hits)
	}
	// Same tile as part of the circle, but outside it: the spatial grid
	// candidates must be filtered by exact containment.
	if hits := r.HitTest(0.95, 0.95); len(hits) != 0 {
		t.Errorf("HitTest(corner) = %v, want none", hits)
	}
}

func TestHitTestZOrder(t *testing.T) {
	scene := motioner.NewScene()
	for i, z := range []int32{5, 10} {
		el := motioner.NewElement("dot", motioner.ShapeCircle, 0)
		el.X.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.5})
		el.Y.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.5})
		el.Radius.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.1 + float32(i)*0.05})
		el.ZIndex.Upsert(motioner.Keyframe[int32]{Frame: 0, Value: z})
		scene.Add(el)
	}

	r, err := NewRenderer(scene, WithViewport(64, 64))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Close()

	if _, err := r.RenderFrame(0); err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	hits := r.HitTest(0.5, 0.5)
	if len(hits) != 2 || hits[0] != 1 {
		t.Errorf("HitTest = %v, want topmost (z=10, index 1) first", hits)
	}
}

func TestInvisibleElementNotDrawn(t *testing.T) {
	scene := testScene()
	scene.Elements()[0].Visible.Upsert(motioner.Keyframe[bool]{Frame: 0, Value: false})
	scene.Touch()

	r, err := NewRenderer(scene, WithViewport(64, 64))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Close()

	f, err := r.RenderFrame(0)
	if err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	for i := 3; i < len(f.Pixels); i += 4 {
		if f.Pixels[i] != 0 {
			t.Fatal("hidden element produced pixels")
		}
	}
	if hits := r.HitTest(0.5, 0.5); len(hits) != 0 {
		t.Errorf("HitTest on hidden element = %v, want none", hits)
	}
}

func TestSnapshotAndPNG(t *testing.T) {
	r, err := NewRenderer(testScene(), WithViewport(32, 32))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Close()

	img, err := r.Snapshot(0)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Errorf("snapshot bounds = %v, want 32x32", img.Bounds())
	}

	f, err := r.RenderFrame(0)
	if err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	data, err := EncodePNG(f)
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if decoded.Bounds().Dx() != 32 {
		t.Errorf("decoded width = %d, want 32", decoded.Bounds().Dx())
	}
}

func TestExportFrames(t *testing.T) {
	r, err := NewRenderer(testScene(), WithViewport(32, 32))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Close()

	out, err := r.ExportFrames(context.Background(), 0, 5, 10)
	if err != nil {
		t.Fatalf("ExportFrames() error = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("ExportFrames() returned %d frames, want 3", len(out))
	}
	for i, data := range out {
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			t.Errorf("frame %d: invalid png: %v", i, err)
		}
	}
}

func TestExportFramesCancelled(t *testing.T) {
	r, err := NewRenderer(testScene(), WithViewport(32, 32))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.ExportFrames(ctx, 0, 1, 2); err == nil {
		t.Error("ExportFrames() with cancelled context = nil error")
	}
}

func TestNewRendererInvalidViewport(t *testing.T) {
	if _, err := NewRenderer(motioner.NewScene(), WithViewport(0, 10)); err == nil {
		t.Error("NewRenderer() with zero width = nil error")
	}
}
