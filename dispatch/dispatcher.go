package dispatch

import (
	"log/slog"

	"github.com/jvchiappini/motioner"
)

// Dispatcher owns the flattened buffers and the dirty-version gate.
//
// Prepare re-flattens the scene only when the scene version moved past the
// version the buffers were built from; otherwise the buffers are reused
// untouched and only the per-frame uniforms change. This single gate is the
// authority on "does authored content differ from what the execution stage
// last saw": it must never leave stale buffers in place, and it must never
// re-flatten when nothing changed.
//
// Dispatcher is owned by the render context and is not safe for concurrent
// use.
type Dispatcher struct {
	enc      Encoding
	uniforms Uniforms

	// currentSceneVersion is the scene version the buffers reflect.
	// Starts at 0, before any authored scene version.
	currentSceneVersion uint64

	// uvOverrides maps element index to a [u0, v0, u1, v1] rectangle
	// supplied by the glyph atlas. Kept outside the encoding so overrides
	// survive a re-flatten and never touch the keyframe streams.
	uvOverrides map[int][4]float32

	fps float64
}

// NewDispatcher creates a dispatcher for content authored at the given
// frame rate. fps must be positive; it travels to the execution stage in
// the uniforms.
func NewDispatcher(fps float64) (*Dispatcher, error) {
	if _, err := motioner.SecondsToFrame(0, fps); err != nil {
		return nil, err
	}
	return &Dispatcher{
		uvOverrides: make(map[int][4]float32),
		fps:         fps,
	}, nil
}

// Prepare brings the buffers up to date for one dispatch. It returns true
// when the scene content was re-flattened, false when the cached buffers
// were reused. Per-frame uniforms are refreshed on every call either way.
func (d *Dispatcher) Prepare(scene *motioner.Scene, frame int, viewportW, viewportH int) bool {
	flattened := false
	if v := scene.Version(); v > d.currentSceneVersion {
		d.flatten(scene)
		d.currentSceneVersion = v
		flattened = true
		motioner.Logger().Debug("dispatch: scene re-flattened",
			slog.Uint64("version", v),
			slog.Int("elements", len(d.enc.Descriptors)),
			slog.Int("keyframes", len(d.enc.Keyframes)))
	}

	if frame < 0 {
		frame = 0
	}
	d.uniforms = Uniforms{
		Frame:        uint32(frame),
		ElementCount: uint32(len(d.enc.Descriptors)),
		FPS:          float32(d.fps),
		Time:         float32(float64(frame) / d.fps),
		Viewport:     [2]float32{float32(viewportW), float32(viewportH)},
	}
	return flattened
}

func (d *Dispatcher) flatten(scene *motioner.Scene) {
	d.enc.Reset()
	for _, el := range scene.Elements() {
		d.enc.AppendElement(el)
	}
	d.applyUVOverrides()
}

// Invalidate forces the next Prepare to re-flatten regardless of the scene
// version. The renderer calls this when a downstream failure (readback
// timeout) consumed the flattened buffers without producing output, so the
// failed frame is never mistaken for having been seen.
func (d *Dispatcher) Invalidate() { d.currentSceneVersion = 0 }

// Encoding returns the flattened buffers. The execution stage reads them;
// nothing else may mutate them.
func (d *Dispatcher) Encoding() *Encoding { return &d.enc }

// Uniforms returns the per-frame uniform state of the last Prepare call.
func (d *Dispatcher) Uniforms() Uniforms { return d.uniforms }

// SceneVersion returns the scene version the buffers currently reflect.
func (d *Dispatcher) SceneVersion() uint64 { return d.currentSceneVersion }

// FPS returns the dispatcher's frame rate.
func (d *Dispatcher) FPS() float64 { return d.fps }

// SetUVOverride substitutes the UV rectangle of the element at index,
// typically because its glyphs were rendered into a shared atlas. The
// override merges into the descriptor without touching geometry channels
// and without bumping any version; it survives re-flattens until cleared.
func (d *Dispatcher) SetUVOverride(index int, uv [4]float32) {
	d.uvOverrides[index] = uv
	if index >= 0 && index < len(d.enc.Descriptors) {
		d.enc.Descriptors[index].UV0 = [2]float32{uv[0], uv[1]}
		d.enc.Descriptors[index].UV1 = [2]float32{uv[2], uv[3]}
	}
}

// ClearUVOverrides removes all UV overrides and zeroes the descriptors'
// UV rectangles.
func (d *Dispatcher) ClearUVOverrides() {
	for index := range d.uvOverrides {
		if index >= 0 && index < len(d.enc.Descriptors) {
			d.enc.Descriptors[index].UV0 = [2]float32{}
			d.enc.Descriptors[index].UV1 = [2]float32{}
		}
		delete(d.uvOverrides, index)
	}
}

func (d *Dispatcher) applyUVOverrides() {
	for index, uv := range d.uvOverrides {
		if index >= 0 && index < len(d.enc.Descriptors) {
			d.enc.Descriptors[index].UV0 = [2]float32{uv[0], uv[1]}
			d.enc.Descriptors[index].UV1 = [2]float32{uv[2], uv[3]}
		}
	}
}
