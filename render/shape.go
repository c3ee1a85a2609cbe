package render

// Shape kind discriminants, matching the descriptor encoding.
const (
	KindCircle uint32 = 0
	KindRect   uint32 = 1
	KindText   uint32 = 2
)

// ShapeRecord is one evaluated element at one frame. The record slice
// returned by a Target is indexed identically to the scene's element list.
//
// Coordinates and dimensions are normalized 0..1 over the viewport. Color
// is linear-light RGB plus alpha, unpremultiplied.
type ShapeRecord struct {
	Kind uint32

	X, Y   float32
	Radius float32
	W, H   float32
	Size   float32

	Color [4]float32

	// UV0/UV1 is the glyph atlas rectangle for text shapes; zero when no
	// atlas entry was dispatched.
	UV0, UV1 [2]float32

	// Z and Visible come from the discrete tracks, which never enter the
	// flattened buffers. Targets leave the defaults (0, true); the
	// renderer overlays the hold-sampled values before compositing.
	Z       int32
	Visible bool

	// Alive reports whether the frame falls inside the element's
	// [spawn, kill) window. Dead records carry no meaningful channels.
	Alive bool
}
