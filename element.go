package motioner

// ShapeKind discriminates the element shapes the renderer understands.
type ShapeKind uint8

const (
	// ShapeCircle is a circle positioned by center and radius.
	ShapeCircle ShapeKind = iota

	// ShapeRect is an axis-aligned rectangle positioned by center.
	ShapeRect

	// ShapeText is a text run positioned by its anchor point.
	ShapeText
)

// String returns the DSL keyword for the shape.
func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeRect:
		return "rect"
	case ShapeText:
		return "text"
	default:
		return "circle"
	}
}

// FrameProps is the sampled snapshot of one element at one frame. Each
// field is nil when the corresponding property was never keyframed for the
// element. Geometry is in normalized scene space.
type FrameProps struct {
	X       *float32
	Y       *float32
	Radius  *float32
	W       *float32
	H       *float32
	Size    *float32
	Value   *string
	Color   *[4]uint8
	Visible *bool
	ZIndex  *int32
}

// Merge overlays later onto p: fields set in later win, absent fields fall
// through to p. Neither input is modified.
func (p FrameProps) Merge(later FrameProps) FrameProps {
	out := p
	if later.X != nil {
		out.X = later.X
	}
	if later.Y != nil {
		out.Y = later.Y
	}
	if later.Radius != nil {
		out.Radius = later.Radius
	}
	if later.W != nil {
		out.W = later.W
	}
	if later.H != nil {
		out.H = later.H
	}
	if later.Size != nil {
		out.Size = later.Size
	}
	if later.Value != nil {
		out.Value = later.Value
	}
	if later.Color != nil {
		out.Color = later.Color
	}
	if later.Visible != nil {
		out.Visible = later.Visible
	}
	if later.ZIndex != nil {
		out.ZIndex = later.ZIndex
	}
	return out
}

// Element is one animated scene entity: identity, one track per animatable
// property, and a lifetime window. An element exclusively owns its tracks;
// tracks never reference other elements.
type Element struct {
	// Name identifies the element for directives and hit-test results.
	Name string

	// Kind selects the shape the render stage draws.
	Kind ShapeKind

	// SpawnFrame is the first frame the element exists on.
	SpawnFrame int

	// KillFrame, when non-nil, ends the element's lifetime: the element
	// exists on the half-open interval [SpawnFrame, *KillFrame).
	KillFrame *int

	// Ephemeral marks runtime-only elements that are not part of the
	// authored document and are skipped on re-serialization.
	Ephemeral bool

	// Animations carries the upstream description-language animation
	// blocks verbatim, for round-tripping authored content.
	Animations []string

	X       Track[float32]
	Y       Track[float32]
	Radius  Track[float32]
	W       Track[float32]
	H       Track[float32]
	Size    Track[float32]
	Value   Track[string]
	Color   Track[[4]uint8]
	Visible Track[bool]
	ZIndex  Track[int32]
}

// NewElement creates an element with no keyframes.
func NewElement(name string, kind ShapeKind, spawnFrame int) *Element {
	if spawnFrame < 0 {
		spawnFrame = 0
	}
	return &Element{Name: name, Kind: kind, SpawnFrame: spawnFrame}
}

// AliveAt reports whether the element exists on the given frame, honoring
// the half-open [SpawnFrame, KillFrame) lifetime window.
func (e *Element) AliveAt(frame int) bool {
	if frame < e.SpawnFrame {
		return false
	}
	if e.KillFrame != nil && frame >= *e.KillFrame {
		return false
	}
	return true
}

// HasTracks reports whether any property track holds at least one keyframe.
func (e *Element) HasTracks() bool {
	return e.X.Len() > 0 || e.Y.Len() > 0 || e.Radius.Len() > 0 ||
		e.W.Len() > 0 || e.H.Len() > 0 || e.Size.Len() > 0 ||
		e.Value.Len() > 0 || e.Color.Len() > 0 || e.Visible.Len() > 0 ||
		e.ZIndex.Len() > 0
}

// InsertFrame decomposes a snapshot into per-property keyframe insertions
// at the given frame, each with Linear easing. Fields that are nil in the
// snapshot leave their tracks untouched. Affected tracks stay sorted.
func (e *Element) InsertFrame(frame int, props FrameProps) {
	if frame < 0 {
		frame = 0
	}
	if props.X != nil {
		e.X.Upsert(Keyframe[float32]{Frame: frame, Value: *props.X, Easing: Linear()})
	}
	if props.Y != nil {
		e.Y.Upsert(Keyframe[float32]{Frame: frame, Value: *props.Y, Easing: Linear()})
	}
	if props.Radius != nil {
		e.Radius.Upsert(Keyframe[float32]{Frame: frame, Value: *props.Radius, Easing: Linear()})
	}
	if props.W != nil {
		e.W.Upsert(Keyframe[float32]{Frame: frame, Value: *props.W, Easing: Linear()})
	}
	if props.H != nil {
		e.H.Upsert(Keyframe[float32]{Frame: frame, Value: *props.H, Easing: Linear()})
	}
	if props.Size != nil {
		e.Size.Upsert(Keyframe[float32]{Frame: frame, Value: *props.Size, Easing: Linear()})
	}
	if props.Value != nil {
		e.Value.Upsert(Keyframe[string]{Frame: frame, Value: *props.Value, Easing: Linear()})
	}
	if props.Color != nil {
		e.Color.Upsert(Keyframe[[4]uint8]{Frame: frame, Value: *props.Color, Easing: Linear()})
	}
	if props.Visible != nil {
		e.Visible.Upsert(Keyframe[bool]{Frame: frame, Value: *props.Visible, Easing: Linear()})
	}
	if props.ZIndex != nil {
		e.ZIndex.Upsert(Keyframe[int32]{Frame: frame, Value: *props.ZIndex, Easing: Linear()})
	}
}

// Sample returns the hold-sampled snapshot of the element at a frame: for
// each property, the value of the latest keyframe at or before the frame.
// Properties with no keyframe at or before the frame stay nil.
//
// Hold sampling deliberately ignores easing and never blends between
// keyframes; it answers "what is the authoritative discrete value right
// now" for content that cannot be interpolated (text, layout inputs). The
// eased interpolation the execution stage performs over the same tracks is
// a different policy and diverges from this one between keyframes.
//
// The second return is false only when the element has no tracks at all.
func (e *Element) Sample(frame int) (FrameProps, bool) {
	if !e.HasTracks() {
		return FrameProps{}, false
	}
	var props FrameProps
	if v, ok := e.X.HoldAt(frame); ok {
		props.X = &v
	}
	if v, ok := e.Y.HoldAt(frame); ok {
		props.Y = &v
	}
	if v, ok := e.Radius.HoldAt(frame); ok {
		props.Radius = &v
	}
	if v, ok := e.W.HoldAt(frame); ok {
		props.W = &v
	}
	if v, ok := e.H.HoldAt(frame); ok {
		props.H = &v
	}
	if v, ok := e.Size.HoldAt(frame); ok {
		props.Size = &v
	}
	if v, ok := e.Value.HoldAt(frame); ok {
		props.Value = &v
	}
	if v, ok := e.Color.HoldAt(frame); ok {
		props.Color = &v
	}
	if v, ok := e.Visible.HoldAt(frame); ok {
		props.Visible = &v
	}
	if v, ok := e.ZIndex.HoldAt(frame); ok {
		props.ZIndex = &v
	}
	return props, true
}
