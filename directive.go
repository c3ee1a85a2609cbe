package motioner

import "fmt"

// ElementDef is one typed element definition handed over by the
// description-language layer: initial properties, a lifetime in seconds,
// and the animation directives that target the element. All times are in
// seconds; this package owns the conversion to frames.
type ElementDef struct {
	Name  string
	Kind  ShapeKind
	Props FrameProps

	SpawnSeconds float64
	// KillSeconds, when non-nil, ends the element's lifetime.
	KillSeconds *float64

	Directives []MoveDirective
}

// MoveDirective animates element properties toward destination values over
// a time range. Easing holds the textual easing specification of the
// description language (see ParseEasing); malformed text degrades to
// linear rather than failing the document.
type MoveDirective struct {
	// To carries the destination values. Nil fields are not animated.
	To FrameProps

	StartSeconds float64
	EndSeconds   float64

	Easing string
}

// BuildElements converts element definitions into animated elements with
// explicit boundary keyframes. fps must be positive; it is required on
// every call because the directive times are authored in seconds and the
// tracks live in frames.
//
// Each directive upserts two keyframes per destination property: a start
// keyframe holding the element's current value at the start frame, and an
// end keyframe holding the destination and carrying the directive's
// easing. The evaluation stage shapes each segment with the easing of the
// keyframe it runs toward, so the easing lands on the destination. A
// zero-length directive collapses to a single keyframe at the destination,
// keeping the directive's easing. Chained and overlapping directives
// compose because each start value is sampled from the tracks built so
// far.
func BuildElements(defs []ElementDef, fps float64) ([]*Element, error) {
	elements := make([]*Element, 0, len(defs))
	for i := range defs {
		def := &defs[i]
		spawn, err := SecondsToFrame(def.SpawnSeconds, fps)
		if err != nil {
			return nil, fmt.Errorf("motioner: element %q: %w", def.Name, err)
		}
		el := NewElement(def.Name, def.Kind, spawn)
		if def.KillSeconds != nil {
			kill, err := SecondsToFrame(*def.KillSeconds, fps)
			if err != nil {
				return nil, fmt.Errorf("motioner: element %q: %w", def.Name, err)
			}
			el.KillFrame = &kill
		}
		el.InsertFrame(spawn, def.Props)

		for _, d := range def.Directives {
			if err := applyDirective(el, d, fps); err != nil {
				return nil, fmt.Errorf("motioner: element %q: %w", def.Name, err)
			}
		}
		elements = append(elements, el)
	}
	return elements, nil
}

// applyDirective writes the boundary keyframes for one directive.
func applyDirective(el *Element, d MoveDirective, fps float64) error {
	startFrame, err := SecondsToFrame(d.StartSeconds, fps)
	if err != nil {
		return err
	}
	endFrame, err := SecondsToFrame(d.EndSeconds, fps)
	if err != nil {
		return err
	}
	easing := ParseEasing(d.Easing)

	current, _ := el.Sample(startFrame)

	upsertF32 := func(tr *Track[float32], cur *float32, dest *float32, def float32) {
		if dest == nil {
			return
		}
		if startFrame == endFrame {
			tr.Upsert(Keyframe[float32]{Frame: startFrame, Value: *dest, Easing: easing})
			return
		}
		start := def
		if cur != nil {
			start = *cur
		}
		tr.Upsert(Keyframe[float32]{Frame: startFrame, Value: start, Easing: Linear()})
		tr.Upsert(Keyframe[float32]{Frame: endFrame, Value: *dest, Easing: easing})
	}

	// Position defaults to scene center when the element has no keyframed
	// position yet; other properties start at their destination, which
	// holds them constant until the directive completes.
	upsertF32(&el.X, current.X, d.To.X, 0.5)
	upsertF32(&el.Y, current.Y, d.To.Y, 0.5)
	upsertF32(&el.Radius, current.Radius, d.To.Radius, deref(d.To.Radius))
	upsertF32(&el.W, current.W, d.To.W, deref(d.To.W))
	upsertF32(&el.H, current.H, d.To.H, deref(d.To.H))
	upsertF32(&el.Size, current.Size, d.To.Size, deref(d.To.Size))

	if d.To.Color != nil {
		start := *d.To.Color
		if current.Color != nil {
			start = *current.Color
		}
		if startFrame == endFrame {
			el.Color.Upsert(Keyframe[[4]uint8]{Frame: startFrame, Value: *d.To.Color, Easing: easing})
		} else {
			el.Color.Upsert(Keyframe[[4]uint8]{Frame: startFrame, Value: start, Easing: Linear()})
			el.Color.Upsert(Keyframe[[4]uint8]{Frame: endFrame, Value: *d.To.Color, Easing: easing})
		}
	}

	// Discrete properties cannot interpolate; the destination lands on the
	// end frame and hold sampling does the rest.
	if d.To.Value != nil {
		el.Value.Upsert(Keyframe[string]{Frame: endFrame, Value: *d.To.Value, Easing: easing})
	}
	if d.To.Visible != nil {
		el.Visible.Upsert(Keyframe[bool]{Frame: endFrame, Value: *d.To.Visible, Easing: easing})
	}
	if d.To.ZIndex != nil {
		el.ZIndex.Upsert(Keyframe[int32]{Frame: endFrame, Value: *d.To.ZIndex, Easing: easing})
	}
	return nil
}

func deref(p *float32) float32 {
	if p == nil {
		return 0
	}
	return *p
}
