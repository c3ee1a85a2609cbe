// Package motioner provides the animation core for keyframed 2D scenes.
//
// # Overview
//
// motioner animates scene elements (circles, rectangles, text) by sampling
// per-property keyframe tracks. Authored content lives in sparse, eased
// tracks; playback flattens those tracks into contiguous buffers that a
// parallel execution stage evaluates per element per frame. Caching layers
// (a scene-version dirty gate, a content-addressed tile cache, and a spatial
// hash grid) keep scrubbing and continuous playback responsive without
// recomputing unchanged work.
//
// # Quick Start
//
//	import (
//	    "github.com/jvchiappini/motioner"
//	    "github.com/jvchiappini/motioner/render"
//	)
//
//	scene := motioner.NewScene()
//	el := motioner.NewElement("dot", motioner.ShapeCircle, 0)
//	el.X.Upsert(motioner.Keyframe[float32]{Frame: 0, Value: 0.2, Easing: motioner.Linear()})
//	el.X.Upsert(motioner.Keyframe[float32]{Frame: 30, Value: 0.8, Easing: motioner.EaseInOut(2)})
//	scene.Add(el)
//
//	r := render.New(scene, render.WithViewport(640, 480), render.WithFPS(30))
//	frame, err := r.RenderFrame(15)
//
// # Sampling Policies
//
// The package deliberately carries two divergent sampling policies over the
// same track data:
//
//   - Hold sampling (Element.Sample): the value of the latest keyframe at or
//     before the queried frame, with no interpolation and no easing. Used for
//     values that cannot be blended, such as text content and layout inputs.
//   - Eased interpolation (the execution stage driven by package dispatch):
//     the bracketing keyframe pair is located, local progress is remapped
//     through the easing curve of the reached keyframe, and the result is
//     written to the per-element output buffer.
//
// The two policies disagree between keyframes for numeric properties. That is
// intentional; do not unify them.
//
// # Architecture
//
// The library is organized into:
//   - Root package: easing model, keyframe tracks, elements, scenes, and the
//     scene-description input boundary.
//   - dispatch: buffer flattening, element descriptors, the dirty-version gate.
//   - render: execution-target contract, software target, tile renderer,
//     readback and snapshot paths.
//   - spatial, cache, text, project: supporting layers.
//   - backend/wgpu: optional GPU execution target (build tag nogpu disables).
//
// # Coordinate System
//
// Geometry is authored in normalized scene space: (0,0) top-left, (1,1)
// bottom-right. The renderer maps normalized space to the viewport.
package motioner

// Version is the current motioner version.
const Version = "0.4.0"
