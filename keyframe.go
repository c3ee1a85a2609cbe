package motioner

import "sort"

// Keyframe is one authored sample on a track: a value pinned to a frame,
// plus the easing curve that shapes the segment arriving at this keyframe
// on the parallel path. Frame is never negative.
type Keyframe[T any] struct {
	Frame  int
	Value  T
	Easing Easing
}

// Track is an ordered sequence of keyframes for a single property of one
// element, kept sorted ascending by frame at all times. The zero value is
// an empty, ready-to-use track.
//
// Track is not safe for concurrent mutation; tracks are owned exclusively
// by their element and mutated only by the authoring thread.
type Track[T any] struct {
	keys []Keyframe[T]
}

// Len returns the number of keyframes on the track.
func (tr *Track[T]) Len() int { return len(tr.keys) }

// Keys returns the underlying keyframe slice, sorted ascending by frame.
// The slice is shared, not copied; callers must not mutate it. The flatten
// path iterates every track of every element per re-dispatch, so copying
// here would dominate the cost.
func (tr *Track[T]) Keys() []Keyframe[T] { return tr.keys }

// Upsert inserts the keyframe at its sorted position. If a keyframe already
// exists at the same frame, its value and easing are replaced instead; a
// track never holds two keyframes on one frame. Negative frames clamp to 0.
func (tr *Track[T]) Upsert(k Keyframe[T]) {
	if k.Frame < 0 {
		k.Frame = 0
	}
	i := sort.Search(len(tr.keys), func(i int) bool {
		return tr.keys[i].Frame >= k.Frame
	})
	if i < len(tr.keys) && tr.keys[i].Frame == k.Frame {
		tr.keys[i] = k
		return
	}
	tr.keys = append(tr.keys, Keyframe[T]{})
	copy(tr.keys[i+1:], tr.keys[i:])
	tr.keys[i] = k
}

// HoldAt returns the value of the latest keyframe at or before frame.
// This is hold sampling: no interpolation, no easing. The second return is
// false when the track is empty or the frame precedes the first keyframe.
func (tr *Track[T]) HoldAt(frame int) (T, bool) {
	i := sort.Search(len(tr.keys), func(i int) bool {
		return tr.keys[i].Frame > frame
	})
	if i == 0 {
		var zero T
		return zero, false
	}
	return tr.keys[i-1].Value, true
}

// Clear removes all keyframes.
func (tr *Track[T]) Clear() { tr.keys = tr.keys[:0] }
