package motioner

import "math"

// Scene is the authored collection of animated elements, in draw order.
//
// Scene owns the scene version: a monotonically increasing counter bumped
// by every mutating call. Downstream caches (the flatten dispatcher, tile
// caches) compare the version against what they last saw to decide whether
// their derived state is stale. Mutating an element's tracks directly does
// not go through Scene, so callers doing that must call Touch themselves.
//
// Scene is not safe for concurrent mutation; a single logical owner (the
// playback/UI loop) drives all authoring.
type Scene struct {
	elements []*Element
	version  uint64
}

// NewScene creates an empty scene at version 0.
func NewScene() *Scene { return &Scene{} }

// Add appends an element in draw order and bumps the scene version.
func (s *Scene) Add(el *Element) {
	if el == nil {
		return
	}
	s.elements = append(s.elements, el)
	s.Touch()
}

// Remove deletes the first element with the given name, preserving the
// order of the rest. It reports whether an element was removed; the
// version is bumped only on an actual removal.
func (s *Scene) Remove(name string) bool {
	for i, el := range s.elements {
		if el.Name == name {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			s.Touch()
			return true
		}
	}
	return false
}

// Find returns the first element with the given name, or nil.
func (s *Scene) Find(name string) *Element {
	for _, el := range s.elements {
		if el.Name == name {
			return el
		}
	}
	return nil
}

// Elements returns the element list in draw order. The slice is shared;
// callers mutating elements through it must call Touch afterwards.
func (s *Scene) Elements() []*Element { return s.elements }

// Len returns the number of elements.
func (s *Scene) Len() int { return len(s.elements) }

// Version returns the current scene version.
func (s *Scene) Version() uint64 { return s.version }

// Touch bumps the scene version, marking downstream flattened buffers and
// caches stale. Safe to call redundantly; versions only ever grow.
func (s *Scene) Touch() { s.version++ }

// ContentHash returns an FNV-1a hash over the authored content: element
// identity, lifetime windows, and every keyframe of every track. Two
// scenes with identical content hash identically regardless of version
// history, which makes the hash usable as a self-invalidating cache key
// (tile cache entries keyed by content hash go stale by construction when
// content changes).
func (s *Scene) ContentHash() uint64 {
	h := newContentHasher()
	for _, el := range s.elements {
		h.writeString(el.Name)
		h.writeUint64(uint64(el.Kind))
		h.writeUint64(uint64(el.SpawnFrame))
		if el.KillFrame != nil {
			h.writeUint64(uint64(*el.KillFrame))
		} else {
			h.writeUint64(math.MaxUint64)
		}
		hashFloatTrack(&h, &el.X)
		hashFloatTrack(&h, &el.Y)
		hashFloatTrack(&h, &el.Radius)
		hashFloatTrack(&h, &el.W)
		hashFloatTrack(&h, &el.H)
		hashFloatTrack(&h, &el.Size)
		for _, k := range el.Value.Keys() {
			h.writeUint64(uint64(k.Frame))
			h.writeString(k.Value)
			hashEasing(&h, k.Easing)
		}
		for _, k := range el.Color.Keys() {
			h.writeUint64(uint64(k.Frame))
			h.writeUint64(uint64(k.Value[0])<<24 | uint64(k.Value[1])<<16 |
				uint64(k.Value[2])<<8 | uint64(k.Value[3]))
			hashEasing(&h, k.Easing)
		}
		for _, k := range el.Visible.Keys() {
			h.writeUint64(uint64(k.Frame))
			if k.Value {
				h.writeUint64(1)
			} else {
				h.writeUint64(0)
			}
			hashEasing(&h, k.Easing)
		}
		for _, k := range el.ZIndex.Keys() {
			h.writeUint64(uint64(k.Frame))
			h.writeUint64(uint64(uint32(k.Value)))
			hashEasing(&h, k.Easing)
		}
	}
	return h.sum()
}

// contentHasher is an incremental FNV-1a accumulator.
type contentHasher struct {
	hash uint64
}

const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

func newContentHasher() contentHasher { return contentHasher{hash: fnvOffset} }

func (h *contentHasher) writeUint64(v uint64) {
	h.hash ^= v
	h.hash *= fnvPrime
}

func (h *contentHasher) writeFloat32(v float32) {
	h.writeUint64(uint64(math.Float32bits(v)))
}

func (h *contentHasher) writeString(s string) {
	for i := 0; i < len(s); i++ {
		h.hash ^= uint64(s[i])
		h.hash *= fnvPrime
	}
	// Length separator keeps "ab"+"c" distinct from "a"+"bc".
	h.writeUint64(uint64(len(s)))
}

func (h *contentHasher) sum() uint64 { return h.hash }

func hashFloatTrack(h *contentHasher, tr *Track[float32]) {
	for _, k := range tr.Keys() {
		h.writeUint64(uint64(k.Frame))
		h.writeFloat32(k.Value)
		hashEasing(h, k.Easing)
	}
}

func hashEasing(h *contentHasher, e Easing) {
	h.writeUint64(uint64(e.Kind))
	h.writeFloat32(e.Power)
	h.writeFloat32(e.P1.X)
	h.writeFloat32(e.P1.Y)
	h.writeFloat32(e.P2.X)
	h.writeFloat32(e.P2.Y)
	h.writeFloat32(e.Damping)
	h.writeFloat32(e.Stiffness)
	h.writeFloat32(e.Mass)
	h.writeFloat32(e.Amplitude)
	h.writeFloat32(e.Period)
	h.writeFloat32(e.Bounciness)
	for _, p := range e.Points {
		h.writeFloat32(p.Pos.X)
		h.writeFloat32(p.Pos.Y)
		h.writeFloat32(p.HandleLeft.X)
		h.writeFloat32(p.HandleLeft.Y)
		h.writeFloat32(p.HandleRight.X)
		h.writeFloat32(p.HandleRight.Y)
	}
}
