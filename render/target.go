package render

import (
	"errors"
	"sync"

	"github.com/jvchiappini/motioner"
	"github.com/jvchiappini/motioner/dispatch"
)

// ErrTargetUnavailable indicates an execution target cannot run in this
// environment (no usable adapter, shader compilation failed). Registration
// reports it and the renderer falls back to the software target.
var ErrTargetUnavailable = errors.New("render: execution target unavailable")

// Target is the opaque per-element execution stage: it evaluates the
// flattened buffers for one frame and returns the shape records.
//
// Implementations are provided by backend packages (e.g. backend/wgpu) and
// registered via RegisterTarget, typically from a blank import:
//
//	import _ "github.com/jvchiappini/motioner/backend/wgpu"
type Target interface {
	// Name identifies the target ("software", "wgpu").
	Name() string

	// Init acquires the target's resources. Called once during
	// registration; ErrTargetUnavailable means the host cannot run it.
	Init() error

	// Evaluate computes one record per descriptor. The encoding must not
	// be mutated; uniforms carry the frame and viewport.
	Evaluate(enc *dispatch.Encoding, u dispatch.Uniforms) ([]ShapeRecord, error)

	// Close releases the target's resources.
	Close()
}

var (
	targetMu sync.RWMutex
	target   Target
)

// RegisterTarget registers an execution target, replacing any previous one.
// Init runs during registration; a failed Init leaves the previous target
// in place and returns the error.
func RegisterTarget(t Target) error {
	if t == nil {
		return errors.New("render: target must not be nil")
	}
	if err := t.Init(); err != nil {
		motioner.Logger().Warn("render: target registration failed",
			"target", t.Name(), "err", err)
		return err
	}
	targetMu.Lock()
	old := target
	target = t
	targetMu.Unlock()
	if old != nil {
		old.Close()
	}
	motioner.Logger().Info("render: execution target registered", "target", t.Name())
	return nil
}

// ActiveTarget returns the registered target, or a fresh software target
// when none is registered.
func ActiveTarget() Target {
	targetMu.RLock()
	t := target
	targetMu.RUnlock()
	if t != nil {
		return t
	}
	return NewSoftwareTarget(0)
}
