// Package wgpu provides the optional GPU execution target for the
// animation core, built on wgpu/hal compute shaders.
//
// The target registers itself on import:
//
//	import _ "github.com/jvchiappini/motioner/backend/wgpu"
//
// Registration brings up an adapter and compiles the evaluator shader; if
// either fails the registration error is logged and the renderer keeps the
// software target. Build with -tags nogpu to compile the package out
// entirely.
package wgpu
