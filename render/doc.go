// Package render turns flattened animation buffers into per-frame shape
// records and pixels.
//
// The package defines the execution-target contract (Target), ships the
// software reference target, and owns the frame renderer: tile-based
// rasterization with a content-hash tile cache, a spatial hash grid for
// hit-testing, and the bounded-wait readback path shared with the optional
// GPU target.
package render
