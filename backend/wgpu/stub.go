//go:build nogpu

package wgpu
