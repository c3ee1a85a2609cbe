//go:build !nogpu

package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/evaluate.wgsl
var evaluateShaderWGSL string

// compileShader compiles the embedded WGSL evaluator to SPIR-V words.
// A compile failure fails registration; the renderer keeps the software
// target in that case.
func compileShader() ([]uint32, error) {
	spirvBytes, err := naga.Compile(evaluateShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile evaluate shader: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// createPipeline builds the shader module, bind group layout, pipeline
// layout and compute pipeline. Called under the target mutex.
func (t *Target) createPipeline(spirv []uint32) error {
	shader, err := t.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "evaluate",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create shader module: %w", err)
	}
	t.shader = shader

	bindLayout, err := t.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "evaluate_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	t.bindLayout = bindLayout

	pipeLayout, err := t.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "evaluate_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{t.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	t.pipeLayout = pipeLayout

	pipeline, err := t.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "evaluate_pipeline",
		Layout: t.pipeLayout,
		Compute: hal.ComputeState{
			Module:     t.shader,
			EntryPoint: "cs_evaluate",
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create compute pipeline: %w", err)
	}
	t.pipeline = pipeline

	return nil
}

// destroyPipeline releases pipeline resources in reverse creation order.
func (t *Target) destroyPipeline() {
	if t.device == nil {
		return
	}
	if t.pipeline != nil {
		t.device.DestroyComputePipeline(t.pipeline)
		t.pipeline = nil
	}
	if t.pipeLayout != nil {
		t.device.DestroyPipelineLayout(t.pipeLayout)
		t.pipeLayout = nil
	}
	if t.bindLayout != nil {
		t.device.DestroyBindGroupLayout(t.bindLayout)
		t.bindLayout = nil
	}
	if t.shader != nil {
		t.device.DestroyShaderModule(t.shader)
		t.shader = nil
	}
}
