//go:build !nogpu

package wgpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import the Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/jvchiappini/motioner"
	"github.com/jvchiappini/motioner/dispatch"
	"github.com/jvchiappini/motioner/render"
)

// fenceTimeout bounds the wait on a submitted dispatch. A stall past this
// is treated as a lost device, never an indefinite hang.
const fenceTimeout = 5 * time.Second

// Target executes the flattened buffers on the GPU. One persistent set of
// buffers lives across frames; the keyframe and descriptor uploads are
// gated by the encoding hash so an unchanged scene costs one uniform write
// and one dispatch per frame.
type Target struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	uniformBuf    hal.Buffer
	keyframeBuf   bufferSlot
	descriptorBuf bufferSlot
	outputBuf     bufferSlot
	stagingBuf    bufferSlot

	bindGroup    hal.BindGroup
	uploadedHash uint64 // Encoding.Hash of the buffers currently on the GPU

	adapterName string
	ready       bool
}

var _ render.Target = (*Target)(nil)

// bufferSlot is a GPU buffer with its allocated capacity in bytes.
type bufferSlot struct {
	buf hal.Buffer
	cap uint64
}

// New creates an unregistered GPU target. Init performs the bring-up.
func New() *Target { return &Target{} }

// Name returns "wgpu".
func (t *Target) Name() string { return "wgpu" }

// Init compiles the evaluator shader and brings up an adapter, preferring
// discrete over integrated GPUs. Any failure wraps
// render.ErrTargetUnavailable so registration falls back to software.
func (t *Target) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	spirv, err := compileShader()
	if err != nil {
		return fmt.Errorf("%w: %w", render.ErrTargetUnavailable, err)
	}

	if err := t.openDevice(); err != nil {
		return fmt.Errorf("%w: %w", render.ErrTargetUnavailable, err)
	}

	if err := t.createPipeline(spirv); err != nil {
		t.closeLocked()
		return fmt.Errorf("%w: %w", render.ErrTargetUnavailable, err)
	}

	uniformBuf, err := t.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "evaluate_uniforms", Size: uniformsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.closeLocked()
		return fmt.Errorf("%w: create uniform buffer: %w", render.ErrTargetUnavailable, err)
	}
	t.uniformBuf = uniformBuf

	t.ready = true
	motioner.Logger().Info("wgpu: execution target ready", "adapter", t.adapterName)
	return nil
}

// openDevice selects an adapter and opens a device + queue on it.
func (t *Target) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	t.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU &&
			selected.Info.DeviceType != gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	t.device = openDev.Device
	t.queue = openDev.Queue
	t.adapterName = selected.Info.Name
	return nil
}

// Evaluate uploads changed buffers, dispatches one thread per element and
// reads the records back through the MapRead staging buffer.
func (t *Target) Evaluate(enc *dispatch.Encoding, u dispatch.Uniforms) ([]render.ShapeRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ready {
		return nil, render.ErrTargetUnavailable
	}
	n := len(enc.Descriptors)
	if n == 0 {
		return []render.ShapeRecord{}, nil
	}

	if err := t.ensureBuffers(enc, n); err != nil {
		return nil, err
	}

	if hash := enc.Hash(); hash != t.uploadedHash {
		t.queue.WriteBuffer(t.keyframeBuf.buf, 0, encodeKeyframes(enc.Keyframes))
		t.queue.WriteBuffer(t.descriptorBuf.buf, 0, encodeDescriptors(enc.Descriptors))
		t.uploadedHash = hash
		motioner.Logger().Debug("wgpu: buffers uploaded",
			"keyframes", len(enc.Keyframes), "elements", n)
	}
	t.queue.WriteBuffer(t.uniformBuf, 0, encodeUniforms(u))

	outSize := uint64(n) * shapeStride
	if err := t.dispatch(dispatch.WorkgroupCount(n), outSize); err != nil {
		return nil, err
	}

	readback := make([]byte, outSize)
	if err := t.queue.ReadBuffer(t.stagingBuf.buf, 0, readback); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	return decodeShapes(readback, n), nil
}

// dispatch encodes one compute pass, copies the output into staging and
// waits on the fence.
func (t *Target) dispatch(groups uint32, outSize uint64) error {
	encoder, err := t.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "evaluate_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("evaluate"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "evaluate_pass"})
	pass.SetPipeline(t.pipeline)
	pass.SetBindGroup(0, t.bindGroup, nil)
	pass.Dispatch(groups, 1, 1)
	pass.End()

	encoder.CopyBufferToBuffer(t.outputBuf.buf, t.stagingBuf.buf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: outSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer t.device.FreeCommandBuffer(cmdBuf)

	fence, err := t.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer t.device.DestroyFence(fence)
	if err := t.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := t.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wgpu: fence wait: %w", err)
	}
	if !ok {
		return fmt.Errorf("wgpu: dispatch exceeded %v: %w", fenceTimeout, render.ErrReadbackTimeout)
	}
	return nil
}

// ensureBuffers sizes the stream, output and staging buffers for the
// encoding, reallocating with headroom only on growth. Any reallocation
// invalidates the bind group and the uploaded hash.
func (t *Target) ensureBuffers(enc *dispatch.Encoding, n int) error {
	keyBytes := uint64(max(len(enc.Keyframes), 1)) * keyframeStride
	descBytes := uint64(n) * descriptorStride
	outBytes := uint64(n) * shapeStride

	grown := false
	grow := func(slot *bufferSlot, need uint64, usage gputypes.BufferUsage, label string) error {
		if slot.buf != nil && slot.cap >= need {
			return nil
		}
		newCap := slot.cap*2 + 64
		if newCap < need {
			newCap = need
		}
		if slot.buf != nil {
			t.device.DestroyBuffer(slot.buf)
			slot.buf = nil
			slot.cap = 0
		}
		buf, err := t.device.CreateBuffer(&hal.BufferDescriptor{
			Label: label, Size: newCap, Usage: usage,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create %s buffer: %w", label, err)
		}
		slot.buf = buf
		slot.cap = newCap
		grown = true
		return nil
	}

	if err := grow(&t.keyframeBuf, keyBytes,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst, "evaluate_keyframes"); err != nil {
		return err
	}
	if err := grow(&t.descriptorBuf, descBytes,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst, "evaluate_descriptors"); err != nil {
		return err
	}
	if err := grow(&t.outputBuf, outBytes,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc, "evaluate_output"); err != nil {
		return err
	}
	if err := grow(&t.stagingBuf, outBytes,
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst, "evaluate_staging"); err != nil {
		return err
	}

	if grown || t.bindGroup == nil {
		if t.bindGroup != nil {
			t.device.DestroyBindGroup(t.bindGroup)
			t.bindGroup = nil
		}
		bg, err := t.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: "evaluate_bind", Layout: t.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: t.uniformBuf.NativeHandle(), Offset: 0, Size: uniformsSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: t.keyframeBuf.buf.NativeHandle(), Offset: 0, Size: t.keyframeBuf.cap}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: t.descriptorBuf.buf.NativeHandle(), Offset: 0, Size: t.descriptorBuf.cap}},
				{Binding: 3, Resource: gputypes.BufferBinding{Buffer: t.outputBuf.buf.NativeHandle(), Offset: 0, Size: t.outputBuf.cap}},
			},
		})
		if err != nil {
			return fmt.Errorf("wgpu: create bind group: %w", err)
		}
		t.bindGroup = bg
		t.uploadedHash = 0 // fresh buffers hold nothing
	}
	return nil
}

// Close releases all GPU resources in reverse creation order.
func (t *Target) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
}

func (t *Target) closeLocked() {
	t.ready = false
	if t.device != nil {
		if t.bindGroup != nil {
			t.device.DestroyBindGroup(t.bindGroup)
			t.bindGroup = nil
		}
		for _, slot := range []*bufferSlot{&t.stagingBuf, &t.outputBuf, &t.descriptorBuf, &t.keyframeBuf} {
			if slot.buf != nil {
				t.device.DestroyBuffer(slot.buf)
				slot.buf = nil
				slot.cap = 0
			}
		}
		if t.uniformBuf != nil {
			t.device.DestroyBuffer(t.uniformBuf)
			t.uniformBuf = nil
		}
		t.destroyPipeline()
		t.device.Destroy()
		t.device = nil
	}
	t.queue = nil
	if t.instance != nil {
		t.instance.Destroy()
		t.instance = nil
	}
	t.uploadedHash = 0
}

func init() {
	// Best-effort registration: a host without a usable GPU keeps the
	// software target; RegisterTarget logs the reason.
	_ = render.RegisterTarget(New())
}
