package renderer

import (
	"math"
	"time"

	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/model"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

var ErrFenceDiscipline = errors.New("fence discipline violated")

// FrameDevice is the GPU side of one frame. Core implements it on top of Vulkan, tests use fakes.
type FrameDevice interface {
	// WaitFence blocks until the previous submission finished. A zero timeout waits forever.
	WaitFence(timeout time.Duration) error
	ResetFence() error
	Acquire(timeout time.Duration) (uint32, error)
	RecordFrame(imageIdx uint32, wireframe bool) error
	Submit() error
	Present(imageIdx uint32) error
}

// fenceGuard tracks the in flight fence: it may only be reset after a completed wait, and every submission
// needs exactly one reset in front of it.
type fenceGuard struct {
	waited bool
	reset  bool
}

func (g *fenceGuard) onWait() {
	g.waited = true
}

func (g *fenceGuard) onReset() error {
	if !g.waited {
		return errors.Wrap(ErrFenceDiscipline, "reset without a completed wait")
	}
	g.waited = false
	g.reset = true
	return nil
}

func (g *fenceGuard) onSubmit() error {
	if !g.reset {
		return errors.Wrap(ErrFenceDiscipline, "submit without a fence reset")
	}
	g.reset = false
	return nil
}

// FrameInput is everything the host contributes to a frame.
type FrameInput struct {
	Data      model.PerFrameData
	Wireframe bool
}

// renderFrame runs wait -> acquire -> reset -> record -> submit -> present. The per frame data goes into the
// uniform region of the acquired image before recording.
func renderFrame(dev FrameDevice, guard *fenceGuard, uniforms *UniformSet, in *FrameInput, timeout time.Duration) (uint32, error) {
	if err := dev.WaitFence(timeout); err != nil {
		return 0, err
	}
	guard.onWait()

	imageIdx, err := dev.Acquire(timeout)
	if err != nil {
		return 0, err
	}

	if err := guard.onReset(); err != nil {
		return imageIdx, err
	}
	if err := dev.ResetFence(); err != nil {
		return imageIdx, err
	}

	if err := uniforms.Write(imageIdx, &in.Data); err != nil {
		return imageIdx, err
	}
	if err := dev.RecordFrame(imageIdx, in.Wireframe); err != nil {
		return imageIdx, err
	}

	if err := guard.onSubmit(); err != nil {
		return imageIdx, err
	}
	if err := dev.Submit(); err != nil {
		return imageIdx, err
	}
	return imageIdx, dev.Present(imageIdx)
}

// timeoutNanos maps a zero timeout onto an infinite wait.
func timeoutNanos(d time.Duration) uint64 {
	if d <= 0 {
		return math.MaxUint64
	}
	return uint64(d.Nanoseconds())
}

// waitError interprets the result of a bounded wait. A wait that runs into the bound is treated like a lost
// device: nothing else can block the GPU that long.
func waitError(res vk.Result, what string, timeout time.Duration) error {
	switch res {
	case vk.Success:
		return nil
	case vk.Timeout, vk.NotReady:
		return errors.Wrapf(common.ErrDeviceLost, "%s timed out after %v", what, timeout)
	case vk.ErrorDeviceLost:
		return errors.Wrapf(common.ErrDeviceLost, "%s", what)
	}
	return errors.Wrap(common.ResultError(res), what)
}

// perImage picks the resource of one swapchain image.
func perImage[T any](items []T, imageIdx uint32, what string) (T, error) {
	if int(imageIdx) >= len(items) {
		var zero T
		return zero, errors.Errorf("%s: image index %d out of range, %d available", what, imageIdx, len(items))
	}
	return items[imageIdx], nil
}
