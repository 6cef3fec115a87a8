package common

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

var (
	ErrNoSuitableGPU     = errors.New("no GPU satisfies the requested features and extensions")
	ErrNoQueueFamily     = errors.New("no queue family satisfies the requested capabilities")
	ErrNoMemoryType      = errors.New("no memory type satisfies the resource requirements")
	ErrNoSurfaceFormat   = errors.New("surface reports no supported formats")
	ErrNoSupportedFormat = errors.New("no candidate format supports the requested features")
	ErrDeviceLost        = errors.New("device lost or stalled")
)

// FatalError is raised (as a panic) for failures the renderer cannot work around: missing hardware
// capabilities, driver errors, exhausted host memory. It is the counterpart of an assertion check.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Check panics with a FatalError when err is set.
func Check(err error, op string) {
	if err == nil {
		return
	}
	Logger().Helper()
	Logger().Error("fatal", "op", op, "err", err)
	panic(&FatalError{Op: op, Err: err})
}

// Checkf is Check with a formatted operation name.
func Checkf(err error, format string, args ...interface{}) {
	if err == nil {
		return
	}
	Logger().Helper()
	Check(err, fmt.Sprintf(format, args...))
}

// CheckResult checks the raw result code of a Vulkan call.
func CheckResult(res vk.Result, op string) {
	if res == vk.Success {
		return
	}
	Logger().Helper()
	Check(ResultError(res), op)
}

// Fatalf fails unconditionally.
func Fatalf(format string, args ...interface{}) {
	Logger().Helper()
	Check(errors.Errorf(format, args...), "")
}

// RecoverFatal turns a FatalError panic into *errp. It must be deferred directly. Other panics
// keep unwinding.
func RecoverFatal(errp *error) {
	if r := recover(); r != nil {
		if fe, ok := r.(*FatalError); ok {
			*errp = fe
			return
		}
		panic(r)
	}
}

// ResultError converts a result code into an error, keeping non error codes such as vk.Suboptimal
// or vk.Timeout visible instead of folding them into nil.
func ResultError(res vk.Result) error {
	if res == vk.Success {
		return nil
	}
	if err := vk.Error(res); err != nil {
		return err
	}
	return errors.Errorf("unexpected result code %d", res)
}
