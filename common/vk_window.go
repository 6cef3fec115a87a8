package common

import (
	"strings"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

// Window is the windowing collaborator: it owns the OS window, feeds input to the frame loop and bridges the
// native handle into a Vulkan surface. Two backends exist, SDL2 (default) and GLFW.
type Window interface {
	// VulkanProcAddr is the loader entry point handed to vk.SetGetInstanceProcAddr.
	VulkanProcAddr() unsafe.Pointer
	// RequiredInstanceExtensions lists the surface extensions the backend needs on the instance.
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	// DestroySurface releases a surface made by CreateSurface. Backends create it without allocation callbacks,
	// so it must not be destroyed with the context's allocator.
	DestroySurface(instance vk.Instance, surface vk.Surface)

	// PollEvent returns the next pending event, false when the queue is drained.
	PollEvent() (Event, bool)
	// WaitEvent blocks until at least one event is pending.
	WaitEvent()
	Keys() KeyState

	FramebufferSize() (width, height uint32)
	Minimized() bool
	Destroy()
}

type EventKind int

const (
	EventNone EventKind = iota
	EventQuit
	EventKeyDown
	EventMinimized
	EventRestored
	EventResized
)

type Event struct {
	Kind EventKind
	Key  Key
}

type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyF
	KeyP
	KeyEscape
)

// KeyState is a snapshot of the keys currently held down.
type KeyState map[Key]bool

func (k KeyState) Pressed(key Key) bool {
	return k[key]
}

type WindowFlags uint32

const (
	WindowResizable WindowFlags = 1 << iota
	WindowHidden
)

const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// CreateWindow opens a window with the named backend. An empty backend selects SDL.
func CreateWindow(backend string, title string, width, height uint32, flags WindowFlags) (Window, error) {
	switch strings.ToLower(backend) {
	case "", BackendSDL:
		return NewSDLWindow(title, width, height, flags)
	case BackendGLFW:
		return NewGLFWWindow(title, width, height, flags)
	default:
		return nil, errors.Errorf("unknown window backend %q", backend)
	}
}
