package common

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

var glfwKeys = map[Key]glfw.Key{
	KeyW:      glfw.KeyW,
	KeyA:      glfw.KeyA,
	KeyS:      glfw.KeyS,
	KeyD:      glfw.KeyD,
	KeyQ:      glfw.KeyQ,
	KeyE:      glfw.KeyE,
	KeyF:      glfw.KeyF,
	KeyP:      glfw.KeyP,
	KeyEscape: glfw.KeyEscape,
}

// GLFWWindow is the GLFW backend. GLFW reports input through callbacks, they are queued here so the frame loop
// can drain them with PollEvent like it does for SDL. GLFW calls must stay on the main OS thread.
type GLFWWindow struct {
	Win    *glfw.Window
	events []Event
}

func NewGLFWWindow(title string, width, height uint32, flags WindowFlags) (*GLFWWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "initialize glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw reports no Vulkan loader")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, boolHint(flags&WindowResizable != 0))
	glfw.WindowHint(glfw.Visible, boolHint(flags&WindowHidden == 0))

	win, err := glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create glfw window")
	}
	w := &GLFWWindow{Win: win}
	win.SetKeyCallback(w.onKey)
	win.SetCloseCallback(func(*glfw.Window) {
		w.events = append(w.events, Event{Kind: EventQuit})
	})
	win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		if iconified {
			w.events = append(w.events, Event{Kind: EventMinimized})
		} else {
			w.events = append(w.events, Event{Kind: EventRestored})
		}
	})
	win.SetFramebufferSizeCallback(func(*glfw.Window, int, int) {
		w.events = append(w.events, Event{Kind: EventResized})
	})
	LogInfo("Created glfw %s window \"%s\" (%dx%d)", glfw.GetVersionString(), title, width, height)
	return w, nil
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func (w *GLFWWindow) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	for k, gk := range glfwKeys {
		if gk == key {
			w.events = append(w.events, Event{Kind: EventKeyDown, Key: k})
			return
		}
	}
	w.events = append(w.events, Event{Kind: EventKeyDown, Key: KeyUnknown})
}

func (w *GLFWWindow) VulkanProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (w *GLFWWindow) RequiredInstanceExtensions() []string {
	return w.Win.GetRequiredInstanceExtensions()
}

func (w *GLFWWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := w.Win.CreateWindowSurface(instance, nil)
	if err != nil {
		return nil, err
	}
	return vk.SurfaceFromPointer(surface), nil
}

// DestroySurface passes a nil allocator, the surface was created with none.
func (w *GLFWWindow) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (w *GLFWWindow) PollEvent() (Event, bool) {
	if len(w.events) == 0 {
		glfw.PollEvents()
	}
	if len(w.events) == 0 {
		return Event{}, false
	}
	ev := w.events[0]
	w.events = w.events[1:]
	return ev, true
}

func (w *GLFWWindow) WaitEvent() {
	if len(w.events) == 0 {
		glfw.WaitEvents()
	}
}

func (w *GLFWWindow) Keys() KeyState {
	keys := make(KeyState, len(glfwKeys))
	for k, gk := range glfwKeys {
		keys[k] = w.Win.GetKey(gk) == glfw.Press
	}
	return keys
}

func (w *GLFWWindow) FramebufferSize() (uint32, uint32) {
	width, height := w.Win.GetFramebufferSize()
	return uint32(width), uint32(height)
}

func (w *GLFWWindow) Minimized() bool {
	return w.Win.GetAttrib(glfw.Iconified) == glfw.True
}

func (w *GLFWWindow) Destroy() {
	w.Win.Destroy()
	glfw.Terminate()
}
