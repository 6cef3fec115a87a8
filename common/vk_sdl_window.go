package common

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

const SDL_MAJOR, SDL_MINOR, SDL_PATCH = int(sdl.MAJOR_VERSION), int(sdl.MINOR_VERSION), int(sdl.PATCHLEVEL)

var sdlScancodes = map[Key]sdl.Scancode{
	KeyW:      sdl.SCANCODE_W,
	KeyA:      sdl.SCANCODE_A,
	KeyS:      sdl.SCANCODE_S,
	KeyD:      sdl.SCANCODE_D,
	KeyQ:      sdl.SCANCODE_Q,
	KeyE:      sdl.SCANCODE_E,
	KeyF:      sdl.SCANCODE_F,
	KeyP:      sdl.SCANCODE_P,
	KeyEscape: sdl.SCANCODE_ESCAPE,
}

var sdlKeycodes = map[sdl.Keycode]Key{
	sdl.K_w:      KeyW,
	sdl.K_a:      KeyA,
	sdl.K_s:      KeyS,
	sdl.K_d:      KeyD,
	sdl.K_q:      KeyQ,
	sdl.K_e:      KeyE,
	sdl.K_f:      KeyF,
	sdl.K_p:      KeyP,
	sdl.K_ESCAPE: KeyEscape,
}

// SDLWindow uses SDL for window management and user input, simplifying the process of getting a vk.Surface to
// draw on.
type SDLWindow struct {
	Win *sdl.Window
}

func NewSDLWindow(title string, width, height uint32, flags WindowFlags) (*SDLWindow, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "initialize SDL")
	}
	sdlFlags := uint32(sdl.WINDOW_VULKAN)
	if flags&WindowHidden != 0 {
		sdlFlags |= sdl.WINDOW_HIDDEN
	} else {
		sdlFlags |= sdl.WINDOW_SHOWN
	}
	if flags&WindowResizable != 0 {
		sdlFlags |= sdl.WINDOW_RESIZABLE
	}
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdlFlags,
	)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create SDL window for use with Vulkan")
	}
	LogInfo("Created SDL %s window \"%s\" (%dx%d)", fmt.Sprintf("v%d.%d.%d", SDL_MAJOR, SDL_MINOR, SDL_PATCH), title, width, height)
	return &SDLWindow{Win: win}, nil
}

func (w *SDLWindow) VulkanProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *SDLWindow) RequiredInstanceExtensions() []string {
	return w.Win.VulkanGetInstanceExtensions()
}

func (w *SDLWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surfPtr, err := w.Win.VulkanCreateSurface(instance)
	if err != nil {
		return nil, err
	}
	return vk.SurfaceFromPointer(uintptr(surfPtr)), nil
}

// DestroySurface passes a nil allocator, matching SDL_Vulkan_CreateSurface.
func (w *SDLWindow) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (w *SDLWindow) PollEvent() (Event, bool) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if ev, ok := translateSDLEvent(event); ok {
			return ev, true
		}
	}
	return Event{}, false
}

func translateSDLEvent(event sdl.Event) (Event, bool) {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		return Event{Kind: EventQuit}, true
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_MINIMIZED:
			return Event{Kind: EventMinimized}, true
		case sdl.WINDOWEVENT_RESTORED:
			return Event{Kind: EventRestored}, true
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			return Event{Kind: EventResized}, true
		case sdl.WINDOWEVENT_CLOSE:
			return Event{Kind: EventQuit}, true
		}
	case *sdl.KeyboardEvent:
		if ev.Type == sdl.KEYDOWN && ev.Repeat == 0 {
			return Event{Kind: EventKeyDown, Key: sdlKeycodes[ev.Keysym.Sym]}, true
		}
	}
	return Event{}, false
}

func (w *SDLWindow) WaitEvent() {
	if event := sdl.WaitEvent(); event != nil {
		sdl.PushEvent(event)
	}
}

func (w *SDLWindow) Keys() KeyState {
	state := sdl.GetKeyboardState()
	keys := make(KeyState, len(sdlScancodes))
	for k, sc := range sdlScancodes {
		if int(sc) < len(state) {
			keys[k] = state[sc] != 0
		}
	}
	return keys
}

func (w *SDLWindow) FramebufferSize() (uint32, uint32) {
	width, height := w.Win.VulkanGetDrawableSize()
	return uint32(width), uint32(height)
}

func (w *SDLWindow) Minimized() bool {
	return w.Win.GetFlags()&sdl.WINDOW_MINIMIZED != 0
}

func (w *SDLWindow) Destroy() {
	if err := w.Win.Destroy(); err != nil {
		LogWarn("Failed to destroy SDL window: %v", err)
	}
	sdl.Quit()
}
