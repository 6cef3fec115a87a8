package renderer

import (
	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/model"
)

var moveKeys = []struct {
	key common.Key
	dir model.Direction
}{
	{common.KeyW, model.Forward},
	{common.KeyS, model.Backward},
	{common.KeyA, model.Left},
	{common.KeyD, model.Right},
	{common.KeyE, model.Up},
	{common.KeyQ, model.Down},
}

// steerCamera moves the camera target for every held movement key, then lets the position follow.
func steerCamera(cam *model.Camera, keys common.KeyState, dt float32) {
	for _, m := range moveKeys {
		if keys.Pressed(m.key) {
			cam.Move(m.dir, dt)
		}
	}
	cam.Smooth(dt)
}

// loopState is what the event queue decides for an iteration.
type loopState struct {
	quit             bool
	toggleWireframe  bool
	toggleProjection bool
	minimized        bool
}

// drainEvents consumes all pending events. minimized carries over the state of the previous iteration.
func drainEvents(win common.Window, minimized bool) loopState {
	st := loopState{minimized: minimized}
	for ev, ok := win.PollEvent(); ok; ev, ok = win.PollEvent() {
		switch ev.Kind {
		case common.EventQuit:
			st.quit = true
		case common.EventKeyDown:
			switch ev.Key {
			case common.KeyEscape:
				st.quit = true
			case common.KeyF:
				st.toggleWireframe = !st.toggleWireframe
			case common.KeyP:
				st.toggleProjection = !st.toggleProjection
			}
		case common.EventMinimized:
			st.minimized = true
		case common.EventRestored:
			st.minimized = false
		}
	}
	return st
}

// canRender is false while the window is minimized, by event or by the backend's own state, or has no drawable
// area. Nothing can be presented then.
func canRender(win common.Window, minimized bool) bool {
	if minimized || win.Minimized() {
		return false
	}
	w, h := win.FramebufferSize()
	return w > 0 && h > 0
}
