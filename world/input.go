package world

import "time"

// Key is a platform-independent key code. Values mirror the ordering
// Ebitengine's ebiten.Key constants use (the teacher's own input library),
// so a host loop built on Ebitengine can cast its key codes directly
// without this package importing any windowing/input library itself
// (spec.md Non-goals exclude a rendering/input backend; the engine only
// needs a key's identity, not how it was read).
type Key int

// MouseButton identifies a mouse button the same way Key identifies a
// keyboard key.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// FrameInput is the per-frame snapshot of input state a host loop feeds
// into World.SetInput before calling Tick (spec.md §2's "frame mouse/
// keyboard/time inputs"). It is a plain value type; systems read it off
// World.Input(), they never mutate it.
type FrameInput struct {
	PressedKeys  []Key
	JustPressed  []Key
	JustReleased []Key

	MouseX, MouseY int
	MousePressed   []MouseButton

	DeltaTime time.Duration
	FrameTime time.Duration
}

// KeyDown reports whether k is currently held.
func (f FrameInput) KeyDown(k Key) bool {
	for _, p := range f.PressedKeys {
		if p == k {
			return true
		}
	}
	return false
}

// KeyJustPressed reports whether k transitioned to held this frame.
func (f FrameInput) KeyJustPressed(k Key) bool {
	for _, p := range f.JustPressed {
		if p == k {
			return true
		}
	}
	return false
}

// MouseDown reports whether b is currently held.
func (f FrameInput) MouseDown(b MouseButton) bool {
	for _, p := range f.MousePressed {
		if p == b {
			return true
		}
	}
	return false
}
