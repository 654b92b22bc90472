package input

import "github.com/go-gl/glfw/v3.3/glfw"

// Action represents a logical camera action, not a physical key
type Action int

const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionToggleCursor
	ActionCount // Sentinel value for array sizing
)

// KeyReader reports whether a physical key is held right now.
type KeyReader interface {
	KeyDown(key glfw.Key) bool
}

// Manager maps physical keys to logical actions. State is sampled once per
// tick by Poll; queries between polls see the same snapshot.
type Manager struct {
	actionKeys [ActionCount][]glfw.Key
	state      [ActionCount]bool
}

// NewManager creates a Manager with the default bindings
func NewManager() *Manager {
	m := &Manager{}

	m.BindKey(glfw.KeyW, ActionMoveForward)
	m.BindKey(glfw.KeyUp, ActionMoveForward)
	m.BindKey(glfw.KeyS, ActionMoveBackward)
	m.BindKey(glfw.KeyDown, ActionMoveBackward)
	m.BindKey(glfw.KeyA, ActionMoveLeft)
	m.BindKey(glfw.KeyLeft, ActionMoveLeft)
	m.BindKey(glfw.KeyD, ActionMoveRight)
	m.BindKey(glfw.KeyRight, ActionMoveRight)
	m.BindKey(glfw.KeySpace, ActionMoveUp)
	m.BindKey(glfw.KeyLeftShift, ActionMoveDown)
	m.BindKey(glfw.KeyEscape, ActionToggleCursor)

	return m
}

// BindKey binds a physical key to a logical action.
// Multiple keys can be bound to the same action (e.g., WASD and arrow keys)
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.actionKeys[action] = append(m.actionKeys[action], key)
}

// UnbindKey removes a key from every action it is bound to
func (m *Manager) UnbindKey(key glfw.Key) {
	for a := range m.actionKeys {
		keys := m.actionKeys[a][:0]
		for _, k := range m.actionKeys[a] {
			if k != key {
				keys = append(keys, k)
			}
		}
		m.actionKeys[a] = keys
	}
}

// Poll samples every bound key. An action is active when any of its keys is down.
func (m *Manager) Poll(r KeyReader) {
	for a, keys := range m.actionKeys {
		down := false
		for _, k := range keys {
			if r.KeyDown(k) {
				down = true
				break
			}
		}
		m.state[a] = down
	}
}

// Pressed returns true if the action was held at the last Poll
func (m *Manager) Pressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	return m.state[action]
}
