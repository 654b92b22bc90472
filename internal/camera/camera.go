package camera

import (
	"math"

	"icarus/internal/input"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultSensitivity is degrees of rotation per pixel of cursor motion.
	DefaultSensitivity = 0.1
	// DefaultSpeed is world units moved per tick.
	DefaultSpeed = 0.02

	MaxPitch = 89.0
	MinPitch = -89.0
)

// Mode is the cursor capture state.
type Mode int

const (
	// Captured locks the cursor; look and move are active.
	Captured Mode = iota
	// Released frees the cursor; the camera holds still.
	Released
)

func (m Mode) String() string {
	switch m {
	case Captured:
		return "captured"
	case Released:
		return "released"
	}
	return "unknown"
}

// Transition returns the mode after one tick. Only a rising edge of the
// toggle input flips the mode.
func Transition(m Mode, risingEdge bool) Mode {
	if !risingEdge {
		return m
	}
	if m == Captured {
		return Released
	}
	return Captured
}

// Controls is the per-tick input the camera consumes.
type Controls interface {
	Pressed(action input.Action) bool
	CursorPos() (x, y float64)
	SetCursorCaptured(captured bool)
}

// Camera is a free-look first person camera.
type Camera struct {
	Position mgl32.Vec3
	Pitch    float32
	Yaw      float32
	Roll     float32

	Sensitivity float32
	Speed       float32

	mode        Mode
	firstSample bool
	lastX       float64
	lastY       float64
	toggleHeld  bool
}

// New creates a camera at position, captured, with default sensitivity and speed.
func New(position mgl32.Vec3) *Camera {
	return &Camera{
		Position:    position,
		Sensitivity: DefaultSensitivity,
		Speed:       DefaultSpeed,
		mode:        Captured,
		firstSample: true,
	}
}

// Mode returns the current cursor mode.
func (c *Camera) Mode() Mode {
	return c.mode
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl32.Vec3 {
	return c.Position
}

// Orientation returns pitch and yaw in degrees.
func (c *Camera) Orientation() (pitch, yaw float32) {
	return c.Pitch, c.Yaw
}

// Forward returns the yaw-aligned horizontal forward vector.
func (c *Camera) Forward() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(c.Yaw))
	return mgl32.Vec3{float32(math.Sin(y)), 0, float32(-math.Cos(y))}
}

// Right returns the yaw-aligned horizontal right vector.
func (c *Camera) Right() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(c.Yaw))
	return mgl32.Vec3{float32(math.Cos(y)), 0, float32(math.Sin(y))}
}

// Update advances the camera by one tick. It must be called exactly once per
// frame. Pitch is kept within [MinPitch, MaxPitch] in every mode.
func (c *Camera) Update(ctl Controls) {
	c.Pitch = mgl32.Clamp(c.Pitch, MinPitch, MaxPitch)

	held := ctl.Pressed(input.ActionToggleCursor)
	next := Transition(c.mode, held && !c.toggleHeld)
	c.toggleHeld = held

	if next != c.mode {
		c.mode = next
		ctl.SetCursorCaptured(next == Captured)
		if next == Captured {
			c.firstSample = true
		}
	}

	if c.mode != Captured {
		return
	}

	c.look(ctl)
	c.move(ctl)
}

func (c *Camera) look(ctl Controls) {
	x, y := ctl.CursorPos()
	if c.firstSample {
		c.lastX, c.lastY = x, y
		c.firstSample = false
		return
	}

	dx := float32(x-c.lastX) * c.Sensitivity
	dy := float32(y-c.lastY) * c.Sensitivity
	c.lastX, c.lastY = x, y

	c.Yaw += dx
	c.Pitch = mgl32.Clamp(c.Pitch+dy, MinPitch, MaxPitch)
}

func (c *Camera) move(ctl Controls) {
	forward := c.Forward().Mul(c.Speed)
	right := c.Right().Mul(c.Speed)
	up := mgl32.Vec3{0, c.Speed, 0}

	if ctl.Pressed(input.ActionMoveForward) {
		c.Position = c.Position.Add(forward)
	}
	if ctl.Pressed(input.ActionMoveBackward) {
		c.Position = c.Position.Sub(forward)
	}
	if ctl.Pressed(input.ActionMoveRight) {
		c.Position = c.Position.Add(right)
	}
	if ctl.Pressed(input.ActionMoveLeft) {
		c.Position = c.Position.Sub(right)
	}
	if ctl.Pressed(input.ActionMoveUp) {
		c.Position = c.Position.Add(up)
	}
	if ctl.Pressed(input.ActionMoveDown) {
		c.Position = c.Position.Sub(up)
	}
}
