// Package scene holds the objects a frame is composed of: textured models,
// their entity instances, terrain tiles and the light.
package scene

import (
	"icarus/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// ModelTexture is a registry texture plus the material flags the renderer honours.
type ModelTexture struct {
	Handle gpu.TextureHandle

	// HasTransparency disables back-face culling for draws using this texture.
	HasTransparency bool
	// UseFakeLighting shades with a constant up normal instead of mesh normals.
	UseFakeLighting bool
}

// NewModelTexture wraps a texture handle with default material flags.
func NewModelTexture(h gpu.TextureHandle) *ModelTexture {
	return &ModelTexture{Handle: h}
}

// TexturedModel pairs one mesh with one texture. Entities share models.
type TexturedModel struct {
	Mesh    gpu.MeshHandle
	Texture *ModelTexture
}

// NewTexturedModel pairs a mesh with a texture.
func NewTexturedModel(mesh gpu.MeshHandle, tex *ModelTexture) *TexturedModel {
	return &TexturedModel{Mesh: mesh, Texture: tex}
}

// Entity is a placed instance of a TexturedModel. Rotations are Euler angles
// in degrees.
type Entity struct {
	Model    *TexturedModel
	Position mgl32.Vec3
	RotX     float32
	RotY     float32
	RotZ     float32
	Scale    float32
}

// NewEntity places model at position.
func NewEntity(model *TexturedModel, position mgl32.Vec3, rx, ry, rz, scale float32) *Entity {
	return &Entity{
		Model:    model,
		Position: position,
		RotX:     rx,
		RotY:     ry,
		RotZ:     rz,
		Scale:    scale,
	}
}

func (e *Entity) IncreasePosition(dx, dy, dz float32) {
	e.Position = e.Position.Add(mgl32.Vec3{dx, dy, dz})
}

func (e *Entity) IncreaseRotation(dx, dy, dz float32) {
	e.RotX += dx
	e.RotY += dy
	e.RotZ += dz
}

// Light is a single point light.
type Light struct {
	Position mgl32.Vec3
	Colour   mgl32.Vec3
}
