package render

import (
	"icarus/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Backend issues the GL state changes and draw calls of a frame.
type Backend interface {
	EnableDepthTest()
	Clear(colour mgl32.Vec4)
	SetBackFaceCulling(enabled bool)
	BindVertexArray(vao uint32)
	EnableAttribute(slot uint32)
	DisableAttribute(slot uint32)
	BindTexture(unit uint32, id uint32)
	DrawTriangles(indexCount int32)
}

// Program is a shader program accepting named uniforms.
type Program interface {
	Start()
	Stop()
	LoadMatrix(name string, m mgl32.Mat4)
	LoadVector(name string, v mgl32.Vec3)
	LoadBool(name string, b bool)
	LoadInt(name string, v int32)
}

// Resources resolves registry handles.
type Resources interface {
	Mesh(h gpu.MeshHandle) gpu.Mesh
	Texture(h gpu.TextureHandle) gpu.Texture
}

// Uniform names shared with the GLSL sources under res/shaders.
const (
	UniformProjection    = "projectionMatrix"
	UniformView          = "viewMatrix"
	UniformModel         = "transformationMatrix"
	UniformLightPosition = "lightPosition"
	UniformLightColour   = "lightColour"
	UniformFakeLighting  = "useFakeLighting"
	UniformModelTexture  = "textureSampler"
	UniformUseBlendMap   = "useBlendMap"
	UniformBackground    = "backgroundTexture"
	UniformRTexture      = "rTexture"
	UniformGTexture      = "gTexture"
	UniformBTexture      = "bTexture"
	UniformBlendMap      = "blendMap"
)

// UnitModel is the sampler unit of an entity texture.
const UnitModel uint32 = 0

// Terrain sampler units. A single-texture tile uses UnitBackground only.
const (
	UnitBackground uint32 = iota
	UnitR
	UnitG
	UnitB
	UnitBlendMap
)
