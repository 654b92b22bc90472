package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GLBackend implements Backend on the current OpenGL context.
type GLBackend struct{}

// NewGLBackend returns a backend for the current context. gl.Init must have run.
func NewGLBackend() *GLBackend {
	return &GLBackend{}
}

func (GLBackend) EnableDepthTest() {
	gl.Enable(gl.DEPTH_TEST)
}

func (GLBackend) Clear(c mgl32.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (GLBackend) SetBackFaceCulling(enabled bool) {
	if enabled {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
		gl.FrontFace(gl.CCW)
		return
	}
	gl.Disable(gl.CULL_FACE)
}

func (GLBackend) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (GLBackend) EnableAttribute(slot uint32) {
	gl.EnableVertexAttribArray(slot)
}

func (GLBackend) DisableAttribute(slot uint32) {
	gl.DisableVertexAttribArray(slot)
}

func (GLBackend) BindTexture(unit uint32, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, id)
}

// DrawTriangles draws indexCount indices from the bound element buffer.
func (GLBackend) DrawTriangles(indexCount int32) {
	gl.DrawElements(gl.TRIANGLES, indexCount, gl.UNSIGNED_INT, nil)
}
