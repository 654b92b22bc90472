package gpu

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLDevice implements Device on the current OpenGL context.
type GLDevice struct{}

// NewGLDevice returns a device for the current context. gl.Init must have run.
func NewGLDevice() *GLDevice {
	return &GLDevice{}
}

func (GLDevice) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	return vao
}

func (GLDevice) UploadIndices(indices []uint32) uint32 {
	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	}
	return ebo
}

func (GLDevice) UploadAttribute(slot uint32, size int32, data []float32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.VertexAttribPointerWithOffset(slot, size, gl.FLOAT, false, 0, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vbo
}

func (GLDevice) UnbindVertexArray() {
	gl.BindVertexArray(0)
}

func (GLDevice) UploadTexture(img *image.RGBA) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		int32(img.Rect.Dx()),
		int32(img.Rect.Dy()),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func (GLDevice) DeleteVertexArray(id uint32) {
	gl.DeleteVertexArrays(1, &id)
}

func (GLDevice) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (GLDevice) DeleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}
