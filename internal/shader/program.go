package shader

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a linked GLSL program with cached uniform locations.
type Program struct {
	ID        uint32
	locations map[string]int32
}

// Load reads, compiles and links the vertex and fragment shader files.
func Load(vertexPath, fragmentPath string) (*Program, error) {
	vertexSrc, fragmentSrc, err := readSources(vertexPath, fragmentPath)
	if err != nil {
		return nil, err
	}
	id, err := compileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("shader: %s + %s: %w", vertexPath, fragmentPath, err)
	}
	return &Program{ID: id, locations: make(map[string]int32)}, nil
}

func readSources(vertexPath, fragmentPath string) (string, string, error) {
	vertexSrc, err := os.ReadFile(vertexPath)
	if err != nil {
		return "", "", fmt.Errorf("shader: read vertex source: %w", err)
	}
	fragmentSrc, err := os.ReadFile(fragmentPath)
	if err != nil {
		return "", "", fmt.Errorf("shader: read fragment source: %w", err)
	}
	return string(vertexSrc), string(fragmentSrc), nil
}

// Start makes p the current program.
func (p *Program) Start() {
	gl.UseProgram(p.ID)
}

// Stop unbinds any program.
func (p *Program) Stop() {
	gl.UseProgram(0)
}

// Delete frees the program. p must not be used afterwards.
func (p *Program) Delete() {
	p.Stop()
	gl.DeleteProgram(p.ID)
	p.ID = 0
	clear(p.locations)
}

func (p *Program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	// -1 for uniforms the linker optimised out; gl ignores uploads to it
	loc := gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func (p *Program) LoadBool(name string, value bool) {
	var v int32
	if value {
		v = 1
	}
	gl.Uniform1i(p.location(name), v)
}

func (p *Program) LoadInt(name string, value int32) {
	gl.Uniform1i(p.location(name), value)
}

func (p *Program) LoadVector(name string, v mgl32.Vec3) {
	gl.Uniform3f(p.location(name), v[0], v[1], v[2])
}

func (p *Program) LoadMatrix(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.location(name), 1, false, &m[0])
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}
