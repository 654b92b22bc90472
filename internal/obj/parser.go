package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"icarus/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

// ParseError reports a malformed record.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("obj: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	ErrTooFewComponents = errors.New("too few components")
	ErrIndexOutOfRange  = errors.New("position index out of range")
)

type faceRecord struct {
	line    int
	corners []string
}

type parser struct {
	positions []mgl32.Vec3
	texcoords []mgl32.Vec2
	normals   []mgl32.Vec3
	faces     []faceRecord

	texOut  []float32
	normOut []float32
	indices []uint32
}

// Load reads and parses the mesh file at path.
func Load(path string) (*geom.MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obj: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("obj: parse %s: %w", path, err)
	}
	return data, nil
}

// Parse converts a text mesh description into flattened vertex attributes and
// a triangle index list.
//
// Texcoord and normal slots are addressed by position index: when corners that
// share a position reference different texcoords or normals, the corner
// processed last wins. Faces with more than three corners are fanned from the
// first corner; faces with fewer than three are skipped.
func Parse(r io.Reader) (*geom.MeshData, error) {
	p := &parser{}
	if err := p.scan(r); err != nil {
		return nil, err
	}

	n := len(p.positions)
	p.texOut = make([]float32, n*2)
	p.normOut = make([]float32, n*3)

	for _, f := range p.faces {
		if len(f.corners) < 3 {
			continue
		}
		for i := 1; i < len(f.corners)-1; i++ {
			for _, c := range [3]string{f.corners[0], f.corners[i], f.corners[i+1]} {
				if err := p.corner(c); err != nil {
					return nil, &ParseError{Line: f.line, Err: err}
				}
			}
		}
	}

	positions := make([]float32, n*3)
	for i, v := range p.positions {
		positions[i*3] = v[0]
		positions[i*3+1] = v[1]
		positions[i*3+2] = v[2]
	}

	return &geom.MeshData{
		Positions: positions,
		TexCoords: p.texOut,
		Normals:   p.normOut,
		Indices:   p.indices,
	}, nil
}

// scan collects every attribute record and defers faces until all attributes
// are known.
func (p *parser) scan(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		var err error
		switch fields[0] {
		case "v":
			var v []float32
			if v, err = parseFloats(fields[1:], 3); err == nil {
				p.positions = append(p.positions, mgl32.Vec3{v[0], v[1], v[2]})
			}
		case "vt":
			var v []float32
			if v, err = parseFloats(fields[1:], 2); err == nil {
				p.texcoords = append(p.texcoords, mgl32.Vec2{v[0], v[1]})
			}
		case "vn":
			var v []float32
			if v, err = parseFloats(fields[1:], 3); err == nil {
				p.normals = append(p.normals, mgl32.Vec3{v[0], v[1], v[2]})
			}
		case "f":
			p.faces = append(p.faces, faceRecord{line: line, corners: fields[1:]})
		}
		if err != nil {
			return &ParseError{Line: line, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("obj: read: %w", err)
	}
	return nil
}

// corner handles one "pos[/tex][/norm]" reference.
func (p *parser) corner(ref string) error {
	parts := strings.Split(ref, "/")

	pos, err := strconv.Atoi(parts[0])
	if err != nil {
		return err
	}
	if pos < 1 || pos > len(p.positions) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, pos)
	}
	slot := pos - 1
	p.indices = append(p.indices, uint32(slot))

	if len(parts) > 1 && parts[1] != "" {
		t, err := strconv.Atoi(parts[1])
		if err != nil {
			return err
		}
		if t >= 1 && t <= len(p.texcoords) {
			uv := p.texcoords[t-1]
			p.texOut[slot*2] = uv[0]
			p.texOut[slot*2+1] = 1 - uv[1]
		}
	}

	if len(parts) > 2 && parts[2] != "" {
		nIdx, err := strconv.Atoi(parts[2])
		if err != nil {
			return err
		}
		if nIdx >= 1 && nIdx <= len(p.normals) {
			nv := p.normals[nIdx-1]
			copy(p.normOut[slot*3:slot*3+3], nv[:])
		}
	}
	return nil
}

func parseFloats(tokens []string, want int) ([]float32, error) {
	if len(tokens) < want {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrTooFewComponents, want, len(tokens))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		f, err := strconv.ParseFloat(tokens[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
