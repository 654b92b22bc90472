// Package gltfmesh flattens the triangle geometry of a glTF 2.0 file into a
// single MeshData.
package gltfmesh

import (
	"errors"
	"fmt"

	"icarus/internal/geom"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrNoGeometry is returned for documents without a positioned triangle primitive.
var ErrNoGeometry = errors.New("no triangle primitives with positions")

// Load reads a .gltf or .glb file and merges every triangle-list primitive of
// every mesh. Points, lines, strips and fans are skipped.
// Texcoords and normals are kept when any primitive carries them; primitives
// lacking one get zeros. Texcoords keep the glTF top-left origin.
func Load(path string) (*geom.MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltfmesh: open %s: %w", path, err)
	}
	d, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("gltfmesh: %s: %w", path, err)
	}
	return d, nil
}

type primitive struct {
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32
	indices   []uint32
}

// FromDocument converts an already decoded document.
func FromDocument(doc *gltf.Document) (*geom.MeshData, error) {
	var prims []primitive
	hasUV, hasNormal := false, false
	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			p, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			if p == nil {
				continue
			}
			hasUV = hasUV || p.uvs != nil
			hasNormal = hasNormal || p.normals != nil
			prims = append(prims, *p)
		}
	}
	if len(prims) == 0 {
		return nil, ErrNoGeometry
	}

	d := &geom.MeshData{}
	for _, p := range prims {
		base := uint32(d.VertexCount())
		for i, pos := range p.positions {
			d.Positions = append(d.Positions, pos[0], pos[1], pos[2])
			if hasUV {
				var uv [2]float32
				if i < len(p.uvs) {
					uv = p.uvs[i]
				}
				d.TexCoords = append(d.TexCoords, uv[0], uv[1])
			}
			if hasNormal {
				var n [3]float32
				if i < len(p.normals) {
					n = p.normals[i]
				}
				d.Normals = append(d.Normals, n[0], n[1], n[2])
			}
		}
		for _, idx := range p.indices {
			if int(idx) >= len(p.positions) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", idx, len(p.positions))
			}
			d.Indices = append(d.Indices, base+idx)
		}
	}
	return d, nil
}

// readPrimitive returns nil for primitives that are not triangle lists or
// carry no positions.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*primitive, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	p := &primitive{positions: positions}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if p.normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if p.uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
	}

	if prim.Indices != nil {
		if p.indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		p.indices = make([]uint32, len(positions))
		for i := range p.indices {
			p.indices[i] = uint32(i)
		}
	}
	return p, nil
}
