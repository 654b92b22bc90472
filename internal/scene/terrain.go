package scene

import (
	"icarus/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// TerrainTexturePack holds the four base textures blended by a blend map: the
// background shows where the map is black, R, G and B where those channels are set.
type TerrainTexturePack struct {
	Background gpu.TextureHandle
	R          gpu.TextureHandle
	G          gpu.TextureHandle
	B          gpu.TextureHandle
}

// Terrain is one tile of the terrain grid. A tile is painted either with a
// single Texture or with Pack blended by BlendMap.
type Terrain struct {
	GridX int
	GridZ int
	X     float32
	Z     float32

	Mesh gpu.MeshHandle

	Texture  *ModelTexture
	Pack     *TerrainTexturePack
	BlendMap gpu.TextureHandle
}

// NewTerrain creates a single-texture tile at grid cell (gridX, gridZ).
func NewTerrain(gridX, gridZ int, tileSize float32, mesh gpu.MeshHandle, tex *ModelTexture) *Terrain {
	return &Terrain{
		GridX:   gridX,
		GridZ:   gridZ,
		X:       float32(gridX) * tileSize,
		Z:       float32(gridZ) * tileSize,
		Mesh:    mesh,
		Texture: tex,
	}
}

// NewBlendedTerrain creates a tile painted with a texture pack and blend map.
func NewBlendedTerrain(gridX, gridZ int, tileSize float32, mesh gpu.MeshHandle, pack *TerrainTexturePack, blendMap gpu.TextureHandle) *Terrain {
	return &Terrain{
		GridX:    gridX,
		GridZ:    gridZ,
		X:        float32(gridX) * tileSize,
		Z:        float32(gridZ) * tileSize,
		Mesh:     mesh,
		Pack:     pack,
		BlendMap: blendMap,
	}
}

// Blended reports whether the tile uses a texture pack.
func (t *Terrain) Blended() bool {
	return t.Pack != nil
}

// Offset returns the world-space origin of the tile.
func (t *Terrain) Offset() mgl32.Vec3 {
	return mgl32.Vec3{t.X, 0, t.Z}
}
