package gpu

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"icarus/internal/geom"
	"icarus/internal/gltfmesh"
	"icarus/internal/logger"
	"icarus/internal/obj"

	"go.uber.org/zap"
)

// Attribute slots used by every mesh.
const (
	SlotPosition uint32 = 0
	SlotTexCoord uint32 = 1
	SlotNormal   uint32 = 2
)

// Device performs the raw GPU calls behind a Registry. Every method must be
// called on the thread owning the GL context.
type Device interface {
	// CreateVertexArray creates and binds a vertex array.
	CreateVertexArray() uint32
	// UploadIndices creates an element buffer on the bound vertex array.
	UploadIndices(indices []uint32) uint32
	// UploadAttribute creates a vertex buffer bound to slot on the bound vertex array.
	UploadAttribute(slot uint32, size int32, data []float32) uint32
	// UnbindVertexArray ends vertex array setup.
	UnbindVertexArray()
	// UploadTexture creates a mipmapped, edge-clamped 2D texture.
	UploadTexture(img *image.RGBA) uint32

	DeleteVertexArray(id uint32)
	DeleteBuffer(id uint32)
	DeleteTexture(id uint32)
}

// MeshHandle and TextureHandle are opaque references into a Registry. The
// zero value is never issued.
type (
	MeshHandle    uint32
	TextureHandle uint32
)

// Mesh is a GPU-resident vertex array with its buffers.
type Mesh struct {
	VAO         uint32
	VertexCount int
	IndexCount  int32
	// Slots lists the attribute slots the mesh carries, in ascending order.
	Slots []uint32

	buffers []uint32
}

// HasSlot reports whether the mesh carries attribute slot s.
func (m Mesh) HasSlot(s uint32) bool {
	for _, v := range m.Slots {
		if v == s {
			return true
		}
	}
	return false
}

// Texture is a GPU-resident 2D texture.
type Texture struct {
	ID     uint32
	Name   string
	Width  int
	Height int
}

// Registry allocates meshes and textures and owns every handle it issues.
// It is not safe for concurrent use.
type Registry struct {
	dev     Device
	root    string
	maxEdge int
	log     *zap.Logger

	next      uint32
	meshes    map[MeshHandle]Mesh
	meshOrder []MeshHandle
	textures  map[TextureHandle]Texture
	texOrder  []TextureHandle
	texByName map[string]TextureHandle
}

// Option configures a Registry.
type Option func(*Registry)

// WithAssetRoot sets the directory model and texture names resolve against.
func WithAssetRoot(root string) Option {
	return func(r *Registry) { r.root = root }
}

// WithMaxTextureSize down-scales textures whose longer edge exceeds edge pixels.
// Zero disables scaling.
func WithMaxTextureSize(edge int) Option {
	return func(r *Registry) { r.maxEdge = edge }
}

// WithLogger sets the logger. Nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.log = logger.OrNop(l) }
}

// NewRegistry creates an empty registry on dev.
func NewRegistry(dev Device, opts ...Option) *Registry {
	r := &Registry{
		dev:       dev,
		root:      "res",
		log:       zap.NewNop(),
		meshes:    make(map[MeshHandle]Mesh),
		textures:  make(map[TextureHandle]Texture),
		texByName: make(map[string]TextureHandle),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// CreateMesh uploads positions, optional texcoords and normals, and indices.
func (r *Registry) CreateMesh(d *geom.MeshData) (MeshHandle, error) {
	if err := validate(d); err != nil {
		return 0, err
	}

	m := Mesh{
		VertexCount: d.VertexCount(),
		IndexCount:  int32(len(d.Indices)),
	}
	m.VAO = r.dev.CreateVertexArray()
	m.buffers = append(m.buffers, r.dev.UploadIndices(d.Indices))
	m.buffers = append(m.buffers, r.dev.UploadAttribute(SlotPosition, 3, d.Positions))
	m.Slots = append(m.Slots, SlotPosition)
	if len(d.TexCoords) > 0 {
		m.buffers = append(m.buffers, r.dev.UploadAttribute(SlotTexCoord, 2, d.TexCoords))
		m.Slots = append(m.Slots, SlotTexCoord)
	}
	if len(d.Normals) > 0 {
		m.buffers = append(m.buffers, r.dev.UploadAttribute(SlotNormal, 3, d.Normals))
		m.Slots = append(m.Slots, SlotNormal)
	}
	r.dev.UnbindVertexArray()

	r.next++
	h := MeshHandle(r.next)
	r.meshes[h] = m
	r.meshOrder = append(r.meshOrder, h)

	r.log.Debug("mesh uploaded",
		zap.Uint32("handle", uint32(h)),
		zap.Int("vertices", m.VertexCount),
		zap.Int32("indices", m.IndexCount),
		zap.Int("slots", len(m.Slots)))
	return h, nil
}

// CreatePositionMesh uploads untextured geometry.
func (r *Registry) CreatePositionMesh(positions []float32, indices []uint32) (MeshHandle, error) {
	return r.CreateMesh(&geom.MeshData{Positions: positions, Indices: indices})
}

// LoadMesh uploads the model called name under the asset root. <name>.glb and
// <name>.gltf are preferred when present; otherwise <name>.obj is parsed.
func (r *Registry) LoadMesh(name string) (MeshHandle, error) {
	base := filepath.Join(r.root, name)
	var (
		d   *geom.MeshData
		err error
	)
	switch {
	case fileExists(base + ".glb"):
		d, err = gltfmesh.Load(base + ".glb")
	case fileExists(base + ".gltf"):
		d, err = gltfmesh.Load(base + ".gltf")
	default:
		d, err = obj.Load(base + ".obj")
	}
	if err != nil {
		return 0, fmt.Errorf("gpu: load mesh %q: %w", name, err)
	}
	return r.CreateMesh(d)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadTexture decodes <root>/<name>.png and uploads it. A name already loaded
// returns the existing handle.
func (r *Registry) LoadTexture(name string) (TextureHandle, error) {
	if h, ok := r.texByName[name]; ok {
		return h, nil
	}

	path := filepath.Join(r.root, name+".png")
	img, err := decodeFile(path, r.maxEdge)
	if err != nil {
		return 0, fmt.Errorf("gpu: load texture %q: %w", name, err)
	}

	tex := Texture{
		ID:     r.dev.UploadTexture(img),
		Name:   name,
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
	}

	r.next++
	h := TextureHandle(r.next)
	r.textures[h] = tex
	r.texOrder = append(r.texOrder, h)
	r.texByName[name] = h

	r.log.Debug("texture uploaded",
		zap.String("path", path),
		zap.Uint32("handle", uint32(h)),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height))
	return h, nil
}

// Mesh resolves h. It panics if h was not issued by r or has been released.
func (r *Registry) Mesh(h MeshHandle) Mesh {
	m, ok := r.meshes[h]
	if !ok {
		panic(fmt.Sprintf("gpu: mesh handle %d not live in this registry", h))
	}
	return m
}

// Texture resolves h. It panics if h was not issued by r or has been released.
func (r *Registry) Texture(h TextureHandle) Texture {
	t, ok := r.textures[h]
	if !ok {
		panic(fmt.Sprintf("gpu: texture handle %d not live in this registry", h))
	}
	return t
}

// Live returns the number of meshes and textures not yet released.
func (r *Registry) Live() (meshes, textures int) {
	return len(r.meshes), len(r.textures)
}

// ReleaseAll frees every mesh and texture issued by r, each exactly once. A
// second call is a no-op. Rendering must have stopped before it is called.
// Handles are never reissued, so released handles stay invalid.
func (r *Registry) ReleaseAll() {
	if len(r.meshOrder) == 0 && len(r.texOrder) == 0 {
		return
	}

	buffers := 0
	for _, h := range r.meshOrder {
		m := r.meshes[h]
		r.dev.DeleteVertexArray(m.VAO)
		for _, b := range m.buffers {
			r.dev.DeleteBuffer(b)
			buffers++
		}
	}
	for _, h := range r.texOrder {
		r.dev.DeleteTexture(r.textures[h].ID)
	}

	r.log.Info("gpu resources released",
		zap.Int("meshes", len(r.meshOrder)),
		zap.Int("buffers", buffers),
		zap.Int("textures", len(r.texOrder)))

	r.meshOrder = nil
	r.texOrder = nil
	clear(r.meshes)
	clear(r.textures)
	clear(r.texByName)
}

func validate(d *geom.MeshData) error {
	if len(d.Positions)%3 != 0 {
		return fmt.Errorf("gpu: %d position floats is not a multiple of 3", len(d.Positions))
	}
	n := d.VertexCount()
	if len(d.TexCoords) != 0 && len(d.TexCoords) != n*2 {
		return fmt.Errorf("gpu: %d texcoord floats for %d vertices", len(d.TexCoords), n)
	}
	if len(d.Normals) != 0 && len(d.Normals) != n*3 {
		return fmt.Errorf("gpu: %d normal floats for %d vertices", len(d.Normals), n)
	}
	for _, i := range d.Indices {
		if int(i) >= n {
			return fmt.Errorf("gpu: index %d out of range for %d vertices", i, n)
		}
	}
	return nil
}
