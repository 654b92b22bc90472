package render

import (
	"icarus/internal/gpu"
	"icarus/internal/logger"
	"icarus/internal/mathutil"
	"icarus/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// DefaultClearColour is the background every frame starts from.
var DefaultClearColour = mgl32.Vec4{0.5, 0.5, 0.5, 1}

// Stats counts the work of the last rendered frame.
type Stats struct {
	Draws        int
	MeshBinds    int
	TextureBinds int
}

// Renderer composes a frame from submitted entities and terrain tiles. It must
// only be used on the thread owning the GL context.
type Renderer struct {
	backend Backend
	res     Resources
	entity  Program
	terrain Program
	log     *zap.Logger

	clearColour mgl32.Vec4
	prepared    bool
	stats       Stats

	batches  map[*scene.TexturedModel][]*scene.Entity
	order    []*scene.TexturedModel
	terrains []*scene.Terrain
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClearColour overrides DefaultClearColour.
func WithClearColour(c mgl32.Vec4) Option {
	return func(r *Renderer) { r.clearColour = c }
}

// WithLogger sets the logger. Nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.log = logger.OrNop(l) }
}

// New creates a renderer drawing entities with entity and terrain tiles with
// terrain. The projection matrix is loaded into both programs once.
func New(b Backend, res Resources, entity, terrain Program, projection mgl32.Mat4, opts ...Option) *Renderer {
	r := &Renderer{
		backend:     b,
		res:         res,
		entity:      entity,
		terrain:     terrain,
		log:         zap.NewNop(),
		clearColour: DefaultClearColour,
		batches:     make(map[*scene.TexturedModel][]*scene.Entity),
	}
	for _, o := range opts {
		o(r)
	}

	entity.Start()
	entity.LoadMatrix(UniformProjection, projection)
	entity.LoadInt(UniformModelTexture, int32(UnitModel))
	entity.Stop()

	terrain.Start()
	terrain.LoadMatrix(UniformProjection, projection)
	terrain.LoadInt(UniformBackground, int32(UnitBackground))
	terrain.LoadInt(UniformRTexture, int32(UnitR))
	terrain.LoadInt(UniformGTexture, int32(UnitG))
	terrain.LoadInt(UniformBTexture, int32(UnitB))
	terrain.LoadInt(UniformBlendMap, int32(UnitBlendMap))
	terrain.Stop()

	r.log.Debug("renderer ready", zap.Float32s("clear", r.clearColour[:]))
	return r
}

// Prepare starts a frame: depth testing on, colour and depth cleared, back
// faces culled. It must run before any draw of the frame.
func (r *Renderer) Prepare() {
	r.backend.EnableDepthTest()
	r.backend.Clear(r.clearColour)
	r.backend.SetBackFaceCulling(true)
	r.prepared = true
	r.stats = Stats{}
}

// Submit queues e for the next Render. Entities sharing a model are drawn
// with a single mesh and texture bind.
func (r *Renderer) Submit(e *scene.Entity) {
	batch, ok := r.batches[e.Model]
	if !ok {
		r.order = append(r.order, e.Model)
	}
	r.batches[e.Model] = append(batch, e)
}

// SubmitTerrain queues t for the next Render.
func (r *Renderer) SubmitTerrain(t *scene.Terrain) {
	r.terrains = append(r.terrains, t)
}

// Render prepares the frame, draws everything submitted since the last call
// in submission order and empties the queues.
func (r *Renderer) Render(light scene.Light, viewer mathutil.Viewer) Stats {
	r.Prepare()
	view := mathutil.ViewMatrix(viewer)

	if len(r.order) > 0 {
		r.begin(r.entity, light, view)
		for _, model := range r.order {
			r.drawBatch(model, r.batches[model])
		}
		r.entity.Stop()
	}

	if len(r.terrains) > 0 {
		r.begin(r.terrain, light, view)
		for _, t := range r.terrains {
			r.drawTerrain(t)
		}
		r.terrain.Stop()
	}

	clear(r.batches)
	r.order = r.order[:0]
	r.terrains = r.terrains[:0]
	r.prepared = false
	return r.stats
}

// RenderEntity draws e immediately. It panics if Prepare has not run.
func (r *Renderer) RenderEntity(e *scene.Entity, light scene.Light, viewer mathutil.Viewer) {
	r.mustBePrepared("RenderEntity")
	r.begin(r.entity, light, mathutil.ViewMatrix(viewer))
	r.drawBatch(e.Model, []*scene.Entity{e})
	r.entity.Stop()
}

// RenderTerrain draws t immediately. It panics if Prepare has not run.
func (r *Renderer) RenderTerrain(t *scene.Terrain, light scene.Light, viewer mathutil.Viewer) {
	r.mustBePrepared("RenderTerrain")
	r.begin(r.terrain, light, mathutil.ViewMatrix(viewer))
	r.drawTerrain(t)
	r.terrain.Stop()
}

// Stats returns the counters of the frame in progress or the last one rendered.
func (r *Renderer) Stats() Stats {
	return r.stats
}

func (r *Renderer) mustBePrepared(op string) {
	if !r.prepared {
		panic("render: " + op + " called before Prepare")
	}
}

func (r *Renderer) begin(p Program, light scene.Light, view mgl32.Mat4) {
	p.Start()
	p.LoadVector(UniformLightPosition, light.Position)
	p.LoadVector(UniformLightColour, light.Colour)
	p.LoadMatrix(UniformView, view)
}

func (r *Renderer) drawBatch(model *scene.TexturedModel, entities []*scene.Entity) {
	mesh := r.res.Mesh(model.Mesh)
	tex := model.Texture

	scope := bindMesh(r.backend, mesh)
	defer scope.Release()
	cull := disableCullingIf(r.backend, tex.HasTransparency)
	defer cull.Release()
	r.stats.MeshBinds++

	r.entity.LoadBool(UniformFakeLighting, tex.UseFakeLighting)
	r.bindTexture(UnitModel, tex.Handle)

	for _, e := range entities {
		r.entity.LoadMatrix(UniformModel, mathutil.ModelMatrix(e.Position, e.RotX, e.RotY, e.RotZ, e.Scale))
		r.backend.DrawTriangles(mesh.IndexCount)
		r.stats.Draws++
	}
}

func (r *Renderer) drawTerrain(t *scene.Terrain) {
	mesh := r.res.Mesh(t.Mesh)

	scope := bindMesh(r.backend, mesh)
	defer scope.Release()
	r.stats.MeshBinds++

	if t.Blended() {
		r.terrain.LoadBool(UniformUseBlendMap, true)
		r.bindTexture(UnitBackground, t.Pack.Background)
		r.bindTexture(UnitR, t.Pack.R)
		r.bindTexture(UnitG, t.Pack.G)
		r.bindTexture(UnitB, t.Pack.B)
		r.bindTexture(UnitBlendMap, t.BlendMap)
	} else {
		r.terrain.LoadBool(UniformUseBlendMap, false)
		r.bindTexture(UnitBackground, t.Texture.Handle)
	}

	r.terrain.LoadMatrix(UniformModel, mathutil.ModelMatrix(t.Offset(), 0, 0, 0, 1))
	r.backend.DrawTriangles(mesh.IndexCount)
	r.stats.Draws++
}

func (r *Renderer) bindTexture(unit uint32, h gpu.TextureHandle) {
	r.backend.BindTexture(unit, r.res.Texture(h).ID)
	r.stats.TextureBinds++
}
