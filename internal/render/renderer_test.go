package render

import (
	"fmt"
	"strings"
	"testing"

	"icarus/internal/gpu"
	"icarus/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap/zaptest"
)

// recorder collects backend and program calls in issue order.
type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) reset() { r.calls = r.calls[:0] }

func (r *recorder) count(prefix string) int {
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type fakeBackend struct {
	rec     *recorder
	vao     uint32
	enabled map[uint32]bool
	culling bool
	depth   bool
}

func (b *fakeBackend) EnableDepthTest()          { b.depth = true; b.rec.add("depth") }
func (b *fakeBackend) Clear(c mgl32.Vec4)        { b.rec.add("clear %v", c) }
func (b *fakeBackend) SetBackFaceCulling(v bool) { b.culling = v; b.rec.add("cull %v", v) }
func (b *fakeBackend) BindVertexArray(vao uint32) {
	b.vao = vao
	b.rec.add("vao %d", vao)
}
func (b *fakeBackend) EnableAttribute(s uint32) {
	b.enabled[s] = true
	b.rec.add("enable %d", s)
}
func (b *fakeBackend) DisableAttribute(s uint32) {
	delete(b.enabled, s)
	b.rec.add("disable %d", s)
}
func (b *fakeBackend) BindTexture(unit, id uint32) { b.rec.add("texture %d %d", unit, id) }
func (b *fakeBackend) DrawTriangles(n int32) {
	// attribute state observed at draw time
	b.rec.add("draw %d vao=%d attribs=%d cull=%v", n, b.vao, len(b.enabled), b.culling)
}

type fakeProgram struct {
	name     string
	rec      *recorder
	running  bool
	matrices map[string]mgl32.Mat4
	bools    map[string]bool
	ints     map[string]int32
}

func newFakeProgram(name string, rec *recorder) *fakeProgram {
	return &fakeProgram{
		name:     name,
		rec:      rec,
		matrices: make(map[string]mgl32.Mat4),
		bools:    make(map[string]bool),
		ints:     make(map[string]int32),
	}
}

func (p *fakeProgram) Start() { p.running = true; p.rec.add("%s start", p.name) }
func (p *fakeProgram) Stop()  { p.running = false; p.rec.add("%s stop", p.name) }
func (p *fakeProgram) LoadMatrix(name string, m mgl32.Mat4) {
	p.matrices[name] = m
	p.rec.add("%s matrix %s", p.name, name)
}
func (p *fakeProgram) LoadVector(name string, _ mgl32.Vec3) { p.rec.add("%s vector %s", p.name, name) }
func (p *fakeProgram) LoadBool(name string, v bool) {
	p.bools[name] = v
	p.rec.add("%s bool %s %v", p.name, name, v)
}
func (p *fakeProgram) LoadInt(name string, v int32) { p.ints[name] = v }

type fakeResources struct {
	meshes   map[gpu.MeshHandle]gpu.Mesh
	textures map[gpu.TextureHandle]gpu.Texture
}

func (f fakeResources) Mesh(h gpu.MeshHandle) gpu.Mesh          { return f.meshes[h] }
func (f fakeResources) Texture(h gpu.TextureHandle) gpu.Texture { return f.textures[h] }

type fixedViewer struct{}

func (fixedViewer) Eye() mgl32.Vec3                   { return mgl32.Vec3{0, 2, 5} }
func (fixedViewer) Orientation() (pitch, yaw float32) { return 10, 0 }

type fixture struct {
	rec      *recorder
	backend  *fakeBackend
	entity   *fakeProgram
	terrain  *fakeProgram
	renderer *Renderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := &recorder{}
	res := fakeResources{
		meshes: map[gpu.MeshHandle]gpu.Mesh{
			1: {VAO: 11, IndexCount: 36, Slots: []uint32{gpu.SlotPosition, gpu.SlotTexCoord, gpu.SlotNormal}},
			2: {VAO: 12, IndexCount: 6, Slots: []uint32{gpu.SlotPosition}},
			3: {VAO: 13, IndexCount: 96, Slots: []uint32{gpu.SlotPosition, gpu.SlotTexCoord, gpu.SlotNormal}},
		},
		textures: map[gpu.TextureHandle]gpu.Texture{},
	}
	for h := gpu.TextureHandle(1); h <= 9; h++ {
		res.textures[h] = gpu.Texture{ID: 100 + uint32(h)}
	}
	f := &fixture{
		rec:     rec,
		backend: &fakeBackend{rec: rec, enabled: make(map[uint32]bool)},
		entity:  newFakeProgram("entity", rec),
		terrain: newFakeProgram("terrain", rec),
	}
	f.renderer = New(f.backend, res, f.entity, f.terrain, mgl32.Perspective(1, 1.5, 0.1, 1000),
		WithLogger(zaptest.NewLogger(t)))
	rec.reset()
	return f
}

func light() scene.Light {
	return scene.Light{Position: mgl32.Vec3{0, 100, 0}, Colour: mgl32.Vec3{1, 1, 1}}
}

func TestNewLoadsProjectionOnce(t *testing.T) {
	f := newFixture(t)
	for _, p := range []*fakeProgram{f.entity, f.terrain} {
		if _, ok := p.matrices[UniformProjection]; !ok {
			t.Errorf("%s: projection not loaded", p.name)
		}
		if p.running {
			t.Errorf("%s left running after New", p.name)
		}
	}
	if f.terrain.ints[UniformBlendMap] != int32(UnitBlendMap) || f.terrain.ints[UniformRTexture] != int32(UnitR) {
		t.Errorf("terrain samplers: got %v", f.terrain.ints)
	}

	model := scene.NewTexturedModel(1, scene.NewModelTexture(1))
	f.renderer.Submit(scene.NewEntity(model, mgl32.Vec3{}, 0, 0, 0, 1))
	f.renderer.Render(light(), fixedViewer{})
	if n := f.rec.count("entity matrix " + UniformProjection); n != 0 {
		t.Errorf("projection reloaded %d times per frame", n)
	}
}

func TestRenderEntityCallOrder(t *testing.T) {
	f := newFixture(t)
	model := scene.NewTexturedModel(1, scene.NewModelTexture(4))
	e := scene.NewEntity(model, mgl32.Vec3{1, 2, 3}, 0, 45, 0, 2)

	f.renderer.Prepare()
	f.renderer.RenderEntity(e, light(), fixedViewer{})

	want := []string{
		"depth",
		"clear [0.5 0.5 0.5 1]",
		"cull true",
		"entity start",
		"entity vector " + UniformLightPosition,
		"entity vector " + UniformLightColour,
		"entity matrix " + UniformView,
		"vao 11",
		"enable 0",
		"enable 1",
		"enable 2",
		"entity bool " + UniformFakeLighting + " false",
		"texture 0 104",
		"entity matrix " + UniformModel,
		"draw 36 vao=11 attribs=3 cull=true",
		"disable 2",
		"disable 1",
		"disable 0",
		"vao 0",
		"entity stop",
	}
	if got := f.rec.calls; strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("calls:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	wantModel := mgl32.Translate3D(1, 2, 3).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(45))).
		Mul4(mgl32.Scale3D(2, 2, 2))
	if got := f.entity.matrices[UniformModel]; !got.ApproxEqualThreshold(wantModel, 1e-5) {
		t.Errorf("model matrix:\n%v\nwant\n%v", got, wantModel)
	}
}

func TestPositionOnlyMeshEnablesOneSlot(t *testing.T) {
	f := newFixture(t)
	model := scene.NewTexturedModel(2, scene.NewModelTexture(1))
	f.renderer.Prepare()
	f.renderer.RenderEntity(scene.NewEntity(model, mgl32.Vec3{}, 0, 0, 0, 1), light(), fixedViewer{})

	if f.rec.count("enable ") != 1 || f.rec.count("disable ") != 1 {
		t.Errorf("enabled %d, disabled %d attributes, want 1 each", f.rec.count("enable "), f.rec.count("disable "))
	}
	if f.rec.count("draw 6 vao=12 attribs=1") != 1 {
		t.Errorf("draw not issued with one attribute: %v", f.rec.calls)
	}
}

func TestRenderBeforePreparePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*fixture)
	}{
		{"entity", func(f *fixture) {
			model := scene.NewTexturedModel(1, scene.NewModelTexture(1))
			f.renderer.RenderEntity(scene.NewEntity(model, mgl32.Vec3{}, 0, 0, 0, 1), light(), fixedViewer{})
		}},
		{"terrain", func(f *fixture) {
			f.renderer.RenderTerrain(scene.NewTerrain(0, 0, 800, 3, scene.NewModelTexture(1)), light(), fixedViewer{})
		}},
		{"entity after Render", func(f *fixture) {
			f.renderer.Render(light(), fixedViewer{})
			model := scene.NewTexturedModel(1, scene.NewModelTexture(1))
			f.renderer.RenderEntity(scene.NewEntity(model, mgl32.Vec3{}, 0, 0, 0, 1), light(), fixedViewer{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			tt.fn(f)
		})
	}
}

func TestTransparentModelDisablesCullingForItsDraws(t *testing.T) {
	f := newFixture(t)
	fern := scene.NewModelTexture(2)
	fern.HasTransparency = true
	fern.UseFakeLighting = true
	ferns := scene.NewTexturedModel(1, fern)
	stall := scene.NewTexturedModel(2, scene.NewModelTexture(3))

	f.renderer.Submit(scene.NewEntity(ferns, mgl32.Vec3{}, 0, 0, 0, 1))
	f.renderer.Submit(scene.NewEntity(stall, mgl32.Vec3{}, 0, 0, 0, 1))
	f.renderer.Submit(scene.NewEntity(ferns, mgl32.Vec3{5, 0, 0}, 0, 0, 0, 1))
	f.renderer.Render(light(), fixedViewer{})

	if n := f.rec.count("draw 36 vao=11 attribs=3 cull=false"); n != 2 {
		t.Errorf("transparent draws without culling: got %d, want 2", n)
	}
	if n := f.rec.count("draw 6 vao=12 attribs=1 cull=true"); n != 1 {
		t.Errorf("opaque draw with culling: got %d, want 1", n)
	}
	if !f.backend.culling {
		t.Error("culling left disabled after frame")
	}
	if n := f.rec.count("entity bool " + UniformFakeLighting + " true"); n != 1 {
		t.Errorf("fake lighting loads: got %d, want 1", n)
	}
}

func TestRenderBatchesByModel(t *testing.T) {
	f := newFixture(t)
	a := scene.NewTexturedModel(1, scene.NewModelTexture(1))
	b := scene.NewTexturedModel(2, scene.NewModelTexture(2))
	for i := 0; i < 10; i++ {
		f.renderer.Submit(scene.NewEntity(a, mgl32.Vec3{float32(i), 0, 0}, 0, 0, 0, 1))
		f.renderer.Submit(scene.NewEntity(b, mgl32.Vec3{0, 0, float32(i)}, 0, 0, 0, 1))
	}

	stats := f.renderer.Render(light(), fixedViewer{})
	want := Stats{Draws: 20, MeshBinds: 2, TextureBinds: 2}
	if stats != want {
		t.Fatalf("stats: got %+v, want %+v", stats, want)
	}
	if got := f.renderer.Stats(); got != stats {
		t.Errorf("Stats() after Render: got %+v, want %+v", got, stats)
	}
	if f.rec.count("entity start") != 1 || f.rec.count("terrain start") != 0 {
		t.Errorf("program starts: %v", f.rec.calls)
	}
	// first model drawn is the first submitted
	for _, c := range f.rec.calls {
		if strings.HasPrefix(c, "vao ") && c != "vao 0" {
			if c != "vao 11" {
				t.Errorf("first bind: got %q, want vao 11", c)
			}
			break
		}
	}

	f.rec.reset()
	if stats := f.renderer.Render(light(), fixedViewer{}); stats.Draws != 0 {
		t.Errorf("queue not emptied: %+v", stats)
	}
	if f.rec.count("clear ") != 1 {
		t.Errorf("empty frame still clears once: %v", f.rec.calls)
	}
}

func TestRenderTerrain(t *testing.T) {
	f := newFixture(t)
	pack := &scene.TerrainTexturePack{Background: 5, R: 6, G: 7, B: 8}
	blended := scene.NewBlendedTerrain(1, -1, 800, 3, pack, 9)
	plain := scene.NewTerrain(0, 0, 800, 3, scene.NewModelTexture(1))

	f.renderer.SubmitTerrain(blended)
	stats := f.renderer.Render(light(), fixedViewer{})
	for unit, id := range []uint32{105, 106, 107, 108, 109} {
		if f.rec.count(fmt.Sprintf("texture %d %d", unit, id)) != 1 {
			t.Errorf("unit %d: texture %d not bound", unit, id)
		}
	}
	if !f.terrain.bools[UniformUseBlendMap] {
		t.Error("blend map disabled for blended tile")
	}
	if stats.TextureBinds != 5 || stats.Draws != 1 {
		t.Errorf("stats: %+v", stats)
	}
	got := f.terrain.matrices[UniformModel].Col(3)
	if !got.ApproxEqualThreshold(mgl32.Vec4{800, 0, -800, 1}, 1e-4) {
		t.Errorf("tile offset: got %v", got)
	}

	f.rec.reset()
	f.renderer.Prepare()
	f.renderer.RenderTerrain(plain, light(), fixedViewer{})
	if f.rec.count("texture ") != 1 || f.rec.count("texture 0 101") != 1 {
		t.Errorf("single-texture tile binds: %v", f.rec.calls)
	}
	if f.terrain.bools[UniformUseBlendMap] {
		t.Error("blend map enabled for single-texture tile")
	}
	if f.backend.vao != 0 || len(f.backend.enabled) != 0 {
		t.Errorf("state leaked: vao=%d attribs=%v", f.backend.vao, f.backend.enabled)
	}
}

func TestNoStateLeaksBetweenDraws(t *testing.T) {
	f := newFixture(t)
	a := scene.NewTexturedModel(1, scene.NewModelTexture(1))
	b := scene.NewTexturedModel(2, scene.NewModelTexture(2))
	f.renderer.Submit(scene.NewEntity(a, mgl32.Vec3{}, 0, 0, 0, 1))
	f.renderer.Submit(scene.NewEntity(b, mgl32.Vec3{}, 0, 0, 0, 1))
	f.renderer.SubmitTerrain(scene.NewTerrain(0, 0, 800, 3, scene.NewModelTexture(3)))
	f.renderer.Render(light(), fixedViewer{})

	// every non-zero bind must follow an unbind
	bound := false
	for _, c := range f.rec.calls {
		if !strings.HasPrefix(c, "vao ") {
			continue
		}
		if c == "vao 0" {
			bound = false
			continue
		}
		if bound {
			t.Fatalf("%q issued while another vertex array was bound:\n%s", c, strings.Join(f.rec.calls, "\n"))
		}
		bound = true
	}
	if bound || len(f.backend.enabled) != 0 {
		t.Errorf("state leaked after frame: bound=%v attribs=%v", bound, f.backend.enabled)
	}
}

func TestMeshScopeReleaseIsIdempotent(t *testing.T) {
	rec := &recorder{}
	b := &fakeBackend{rec: rec, enabled: make(map[uint32]bool)}
	s := bindMesh(b, gpu.Mesh{VAO: 3, Slots: []uint32{0, 1}})
	s.Release()
	s.Release()
	if rec.count("disable ") != 2 || rec.count("vao 0") != 1 {
		t.Errorf("calls: %v", rec.calls)
	}
}

func BenchmarkRender(b *testing.B) {
	rec := &recorder{}
	res := fakeResources{
		meshes:   map[gpu.MeshHandle]gpu.Mesh{1: {VAO: 1, IndexCount: 36, Slots: []uint32{0, 1, 2}}},
		textures: map[gpu.TextureHandle]gpu.Texture{1: {ID: 1}},
	}
	r := New(&fakeBackend{rec: rec, enabled: make(map[uint32]bool)}, res,
		newFakeProgram("entity", rec), newFakeProgram("terrain", rec), mgl32.Ident4())
	model := scene.NewTexturedModel(1, scene.NewModelTexture(1))
	entities := make([]*scene.Entity, 500)
	for i := range entities {
		entities[i] = scene.NewEntity(model, mgl32.Vec3{float32(i), 0, 0}, 0, float32(i), 0, 1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, e := range entities {
			r.Submit(e)
		}
		r.Render(light(), fixedViewer{})
		rec.reset()
	}
}
