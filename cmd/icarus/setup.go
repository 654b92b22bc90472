package main

import (
	"fmt"
	"math/rand"
	"path/filepath"

	"icarus/internal/camera"
	"icarus/internal/config"
	"icarus/internal/display"
	"icarus/internal/gpu"
	"icarus/internal/input"
	"icarus/internal/mathutil"
	"icarus/internal/render"
	"icarus/internal/scene"
	"icarus/internal/shader"
	"icarus/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// controls joins the polled action map with the surface cursor.
type controls struct {
	*input.Manager
	*display.Surface
}

// app holds everything the frame loop drives.
type app struct {
	surface  *display.Surface
	registry *gpu.Registry
	programs []*shader.Program
	renderer *render.Renderer
	camera   *camera.Camera
	controls controls

	light    scene.Light
	showcase *scene.Entity
	entities []*scene.Entity
	terrains []*scene.Terrain
}

func setup(cfg config.Settings, log *zap.Logger) (a *app, err error) {
	surface, err := display.Open(cfg.Window, log.Named("display"))
	if err != nil {
		return nil, err
	}
	a = &app{
		surface: surface,
		registry: gpu.NewRegistry(gpu.NewGLDevice(),
			gpu.WithAssetRoot(cfg.Assets.Root),
			gpu.WithMaxTextureSize(cfg.Assets.MaxTextureSize),
			gpu.WithLogger(log.Named("gpu"))),
		controls: controls{Manager: input.NewManager(), Surface: surface},
	}
	defer func() {
		if err != nil {
			a.teardown()
			a = nil
		}
	}()

	entityProgram, err := a.loadProgram(cfg.Assets.Shaders, "entity")
	if err != nil {
		return a, err
	}
	terrainProgram, err := a.loadProgram(cfg.Assets.Shaders, "terrain")
	if err != nil {
		return a, err
	}

	p := cfg.Projection
	projection := mathutil.ProjectionMatrix(p.FOV, surface.AspectRatio(), p.Near, p.Far)
	a.renderer = render.New(render.NewGLBackend(), a.registry, entityProgram, terrainProgram, projection,
		render.WithClearColour(cfg.Render.ClearColour),
		render.WithLogger(log.Named("render")))

	a.camera = camera.New(cfg.Camera.Start)
	a.camera.Sensitivity = cfg.Camera.Sensitivity
	a.camera.Speed = cfg.Camera.Speed

	if err := a.populate(cfg.Render); err != nil {
		return a, err
	}

	meshes, textures := a.registry.Live()
	log.Info("scene ready",
		zap.Int("entities", len(a.entities)),
		zap.Int("terrains", len(a.terrains)),
		zap.Int("meshes", meshes),
		zap.Int("textures", textures))
	return a, nil
}

func (a *app) loadProgram(dir, name string) (*shader.Program, error) {
	p, err := shader.Load(filepath.Join(dir, name+".vert"), filepath.Join(dir, name+".frag"))
	if err != nil {
		return nil, fmt.Errorf("load %s program: %w", name, err)
	}
	a.programs = append(a.programs, p)
	return p, nil
}

// texturedModel loads <name>.obj with <texture>.png.
func (a *app) texturedModel(name, texture string) (*scene.TexturedModel, error) {
	mesh, err := a.registry.LoadMesh(name)
	if err != nil {
		return nil, err
	}
	tex, err := a.registry.LoadTexture(texture)
	if err != nil {
		return nil, err
	}
	return scene.NewTexturedModel(mesh, scene.NewModelTexture(tex)), nil
}

func (a *app) populate(rs config.RenderSettings) error {
	stall, err := a.texturedModel("stall", "stallTexture")
	if err != nil {
		return err
	}
	fern, err := a.texturedModel("fern", "fern")
	if err != nil {
		return err
	}
	fern.Texture.HasTransparency = true

	grass, err := a.texturedModel("grassModel", "grassTexture")
	if err != nil {
		return err
	}
	grass.Texture.HasTransparency = true
	grass.Texture.UseFakeLighting = true

	a.showcase = scene.NewEntity(stall, mgl32.Vec3{0, 0, -25}, 0, 0, 0, 1)
	a.entities = append(a.entities, a.showcase)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		x := rng.Float32()*rs.TerrainSize - rs.TerrainSize/2
		z := -rng.Float32() * rs.TerrainSize
		a.entities = append(a.entities,
			scene.NewEntity(fern, mgl32.Vec3{x, 0, z}, 0, rng.Float32()*360, 0, 0.6),
			scene.NewEntity(grass, mgl32.Vec3{z / 2, 0, x - rs.TerrainSize/2}, 0, 0, 0, 1))
	}

	pack := &scene.TerrainTexturePack{}
	for _, t := range []struct {
		name string
		dst  *gpu.TextureHandle
	}{
		{"grassy", &pack.Background},
		{"mud", &pack.R},
		{"grassFlowers", &pack.G},
		{"path", &pack.B},
	} {
		if *t.dst, err = a.registry.LoadTexture(t.name); err != nil {
			return err
		}
	}
	blendMap, err := a.registry.LoadTexture("blendMap")
	if err != nil {
		return err
	}

	tile, err := a.registry.CreateMesh(terrain.Generate(rs.TerrainSize, rs.TerrainVertexCount))
	if err != nil {
		return err
	}
	a.terrains = append(a.terrains,
		scene.NewBlendedTerrain(0, -1, rs.TerrainSize, tile, pack, blendMap),
		scene.NewBlendedTerrain(-1, -1, rs.TerrainSize, tile, pack, blendMap))

	a.light = scene.Light{Position: mgl32.Vec3{3000, 2000, 2000}, Colour: mgl32.Vec3{1, 1, 1}}
	return nil
}

// teardown releases GPU resources while the context is still current, then
// closes the window.
func (a *app) teardown() {
	for _, p := range a.programs {
		p.Delete()
	}
	a.programs = nil
	a.registry.ReleaseAll()
	a.surface.Close()
}
