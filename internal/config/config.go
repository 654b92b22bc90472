package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"icarus/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// Settings holds every tunable of the renderer.
type Settings struct {
	Window     WindowSettings     `json:"window"`
	Projection ProjectionSettings `json:"projection"`
	Camera     CameraSettings     `json:"camera"`
	Render     RenderSettings     `json:"render"`
	Assets     AssetSettings      `json:"assets"`
	Debug      bool               `json:"debug"`
}

// WindowSettings configures the display surface.
type WindowSettings struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Title    string `json:"title"`
	FPSLimit int    `json:"fpsLimit"` // 0 disables pacing
}

// ProjectionSettings configures the perspective projection. Angles are degrees.
type ProjectionSettings struct {
	FOV  float32 `json:"fov"`
	Near float32 `json:"near"`
	Far  float32 `json:"far"`
}

// CameraSettings configures look and movement.
type CameraSettings struct {
	Sensitivity float32    `json:"sensitivity"` // degrees per pixel
	Speed       float32    `json:"speed"`       // units per tick
	Start       mgl32.Vec3 `json:"start"`
}

// RenderSettings configures the frame and the terrain tiles.
type RenderSettings struct {
	ClearColour        mgl32.Vec4 `json:"clearColour"`
	TerrainSize        float32    `json:"terrainSize"`
	TerrainVertexCount int        `json:"terrainVertexCount"`
}

// AssetSettings locates model, texture and shader files.
type AssetSettings struct {
	Root           string `json:"root"`
	Shaders        string `json:"shaders"`
	MaxTextureSize int    `json:"maxTextureSize"` // 0 disables down-scaling
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Width:    1280,
			Height:   720,
			Title:    "icarus",
			FPSLimit: 170,
		},
		Projection: ProjectionSettings{
			FOV:  70,
			Near: 0.1,
			Far:  1000,
		},
		Camera: CameraSettings{
			Sensitivity: 0.1,
			Speed:       0.02,
			Start:       mgl32.Vec3{0, 5, 0},
		},
		Render: RenderSettings{
			ClearColour:        mgl32.Vec4{0.5, 0.5, 0.5, 1},
			TerrainSize:        terrain.DefaultSize,
			TerrainVertexCount: terrain.DefaultVertexCount,
		},
		Assets: AssetSettings{
			Root:           "res",
			Shaders:        "res/shaders",
			MaxTextureSize: 4096,
		},
	}
}

// Load overlays the JSON file at path on Default. A missing file yields the
// defaults; a malformed or invalid one is an error.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Validate reports the first setting that cannot produce a usable frame.
func (s Settings) Validate() error {
	switch {
	case s.Window.Width <= 0 || s.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height)
	case s.Window.FPSLimit < 0:
		return fmt.Errorf("fps limit %d is negative", s.Window.FPSLimit)
	case s.Projection.FOV <= 0 || s.Projection.FOV >= 180:
		return fmt.Errorf("fov %v outside (0, 180)", s.Projection.FOV)
	case s.Projection.Near <= 0 || s.Projection.Near >= s.Projection.Far:
		return fmt.Errorf("near plane %v must be positive and below far plane %v", s.Projection.Near, s.Projection.Far)
	case s.Camera.Sensitivity <= 0 || s.Camera.Speed <= 0:
		return fmt.Errorf("camera sensitivity %v and speed %v must be positive", s.Camera.Sensitivity, s.Camera.Speed)
	case s.Render.TerrainSize <= 0:
		return fmt.Errorf("terrain size %v must be positive", s.Render.TerrainSize)
	case s.Render.TerrainVertexCount < 2:
		return fmt.Errorf("terrain vertex count %d below 2", s.Render.TerrainVertexCount)
	case s.Assets.MaxTextureSize < 0:
		return fmt.Errorf("max texture size %d is negative", s.Assets.MaxTextureSize)
	}
	return nil
}

// AspectRatio is the window width over its height.
func (w WindowSettings) AspectRatio() float32 {
	return float32(w.Width) / float32(w.Height)
}
