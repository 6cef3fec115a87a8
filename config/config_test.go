package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/model"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.Vulkan.FenceTimeout.Duration)
	assert.Equal(t, uint32(common.DefaultImageCount), cfg.Vulkan.DesiredImageCount)
	formats, err := cfg.Vulkan.Formats()
	require.NoError(t, err)
	assert.Equal(t, []vk.Format{vk.FormatB8g8r8a8Srgb, vk.FormatB8g8r8a8Unorm}, formats)
	assert.Empty(t, cfg.Vulkan.Features, "no GPU is rejected by default")
	assert.Equal(t, []string{"FillModeNonSolid"}, cfg.Vulkan.OptionalFeatures)
}

func TestParseOverridesDefaults(t *testing.T) {
	src := `
log_level = "debug"

[window]
backend = "glfw"
width = 800

[vulkan]
validation = false
features = ["FillModeNonSolid"]
max_samples = 4
fence_timeout = "250ms"

[render]
mesh = "assets/bunny.stl"
wireframe = true
clear_color = [0.0, 0.0, 0.0, 1.0]
target_fps = 0

[camera]
position = [1.0, 2.0, 3.0]
`
	cfg, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, common.BackendGLFW, cfg.Window.Backend)
	assert.Equal(t, uint32(800), cfg.Window.Width)
	assert.Equal(t, uint32(720), cfg.Window.Height)
	assert.False(t, cfg.Vulkan.Validation)
	assert.Equal(t, []string{"FillModeNonSolid"}, cfg.Vulkan.Features)
	assert.Equal(t, 4, cfg.Vulkan.MaxSamples)
	assert.Equal(t, 250*time.Millisecond, cfg.Vulkan.FenceTimeout.Duration)
	assert.Equal(t, "assets/bunny.stl", cfg.Render.Mesh)
	assert.True(t, cfg.Render.Wireframe)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, cfg.Render.ClearColor)
	assert.Zero(t, cfg.Render.TargetFPS)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Camera.Position)
	assert.Equal(t, [3]float32{0, 0, -1}, cfg.Camera.Front)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[window]\ntitel = \"typo\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "titel")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"backend", func(c *Config) { c.Window.Backend = "x11" }},
		{"feature", func(c *Config) { c.Vulkan.Features = []string{"Teleport"} }},
		{"optional feature", func(c *Config) { c.Vulkan.OptionalFeatures = []string{"Teleport"} }},
		{"format", func(c *Config) { c.Vulkan.PreferredFormats = []string{"RGB565"} }},
		{"samples", func(c *Config) { c.Vulkan.MaxSamples = 3 }},
		{"timeout", func(c *Config) { c.Vulkan.FenceTimeout.Duration = -time.Second }},
		{"shader", func(c *Config) { c.Render.FragmentShader = "" }},
		{"primitive", func(c *Config) { c.Render.Primitive = "teapot" }},
		{"fps", func(c *Config) { c.Render.TargetFPS = -1 }},
		{"fov", func(c *Config) { c.Camera.Fov = 180 }},
		{"near", func(c *Config) { c.Camera.Near = 0 }},
		{"far", func(c *Config) { c.Camera.Far = c.Camera.Near }},
		{"half life", func(c *Config) { c.Camera.HalfLife = -1 }},
		{"front", func(c *Config) { c.Camera.Front = [3]float32{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	// a mesh path makes the primitive irrelevant
	cfg := Default()
	cfg.Render.Primitive = "teapot"
	cfg.Render.Mesh = "bunny.obj"
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renderer.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\nprimitive = \"plane\"\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.PrimitivePlane, cfg.Render.Primitive)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestCameraApply(t *testing.T) {
	cfg := Default().Camera
	cfg.Position = [3]float32{1, 0, 0}
	cfg.Front = [3]float32{0, 0, -4}
	cam := model.NewCamera(1, 1, 2)
	cfg.Apply(cam)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, cam.Position)
	assert.Equal(t, cam.Position, cam.Target)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, cam.Front)
	assert.Equal(t, float32(model.DefaultFov), cam.Fov)
	assert.Equal(t, model.DefaultHalfLife, cam.HalfLife)
}
