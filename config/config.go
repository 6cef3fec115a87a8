// Package config holds the renderer settings. Files are TOML, every key is optional and falls back to
// Default().
package config

import (
	"bytes"
	"os"
	"time"

	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/model"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

type Config struct {
	LogLevel string       `toml:"log_level"`
	Window   WindowConfig `toml:"window"`
	Vulkan   VulkanConfig `toml:"vulkan"`
	Render   RenderConfig `toml:"render"`
	Camera   CameraConfig `toml:"camera"`
}

type WindowConfig struct {
	Title   string `toml:"title"`
	Width   uint32 `toml:"width"`
	Height  uint32 `toml:"height"`
	Backend string `toml:"backend"` // "sdl" or "glfw"
}

type VulkanConfig struct {
	Validation        bool     `toml:"validation"`
	Layers            []string `toml:"layers"`
	DeviceExtensions  []string `toml:"device_extensions"`
	Features          []string `toml:"features"` // vk.PhysicalDeviceFeatures field names
	OptionalFeatures  []string `toml:"optional_features"`
	PreferredFormats  []string `toml:"preferred_formats"`
	DesiredImageCount uint32   `toml:"desired_image_count"`
	MaxSamples        int      `toml:"max_samples"`
	Depth             bool     `toml:"depth"`
	FenceTimeout      Duration `toml:"fence_timeout"` // 0 waits forever
}

type RenderConfig struct {
	VertexShader   string     `toml:"vertex_shader"`
	FragmentShader string     `toml:"fragment_shader"`
	Mesh           string     `toml:"mesh"` // takes precedence over Primitive
	Primitive      string     `toml:"primitive"`
	Wireframe      bool       `toml:"wireframe"`
	Blend          bool       `toml:"blend"`
	ClearColor     [4]float32 `toml:"clear_color"`
	TargetFPS      float64    `toml:"target_fps"` // 0 disables pacing
	HotReload      bool       `toml:"hot_reload"`
}

type CameraConfig struct {
	Fov       float32    `toml:"fov"`
	Near      float32    `toml:"near"`
	Far       float32    `toml:"far"`
	MoveSpeed float32    `toml:"move_speed"`
	HalfLife  float32    `toml:"half_life"`
	Position  [3]float32 `toml:"position"`
	Front     [3]float32 `toml:"front"`
	Up        [3]float32 `toml:"up"`
}

// Duration reads values such as "5s" or "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

var surfaceFormats = map[string]vk.Format{
	"B8G8R8A8_SRGB":  vk.FormatB8g8r8a8Srgb,
	"B8G8R8A8_UNORM": vk.FormatB8g8r8a8Unorm,
	"R8G8B8A8_SRGB":  vk.FormatR8g8b8a8Srgb,
	"R8G8B8A8_UNORM": vk.FormatR8g8b8a8Unorm,
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Window: WindowConfig{
			Title:   "GPU mesh renderer",
			Width:   1280,
			Height:  720,
			Backend: common.BackendSDL,
		},
		Vulkan: VulkanConfig{
			Validation:        true,
			OptionalFeatures:  []string{"FillModeNonSolid"},
			PreferredFormats:  []string{"B8G8R8A8_SRGB", "B8G8R8A8_UNORM"},
			DesiredImageCount: common.DefaultImageCount,
			MaxSamples:        8,
			Depth:             true,
			FenceTimeout:      Duration{5 * time.Second},
		},
		Render: RenderConfig{
			VertexShader:   "shaders/mesh.vert.spv",
			FragmentShader: "shaders/mesh.frag.spv",
			Primitive:      model.PrimitiveCube,
			ClearColor:     [4]float32{0.1, 0.1, 0.12, 1},
			TargetFPS:      60,
		},
		Camera: CameraConfig{
			Fov:       model.DefaultFov,
			Near:      model.DefaultNear,
			Far:       model.DefaultFar,
			MoveSpeed: model.DefaultMoveSpeed,
			HalfLife:  model.DefaultHalfLife,
			Position:  [3]float32{0, 0, 2},
			Front:     [3]float32{0, 0, -1},
			Up:        [3]float32{0, 1, 0},
		},
	}
}

// Load decodes the file at path over Default(). Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, errors.New(strict.String())
		}
		return Config{}, errors.Wrap(err, "decode")
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Errorf("log_level %q is not a level", c.LogLevel)
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return errors.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.Backend != common.BackendSDL && c.Window.Backend != common.BackendGLFW {
		return errors.Errorf("window backend %q is neither %q nor %q", c.Window.Backend, common.BackendSDL, common.BackendGLFW)
	}

	if _, err := common.FeaturesFromNames(c.Vulkan.Features); err != nil {
		return err
	}
	if _, err := common.FeaturesFromNames(c.Vulkan.OptionalFeatures); err != nil {
		return errors.Wrap(err, "optional_features")
	}
	if _, err := c.Vulkan.Formats(); err != nil {
		return err
	}
	if common.SampleCountFromInt(c.Vulkan.MaxSamples) == 0 {
		return errors.Errorf("max_samples %d is not one of 1, 2, 4, 8", c.Vulkan.MaxSamples)
	}
	if c.Vulkan.FenceTimeout.Duration < 0 {
		return errors.New("fence_timeout must not be negative")
	}

	if c.Render.VertexShader == "" || c.Render.FragmentShader == "" {
		return errors.New("both shader paths are required")
	}
	if c.Render.Mesh == "" {
		if _, err := model.Primitive(c.Render.Primitive); err != nil {
			return errors.Wrap(err, "render.primitive")
		}
	}
	if c.Render.TargetFPS < 0 {
		return errors.New("target_fps must not be negative")
	}

	cam := c.Camera
	if cam.Fov <= 0 || cam.Fov >= 180 {
		return errors.Errorf("camera fov %v is outside (0, 180)", cam.Fov)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return errors.Errorf("camera planes near=%v far=%v need 0 < near < far", cam.Near, cam.Far)
	}
	if cam.HalfLife < 0 || cam.MoveSpeed < 0 {
		return errors.New("camera half_life and move_speed must not be negative")
	}
	if cam.Front == [3]float32{} || cam.Up == [3]float32{} {
		return errors.New("camera front and up must be non zero")
	}
	return nil
}

// Formats maps the preferred surface format names to Vulkan formats, in order.
func (v *VulkanConfig) Formats() ([]vk.Format, error) {
	out := make([]vk.Format, 0, len(v.PreferredFormats))
	for _, name := range v.PreferredFormats {
		f, ok := surfaceFormats[name]
		if !ok {
			return nil, errors.Errorf("unknown surface format %q", name)
		}
		out = append(out, f)
	}
	return out, nil
}

// Apply copies the camera settings onto cam.
func (c *CameraConfig) Apply(cam *model.Camera) {
	cam.Fov, cam.Near, cam.Far = c.Fov, c.Near, c.Far
	cam.Speed = c.MoveSpeed
	cam.HalfLife = c.HalfLife
	cam.Place(mgl32.Vec3(c.Position))
	cam.Front = mgl32.Vec3(c.Front).Normalize()
	cam.Up = mgl32.Vec3(c.Up).Normalize()
}
