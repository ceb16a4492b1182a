// Package config handles game configuration loading and management.
package config

import "fmt"

// Render technique names accepted by GraphicsConfig.Technique.
const (
	TechniqueRaster   = "raster"
	TechniqueRayTrace = "raytrace"
)

// Config holds all game settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Game     GameConfig     `yaml:"game"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings. RenderScale divides
// the window size to get the internal framebuffer size; the ray-traced
// technique is usually run at a higher scale than the raster one.
type GraphicsConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	Fullscreen   bool    `yaml:"fullscreen"`
	VSync        bool    `yaml:"vsync"`
	FPSLimit     int     `yaml:"fps_limit"`
	Technique    string  `yaml:"technique"`
	RenderScale  int     `yaml:"render_scale"`
	FovDegrees   float32 `yaml:"fov_degrees"`
	SubgroupSize int     `yaml:"subgroup_size"`
}

// GameConfig holds gameplay settings.
type GameConfig struct {
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
	InvertY          bool    `yaml:"invert_y"`
	ShowFPS          bool    `yaml:"show_fps"`

	// SkinsDir optionally points at a directory of texture overrides
	// (<name>.tga or <name>.png); empty keeps the procedural textures.
	SkinsDir string `yaml:"skins_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:        1280,
			Height:       720,
			Fullscreen:   false,
			VSync:        true,
			FPSLimit:     0,
			Technique:    TechniqueRaster,
			RenderScale:  2,
			FovDegrees:   70,
			SubgroupSize: 32,
		},
		Game: GameConfig{
			MouseSensitivity: 1.0,
			InvertY:          false,
			ShowFPS:          false,
			SkinsDir:         "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects values the engine cannot start with.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("config: invalid resolution %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.Technique != TechniqueRaster && c.Graphics.Technique != TechniqueRayTrace {
		return fmt.Errorf("config: unknown render technique %q", c.Graphics.Technique)
	}
	if c.Graphics.RenderScale < 1 {
		return fmt.Errorf("config: render_scale must be at least 1")
	}
	if c.Graphics.FovDegrees < 30 || c.Graphics.FovDegrees > 140 {
		return fmt.Errorf("config: fov_degrees %v outside 30..140", c.Graphics.FovDegrees)
	}
	if c.Graphics.SubgroupSize < 1 {
		return fmt.Errorf("config: subgroup_size must be at least 1")
	}
	return nil
}
