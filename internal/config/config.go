package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/cam-per/sludge/utils"
)

// Config holds the tool configuration
type Config struct {
	Data    DataConfig
	Render  RenderConfig
	Display DisplayConfig
	Logging LoggingConfig
}

// LoadOptions holds command-line overrides. Zero values keep the
// environment or default value.
type LoadOptions struct {
	DataPath     string
	DataIndex    int64
	SceneWidth   int
	SceneHeight  int
	LightMapMode string
	WindowScale  int
	FontCharset  string
	LogLevel     string
}

// DataConfig locates game resources: a packed data file or a directory of
// extracted resources.
type DataConfig struct {
	Path  string `env:"SLUDGE_DATA" default:"."`
	Index int64  `env:"SLUDGE_DATA_INDEX" default:"0"`
}

type RenderConfig struct {
	SceneWidth   int    `env:"SLUDGE_SCENE_WIDTH" default:"640"`
	SceneHeight  int    `env:"SLUDGE_SCENE_HEIGHT" default:"480"`
	LightMapMode string `env:"SLUDGE_LIGHTMAP_MODE" default:"hotspot"`
}

type DisplayConfig struct {
	WindowScale int    `env:"SLUDGE_WINDOW_SCALE" default:"2"`
	FontCharset string `env:"SLUDGE_FONT_CHARSET" default:"windows-1252"`
}

type LoggingConfig struct {
	Level string `env:"SLUDGE_LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := &Config{}

	config.Data.Path = getOverrideOrEnv(opts.DataPath, "SLUDGE_DATA", ".")
	config.Data.Index = getInt64WithDefault("SLUDGE_DATA_INDEX", 0)
	if opts.DataIndex != 0 {
		config.Data.Index = opts.DataIndex
	}

	config.Render.SceneWidth = getIntOverride(opts.SceneWidth, "SLUDGE_SCENE_WIDTH", 640)
	config.Render.SceneHeight = getIntOverride(opts.SceneHeight, "SLUDGE_SCENE_HEIGHT", 480)
	config.Render.LightMapMode = getOverrideOrEnv(opts.LightMapMode, "SLUDGE_LIGHTMAP_MODE", "hotspot")

	config.Display.WindowScale = getIntOverride(opts.WindowScale, "SLUDGE_WINDOW_SCALE", 2)
	config.Display.FontCharset = strings.ToLower(getOverrideOrEnv(opts.FontCharset, "SLUDGE_FONT_CHARSET", "windows-1252"))

	config.Logging.Level = getOverrideOrEnv(opts.LogLevel, "SLUDGE_LOG_LEVEL", "info")

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

var lightMapModes = map[string]bool{
	"none":    true,
	"hotspot": true,
	"pixel":   true,
}

func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	if c.Data.Index < 0 {
		return fmt.Errorf("data index must not be negative")
	}

	if c.Render.SceneWidth <= 0 || c.Render.SceneHeight <= 0 {
		return fmt.Errorf("scene dimensions must be positive")
	}
	if !lightMapModes[strings.ToLower(c.Render.LightMapMode)] {
		return fmt.Errorf("invalid light map mode: %s", c.Render.LightMapMode)
	}

	if c.Display.WindowScale < 1 || c.Display.WindowScale > 8 {
		return fmt.Errorf("window scale must be between 1 and 8")
	}
	if _, ok := utils.Charmap(c.Display.FontCharset); !ok {
		return fmt.Errorf("unknown font charset: %s", c.Display.FontCharset)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}

// ZapLevel is the parsed log level; Validate has already rejected bad ones.
func (l LoggingConfig) ZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 0, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}

func getIntOverride(override int, envKey string, defaultValue int) int {
	if override != 0 {
		return override
	}
	return getIntWithDefault(envKey, defaultValue)
}
