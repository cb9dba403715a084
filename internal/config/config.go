// Package config loads mudra settings from an optional YAML or JSON file,
// layered over built-in defaults and a few environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/overlay"
)

// DefaultPath is read when no --config flag is given. It may be absent.
const DefaultPath = "mudra.yaml"

// EnvCamera overrides the camera device index.
const EnvCamera = "MUDRA_CAMERA"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full set of runtime settings.
type Config struct {
	Camera   CameraConfig    `yaml:"camera" json:"camera"`
	Detector detector.Config `yaml:"detector" json:"detector"`
	Count    CountConfig     `yaml:"count" json:"count"`
	Assets   AssetsConfig    `yaml:"assets" json:"assets"`
	Window   WindowConfig    `yaml:"window" json:"window"`
	Log      LogConfig       `yaml:"log" json:"log"`
}

// CameraConfig selects the capture device and requested resolution.
type CameraConfig struct {
	Device int `yaml:"device" json:"device"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// CountConfig holds settings only the count command uses.
type CountConfig struct {
	// MinConfidence replaces detector.min_confidence when counting.
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence"`
}

// AssetsConfig locates the six count pictures.
type AssetsConfig struct {
	Dir    string `yaml:"dir" json:"dir"`
	Ext    string `yaml:"ext" json:"ext"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// WindowConfig controls the preview window.
type WindowConfig struct {
	Title   string `yaml:"title" json:"title"`
	ExitKey string `yaml:"exit_key" json:"exit_key"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			Device: 0,
			Width:  capture.DefaultWidth,
			Height: capture.DefaultHeight,
		},
		Detector: detector.DefaultConfig(),
		Count: CountConfig{
			MinConfidence: 0.75,
		},
		Assets: AssetsConfig{
			Dir:    "FingerImages",
			Ext:    ".jpg",
			Width:  overlay.DefaultAssetWidth,
			Height: overlay.DefaultAssetHeight,
		},
		Window: WindowConfig{
			Title:   "Image",
			ExitKey: "q",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is an error only when required is
// true; otherwise the defaults are used.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, &cfg); err != nil {
				return cfg, err
			}
		case os.IsNotExist(err) && !required:
			// defaults only
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	// Default to YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvCamera); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a device index", ErrInvalidConfig, EnvCamera, v)
		}
		c.Camera.Device = n
	}
	return nil
}

// Validate checks the settings that would otherwise fail deep in the loop.
func (c Config) Validate() error {
	var errs []error

	if c.Camera.Device < 0 {
		errs = append(errs, fmt.Errorf("camera.device must be >= 0, got %d", c.Camera.Device))
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, fmt.Errorf("camera resolution must be positive, got %dx%d", c.Camera.Width, c.Camera.Height))
	}
	if c.Detector.MaxHands < 1 {
		errs = append(errs, fmt.Errorf("detector.max_hands must be >= 1, got %d", c.Detector.MaxHands))
	}
	for name, v := range map[string]float64{
		"detector.min_confidence":          c.Detector.MinConfidence,
		"detector.min_tracking_confidence": c.Detector.MinTrackingConf,
		"count.min_confidence":             c.Count.MinConfidence,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %g", name, v))
		}
	}
	if c.Assets.Width < 0 || c.Assets.Height < 0 {
		errs = append(errs, fmt.Errorf("asset size must not be negative, got %dx%d", c.Assets.Width, c.Assets.Height))
	}
	if c.Assets.Ext != "" && !strings.HasPrefix(c.Assets.Ext, ".") {
		errs = append(errs, fmt.Errorf("assets.ext must start with '.', got %q", c.Assets.Ext))
	}
	if len(c.Window.ExitKey) != 1 {
		errs = append(errs, fmt.Errorf("window.exit_key must be a single character, got %q", c.Window.ExitKey))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// ExitKey returns the key code that ends the loop.
func (c Config) ExitKey() int {
	if c.Window.ExitKey == "" {
		return 'q'
	}
	return int(c.Window.ExitKey[0])
}

// DetectorConfig returns the provider settings for a command. Counting
// uses its own detection confidence.
func (c Config) DetectorConfig(counting bool) detector.Config {
	d := c.Detector
	if counting {
		d.MinConfidence = c.Count.MinConfidence
	}
	return d
}
