package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultScene         = "trinary"
	DefaultSteps         = 1000
	DefaultSample        = 1
	DefaultFPS           = 60
	DefaultStepsPerFrame = 1
	DefaultDataDir       = ".gravsim"

	DefaultZoomSensitivity = 0.1
	DefaultMinScale        = 1.0
	DefaultMaxScale        = 5.0
	DefaultInitialScale    = 2.0

	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720
)

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	Scene         string       `yaml:"scene"`
	SceneFile     string       `yaml:"scene_file,omitempty"`
	Steps         int          `yaml:"steps"`
	Sample        int          `yaml:"sample"`
	Workers       int          `yaml:"workers"`
	ValidateState bool         `yaml:"validate_state"`
	DataDir       string       `yaml:"data_dir"`
	View          ViewConfig   `yaml:"view"`
	Camera        CameraConfig `yaml:"camera"`
}

// ViewConfig drives both viewers. StepsPerFrame physics steps run per
// rendered frame; the physics timestep itself never changes.
type ViewConfig struct {
	FPS           int  `yaml:"fps"`
	StepsPerFrame int  `yaml:"steps_per_frame"`
	Trails        bool `yaml:"trails"`
	TrailLength   int  `yaml:"trail_length"`
	WindowWidth   int  `yaml:"window_width"`
	WindowHeight  int  `yaml:"window_height"`
}

type CameraConfig struct {
	InitialScale    float32 `yaml:"initial_scale"`
	MinScale        float32 `yaml:"min_scale"`
	MaxScale        float32 `yaml:"max_scale"`
	ZoomSensitivity float32 `yaml:"zoom_sensitivity"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:         DefaultScene,
		Steps:         DefaultSteps,
		Sample:        DefaultSample,
		Workers:       1,
		ValidateState: true,
		DataDir:       DefaultDataDir,
		View: ViewConfig{
			FPS:           DefaultFPS,
			StepsPerFrame: DefaultStepsPerFrame,
			Trails:        true,
			TrailLength:   120,
			WindowWidth:   DefaultWindowWidth,
			WindowHeight:  DefaultWindowHeight,
		},
		Camera: CameraConfig{
			InitialScale:    DefaultInitialScale,
			MinScale:        DefaultMinScale,
			MaxScale:        DefaultMaxScale,
			ZoomSensitivity: DefaultZoomSensitivity,
		},
	}
}

// Load reads path on top of DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	case c.Sample <= 0:
		return fmt.Errorf("%w: sample must be positive, got %d", ErrInvalidConfig, c.Sample)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.View.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.View.FPS)
	case c.View.StepsPerFrame <= 0:
		return fmt.Errorf("%w: steps_per_frame must be positive, got %d", ErrInvalidConfig, c.View.StepsPerFrame)
	case c.Camera.MinScale <= 0 || c.Camera.MaxScale < c.Camera.MinScale:
		return fmt.Errorf("%w: camera scale bounds [%g, %g]", ErrInvalidConfig, c.Camera.MinScale, c.Camera.MaxScale)
	case c.Camera.InitialScale < c.Camera.MinScale || c.Camera.InitialScale > c.Camera.MaxScale:
		return fmt.Errorf("%w: initial_scale %g outside [%g, %g]", ErrInvalidConfig, c.Camera.InitialScale, c.Camera.MinScale, c.Camera.MaxScale)
	}
	return nil
}
