// Package config loads boardwalk.yaml.
//
// The file is parsed with yaml.v3 into a generic map, decoded with mapstructure (weak
// typing, "600ms"-style durations) into Config and validated with validator/v10.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/pkg/domain"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "boardwalk.yaml"

// Asset drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the root of boardwalk.yaml.
type Config struct {
	Board      BoardConfig       `mapstructure:"board"`
	Animation  AnimationConfig   `mapstructure:"animation"`
	HintPreset string            `mapstructure:"hint_preset" validate:"omitempty,oneof=chess none"`
	Hints      map[string]string `mapstructure:"hints" validate:"dive,keys,required,endkeys,oneof=diagonal aligned forward"`
	Assets     AssetsConfig      `mapstructure:"assets"`
	Positions  PositionsConfig   `mapstructure:"positions"`
	Server     ServerConfig      `mapstructure:"server"`
	Log        LogConfig         `mapstructure:"log"`
}

// BoardConfig is the board shape.
type BoardConfig struct {
	Files       int     `mapstructure:"files" validate:"min=1"`
	Ranks       int     `mapstructure:"ranks" validate:"min=1"`
	BlockSize   float64 `mapstructure:"block_size" validate:"gt=0"`
	BlockMargin float64 `mapstructure:"block_margin" validate:"gte=0"`
	Edge        float64 `mapstructure:"edge" validate:"gte=0"`
}

// AnimationConfig controls interpolation, rotation and the driver clock.
type AnimationConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	RotationDuration time.Duration `mapstructure:"rotation_duration" validate:"gte=0"`
	Squeeze          float64       `mapstructure:"squeeze" validate:"gt=0,lt=1"`
	TickInterval     time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
}

// AssetsConfig selects the asset loader.
type AssetsConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=memory file redis"`
	Dir         string `mapstructure:"dir" validate:"required_if=Driver file"`
	Pattern     string `mapstructure:"pattern"`
	RedisAddr   string `mapstructure:"redis_addr" validate:"required_if=Driver redis"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// PositionsConfig locates the position book. An empty Dir means the built-in presets only.
type PositionsConfig struct {
	Dir string `mapstructure:"dir"`
}

// ServerConfig is used by the serve command.
type ServerConfig struct {
	Addr    string `mapstructure:"addr" validate:"required"`
	Metrics bool   `mapstructure:"metrics"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	g := domain.DefaultGeometry()
	r := domain.DefaultRotationConfig()
	return Config{
		Board: BoardConfig{
			Files:       g.Files,
			Ranks:       g.Ranks,
			BlockSize:   g.BlockSize,
			BlockMargin: g.BlockMargin,
			Edge:        g.Edge,
		},
		Animation: AnimationConfig{
			Enabled:          true,
			RotationDuration: r.Duration,
			Squeeze:          r.Squeeze,
			TickInterval:     16 * time.Millisecond,
		},
		HintPreset: "chess",
		Assets:     AssetsConfig{Driver: DriverMemory, Pattern: "%s.svg", RedisPrefix: "boardwalk:asset:"},
		Server:     ServerConfig{Addr: ":8080", Metrics: true},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

var validate = validator.New()

// Load reads a YAML (or JSON, by extension) file over the defaults.
// A missing file at DefaultPath yields the defaults; a missing explicit path is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Parse decodes raw YAML (or JSON) over the defaults and validates the result.
func Parse(data []byte, isJSON bool) (Config, error) {
	raw := map[string]any{}
	if isJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			millisecondsHook,
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// millisecondsHook reads bare numbers as milliseconds for duration fields.
func millisecondsHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return data, nil
}

// Validate checks struct tags and the cross-field rules the tags cannot express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &domain.ConfigError{
				Field:  fe.Namespace(),
				Reason: fmt.Sprintf("failed %q validation", fe.Tag()),
				Value:  fe.Value(),
			}
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	if err := c.Geometry().Validate(); err != nil {
		return err
	}
	return c.HintSet().Validate()
}

// Geometry returns the configured board shape.
func (c Config) Geometry() domain.Geometry {
	return domain.Geometry{
		Files:       c.Board.Files,
		Ranks:       c.Board.Ranks,
		BlockSize:   c.Board.BlockSize,
		BlockMargin: c.Board.BlockMargin,
		Edge:        c.Board.Edge,
	}
}

// HintSet merges the preset with the explicit hints; explicit entries win.
func (c Config) HintSet() domain.Hints {
	hints := domain.Hints{}
	if c.HintPreset == "chess" {
		hints = domain.ChessHints()
	}
	for label, h := range c.Hints {
		hints[label] = domain.Hint(h)
	}
	return hints
}

// BoardOptions converts the configuration into Board options.
// Collaborators (asset loader, renderer, hooks, logger) are wired by the caller.
func (c Config) BoardOptions() []boardwalk.Option {
	return []boardwalk.Option{
		boardwalk.WithGeometry(c.Geometry()),
		boardwalk.WithAnimation(c.Animation.Enabled),
		boardwalk.WithRotationDuration(c.Animation.RotationDuration),
		boardwalk.WithSqueezeFactor(c.Animation.Squeeze),
		boardwalk.WithHints(c.HintSet()),
	}
}
