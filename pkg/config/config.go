// Package config loads facet's TOML configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const DefaultDocumentName = "fSCAD-Preview"

type Config struct {
	DocumentName      string        `toml:"document_name"`
	Parametric        bool          `toml:"parametric"`
	MessageBoxOnError bool          `toml:"message_box_on_error"`
	CreateChildren    bool          `toml:"create_children"`
	EvalTimeout       Duration      `toml:"eval_timeout"`
	Mesh              MeshConfig    `toml:"mesh"`
	Log               LogConfig     `toml:"log"`
	Preview           PreviewConfig `toml:"preview"`
}

type MeshConfig struct {
	Cells int `toml:"cells"`
}

type LogConfig struct {
	Level     string `toml:"level"`
	Timestamp bool   `toml:"timestamp"`
	NoColor   bool   `toml:"no_color"`
}

type PreviewConfig struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Margin float64 `toml:"margin"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DocumentName:      DefaultDocumentName,
		Parametric:        true,
		MessageBoxOnError: true,
		EvalTimeout:       Duration{5 * time.Second},
		Mesh:              MeshConfig{Cells: 200},
		Log:               LogConfig{Level: "info", Timestamp: true},
		Preview:           PreviewConfig{Width: 800, Height: 600, Margin: 20},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DocumentName) == "" {
		cfg.DocumentName = DefaultDocumentName
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg Config) error {
	if cfg.EvalTimeout.Duration <= 0 {
		return fmt.Errorf("eval_timeout must be positive")
	}
	if cfg.Mesh.Cells <= 0 {
		return fmt.Errorf("mesh cells must be positive")
	}
	if err := ValidatePreview(cfg.Preview); err != nil {
		return fmt.Errorf("preview invalid: %w", err)
	}
	return nil
}

func ValidatePreview(cfg PreviewConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("size %dx%d must be positive", cfg.Width, cfg.Height)
	}
	if cfg.Margin < 0 {
		return fmt.Errorf("margin must not be negative")
	}
	if 2*cfg.Margin >= float64(min(cfg.Width, cfg.Height)) {
		return fmt.Errorf("margin %g leaves no drawing area", cfg.Margin)
	}
	return nil
}
