// Package config holds the defaults shared by the command line and the
// HTTP server.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"ico-convert/ico"
	"ico-convert/raster"
	"ico-convert/source"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	Icon   IconConfig   `toml:"icon"`
}

type ServerConfig struct {
	Port         string   `toml:"port"`
	AllowOrigins []string `toml:"allow_origins"`
	// MaxUploadMB caps multipart bodies.
	MaxUploadMB int64 `toml:"max_upload_mb"`
}

type IconConfig struct {
	Sizes   []int  `toml:"sizes"`
	Filter  string `toml:"filter"`
	SVGSize int    `toml:"svg_size"`
	// MaxPixels caps the declared width*height of a source image.
	MaxPixels int `toml:"max_pixels"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         "8080",
			AllowOrigins: []string{"http://localhost:3000"},
			MaxUploadMB:  32,
		},
		Icon: IconConfig{
			Sizes:     append([]int(nil), ico.DefaultSizes...),
			Filter:    raster.Box.Name,
			SVGSize:   source.DefaultSVGSize,
			MaxPixels: source.DefaultMaxPixels,
		},
	}
}

// Load reads the TOML file at path over the defaults, applies the PORT
// environment variable and validates the result. An empty path skips
// the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			log.Printf("config: ignoring unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	return cfg, cfg.Validate()
}

// Validate checks sizes, filter and limits.
func (c Config) Validate() error {
	if _, err := c.SizeSet(); err != nil {
		return err
	}
	if _, err := raster.ParseFilter(c.Icon.Filter); err != nil {
		return fmt.Errorf("config: icon.filter: %w", err)
	}
	if c.Icon.SVGSize < 0 {
		return fmt.Errorf("config: icon.svg_size must not be negative")
	}
	if c.Icon.MaxPixels <= 0 {
		return fmt.Errorf("config: icon.max_pixels must be positive")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("config: server.max_upload_mb must be positive")
	}
	return nil
}

// SizeSet returns the configured default sizes as a validated set.
func (c Config) SizeSet() (ico.SizeSet, error) {
	set, err := ico.NewSizeSet(c.Icon.Sizes...)
	if err != nil {
		return nil, fmt.Errorf("config: icon.sizes: %w", err)
	}
	return set, nil
}
