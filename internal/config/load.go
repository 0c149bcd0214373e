package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// Load returns the built-in profile, overlaid with the TOML file at path when path is non-empty.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf(messages.ConfigReadFailedFmt, path, err)
	}
	return Parse(data, path)
}

// Parse overlays TOML data on the built-in profile and validates the result.
// source is used in error messages.
func Parse(data []byte, source string) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf(messages.ConfigInvalidFmt, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return Config{}, fmt.Errorf(messages.ConfigUnknownKeysFmt, source, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf(messages.ConfigValidationFmt, source, err)
	}
	return cfg, nil
}

// decodeStrict re-decodes the TOML data with unknown-field rejection so typos
// in the override file fail loudly instead of silently keeping defaults.
func decodeStrict(data []byte) error {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&cfg)
}
