// Package config loads the engine's optional session configuration: the
// store file path, whether to echo each statement before executing it, and
// a prompt override, in the same yaml.v3-decoder style the teacher uses for
// its generator config.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultPrompt = "sql> "

// Config is the engine's session configuration.
type Config struct {
	StoreFile string `yaml:"store_file"`
	Echo      bool   `yaml:"echo"`
	Prompt    string `yaml:"prompt"`
}

// Default returns the configuration used when no config file is given.
func Default(storeFile string) Config {
	return Config{StoreFile: storeFile, Prompt: DefaultPrompt}
}

// Load reads and decodes a YAML config file, falling back to field defaults
// for anything left unset.
func Load(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	return parseFromBytes(buf)
}

func parseFromBytes(buf []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	return cfg, nil
}
