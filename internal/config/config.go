// Package config loads debugrun settings from project and user config files.
//
// Settings are layered: compiled-in defaults first, then the user file at
// ~/.config/debugrun/config.yml, then the project file .debugrun.yml in the
// working directory. A file only overrides the keys it names. Every file is
// checked against the embedded JSON schema before it is applied.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// For mocking in tests.
var (
	osUserHomeDir = os.UserHomeDir
	osGetwd       = os.Getwd
)

const (
	projectFileName = ".debugrun.yml"
	userConfigDir   = ".config/debugrun"
	userFileName    = "config.yml"
)

// Config holds the settings shared by every debugrun invocation.
type Config struct {
	// Prefix marks a function or suite method as a test.
	Prefix string `yaml:"prefix"`
	// FailFast stops a run at the first failing test.
	FailFast bool `yaml:"fail_fast"`
	// FrameTrim drops that many outermost traceback frames.
	FrameTrim int `yaml:"frame_trim"`
	// Color is one of "auto", "always" or "never".
	Color string `yaml:"color"`
	// Interactive opens the failure browser after a run with failures.
	Interactive bool `yaml:"interactive"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Prefix: "Test",
		Color:  "auto",
	}
}

// ColorEnabled reports whether console output should be colored, given
// whether stdout is a terminal.
func (c Config) ColorEnabled(tty bool) bool {
	switch c.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return tty
	}
}

// Load layers the user and project config files over the defaults.
// Missing files are fine; unreadable or invalid ones are not.
func Load() (Config, error) {
	cfg := Default()

	if home, err := osUserHomeDir(); err == nil {
		userPath := filepath.Join(home, userConfigDir, userFileName)
		if err := applyFile(&cfg, userPath); err != nil {
			return Config{}, err
		}
	}

	if wd, err := osGetwd(); err == nil {
		projectPath := filepath.Join(wd, projectFileName)
		if err := applyFile(&cfg, projectPath); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// LoadFile layers a single explicitly named config file over the defaults.
// Unlike Load, a missing file is an error here.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := apply(&cfg, path, data); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return apply(cfg, path, data)
}

func apply(cfg *Config, path string, data []byte) error {
	if err := validate(data); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

//go:embed config.schema.json
var schemaJSON []byte

var (
	configSchema *jsonschema.Schema
	compileOnce  sync.Once
	compileErr   error
)

// compileSchema compiles the embedded schema once.
func compileSchema() error {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal config schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("config.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add config schema resource: %w", err)
			return
		}

		configSchema, err = compiler.Compile("config.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile config schema: %w", err)
			return
		}
	})

	return compileErr
}

// validate checks a YAML document against the config schema.
// The validator speaks JSON types, so the document takes a round trip
// through encoding/json first.
func validate(data []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	if doc == nil {
		return nil
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert config to JSON: %w", err)
	}

	var v any
	if err := json.Unmarshal(jsonData, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := configSchema.Validate(v); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}
