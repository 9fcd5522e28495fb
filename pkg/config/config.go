// Package config loads and validates typegen configuration files.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Supported target types.
const (
	TypePHP        = "php"
	TypeTypeScript = "typescript"
	TypeGo         = "go"
)

// SupportedTypes lists every target type a config may name.
var SupportedTypes = []string{TypePHP, TypeTypeScript, TypeGo}

// EnvPrefix prefixes environment variables that override config keys,
// e.g. TYPEGEN_SPEC or TYPEGEN_FAILFAST.
const EnvPrefix = "TYPEGEN"

// Config represents the complete configuration for a generation run
type Config struct {
	// Spec is the OpenAPI document, as a file path or an http(s) URL
	Spec string `mapstructure:"spec" yaml:"spec"`
	// Vendor is the root namespace segment every identifier is placed under
	Vendor string `mapstructure:"vendor" yaml:"vendor"`
	// ValidateSpec runs kin-openapi validation before generating
	ValidateSpec bool `mapstructure:"validate" yaml:"validate"`
	// FailFast aborts the run on the first schema failure instead of
	// collecting every failure into the report
	FailFast bool `mapstructure:"failFast" yaml:"failFast"`
	// Concurrency bounds the number of schemas rendered in parallel
	Concurrency int      `mapstructure:"concurrency" yaml:"concurrency"`
	Targets     []Target `mapstructure:"targets" yaml:"targets"`
}

// Target represents configuration for a single output language
type Target struct {
	Type string `mapstructure:"type" yaml:"type"`
	// Name selects the target from the command line; defaults to Type
	Name        string `mapstructure:"name" yaml:"name"`
	OutDir      string `mapstructure:"outDir" yaml:"outDir"`
	PackageName string `mapstructure:"packageName" yaml:"packageName"`
	// IncludeTags and ExcludeTags are regular expressions over tag names
	IncludeTags []string `mapstructure:"includeTags" yaml:"includeTags"`
	ExcludeTags []string `mapstructure:"excludeTags" yaml:"excludeTags"`
	// Exclude lists doublestar globs, relative to OutDir, that are never written.
	// Example: ["Service.php", "Destiny/**"]
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// PreCommand is an optional command to run before generation starts.
	// Uses Docker Compose array format: ["composer", "install"]
	// The command will be executed in the output directory.
	PreCommand []string `mapstructure:"preCommand" yaml:"preCommand"`
	// PostCommand is an optional command to run after generation completes.
	// Uses Docker Compose array format: ["gofmt", "-w", "."]
	PostCommand []string `mapstructure:"postCommand" yaml:"postCommand"`
}

// DisplayName returns Name, falling back to Type.
func (t Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Type
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("config validation errors:")
	for _, err := range e {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Field)
		sb.WriteString(": ")
		sb.WriteString(err.Message)
	}
	return sb.String()
}

// Default returns a configuration holding every default value and no targets.
func Default() *Config {
	return &Config{
		Vendor:      "Bungie",
		Concurrency: 4,
	}
}

// Load reads the configuration file at path. Environment variables prefixed
// with TYPEGEN_ override top-level keys.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Absolutize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("spec", "")
	v.SetDefault("vendor", d.Vendor)
	v.SetDefault("validate", false)
	v.SetDefault("failFast", false)
	v.SetDefault("concurrency", d.Concurrency)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Spec == "" {
		errs = append(errs, ValidationError{Field: "spec", Message: "spec is required"})
	}
	if c.Concurrency < 1 {
		errs = append(errs, ValidationError{Field: "concurrency", Message: "concurrency must be at least 1"})
	}
	if len(c.Targets) == 0 {
		errs = append(errs, ValidationError{Field: "targets", Message: "at least one target is required"})
	}

	seen := make(map[string]bool)
	for i, t := range c.Targets {
		field := fmt.Sprintf("targets[%d]", i)
		if !contains(SupportedTypes, t.Type) {
			errs = append(errs, ValidationError{
				Field:   field + ".type",
				Message: fmt.Sprintf("unsupported type %q, must be one of: %s", t.Type, strings.Join(SupportedTypes, ", ")),
			})
		}
		if t.OutDir == "" {
			errs = append(errs, ValidationError{Field: field + ".outDir", Message: "outDir is required"})
		}
		if name := t.DisplayName(); name != "" {
			if seen[name] {
				errs = append(errs, ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate target name %q", name)})
			}
			seen[name] = true
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Absolutize makes Spec and every OutDir absolute. URLs are left untouched.
func (c *Config) Absolutize() {
	for i := range c.Targets {
		t := &c.Targets[i]
		if !filepath.IsAbs(t.OutDir) {
			abs, _ := filepath.Abs(t.OutDir)
			t.OutDir = abs
		}
	}
	// Do not absolutize when spec is an HTTP(S) URL
	if u, err := url.Parse(c.Spec); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return
	}
	if c.Spec != "" && !filepath.IsAbs(c.Spec) {
		abs, _ := filepath.Abs(c.Spec)
		c.Spec = abs
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
