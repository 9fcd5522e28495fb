package generator

import (
	"context"
	"fmt"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/openapi"
)

// GenerateOptionsSimple contains options for the convenience Generate function
type GenerateOptionsSimple struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// SingleTarget generates only the named target from config (optional)
	SingleTarget string

	// Fallback options when no config file is provided
	Spec        string   // OpenAPI spec file or URL
	Type        string   // Target type: php, typescript or go
	OutDir      string   // Output directory
	PackageName string   // Package name for the go target
	Vendor      string   // Root namespace segment, defaults to Bungie
	FailFast    bool     // Abort on the first schema failure
	IncludeTags []string // Regex patterns for tags to include
	ExcludeTags []string // Regex patterns for tags to exclude
}

// Generate is a convenience function for running generation with minimal configuration
func Generate(ctx context.Context, opts GenerateOptionsSimple) (*Report, error) {
	return NewService().Generate(ctx, GenerateOptions{
		ConfigPath:   opts.ConfigPath,
		SingleTarget: opts.SingleTarget,
		Fallback: FallbackOptions{
			Spec:        opts.Spec,
			Type:        opts.Type,
			OutDir:      opts.OutDir,
			PackageName: opts.PackageName,
			Vendor:      opts.Vendor,
			FailFast:    opts.FailFast,
			IncludeTags: opts.IncludeTags,
			ExcludeTags: opts.ExcludeTags,
		},
	})
}

// GenerateFromConfig is a convenience function for generating from a config file
func GenerateFromConfig(ctx context.Context, configPath string, singleTarget ...string) (*Report, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	onlyTarget := ""
	if len(singleTarget) > 0 {
		onlyTarget = singleTarget[0]
	}

	return NewService().GenerateFromConfig(ctx, cfg, onlyTarget)
}

// ValidateSpec validates an OpenAPI specification
func ValidateSpec(specPath string) error {
	return openapi.ValidateDocument(specPath)
}

// ClassifySpec loads a document and classifies its component schemas using
// the dialect of targetType.
func ClassifySpec(specPath, vendor, targetType string) ([]Classification, error) {
	target, err := DefaultRegistry().New(config.Target{Type: targetType})
	if err != nil {
		return nil, err
	}
	doc, err := openapi.LoadDocument(specPath)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	return Classify(doc, vendor, target.Dialect()), nil
}
