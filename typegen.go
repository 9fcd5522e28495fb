// Package typegen generates typed models and service clients from OpenAPI 3.x
// documents.
//
// Every component schema is classified into one of a closed set of shape
// categories and projected into a concrete type and a documentation type for
// the selected target language. PHP, TypeScript and Go targets are built in.
//
// Quick Start:
//
//	import "github.com/blimu-dev/typegen"
//
//	// Generate PHP models and services
//	report, err := typegen.Generate(ctx, typegen.GenerateOptions{
//		Spec:   "./openapi.json",
//		Type:   "php",
//		OutDir: "./generated",
//	})
//
// For more advanced usage, see the generator package.
package typegen

import (
	"context"

	"github.com/blimu-dev/typegen/pkg/generator"
)

// GenerateOptions contains options for a generation run
type GenerateOptions = generator.GenerateOptionsSimple

// Report summarises a generation run
type Report = generator.Report

// Classification is the classifier and projector output for one schema
type Classification = generator.Classification

// Generate runs a generation with full configuration options. The returned
// error joins every per-schema failure; the report is returned alongside it.
//
// Example:
//
//	report, err := typegen.Generate(ctx, typegen.GenerateOptions{
//		Spec:        "./openapi.json",
//		Type:        "typescript",
//		OutDir:      "./web/src/api",
//		Vendor:      "Bungie",
//		IncludeTags: []string{"^Destiny2$"},
//	})
func Generate(ctx context.Context, opts GenerateOptions) (*Report, error) {
	return generator.Generate(ctx, opts)
}

// GenerateFromConfig generates every target of a YAML configuration file.
// Optionally, a single target name restricts the run to that target.
//
// Example:
//
//	// Generate all targets from config
//	report, err := typegen.GenerateFromConfig(ctx, "./typegen.yaml")
//
//	// Generate only a specific target
//	report, err := typegen.GenerateFromConfig(ctx, "./typegen.yaml", "server")
func GenerateFromConfig(ctx context.Context, configPath string, target ...string) (*Report, error) {
	return generator.GenerateFromConfig(ctx, configPath, target...)
}

// ValidateSpec validates an OpenAPI specification file.
//
// Example:
//
//	if err := typegen.ValidateSpec("./openapi.json"); err != nil {
//		log.Fatalf("Invalid OpenAPI spec: %v", err)
//	}
func ValidateSpec(specPath string) error {
	return generator.ValidateSpec(specPath)
}

// Classify returns the category, PHP type and PHP doc type of every
// component schema in document order. Schemas that cannot be classified
// carry their error in Classification.Err.
func Classify(specPath, vendor string) ([]Classification, error) {
	return generator.ClassifySpec(specPath, vendor, "php")
}
