// Package cli implements the typegen commands on top of pkg/generator.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blimu-dev/typegen/internal/watch"
	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/generator"
	"github.com/blimu-dev/typegen/pkg/openapi"
)

// GenerateParams holds the generate flags
type GenerateParams struct {
	ConfigPath string
	Target     string
	Fallback   generator.FallbackOptions
}

// RunGenerate runs one generation and logs a per-target summary. The
// returned error joins every per-identifier failure.
func RunGenerate(ctx context.Context, p GenerateParams, logger *slog.Logger) error {
	svc := generator.NewService().WithLogger(logger)
	report, err := svc.Generate(ctx, generator.GenerateOptions{
		ConfigPath:   p.ConfigPath,
		SingleTarget: p.Target,
		Fallback:     p.Fallback,
	})
	if report != nil {
		for _, tr := range report.Targets {
			logger.Info("target done",
				"target", tr.Target,
				"outDir", tr.OutDir,
				"written", tr.Written,
				"skipped", len(tr.Skipped),
				"failed", len(tr.Failures))
		}
	}
	return err
}

// RunValidate validates an OpenAPI document
func RunValidate(input string) error {
	return openapi.ValidateDocument(input)
}

// RunClassify prints identifier, category, type and doc type for every
// component schema, tab separated. Schemas that cannot be classified are
// printed with their error and reported in the returned error.
func RunClassify(w io.Writer, input, vendor, targetType string) error {
	if vendor == "" {
		vendor = config.Default().Vendor
	}
	if targetType == "" {
		targetType = config.TypePHP
	}
	results, err := generator.ClassifySpec(input, vendor, targetType)
	if err != nil {
		return err
	}

	var failures []error
	for _, c := range results {
		if c.Err != nil {
			fmt.Fprintf(w, "%s\terror\t%v\n", c.Identifier, c.Err)
			failures = append(failures, fmt.Errorf("%s: %w", c.Identifier, c.Err))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Identifier, c.Category, c.Type, c.DocType)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d schemas failed to classify: %w", len(failures), len(results), errors.Join(failures...))
	}
	return nil
}

// RunWatch regenerates every time the spec file changes, until ctx is
// cancelled.
func RunWatch(ctx context.Context, p GenerateParams, debounce time.Duration, logger *slog.Logger) error {
	specPath, err := watchedSpec(p)
	if err != nil {
		return err
	}
	w, err := watch.New(specPath, debounce, logger)
	if err != nil {
		return err
	}
	logger.Info("watching", "spec", w.Path())
	return w.Run(ctx, func(ctx context.Context) error {
		return RunGenerate(ctx, p, logger)
	})
}

func watchedSpec(p GenerateParams) (string, error) {
	specPath := p.Fallback.Spec
	if p.ConfigPath != "" {
		cfg, err := config.Load(p.ConfigPath)
		if err != nil {
			return "", err
		}
		specPath = cfg.Spec
	}
	if specPath == "" {
		return "", errors.New("watch needs --config or --input")
	}
	if openapi.IsURL(specPath) {
		return "", fmt.Errorf("cannot watch remote spec %s", specPath)
	}
	return specPath, nil
}
