package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/generator/golang"
	"github.com/blimu-dev/typegen/pkg/generator/php"
	"github.com/blimu-dev/typegen/pkg/generator/typescript"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/naming"
	"github.com/blimu-dev/typegen/pkg/openapi"
	"github.com/blimu-dev/typegen/pkg/spec"
	"github.com/blimu-dev/typegen/pkg/typing"
	"github.com/blimu-dev/typegen/pkg/writer"
)

// Target renders models for one output language
type Target interface {
	// GetType returns the type identifier for this target (e.g., "php")
	GetType() string
	// Dialect supplies the type syntax used when projecting schemas
	Dialect() typing.Dialect
	// ModelPath returns the output path of a model, relative to the output directory
	ModelPath(m ir.Model) string
	// ServicePath returns the output path of a service, relative to the output directory
	ServicePath(s ir.Service) string
	// Format renders one artifact as source text
	Format(a ir.Artifact) ([]byte, error)
	// SupportFiles returns the fixed files every output needs, such as a base class
	SupportFiles(vendor string) ([]ir.File, error)
}

// Factory builds a Target from its configuration
type Factory func(cfg config.Target) Target

// Registry manages available targets
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a new target registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a target factory under typ
func (r *Registry) Register(typ string, f Factory) {
	r.factories[typ] = f
}

// Get retrieves a target factory by type
func (r *Registry) Get(typ string) (Factory, bool) {
	f, exists := r.factories[typ]
	return f, exists
}

// GetAvailableTypes returns all registered target types, sorted
func (r *Registry) GetAvailableTypes() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// New instantiates the target configured by cfg
func (r *Registry) New(cfg config.Target) (Target, error) {
	f, ok := r.Get(cfg.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported target type: %s (available: %s)", cfg.Type, strings.Join(r.GetAvailableTypes(), ", "))
	}
	return f(cfg), nil
}

// DefaultRegistry returns a registry holding the php, typescript and go targets
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(config.TypePHP, func(cfg config.Target) Target { return php.New(cfg) })
	registry.Register(config.TypeTypeScript, func(cfg config.Target) Target { return typescript.New(cfg) })
	registry.Register(config.TypeGo, func(cfg config.Target) Target { return golang.New(cfg) })
	return registry
}

// GenerateOptions contains options for a generation run
type GenerateOptions struct {
	ConfigPath   string
	SingleTarget string
	Fallback     FallbackOptions
}

// FallbackOptions contains fallback options when no config file is provided
type FallbackOptions struct {
	Spec        string
	Type        string
	OutDir      string
	PackageName string
	Vendor      string
	FailFast    bool
	Concurrency int
	IncludeTags []string
	ExcludeTags []string
	Exclude     []string
}

// Config converts the fallback options into a validated configuration
func (f FallbackOptions) Config() (*config.Config, error) {
	cfg := config.Default()
	cfg.Spec = f.Spec
	if f.Vendor != "" {
		cfg.Vendor = f.Vendor
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	cfg.FailFast = f.FailFast
	cfg.Targets = []config.Target{{
		Type:        f.Type,
		OutDir:      f.OutDir,
		PackageName: f.PackageName,
		IncludeTags: f.IncludeTags,
		ExcludeTags: f.ExcludeTags,
		Exclude:     f.Exclude,
	}}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Absolutize()
	return cfg, nil
}

// Service provides the high-level generation pipeline
type Service struct {
	registry *Registry
	logger   *slog.Logger
}

// NewService creates a new generator service with the default targets
func NewService() *Service {
	return NewServiceWithRegistry(DefaultRegistry())
}

// NewServiceWithRegistry creates a new generator service with a custom registry
func NewServiceWithRegistry(registry *Registry) *Service {
	return &Service{
		registry: registry,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for pipeline events
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// GetRegistry returns the target registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// Generate runs generation from a config file or, without one, the fallback options
func (s *Service) Generate(ctx context.Context, opts GenerateOptions) (*Report, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath == "" {
		if opts.Fallback.Spec == "" || opts.Fallback.Type == "" || opts.Fallback.OutDir == "" {
			return nil, fmt.Errorf("either config path or spec, type and outDir must be provided")
		}
		cfg, err = opts.Fallback.Config()
	} else {
		cfg, err = config.Load(opts.ConfigPath)
	}
	if err != nil {
		return nil, err
	}
	return s.GenerateFromConfig(ctx, cfg, opts.SingleTarget)
}

// GenerateFromConfig loads the configured document and renders every target,
// or only the one named onlyTarget. The returned error joins per-identifier
// failures; the report is returned alongside it whenever a run started.
func (s *Service) GenerateFromConfig(ctx context.Context, cfg *config.Config, onlyTarget string) (*Report, error) {
	if cfg.ValidateSpec {
		s.logger.Debug("validating spec", "spec", cfg.Spec)
		if err := openapi.ValidateDocument(cfg.Spec); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("loading spec", "spec", cfg.Spec)
	doc, err := openapi.LoadDocument(cfg.Spec)
	if err != nil {
		return nil, err
	}
	return s.GenerateDocument(ctx, doc, cfg, onlyTarget)
}

// GenerateDocument renders an already loaded document.
func (s *Service) GenerateDocument(ctx context.Context, doc *spec.Document, cfg *config.Config, onlyTarget string) (*Report, error) {
	report := &Report{}
	matched := false
	for _, tc := range cfg.Targets {
		if onlyTarget != "" && tc.DisplayName() != onlyTarget {
			continue
		}
		matched = true

		tr, err := s.generateTarget(ctx, doc, cfg, tc)
		if tr != nil {
			report.Targets = append(report.Targets, tr)
		}
		if err != nil {
			return report, fmt.Errorf("target %s: %w", tc.DisplayName(), err)
		}
	}
	if onlyTarget != "" && !matched {
		return report, fmt.Errorf("no target named %q in config", onlyTarget)
	}
	return report, report.Err()
}

func (s *Service) generateTarget(ctx context.Context, doc *spec.Document, cfg *config.Config, tc config.Target) (*TargetReport, error) {
	target, err := s.registry.New(tc)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("target", tc.DisplayName())
	log.Info("generating", "type", target.GetType(), "outDir", tc.OutDir)

	out, err := writer.New(tc.OutDir, tc.Exclude)
	if err != nil {
		return nil, err
	}

	// Ensure output directory exists before pre-commands
	if err := os.MkdirAll(tc.OutDir, 0o755); err != nil {
		return nil, &writer.Error{Path: tc.OutDir, Op: "mkdir", Err: err}
	}
	if err := s.executePreCommands(ctx, tc); err != nil {
		return nil, fmt.Errorf("pre-generation commands failed: %w", err)
	}

	projector := typing.New(target.Dialect(), naming.New(cfg.Vendor))
	tr := &TargetReport{Target: tc.DisplayName(), OutDir: tc.OutDir}

	files, err := s.renderServices(doc, target, projector, tc, tr, cfg.FailFast)
	if err != nil {
		return tr, err
	}
	models, err := s.renderSchemas(ctx, doc, target, projector, cfg, tr, log)
	if err != nil {
		return tr, err
	}
	files = append(files, models...)

	support, err := target.SupportFiles(cfg.Vendor)
	if err != nil {
		return tr, err
	}
	files = append(files, support...)

	tr.Written, err = out.Write(ctx, files)
	if err != nil {
		return tr, err
	}
	log.Info("generated", "files", tr.Written, "models", tr.Models, "services", tr.Services,
		"skipped", len(tr.Skipped), "failed", len(tr.Failures))

	if err := s.executePostGenCommands(ctx, tc); err != nil {
		return tr, fmt.Errorf("post-generation commands failed: %w", err)
	}
	return tr, nil
}

func (s *Service) renderServices(doc *spec.Document, target Target, projector *typing.Projector, tc config.Target, tr *TargetReport, failFast bool) ([]ir.File, error) {
	include, exclude, err := compileTagFilters(tc.IncludeTags, tc.ExcludeTags)
	if err != nil {
		return nil, err
	}

	renderer := NewServiceRenderer(doc, projector)
	var files []ir.File
	for _, name := range filterTags(doc.TagNames(), include, exclude) {
		svc, err := renderer.Render(spec.Tag{Name: name, Description: doc.TagDescription(name)}, doc.Paths)
		if err == nil {
			var content []byte
			if content, err = target.Format(ir.Artifact{Service: svc}); err == nil {
				files = append(files, ir.File{Path: target.ServicePath(*svc), Content: content})
				tr.Services++
				continue
			}
		}
		err = fmt.Errorf("service %s: %w", name, err)
		if failFast {
			return nil, err
		}
		s.logger.Error("service failed", "target", tr.Target, "tag", name, "error", err)
		tr.Failures = append(tr.Failures, err)
	}
	return files, nil
}

type schemaResult struct {
	file *ir.File
	err  error
}

// renderSchemas renders components.schemas in parallel. Results land in a
// slice indexed by document position so output order never depends on
// scheduling.
func (s *Service) renderSchemas(ctx context.Context, doc *spec.Document, target Target, projector *typing.Projector, cfg *config.Config, tr *TargetReport, log *slog.Logger) ([]ir.File, error) {
	schemas := doc.Components.Schemas
	results := make([]schemaResult, len(schemas))
	renderer := NewSchemaRenderer(projector)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Concurrency, 1))
	for i, named := range schemas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := renderSchema(renderer, target, named)
			results[i] = res
			if cfg.FailFast && res.err != nil && !errors.Is(res.err, ErrSkipped) {
				return res.err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var files []ir.File
	for _, res := range results {
		var diag *Diagnostic
		switch {
		case errors.As(res.err, &diag):
			log.Warn("schema skipped", "identifier", diag.Identifier, "code", string(diag.Code), "reason", diag.Error())
			tr.Skipped = append(tr.Skipped, diag)
		case res.err != nil:
			log.Error("schema failed", "error", res.err)
			tr.Failures = append(tr.Failures, res.err)
		case res.file != nil:
			files = append(files, *res.file)
			tr.Models++
		}
	}
	return files, nil
}

func renderSchema(renderer *SchemaRenderer, target Target, named spec.NamedSchema) schemaResult {
	model, err := renderer.Render(named.Name, named.Schema)
	if err != nil || model == nil {
		return schemaResult{err: err}
	}
	content, err := target.Format(ir.Artifact{Model: model})
	if err != nil {
		return schemaResult{err: fmt.Errorf("%s: %w", named.Name, err)}
	}
	return schemaResult{file: &ir.File{Path: target.ModelPath(*model), Content: content}}
}

// executePreCommands executes the pre-generation command for a target
func (s *Service) executePreCommands(ctx context.Context, tc config.Target) error {
	return s.executeCommand(ctx, tc.PreCommand, tc.OutDir, "pre-command")
}

// executePostGenCommands executes the post-generation command for a target
func (s *Service) executePostGenCommands(ctx context.Context, tc config.Target) error {
	return s.executeCommand(ctx, tc.PostCommand, tc.OutDir, "post-command")
}

// executeCommand executes a single command in Docker Compose array format
func (s *Service) executeCommand(ctx context.Context, command []string, workDir, commandLabel string) error {
	if len(command) == 0 {
		return nil // Skip empty commands
	}

	// Create command with first element as executable and rest as arguments
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmdDescription := strings.Join(command, " ")
	s.logger.Debug("running command", "label", commandLabel, "command", cmdDescription, "dir", workDir)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s (%s) failed: %w", commandLabel, cmdDescription, err)
	}
	return nil
}
