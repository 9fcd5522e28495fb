package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	cli "github.com/blimu-dev/typegen/internal/cli"
	"github.com/blimu-dev/typegen/internal/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var verbose, quiet bool
	root := &cobra.Command{
		Use:           "typegen",
		Short:         "Generate typed models and services from OpenAPI specs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Log errors only")

	logger := func() *slog.Logger { return cli.NewLogger(os.Stderr, verbose, quiet) }

	root.AddCommand(newGenerateCmd(logger))
	root.AddCommand(newWatchCmd(logger))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newClassifyCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		log.Println(err)
		os.Exit(1)
	}
}

func bindGenerateFlags(cmd *cobra.Command, p *cli.GenerateParams) {
	cmd.Flags().StringVarP(&p.ConfigPath, "config", "c", "", "Path to typegen.yaml config")
	cmd.Flags().StringVar(&p.Target, "target", "", "Generate only the named target from config")
	// Fallback single-target flags
	cmd.Flags().StringVar(&p.Fallback.Spec, "input", "", "OpenAPI spec file (yaml/json) or URL")
	cmd.Flags().StringVar(&p.Fallback.Type, "type", "", "Target type: php, typescript or go")
	cmd.Flags().StringVar(&p.Fallback.OutDir, "out", "", "Output directory")
	cmd.Flags().StringVar(&p.Fallback.PackageName, "package-name", "", "Package name for the go target")
	cmd.Flags().StringVar(&p.Fallback.Vendor, "vendor", "", "Root namespace segment (default Bungie)")
	cmd.Flags().BoolVar(&p.Fallback.FailFast, "fail-fast", false, "Abort on the first schema failure")
	cmd.Flags().IntVar(&p.Fallback.Concurrency, "concurrency", 0, "Schemas rendered in parallel")
	cmd.Flags().StringArrayVar(&p.Fallback.IncludeTags, "include-tags", nil, "Regex patterns for tags to include")
	cmd.Flags().StringArrayVar(&p.Fallback.ExcludeTags, "exclude-tags", nil, "Regex patterns for tags to exclude")
	cmd.Flags().StringArrayVar(&p.Fallback.Exclude, "exclude", nil, "Glob patterns of output files never to write")
}

func newGenerateCmd(logger func() *slog.Logger) *cobra.Command {
	var p cli.GenerateParams
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate models and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGenerate(cmd.Context(), p, logger())
		},
	}
	bindGenerateFlags(cmd, &p)
	return cmd
}

func newWatchCmd(logger func() *slog.Logger) *cobra.Command {
	var p cli.GenerateParams
	var debounce int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the spec file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunWatch(cmd.Context(), p, time.Duration(debounce)*time.Millisecond, logger())
		},
	}
	bindGenerateFlags(cmd, &p)
	cmd.Flags().IntVar(&debounce, "debounce", int(watch.DefaultDebounce/time.Millisecond), "Milliseconds to wait for writes to settle")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var input, typ, vendor string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the category and types of every component schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunClassify(cmd.OutOrStdout(), input, vendor, typ)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json) or URL")
	cmd.Flags().StringVar(&typ, "type", "php", "Dialect used for the type columns")
	cmd.Flags().StringVar(&vendor, "vendor", "", "Root namespace segment (default Bungie)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
