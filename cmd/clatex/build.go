package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"sync"
	"time"

	flag "github.com/spf13/pflag"

	clatex "github.com/alnah/go-clatex"
	"github.com/alnah/go-clatex/internal/config"
	"github.com/alnah/go-clatex/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrInvalidArgs        = errors.New("invalid arguments")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrNoTargets          = errors.New("no output documents")
	ErrWriteOutput        = errors.New("failed to write output")
	ErrServiceInit        = errors.New("failed to initialize render service")
)

// maxWorkers bounds --workers.
const maxWorkers = 32

// buildJob is one target to render.
type buildJob struct {
	Name   string // Output file name without extension
	Target clatex.Target
}

// BuildResult holds the outcome of a single target.
type BuildResult struct {
	Name       string
	OutputPath string
	PDFPath    string
	Equations  int
	Err        error
	Duration   time.Duration
}

// buildParams groups values shared by every job of a build.
type buildParams struct {
	format    clatex.Format
	project   *clatex.Project
	cfg       *clatex.Config
	outputDir string
	pdf       bool
}

// runBuildCmd parses flags and runs a build.
func runBuildCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected at most one source directory, got %d", ErrInvalidArgs, len(positional))
	}
	if flags.watch {
		return watchBuild(ctx, positional, flags, env)
	}
	return runBuild(ctx, positional, flags, env)
}

// runBuild renders the configured documents of a project.
func runBuild(ctx context.Context, positional []string, flags *buildFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	timeout, err := parseTimeout(flags.timeout)
	if err != nil {
		return err
	}
	format, err := clatex.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	cfg, configDir, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}
	pdf := flags.pdf || (cfg.PDF.Enabled && format == clatex.FormatHTML)
	if pdf && format != clatex.FormatHTML {
		return fmt.Errorf("%w: --pdf with --format %s", clatex.ErrPDFFormat, format)
	}

	logger := newLogger(env.Stderr, flags.common)
	opts := []clatex.Option{clatex.WithLogger(logger)}
	if timeout > 0 {
		opts = append(opts, clatex.WithTimeout(timeout))
	}
	if assetPath := resolveAssetPath(flags.assets, cfg, configDir); assetPath != "" {
		opts = append(opts, clatex.WithAssetPath(assetPath))
	}

	src, err := clatex.NewDirSource(resolveSourceDir(positional, cfg, configDir))
	if err != nil {
		return err
	}

	pool := env.NewPool(clatex.ResolvePoolSize(flags.workers), opts...)
	defer func() { _ = pool.Close() }()

	project, err := loadProject(ctx, pool, src, cfg)
	if err != nil {
		return err
	}
	jobs := collectJobs(cfg, project)
	if len(jobs) == 0 {
		return fmt.Errorf("%w: no configured document exists in %s", ErrNoTargets, src.Root())
	}

	params := &buildParams{
		format:    format,
		project:   project,
		cfg:       cfg,
		outputDir: filepath.Join(resolveOutputDir(flags.output, cfg, configDir), string(format)),
		pdf:       pdf,
	}
	logger.Info("building", "targets", len(jobs), "format", format, "workers", pool.Size())

	results := buildBatch(ctx, pool, jobs, params)
	if failed, first := printResults(results, flags.common, env); failed > 0 {
		return fmt.Errorf("%d of %d target(s) failed: %w", failed, len(results), first)
	}
	return nil
}

// loadConfig loads an explicit config, or the default config name when
// present. It returns the directory relative paths are resolved against.
func loadConfig(name string) (*clatex.Config, string, error) {
	if name == "" {
		cfg, used, err := config.LoadConfig(config.DefaultConfigName)
		if errors.Is(err, config.ErrConfigNotFound) {
			return clatex.DefaultConfig(), ".", nil
		}
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		return cfg, filepath.Dir(used), nil
	}

	cfg, used, err := config.LoadConfig(name)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, filepath.Dir(used), nil
}

// mergeFlags applies --start and --target to the configured documents.
// With --start, a single document replaces the configured ones; otherwise
// --target selects one configured document.
func mergeFlags(flags *buildFlags, cfg *clatex.Config) error {
	switch {
	case flags.start != "":
		name := flags.target
		if name == "" {
			name = path.Base(flags.start)
		}
		cfg.Documents = []clatex.DocumentConfig{{
			StartDoc: flags.start,
			Target:   name,
			Title:    cfg.Project.Name,
		}}
	case flags.target != "":
		i := slices.IndexFunc(cfg.Documents, func(d clatex.DocumentConfig) bool {
			return d.Target == flags.target
		})
		if i < 0 {
			return fmt.Errorf("%w: target %q is not configured", ErrNoTargets, flags.target)
		}
		cfg.Documents = cfg.Documents[i : i+1]
	}

	if len(cfg.Documents) == 0 {
		return ErrNoTargets
	}
	return cfg.Validate()
}

// resolveSourceDir picks the positional argument, then project.sourceDir
// relative to the config, then the config directory.
func resolveSourceDir(positional []string, cfg *clatex.Config, configDir string) string {
	if len(positional) > 0 {
		return positional[0]
	}
	return relativeTo(configDir, cfg.Project.SourceDir)
}

// resolveOutputDir picks --output, then project.outputDir relative to the config.
func resolveOutputDir(flagOutput string, cfg *clatex.Config, configDir string) string {
	if flagOutput != "" {
		return flagOutput
	}
	return relativeTo(configDir, cfg.Project.OutputDir)
}

// resolveAssetPath picks --assets, then assets.basePath relative to the config.
func resolveAssetPath(flagAssets string, cfg *clatex.Config, configDir string) string {
	if flagAssets != "" {
		return flagAssets
	}
	if cfg.Assets.BasePath == "" {
		return ""
	}
	return relativeTo(configDir, cfg.Assets.BasePath)
}

func relativeTo(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// validateWorkers checks the --workers value.
func validateWorkers(n int) error {
	if n < 0 || n > maxWorkers {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidWorkerCount, n, maxWorkers)
	}
	return nil
}

// parseTimeout parses --timeout. Empty means the library default.
func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, s)
	}
	return d, nil
}

// newLogger writes warnings to w; --verbose adds progress, --quiet keeps
// only errors.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case f.quiet:
		level = slog.LevelError
	case f.verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadProject parses the sources once with a pooled service.
func loadProject(ctx context.Context, pool Pool, src clatex.Source, cfg *clatex.Config) (*clatex.Project, error) {
	svc, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceInit, err)
	}
	defer pool.Release(svc)
	return svc.Load(ctx, src, cfg)
}

// collectJobs pairs configured documents with their output names, keeping
// those whose main document exists.
func collectJobs(cfg *clatex.Config, project *clatex.Project) []buildJob {
	docnames := project.Docnames()
	jobs := make([]buildJob, 0, len(cfg.Documents))
	for _, d := range cfg.Documents {
		if _, found := slices.BinarySearch(docnames, d.StartDoc); !found {
			continue
		}
		jobs = append(jobs, buildJob{Name: d.Target, Target: clatex.TargetFromConfig(d)})
	}
	return jobs
}

// buildBatch renders jobs concurrently using the service pool.
func buildBatch(ctx context.Context, pool Pool, jobs []buildJob, params *buildParams) []BuildResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))
	results := make([]BuildResult, len(jobs))
	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			svc, err := pool.Acquire(ctx)
			if err != nil {
				for idx := range queue {
					results[idx] = BuildResult{Name: jobs[idx].Name, Err: fmt.Errorf("%w: %v", ErrServiceInit, err)}
				}
				return
			}
			defer pool.Release(svc)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = BuildResult{Name: jobs[idx].Name, Err: ctx.Err()}
					continue
				}
				results[idx] = buildTarget(ctx, svc, jobs[idx], params)
			}
		}()
	}

	wg.Wait()
	return results
}

// buildTarget renders one target and writes its files.
func buildTarget(ctx context.Context, svc Renderer, job buildJob, params *buildParams) BuildResult {
	start := time.Now()
	result := BuildResult{
		Name:       job.Name,
		OutputPath: filepath.Join(params.outputDir, job.Name+params.format.Extension()),
	}

	input := clatex.Input{
		Format:  params.format,
		Project: params.project,
		Target:  job.Target,
		Config:  params.cfg,
	}
	if params.pdf {
		title := job.Target.Title
		if title == "" {
			title = params.cfg.Project.Name
		}
		input.PDF = clatex.PDFOptionsFromConfig(params.cfg.PDF, title)
	}

	out, err := svc.Render(ctx, input)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.Equations = out.Equations

	if err := fileutil.WriteFileAtomic(result.OutputPath, []byte(out.Output)); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
	} else if out.PDF != nil {
		result.PDFPath = filepath.Join(params.outputDir, job.Name+".pdf")
		if err := fileutil.WriteFileAtomic(result.PDFPath, out.PDF); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	result.Duration = time.Since(start)
	return result
}

// printResults reports each target and returns the failure count and the
// first error.
func printResults(results []BuildResult, f commonFlags, env *Environment) (int, error) {
	failed := 0
	var first error
	for _, r := range results {
		if r.Err != nil {
			failed++
			if first == nil {
				first = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.Name, r.Err)
			continue
		}
		if f.quiet {
			continue
		}

		if f.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d equations, %v)\n", r.Name, r.OutputPath, r.Equations, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.PDFPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.PDFPath)
		}
	}

	if !f.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed, first
}
