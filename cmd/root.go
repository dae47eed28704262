// Package cmd implements the CLI command structure for featurecheck.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/featurecheck/internal/config"
	"github.com/nibzard/featurecheck/internal/features"
	"github.com/nibzard/featurecheck/internal/logging"
	"github.com/nibzard/featurecheck/internal/parallel"
	"github.com/nibzard/featurecheck/internal/repair"
	"github.com/nibzard/featurecheck/internal/report"
	"github.com/nibzard/featurecheck/internal/ui"
	"github.com/nibzard/featurecheck/internal/utils"
	"github.com/nibzard/featurecheck/internal/validator"
	"github.com/nibzard/featurecheck/internal/watch"
)

// Version is set via ldflags at build time.
var Version = "dev"

// ErrValidationFailed is returned when at least one checked document has
// ERROR findings. The report has already been printed, so callers should
// exit non-zero without printing it again.
var ErrValidationFailed = errors.New("validation failed")

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// app carries what every subcommand needs.
type app struct {
	cfg     *config.Config
	sources map[string]config.ConfigSource
	logger  *log.Logger
}

// Run executes the featurecheck CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("featurecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cs, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	cfg := cs.Config
	a := &app{
		cfg:     cfg,
		sources: cs.Sources,
		logger:  logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller),
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "validate" as default
	subcommand := "validate"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "validate", "check":
		return a.validateCommand(ctx, remainingArgs, false)
	case "fix":
		return a.validateCommand(ctx, remainingArgs, true)
	case "ls":
		return a.lsCommand(remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "config":
		return a.configCommand(remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(stdout)
		return nil
	default:
		// A bare path or glob is shorthand for validate
		if fi, err := os.Stat(subcommand); (err == nil && !fi.IsDir()) || utils.ContainsGlob(subcommand) {
			return a.validateCommand(ctx, append([]string{subcommand}, remainingArgs...), false)
		}
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// validateOptions are the per-invocation settings of validate and fix.
type validateOptions struct {
	autoFix bool
	format  report.Format
	jobs    int
	watch   bool
	check   validator.Options
}

// validateCommand checks one or more features files and optionally repairs
// their counters. forceFix is set by the fix subcommand.
func (a *app) validateCommand(ctx context.Context, args []string, forceFix bool) error {
	cfg := a.cfg
	name := "featurecheck validate"
	if forceFix {
		name = "featurecheck fix"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	autoFix := fs.Bool("auto-fix", cfg.AutoFix, "Rewrite total/completed when they are the only problems")
	format := fs.String("format", cfg.Format, "Report format (text, json)")
	schemaFile := fs.String("schema", cfg.SchemaFile, "Project JSON Schema applied after the built-in rules")
	jobs := fs.Int("jobs", cfg.Jobs, "Concurrent validation workers (0 = one per CPU)")
	watchFiles := fs.Bool("watch", false, "Re-validate whenever a checked file changes")
	markers := fs.String("marker", strings.Join(cfg.BlockedMarkers, ","), "Comma-separated notes markers that explain a blocked feature")
	ignoreCase := fs.Bool("ignore-case", cfg.BlockedIgnoreCase, "Match blocked markers case-insensitively")

	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := validateOptions{
		autoFix: *autoFix || forceFix,
		jobs:    *jobs,
		watch:   *watchFiles,
	}
	var err error
	if opts.format, err = report.ParseFormat(*format); err != nil {
		return err
	}
	if opts.jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", opts.jobs)
	}
	opts.check, err = a.checkOptions(*schemaFile, *markers, *ignoreCase, opts.jobs)
	if err != nil {
		return err
	}

	targets := fs.Args()
	if len(targets) == 0 {
		targets = []string{cfg.FeaturesFile}
	}
	if forceFix && len(targets) != 1 {
		return fmt.Errorf("fix takes exactly one file, got %d", len(targets))
	}
	paths, err := utils.ExpandPaths(cfg.ProjectRoot, targets)
	if err != nil {
		return fmt.Errorf("expanding paths: %w", err)
	}

	failed := a.checkAndReport(ctx, paths, opts)
	if opts.watch {
		return a.watchAndReport(ctx, paths, opts)
	}
	if failed {
		return ErrValidationFailed
	}
	return nil
}

// checkOptions builds validator options from flag values.
func (a *app) checkOptions(schemaFile, markers string, ignoreCase bool, jobs int) (validator.Options, error) {
	opts := validator.Options{
		Reason: validator.MarkerPolicy{
			Markers:    config.ParseMarkers(markers),
			IgnoreCase: ignoreCase,
		},
		Workers: jobs,
	}
	if schemaFile != "" {
		schema, err := validator.CompileSchema(a.cfg.ResolvePath(schemaFile))
		if err != nil {
			return opts, fmt.Errorf("loading schema: %w", err)
		}
		opts.Schema = schema
		a.logger.Debug("schema loaded", "path", schemaFile)
	}
	return opts, nil
}

// fileCheck is the outcome of validating one file.
type fileCheck struct {
	doc    *features.Document
	result *validator.Result
}

// checkAndReport validates paths, prints the report, runs any auto-fix and
// reports whether any file had ERROR findings.
func (a *app) checkAndReport(ctx context.Context, paths []string, opts validateOptions) bool {
	checks := a.checkFiles(ctx, paths, opts)

	results := make([]*validator.Result, len(checks))
	failed := false
	for i, c := range checks {
		results[i] = c.result
		if !c.result.Valid {
			failed = true
		}
	}
	if err := report.Write(stdout, opts.format, results); err != nil {
		a.logger.Error("writing report", "error", err)
	}

	if opts.autoFix {
		for _, c := range checks {
			a.autoFix(c, opts)
		}
	}
	return failed
}

// checkFiles validates every path, at most jobs at a time, and returns the
// outcomes in path order.
func (a *app) checkFiles(ctx context.Context, paths []string, opts validateOptions) []fileCheck {
	workers := opts.jobs
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	pool := parallel.NewPool[fileCheck](ctx, workers)
	for _, path := range paths {
		path := path
		pool.Submit(path, func() (fileCheck, error) {
			doc, res := validator.ValidateFile(path, opts.check)
			return fileCheck{doc: doc, result: res}, nil
		})
	}

	results, _ := pool.Wait()
	checks := make([]fileCheck, len(results))
	for i, r := range results {
		if r.Error != nil {
			// Only cancellation fails a job.
			checks[i] = fileCheck{result: validator.LoadFailure(r.Label, r.Error)}
			continue
		}
		checks[i] = r.Value
		a.logger.Debug("validated", "path", r.Label,
			"valid", r.Value.result.Valid,
			"errors", len(r.Value.result.Errors()),
			"warnings", len(r.Value.result.Warnings()),
			"duration", r.Duration)
	}
	return checks
}

// autoFix repairs the counters of one file when they are its only problem,
// then re-validates the written file. Failures are reported but never
// change the exit status.
func (a *app) autoFix(c fileCheck, opts validateOptions) {
	if c.doc == nil || !c.result.Repairable() {
		return
	}
	path := c.result.Path
	text := opts.format == report.FormatText

	if text {
		fmt.Fprintf(stdout, "Auto-fixing counters in %s...\n\n", path)
	}
	change, err := repair.New().Apply(c.doc, c.result)
	if err != nil {
		a.logger.Error("auto-fix failed", "path", path, "error", err)
		if text {
			fmt.Fprintf(stdout, "Auto-fix failed: %v\n\n", err)
		}
		return
	}
	a.logger.Info("counters repaired", "path", path, "total", change.Total, "completed", change.Completed)
	if !text {
		return
	}

	report.Change(stdout, change)
	fmt.Fprintf(stdout, "\nRe-validating %s...\n\n", path)
	_, again := validator.ValidateFile(path, opts.check)
	if err := report.Text(stdout, again); err != nil {
		a.logger.Error("writing report", "error", err)
	}
}

// watchAndReport re-validates changed files until ctx is cancelled.
func (a *app) watchAndReport(ctx context.Context, paths []string, opts validateOptions) error {
	w, err := watch.New(paths, watch.Options{Logger: a.logger})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	a.logger.Info("watching for changes", "files", len(paths))
	return w.Run(ctx, func(changed []string) {
		a.checkAndReport(ctx, changed, opts)
	})
}

// lsCommand lists features by status with deterministic ordering.
func (a *app) lsCommand(args []string) error {
	fs := flag.NewFlagSet("featurecheck ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	statusFilter := fs.String("status", "", "Filter by status (pending|in-progress|complete|blocked)")
	verbose := fs.Bool("v", false, "Show more details")

	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	path := a.cfg.FeaturesFile
	if len(remaining) == 1 {
		path = a.cfg.ResolvePath(remaining[0])
	}
	if *statusFilter != "" && !features.Status(*statusFilter).Valid() {
		return fmt.Errorf("invalid status %q (valid: pending, in-progress, complete, blocked)", *statusFilter)
	}

	doc, err := features.Load(path)
	if err != nil {
		return fmt.Errorf("loading features file: %w", err)
	}

	if *statusFilter != "" {
		printFeatureList(filterFeatures(doc.Features, features.Status(*statusFilter)), *verbose)
		return nil
	}
	for _, s := range features.Statuses {
		printFeaturesByStatus(string(s), filterFeatures(doc.Features, s), *verbose)
	}
	return nil
}

// tuiCommand launches the viewer.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("featurecheck tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	path := a.cfg.FeaturesFile
	if len(remaining) == 1 {
		path = a.cfg.ResolvePath(remaining[0])
	}

	opts, err := a.checkOptions(a.cfg.SchemaFile, strings.Join(a.cfg.BlockedMarkers, ","), a.cfg.BlockedIgnoreCase, a.cfg.Jobs)
	if err != nil {
		return err
	}
	return ui.RunTUI(ctx, path, opts)
}

// configCommand prints the effective configuration and where each value
// came from, or an example config file.
func (a *app) configCommand(args []string) error {
	fs := flag.NewFlagSet("featurecheck config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	user, project := config.ConfigFiles()
	fmt.Fprintf(stdout, "User config:    %s\n", orNone(user))
	fmt.Fprintf(stdout, "Project config: %s\n\n", orNone(project))
	for _, field := range config.Fields() {
		fmt.Fprintf(stdout, "  %-20s = %-30q (%s)\n", field, a.cfg.Value(field), a.sources[field])
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "featurecheck version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "featurecheck - validate and repair features.xml progress documents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  featurecheck [global options] [command] [options] [file|glob...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate [files]  Validate documents (default command)")
	fmt.Fprintln(w, "  fix [file]        Validate and repair the total/completed counters")
	fmt.Fprintln(w, "  ls [file]         List features by status")
	fmt.Fprintln(w, "  tui [file]        Launch the terminal viewer")
	fmt.Fprintln(w, "  config            Show effective configuration")
	fmt.Fprintln(w, "  version           Show version information")
	fmt.Fprintln(w, "  help              Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fmt.Fprintln(w, "  -file string           Default features file (default features.xml)")
	fmt.Fprintln(w, "  -schema string         Project JSON Schema")
	fmt.Fprintln(w, "  -format string         Report format: text or json")
	fmt.Fprintln(w, "  -jobs int              Concurrent validation workers (0 = auto)")
	fmt.Fprintln(w, "  -markers string        Comma-separated blocked-reason markers")
	fmt.Fprintln(w, "  -ignore-case           Match blocked markers case-insensitively")
	fmt.Fprintln(w, "  -log-level string      debug, info, warn, error")
	fmt.Fprintln(w, "  -log-format string     text, json, logfmt")
	fmt.Fprintln(w, "  -log-timestamps        Show timestamps in logs")
	fmt.Fprintln(w, "  -log-caller            Show caller location in logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Validate Options (use with 'validate' or 'fix'):")
	fmt.Fprintln(w, "  -auto-fix              Rewrite counters when they are the only problems")
	fmt.Fprintln(w, "  -format string         Report format: text or json")
	fmt.Fprintln(w, "  -schema string         Project JSON Schema")
	fmt.Fprintln(w, "  -jobs int              Concurrent validation workers")
	fmt.Fprintln(w, "  -watch                 Re-validate on change until interrupted")
	fmt.Fprintln(w, "  -marker string         Comma-separated blocked-reason markers")
	fmt.Fprintln(w, "  -ignore-case           Match blocked markers case-insensitively")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -status string         Filter by status (pending|in-progress|complete|blocked)")
	fmt.Fprintln(w, "  -v                     Show more details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit status is 1 when any document has ERROR findings.")
}

func filterFeatures(all []*features.Feature, status features.Status) []*features.Feature {
	var out []*features.Feature
	for _, f := range all {
		if features.Status(f.Status.Value) == status {
			out = append(out, f)
		}
	}
	return out
}

// printFeaturesByStatus prints one status group; empty groups are skipped.
func printFeaturesByStatus(label string, list []*features.Feature, verbose bool) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(stdout, "%s (%d):\n", label, len(list))
	printFeatureList(list, verbose)
	fmt.Fprintln(stdout)
}

// printFeatureList prints features sorted by priority then ID.
func printFeatureList(list []*features.Feature, verbose bool) {
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No features found.")
		return
	}
	sorted := make([]*features.Feature, len(list))
	copy(sorted, list)
	sortFeatures(sorted)
	for _, f := range sorted {
		printFeature(f, verbose)
	}
}

func printFeature(f *features.Feature, verbose bool) {
	desc := ""
	if f.Description != nil {
		desc = strings.Join(strings.Fields(f.Description.Text), " ")
	}
	fmt.Fprintf(stdout, "  %s [%s] (%s) %s\n", ui.StatusIcon(features.Status(f.Status.Value)), f.ID.Value, f.Priority.Value, desc)

	if !verbose {
		return
	}
	if f.Steps != nil {
		for i, s := range f.Steps.Items {
			fmt.Fprintf(stdout, "      %d. %s\n", i+1, strings.TrimSpace(s.Text))
		}
	}
	if f.Notes != nil && strings.TrimSpace(f.Notes.Text) != "" {
		fmt.Fprintf(stdout, "      Notes: %s\n", strings.Join(strings.Fields(f.Notes.Text), " "))
	}
}

// priorityRank orders known priorities first, highest first.
func priorityRank(p string) int {
	for i, known := range features.Priorities {
		if string(known) == p {
			return i
		}
	}
	return len(features.Priorities)
}

// sortFeatures orders by priority, then ID.
func sortFeatures(list []*features.Feature) {
	sort.SliceStable(list, func(i, j int) bool {
		pi, pj := priorityRank(list[i].Priority.Value), priorityRank(list[j].Priority.Value)
		if pi != pj {
			return pi < pj
		}
		return list[i].ID.Value < list[j].ID.Value
	})
}
