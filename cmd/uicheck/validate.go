package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/expr-lang/expr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uicheck-dev/uicheck/internal/engine"
	"github.com/uicheck-dev/uicheck/internal/manual"
	"github.com/uicheck-dev/uicheck/internal/output"
	"github.com/uicheck-dev/uicheck/internal/snapshot"
	"github.com/uicheck-dev/uicheck/internal/values"
	"github.com/uicheck-dev/uicheck/internal/version"
)

// errValidationFailed marks a completed run with failing rules, so main can
// exit 1 instead of 2.
var errValidationFailed = errors.New("validation failed")

var (
	format         string
	outFile        string
	parallel       bool
	maxConcurrent  int
	timeout        time.Duration
	includeRuleIDs []string
	includeTags    []string
	includeSevs    []string
	excludeRuleIDs []string
	excludeTags    []string
	minSeverity    string
	filterExpr     string
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <manual.xml> <snapshot.json>",
	Short: "Validate a UI snapshot against a manual",
	Long: `Load a manual and a snapshot, evaluate every rule, and report outcomes.

Filtering:
  Use flags to select specific rules to run.
  --tags forms,checkout         Run rules with 'forms' OR 'checkout' tags
  --severity critical,high      Run rules with 'critical' OR 'high' severity
  --min-severity high           Run rules at or above 'high' severity
  --rule submit-button          Run specific rules (exclusive)
  --exclude-tags slow           Exclude rules with 'slow' tag
  --filter "severity == 'high'" Advanced filtering expression

Filtered rules appear in the report as not_applicable; their nested rules
are skipped with them.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidateAction(cmd.Context(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, yaml, junit, sarif")
	validateCmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file path (default: stdout)")

	// Execution flags
	validateCmd.Flags().BoolVar(&parallel, "parallel", true, "Evaluate top-level rules concurrently")
	validateCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 8, "Maximum concurrent rule evaluations (0 = no limit)")
	validateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Global timeout for the run (0 to disable)")

	// Filtering flags
	validateCmd.Flags().StringSliceVar(&includeRuleIDs, "rule", nil, "Run specific rules by ID (exclusive, comma-separated)")
	validateCmd.Flags().StringSliceVar(&includeTags, "tags", nil, "Run rules with these tags (comma-separated)")
	validateCmd.Flags().StringSliceVar(&includeSevs, "severity", nil, "Run rules with these severities (comma-separated)")
	validateCmd.Flags().StringSliceVar(&excludeRuleIDs, "exclude-rule", nil, "Exclude specific rules by ID (comma-separated)")
	validateCmd.Flags().StringSliceVar(&excludeTags, "exclude-tags", nil, "Exclude rules with these tags (comma-separated)")
	validateCmd.Flags().StringVar(&minSeverity, "min-severity", "", "Run rules at or above this severity (low, medium, high, critical)")
	validateCmd.Flags().StringVar(&filterExpr, "filter", "", "Advanced filter expression (e.g. \"severity == 'critical'\")")
}

// runValidateAction implements the core logic for the validate command
func runValidateAction(ctx context.Context, manualPath, snapshotPath string) error {
	slog.Info("loading manual", "path", manualPath)

	m, err := manual.Load(manualPath)
	if err != nil {
		return fmt.Errorf("failed to load manual: %w", err)
	}

	slog.Info("manual loaded", "name", m.Name, "version", m.Version, "rules", m.CountRules())

	slog.Info("loading snapshot", "path", snapshotPath)

	snap, err := snapshot.Load(snapshotPath)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	slog.Info("snapshot loaded", "url", snap.URL, "elements", snap.Size())

	cfg := engine.DefaultConfig()
	cfg.Parallel = parallel
	cfg.MaxConcurrentRules = maxConcurrent
	cfg.IncludeRuleIDs = includeRuleIDs
	cfg.IncludeTags = includeTags
	cfg.IncludeSeverities = includeSevs
	cfg.ExcludeRuleIDs = excludeRuleIDs
	cfg.ExcludeTags = excludeTags

	if viper.IsSet("default_cardinality") {
		cfg.DefaultCardinality = manual.Cardinality(viper.GetString("default_cardinality"))
		if !cfg.DefaultCardinality.Known() {
			return fmt.Errorf("invalid default_cardinality in config: %q", cfg.DefaultCardinality)
		}
	}

	if err := validateFilterConfig(m, &cfg); err != nil {
		return err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	slog.Info("validating")

	report, err := engine.New(cfg).Validate(ctx, m, snap)
	if err != nil {
		return fmt.Errorf("validation aborted: %w", err)
	}

	slog.Info("validation complete",
		"duration", report.Duration,
		"total_rules", report.Summary.TotalRules,
		"passed", report.Summary.PassedRules,
		"failed", report.Summary.FailedRules,
		"partial", report.Summary.PartialRules,
		"skipped", report.Summary.SkippedRules)

	if err := writeReport(report, snapshotPath); err != nil {
		return err
	}

	if report.WasCancelled() {
		return fmt.Errorf("run cancelled: %d rules not evaluated", report.Summary.CancelledRules)
	}

	if report.HasFailures() {
		return fmt.Errorf("%w: %d passed, %d failed, %d partial",
			errValidationFailed,
			report.Summary.PassedRules,
			report.Summary.FailedRules,
			report.Summary.PartialRules)
	}

	return nil
}

// validateFilterConfig validates the filter flags against the manual.
func validateFilterConfig(m *manual.Manual, cfg *engine.Config) error {
	knownIDs := make(map[string]bool)
	for _, id := range m.RuleIDs() {
		knownIDs[id] = true
	}

	for _, id := range cfg.IncludeRuleIDs {
		if !knownIDs[id] {
			return fmt.Errorf("--rule references non-existent rule: %s", id)
		}
	}
	for _, id := range cfg.ExcludeRuleIDs {
		if !knownIDs[id] {
			return fmt.Errorf("--exclude-rule references non-existent rule: %s", id)
		}
	}

	if len(cfg.IncludeRuleIDs) > 0 && (len(cfg.IncludeTags) > 0 || len(cfg.IncludeSeverities) > 0 || minSeverity != "" || filterExpr != "") {
		fmt.Fprintln(os.Stderr, "Warning: --rule specified, ignoring other include filters")
	}

	if minSeverity != "" {
		sev, err := values.NewSeverity(minSeverity)
		if err != nil {
			return fmt.Errorf("invalid --min-severity: %w", err)
		}
		cfg.MinSeverity = sev
	}

	// Compile --filter once at startup
	if filterExpr != "" {
		program, err := expr.Compile(filterExpr,
			expr.Env(engine.RuleEnv{}),
			expr.AsBool())
		if err != nil {
			return fmt.Errorf("invalid --filter expression: %w\nExample: severity in ['critical', 'high'] && !('slow' in tags)", err)
		}
		cfg.FilterProgram = program
	}

	return nil
}

// writeReport renders the report in the selected format to stdout or a file.
func writeReport(report *engine.Report, snapshotPath string) error {
	var writer io.Writer = os.Stdout
	if outFile != "" {
		//nolint:gosec // G304: User-controlled output file path is intentional
		file, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = file.Close() // Best-effort cleanup
		}()
		writer = file
		slog.Info("writing output", "file", outFile, "format", format)
	}

	formatter, err := output.New(format, writer, output.Options{
		Indent:       true,
		SnapshotPath: snapshotPath,
		ToolVersion:  version.Get().Version,
	})
	if err != nil {
		return err
	}

	if err := formatter.Format(report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return nil
}
