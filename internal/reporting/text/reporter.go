package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/core/ports"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if cfg.NoColor || !isTerminal(os.Stdout) {
		color.NoColor = true
	}

	return &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}, nil
}

func isTerminal(f *os.File) bool {
	stat, _ := f.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) ReportDiff(ctx context.Context, result domain.DiffResult) error {
	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(tw, "Configuration Reconciliation Report (%s -> %s)\n", result.Source, result.Target)
	fmt.Fprintln(tw, "==============================================")
	fmt.Fprintln(tw, "Status\tArtifact\tParameter\tDetails")
	fmt.Fprintln(tw, "------\t--------\t---------\t-------")

	for _, key := range sortedKeys(result.Added) {
		rec := result.Added[key]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", green("ADDED"), key.ArtifactID, key.ParameterKey,
			fmt.Sprintf("only in %s: %q", result.Source, rec.ParameterValue))
	}
	modifiedKeys := make([]domain.RecordKey, 0, len(result.Modified))
	for key := range result.Modified {
		modifiedKeys = append(modifiedKeys, key)
	}
	sortKeys(modifiedKeys)
	for _, key := range modifiedKeys {
		change := result.Modified[key]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", yellow("MODIFIED"), key.ArtifactID, key.ParameterKey,
			fmt.Sprintf("%q -> %q", change.SourceValue, change.TargetValue))
	}
	for _, key := range sortedKeys(result.Removed) {
		rec := result.Removed[key]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", red("REMOVED"), key.ArtifactID, key.ParameterKey,
			fmt.Sprintf("only in %s: %q", result.Target, rec.ParameterValue))
	}

	summary := result.Summary()
	fmt.Fprintln(tw, "------\t----\t----------\t-------")
	fmt.Fprintf(tw, "Summary: %d added, %d modified, %d removed, %d unchanged (of %d parameters)\n",
		summary.Added, summary.Modified, summary.Removed, summary.Unchanged, summary.Total())

	if !result.HasDrift() {
		fmt.Fprintln(tw, green("Environments are in sync."))
	}

	r.logger.Debugf(ctx, "Text diff report generated")
	return nil
}

func (r *Reporter) ReportValidation(ctx context.Context, report *domain.BatchReport) error {
	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintln(tw, "Compliance Validation Report")
	fmt.Fprintln(tw, "============================")
	fmt.Fprintln(tw, "Artifact\tState\tCompliance\tDetails")
	fmt.Fprintln(tw, "--------\t-----\t----------\t-------")

	for _, job := range report.Jobs {
		var state string
		switch job.State {
		case domain.StateCompleted:
			if job.IsCompliant {
				state = green(string(job.State))
			} else {
				state = yellow(string(job.State))
			}
		case domain.StateTimedOut:
			state = yellow(string(job.State))
		default:
			state = red(string(job.State))
		}

		details := job.FailureReason
		if details == "" {
			details = fmt.Sprintf("%d guideline(s), execution %s", len(job.Guidelines), job.ExecutionID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%s\n", job.ArtifactID, state, job.CompliancePercentage, details)
	}

	fmt.Fprintln(tw, "--------\t-----\t----------\t-------")
	fmt.Fprintf(tw, "Overall compliance: %.1f%% (%d completed, %d failed, %d timed out)\n",
		report.OverallCompliance, report.Completed, report.Failed, report.TimedOut)
	if len(report.NonCompliantArtifacts) > 0 {
		fmt.Fprintf(tw, "%s %v\n", red("Non-compliant artifacts:"), report.NonCompliantArtifacts)
	}

	r.logger.Debugf(ctx, "Text validation report generated")
	return nil
}

func sortedKeys(m map[domain.RecordKey]domain.ConfigurationRecord) []domain.RecordKey {
	keys := make([]domain.RecordKey, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []domain.RecordKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ArtifactID != keys[j].ArtifactID {
			return keys[i].ArtifactID < keys[j].ArtifactID
		}
		return keys[i].ParameterKey < keys[j].ParameterKey
	})
}
