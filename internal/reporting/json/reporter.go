package json

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/core/ports"
)

const ReporterTypeJSON = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct{}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}, nil
}

type jsonDiffItem struct {
	Status       string `json:"status"`
	ArtifactID   string `json:"artifact_id"`
	ParameterKey string `json:"parameter_key"`
	SourceValue  string `json:"source_value,omitempty"`
	TargetValue  string `json:"target_value,omitempty"`
}

type jsonDiffReport struct {
	Source  domain.Environment `json:"source"`
	Target  domain.Environment `json:"target"`
	Summary domain.DiffSummary `json:"summary"`
	Items   []jsonDiffItem     `json:"items"`
}

func (r *Reporter) ReportDiff(ctx context.Context, result domain.DiffResult) error {
	report := jsonDiffReport{
		Source:  result.Source,
		Target:  result.Target,
		Summary: result.Summary(),
		Items:   make([]jsonDiffItem, 0, result.Summary().Total()),
	}

	for key, rec := range result.Added {
		report.Items = append(report.Items, jsonDiffItem{
			Status: "added", ArtifactID: key.ArtifactID, ParameterKey: key.ParameterKey,
			SourceValue: rec.ParameterValue,
		})
	}
	for key, change := range result.Modified {
		report.Items = append(report.Items, jsonDiffItem{
			Status: "modified", ArtifactID: key.ArtifactID, ParameterKey: key.ParameterKey,
			SourceValue: change.SourceValue, TargetValue: change.TargetValue,
		})
	}
	for key, rec := range result.Removed {
		report.Items = append(report.Items, jsonDiffItem{
			Status: "removed", ArtifactID: key.ArtifactID, ParameterKey: key.ParameterKey,
			TargetValue: rec.ParameterValue,
		})
	}
	for key, rec := range result.Unchanged {
		report.Items = append(report.Items, jsonDiffItem{
			Status: "unchanged", ArtifactID: key.ArtifactID, ParameterKey: key.ParameterKey,
			SourceValue: rec.ParameterValue, TargetValue: rec.ParameterValue,
		})
	}

	return r.encode(ctx, report)
}

func (r *Reporter) ReportValidation(ctx context.Context, report *domain.BatchReport) error {
	return r.encode(ctx, report)
}

func (r *Reporter) encode(ctx context.Context, v any) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	r.logger.Debugf(ctx, "JSON report generated")
	return nil
}
