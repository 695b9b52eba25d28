package app

import (
	"context"
	"fmt"
	"time"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/errors"
	"github.com/tolujimoh/flowdrift/internal/reconcile"
)

// RunDiff fetches both environments' latest snapshots, materializes the
// configuration sets and reports the classification.
func (a *Application) RunDiff(ctx context.Context, source, target domain.Environment, keyPattern string) (domain.DiffResult, error) {
	a.Logger.Infof(ctx, "Reconciling configuration: %s -> %s", source, target)

	sourceRecords, targetRecords, err := a.Store.FetchEnvironmentPair(ctx, source, target)
	if err != nil {
		return domain.DiffResult{}, err
	}

	if valid, issues := reconcile.ValidateIntegrity(sourceRecords); !valid {
		a.Logger.Warnf(ctx, "Integrity issues in %s snapshot: %v", source, issues)
	}
	if valid, issues := reconcile.ValidateIntegrity(targetRecords); !valid {
		a.Logger.Warnf(ctx, "Integrity issues in %s snapshot: %v", target, issues)
	}

	if keyPattern != "" {
		sourceRecords = reconcile.FilterByKeyPattern(sourceRecords, keyPattern)
		targetRecords = reconcile.FilterByKeyPattern(targetRecords, keyPattern)
	}

	result := reconcile.Diff(reconcile.BuildSet(sourceRecords), reconcile.BuildSet(targetRecords))
	result.Source = source
	result.Target = target

	a.Logger.Infof(ctx, "Reconciliation complete: %d added, %d modified, %d removed, %d unchanged",
		len(result.Added), len(result.Modified), len(result.Removed), len(result.Unchanged))

	if err := a.DiffReporter.ReportDiff(ctx, result); err != nil {
		return result, errors.Wrap(err, errors.CodeInternal, "failed to generate diff report")
	}
	return result, nil
}

// RunValidation drives a compliance validation batch and reports it.
func (a *Application) RunValidation(ctx context.Context, refs []domain.ArtifactRef) (*domain.BatchReport, error) {
	report, err := a.Orchestrator.ValidateBatch(ctx, refs)
	if report != nil {
		if reportErr := a.ValidationReporter.ReportValidation(ctx, report); reportErr != nil {
			a.Logger.Errorf(ctx, reportErr, "failed to report validation results")
		}
	}
	return report, err
}

// CheckConnections probes both external collaborators and reports round-trip
// latency, mirroring the console's tenant connection test.
func (a *Application) CheckConnections(ctx context.Context, env domain.Environment) error {
	stopStore := a.Monitor.Start("store.probe")
	_, storeErr := a.Store.FetchEnvironmentRecords(ctx, env)
	stopStore()

	stopCompliance := a.Monitor.Start("compliance.probe")
	_, complianceErr := a.Compliance.FetchResults(ctx, "connection-probe", domain.DefaultArtifactVersion, "")
	stopCompliance()

	if stats, ok := a.Monitor.Stats("store.probe"); ok {
		a.Logger.Infof(ctx, "Configuration store probe: %s (reachable: %t)", stats.Max, storeErr == nil)
	}
	if stats, ok := a.Monitor.Stats("compliance.probe"); ok {
		reachable := complianceErr == nil || errors.Is(complianceErr, errors.CodeArtifactNotFound)
		a.Logger.Infof(ctx, "Compliance service probe: %s (reachable: %t)", stats.Max, reachable)
	}

	if storeErr != nil {
		return errors.WrapUserFacing(storeErr, errors.CodeStoreReadError,
			"configuration store is not reachable", "Check store.base_url and credentials.")
	}
	// A 404 from the probe artifact still proves the service answers.
	if complianceErr != nil && !errors.Is(complianceErr, errors.CodeArtifactNotFound) {
		return errors.WrapUserFacing(complianceErr, errors.CodeComplianceAPIError,
			"compliance service is not reachable", "Check compliance.base_url and credentials.")
	}
	return nil
}

// ParseArtifactRefs parses "id" or "id:version" references.
func ParseArtifactRefs(raw []string) ([]domain.ArtifactRef, error) {
	refs := make([]domain.ArtifactRef, 0, len(raw))
	for _, item := range raw {
		ref, err := parseArtifactRef(item)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseArtifactRef(s string) (domain.ArtifactRef, error) {
	if s == "" {
		return domain.ArtifactRef{}, fmt.Errorf("empty artifact reference")
	}
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			if i == 0 || i == len(s)-1 {
				return domain.ArtifactRef{}, fmt.Errorf("malformed artifact reference %q", s)
			}
			return domain.ArtifactRef{ID: s[:i], Version: s[i+1:]}, nil
		}
	}
	return domain.ArtifactRef{ID: s, Version: domain.DefaultArtifactVersion}, nil
}

// LatencySummary renders recorded operation timings for verbose output.
func (a *Application) LatencySummary() string {
	ops := a.Monitor.Operations()
	if len(ops) == 0 {
		return ""
	}
	out := ""
	for _, op := range ops {
		if stats, ok := a.Monitor.Stats(op); ok {
			out += fmt.Sprintf("%s: count=%d avg=%s min=%s max=%s median=%s\n",
				op, stats.Count,
				stats.Average.Round(time.Millisecond),
				stats.Min.Round(time.Millisecond),
				stats.Max.Round(time.Millisecond),
				stats.Median.Round(time.Millisecond))
		}
	}
	return out
}
