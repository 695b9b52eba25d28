package ports

import (
	"context"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

// StoreClient reads and writes environment configuration snapshots. Reads
// always resolve the latest snapshot for the environment.
type StoreClient interface {
	FetchEnvironmentRecords(ctx context.Context, env domain.Environment) ([]domain.ConfigurationRecord, error)
	FetchEnvironmentPair(ctx context.Context, source, target domain.Environment) ([]domain.ConfigurationRecord, []domain.ConfigurationRecord, error)
	PersistRecords(ctx context.Context, env domain.Environment, records []domain.ConfigurationRecord) (domain.PersistResult, error)
}

// ComplianceService drives remote design-guideline executions. FetchResults
// with an empty executionID returns the most recent execution's results; an
// empty guideline list means "not ready yet", never an error.
type ComplianceService interface {
	Trigger(ctx context.Context, artifactID, version string) (executionID string, err error)
	FetchResults(ctx context.Context, artifactID, version, executionID string) (domain.ComplianceReport, error)
}
