package ports

import (
	"context"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

type DiffReporter interface {
	ReportDiff(ctx context.Context, result domain.DiffResult) error
}

type ValidationReporter interface {
	ReportValidation(ctx context.Context, report *domain.BatchReport) error
}
