package compliance

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/tolujimoh/flowdrift/internal/errors"
	"github.com/tolujimoh/flowdrift/pkg/retry"
)

// classify maps a transport-level failure to an application error code after
// the retrier has given up. Transient errors were already retried; whatever
// reaches this point is surfaced with operation and artifact context.
func classify(err error, operation, artifactID string, ctx context.Context) error {
	if err == nil {
		return errors.New(errors.CodeInternal,
			fmt.Sprintf("unexpected nil error classifying compliance %s failure", operation))
	}

	if ctx.Err() != nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.CodeComplianceAPIError,
			fmt.Sprintf("context cancelled during compliance %s for artifact %s", operation, artifactID))
	}

	var statusErr *retry.StatusError
	if stderrors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Wrap(err, errors.CodeComplianceAuthError,
				fmt.Sprintf("authentication failed during compliance %s for artifact %s", operation, artifactID))
		case http.StatusNotFound:
			return errors.Wrap(err, errors.CodeArtifactNotFound,
				fmt.Sprintf("artifact %s not found by compliance service", artifactID))
		}
	}

	return errors.Wrap(err, errors.CodeComplianceAPIError,
		fmt.Sprintf("compliance %s failed for artifact %s", operation, artifactID))
}
