package reconcile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

// ValidateIntegrity runs pre-flight data-quality checks over a record
// snapshot: duplicate (artifactId, parameterKey, environment) triples, empty
// parameter values, and parameter keys containing whitespace. It only
// reports; it never fails, so batch imports can surface partial problems
// without aborting.
func ValidateIntegrity(records []domain.ConfigurationRecord) (bool, []string) {
	issues := make([]string, 0)

	type triple struct {
		artifactID   string
		parameterKey string
		environment  domain.Environment
	}
	seen := make(map[triple]int)

	for i, rec := range records {
		t := triple{rec.ArtifactID, rec.ParameterKey, rec.Environment}
		if first, dup := seen[t]; dup {
			issues = append(issues, fmt.Sprintf(
				"duplicate identity %s/%s in environment %s (records %d and %d)",
				rec.ArtifactID, rec.ParameterKey, rec.Environment, first, i))
		} else {
			seen[t] = i
		}

		if rec.ArtifactID == "" {
			issues = append(issues, fmt.Sprintf("record %d: empty artifact id", i))
		}
		if rec.ParameterKey == "" {
			issues = append(issues, fmt.Sprintf("record %d: empty parameter key", i))
		} else if containsWhitespace(rec.ParameterKey) {
			issues = append(issues, fmt.Sprintf(
				"record %d: parameter key %q contains whitespace", i, rec.ParameterKey))
		}
		if rec.ParameterValue == "" {
			issues = append(issues, fmt.Sprintf(
				"record %d: empty value for %s/%s", i, rec.ArtifactID, rec.ParameterKey))
		}
	}

	return len(issues) == 0, issues
}

func containsWhitespace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}
