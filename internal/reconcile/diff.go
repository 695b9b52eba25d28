// Package reconcile compares per-artifact configuration parameter sets across
// deployment environments. All functions are pure: they never mutate their
// inputs and perform no I/O.
package reconcile

import (
	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

// BuildSet materializes the latest record per (artifactId, parameterKey) from
// an environment's append-only record log. Later SavedAt wins; on equal
// timestamps the record seen later in the slice wins, matching log order.
func BuildSet(records []domain.ConfigurationRecord) domain.ConfigurationSet {
	set := make(domain.ConfigurationSet, len(records))
	for _, rec := range records {
		key := rec.Key()
		if existing, ok := set[key]; ok && rec.SavedAt.Before(existing.SavedAt) {
			continue
		}
		set[key] = rec
	}
	return set
}

// Diff classifies every key of source∪target into exactly one of four
// buckets. Equality is exact string equality of the parameter value: values
// may be semantically whitespace-sensitive, so no normalization is applied.
func Diff(source, target domain.ConfigurationSet) domain.DiffResult {
	result := domain.DiffResult{
		Added:     make(map[domain.RecordKey]domain.ConfigurationRecord),
		Modified:  make(map[domain.RecordKey]domain.ValueChange),
		Removed:   make(map[domain.RecordKey]domain.ConfigurationRecord),
		Unchanged: make(map[domain.RecordKey]domain.ConfigurationRecord),
	}

	for key, srcRec := range source {
		tgtRec, inTarget := target[key]
		switch {
		case !inTarget:
			result.Added[key] = srcRec
		case srcRec.ParameterValue == tgtRec.ParameterValue:
			result.Unchanged[key] = srcRec
		default:
			result.Modified[key] = domain.ValueChange{
				Key:         key,
				SourceValue: srcRec.ParameterValue,
				TargetValue: tgtRec.ParameterValue,
			}
		}
	}

	for key, tgtRec := range target {
		if _, inSource := source[key]; !inSource {
			result.Removed[key] = tgtRec
		}
	}

	return result
}
