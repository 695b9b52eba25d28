package reconcile

import (
	"path"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

// GroupByArtifact buckets records by artifact ID. The returned slices alias
// the input records but the input slice itself is never reordered.
func GroupByArtifact(records []domain.ConfigurationRecord) map[string][]domain.ConfigurationRecord {
	groups := make(map[string][]domain.ConfigurationRecord)
	for _, rec := range records {
		groups[rec.ArtifactID] = append(groups[rec.ArtifactID], rec)
	}
	return groups
}

func GroupByEnvironment(records []domain.ConfigurationRecord) map[domain.Environment][]domain.ConfigurationRecord {
	groups := make(map[domain.Environment][]domain.ConfigurationRecord)
	for _, rec := range records {
		groups[rec.Environment] = append(groups[rec.Environment], rec)
	}
	return groups
}

// FilterByKeyPattern keeps records whose parameter key matches the glob
// pattern (path.Match syntax). An unparsable pattern matches nothing.
func FilterByKeyPattern(records []domain.ConfigurationRecord, pattern string) []domain.ConfigurationRecord {
	filtered := make([]domain.ConfigurationRecord, 0)
	for _, rec := range records {
		ok, err := path.Match(pattern, rec.ParameterKey)
		if err != nil {
			return nil
		}
		if ok {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

type SnapshotSummary struct {
	RecordCount        int
	UniqueArtifacts    int
	UniqueEnvironments int
	UniqueParameters   int
}

// Summarize computes counts of distinct artifacts, environments and parameter
// keys over a record sequence.
func Summarize(records []domain.ConfigurationRecord) SnapshotSummary {
	artifacts := make(map[string]struct{})
	environments := make(map[domain.Environment]struct{})
	parameters := make(map[string]struct{})
	for _, rec := range records {
		artifacts[rec.ArtifactID] = struct{}{}
		environments[rec.Environment] = struct{}{}
		parameters[rec.ParameterKey] = struct{}{}
	}
	return SnapshotSummary{
		RecordCount:        len(records),
		UniqueArtifacts:    len(artifacts),
		UniqueEnvironments: len(environments),
		UniqueParameters:   len(parameters),
	}
}
