package domain

// ValueChange records both sides of a modified parameter.
type ValueChange struct {
	Key         RecordKey
	SourceValue string
	TargetValue string
}

// DiffResult classifies every key of source∪target into exactly one bucket.
// Added/Removed carry the record from the side it exists on.
type DiffResult struct {
	Source    Environment
	Target    Environment
	Added     map[RecordKey]ConfigurationRecord
	Modified  map[RecordKey]ValueChange
	Removed   map[RecordKey]ConfigurationRecord
	Unchanged map[RecordKey]ConfigurationRecord
}

type DiffSummary struct {
	Added     int
	Modified  int
	Removed   int
	Unchanged int
}

func (d DiffResult) Summary() DiffSummary {
	return DiffSummary{
		Added:     len(d.Added),
		Modified:  len(d.Modified),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
	}
}

func (s DiffSummary) Total() int {
	return s.Added + s.Modified + s.Removed + s.Unchanged
}

// HasDrift reports whether any parameter differs between the two sets.
func (d DiffResult) HasDrift() bool {
	return len(d.Added) > 0 || len(d.Modified) > 0 || len(d.Removed) > 0
}
