package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/reconcile"
)

// Import parses records in the given format and runs the integrity pre-check.
// Issues are returned alongside the records rather than as an error, so the
// caller can report partial failure without losing the parseable remainder.
func Import(data []byte, format Format) ([]domain.ConfigurationRecord, []string, error) {
	var (
		records []domain.ConfigurationRecord
		err     error
	)
	switch format {
	case FormatJSON:
		records, err = fromJSON(data)
	case FormatCSV:
		records, err = fromCSV(data)
	default:
		return nil, nil, fmt.Errorf("import supports json and csv, not %q", format)
	}
	if err != nil {
		return nil, nil, err
	}

	_, issues := reconcile.ValidateIntegrity(records)
	return records, issues, nil
}

func fromJSON(data []byte) ([]domain.ConfigurationRecord, error) {
	var records []domain.ConfigurationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing JSON records: %w", err)
	}
	return records, nil
}

func fromCSV(data []byte) ([]domain.ConfigurationRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(csvHeader)

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) != len(csvHeader) || header[0] != csvHeader[0] {
		return nil, fmt.Errorf("unexpected CSV header %v", header)
	}

	var records []domain.ConfigurationRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		rec := domain.ConfigurationRecord{
			Environment:     domain.Environment(row[0]),
			ArtifactID:      row[1],
			ArtifactName:    row[2],
			ArtifactVersion: row[3],
			ParameterKey:    row[4],
			ParameterValue:  row[5],
		}
		if row[6] != "" {
			savedAt, err := time.Parse(time.RFC3339, row[6])
			if err != nil {
				return nil, fmt.Errorf("CSV line %d: bad savedAt %q: %w", line, row[6], err)
			}
			rec.SavedAt = savedAt
		}
		records = append(records, rec)
	}
	return records, nil
}
