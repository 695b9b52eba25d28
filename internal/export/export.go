// Package export projects configuration record sets into interchange formats
// for external tooling. Projections are lossless apart from the quoting rules
// of the target format.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

type Format string

const (
	FormatCSV        Format = "csv"
	FormatJSON       Format = "json"
	FormatProperties Format = "properties"
	FormatEnv        Format = "env"
	FormatYAML       Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV, FormatJSON, FormatProperties, FormatEnv, FormatYAML:
		return Format(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("unknown export format %q (expected csv, json, properties, env or yaml)", s)
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal renders records in the requested format.
func Marshal(records []domain.ConfigurationRecord, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return toCSV(records)
	case FormatJSON:
		return toJSON(records)
	case FormatProperties:
		return toProperties(records), nil
	case FormatEnv:
		return toEnvFile(records), nil
	case FormatYAML:
		return toYAML(records)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

var csvHeader = []string{
	"environment", "artifactId", "artifactName", "artifactVersion",
	"parameterKey", "parameterValue", "savedAt",
}

// toCSV renders one row per record; encoding/csv quotes and escapes embedded
// quote characters per RFC 4180.
func toCSV(records []domain.ConfigurationRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, rec := range sorted(records) {
		row := []string{
			string(rec.Environment),
			rec.ArtifactID,
			rec.ArtifactName,
			rec.ArtifactVersion,
			rec.ParameterKey,
			rec.ParameterValue,
			formatTime(rec.SavedAt),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func toJSON(records []domain.ConfigurationRecord) ([]byte, error) {
	return json.MarshalIndent(sorted(records), "", "  ")
}

func toYAML(records []domain.ConfigurationRecord) ([]byte, error) {
	type yamlRecord struct {
		Environment     string `yaml:"environment"`
		ArtifactID      string `yaml:"artifactId"`
		ArtifactName    string `yaml:"artifactName,omitempty"`
		ArtifactVersion string `yaml:"artifactVersion,omitempty"`
		ParameterKey    string `yaml:"parameterKey"`
		ParameterValue  string `yaml:"parameterValue"`
		SavedAt         string `yaml:"savedAt,omitempty"`
	}
	out := make([]yamlRecord, 0, len(records))
	for _, rec := range sorted(records) {
		out = append(out, yamlRecord{
			Environment:     string(rec.Environment),
			ArtifactID:      rec.ArtifactID,
			ArtifactName:    rec.ArtifactName,
			ArtifactVersion: rec.ArtifactVersion,
			ParameterKey:    rec.ParameterKey,
			ParameterValue:  rec.ParameterValue,
			SavedAt:         formatTime(rec.SavedAt),
		})
	}
	return yaml.Marshal(out)
}

// toProperties emits one artifactId/parameterKey=value line per record.
func toProperties(records []domain.ConfigurationRecord) []byte {
	var buf bytes.Buffer
	for _, rec := range sorted(records) {
		fmt.Fprintf(&buf, "%s/%s=%s\n", rec.ArtifactID, rec.ParameterKey, rec.ParameterValue)
	}
	return buf.Bytes()
}

// toEnvFile emits shell-style assignments, uppercasing and replacing
// characters that are not valid in environment variable names.
func toEnvFile(records []domain.ConfigurationRecord) []byte {
	var buf bytes.Buffer
	for _, rec := range sorted(records) {
		name := envName(rec.ArtifactID + "_" + rec.ParameterKey)
		fmt.Fprintf(&buf, "%s=%s\n", name, envQuote(rec.ParameterValue))
	}
	return buf.Bytes()
}

func envName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func envQuote(v string) string {
	if strings.ContainsAny(v, " \t\n\"'\\$") {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "\n", `\n`).Replace(v) + `"`
	}
	return v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// sorted returns a stable copy ordered by artifact then key, so exports are
// deterministic regardless of map iteration upstream.
func sorted(records []domain.ConfigurationRecord) []domain.ConfigurationRecord {
	out := make([]domain.ConfigurationRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ArtifactID != out[j].ArtifactID {
			return out[i].ArtifactID < out[j].ArtifactID
		}
		return out[i].ParameterKey < out[j].ParameterKey
	})
	return out
}
