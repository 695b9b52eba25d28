package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

// Snapshots written by older console versions carry inconsistent field
// casing (ArtifactId, artifact_id, artifactId). Records are canonicalized
// once at this boundary so ambiguity never reaches the core.

var canonicalFields = map[string]string{
	"environment":     "environment",
	"artifactid":      "artifactId",
	"artifactname":    "artifactName",
	"artifactversion": "artifactVersion",
	"parameterkey":    "parameterKey",
	"parametervalue":  "parameterValue",
	"savedat":         "savedAt",
}

var savedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type rawRecord struct {
	Environment     string `mapstructure:"environment"`
	ArtifactID      string `mapstructure:"artifactId"`
	ArtifactName    string `mapstructure:"artifactName"`
	ArtifactVersion string `mapstructure:"artifactVersion"`
	ParameterKey    string `mapstructure:"parameterKey"`
	ParameterValue  string `mapstructure:"parameterValue"`
	SavedAt         string `mapstructure:"savedAt"`
}

func normalizeRecord(raw map[string]any, env domain.Environment) (domain.ConfigurationRecord, error) {
	canon := make(map[string]any, len(raw))
	for key, value := range raw {
		folded := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(key))
		if name, known := canonicalFields[folded]; known {
			canon[name] = value
		}
	}

	var decoded rawRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &decoded,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.ConfigurationRecord{}, err
	}
	if err := decoder.Decode(canon); err != nil {
		return domain.ConfigurationRecord{}, fmt.Errorf("decoding record fields: %w", err)
	}

	if decoded.ArtifactID == "" {
		return domain.ConfigurationRecord{}, fmt.Errorf("record missing artifact id (fields: %v)", keysOf(raw))
	}
	if decoded.ParameterKey == "" {
		return domain.ConfigurationRecord{}, fmt.Errorf("record for artifact %s missing parameter key", decoded.ArtifactID)
	}

	rec := domain.ConfigurationRecord{
		Environment:     env,
		ArtifactID:      decoded.ArtifactID,
		ArtifactName:    decoded.ArtifactName,
		ArtifactVersion: decoded.ArtifactVersion,
		ParameterKey:    decoded.ParameterKey,
		ParameterValue:  decoded.ParameterValue,
	}
	if rec.ArtifactVersion == "" {
		rec.ArtifactVersion = domain.DefaultArtifactVersion
	}
	if decoded.Environment != "" {
		if parsed, err := domain.ParseEnvironment(strings.ToLower(decoded.Environment)); err == nil {
			rec.Environment = parsed
		}
	}
	if decoded.SavedAt != "" {
		savedAt, err := parseSavedAt(decoded.SavedAt)
		if err != nil {
			return domain.ConfigurationRecord{}, err
		}
		rec.SavedAt = savedAt
	}
	return rec, nil
}

func parseSavedAt(s string) (time.Time, error) {
	for _, layout := range savedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable savedAt timestamp %q", s)
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
