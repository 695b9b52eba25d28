package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

var savedAt = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func sampleRecords() []domain.ConfigurationRecord {
	return []domain.ConfigurationRecord{
		{
			Environment:     domain.EnvQA,
			ArtifactID:      "flow-b",
			ArtifactName:    "Billing Flow",
			ArtifactVersion: "active",
			ParameterKey:    "timeout",
			ParameterValue:  "30",
			SavedAt:         savedAt,
		},
		{
			Environment:     domain.EnvQA,
			ArtifactID:      "flow-a",
			ArtifactName:    "Order Flow",
			ArtifactVersion: "active",
			ParameterKey:    "endpoint",
			ParameterValue:  "https://qa.example",
			SavedAt:         savedAt,
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"csv", "JSON", "Properties", "env", "yaml"} {
		format, err := ParseFormat(valid)
		require.NoError(t, err, valid)
		assert.Equal(t, Format(strings.ToLower(valid)), format)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestMarshal_UnknownFormat(t *testing.T) {
	_, err := Marshal(sampleRecords(), Format("xml"))
	assert.Error(t, err)
}

func TestToCSV_SortedWithHeader(t *testing.T) {
	out, err := Marshal(sampleRecords(), FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "environment,artifactId,artifactName,artifactVersion,parameterKey,parameterValue,savedAt", lines[0])
	// Sorted by artifact then key: flow-a before flow-b.
	assert.True(t, strings.HasPrefix(lines[1], "qa,flow-a,"))
	assert.True(t, strings.HasPrefix(lines[2], "qa,flow-b,"))
	assert.Contains(t, lines[1], "2025-05-01T09:00:00Z")
}

func TestToCSV_QuotesEmbeddedCharacters(t *testing.T) {
	records := []domain.ConfigurationRecord{{
		Environment:    domain.EnvDev,
		ArtifactID:     "flow-a",
		ParameterKey:   "greeting",
		ParameterValue: `say "hello", world`,
		SavedAt:        savedAt,
	}}

	out, err := Marshal(records, FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"say ""hello"", world"`)
}

func TestToJSON_RoundTripsThroughImport(t *testing.T) {
	out, err := Marshal(sampleRecords(), FormatJSON)
	require.NoError(t, err)

	records, issues, err := Import(out, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, records, 2)
	assert.Equal(t, "flow-a", records[0].ArtifactID)
	assert.Equal(t, "https://qa.example", records[0].ParameterValue)
	assert.True(t, records[0].SavedAt.Equal(savedAt))
}

func TestToCSV_RoundTripsThroughImport(t *testing.T) {
	out, err := Marshal(sampleRecords(), FormatCSV)
	require.NoError(t, err)

	records, issues, err := Import(out, FormatCSV)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, records, 2)
	assert.Equal(t, domain.EnvQA, records[0].Environment)
	assert.Equal(t, "endpoint", records[0].ParameterKey)
	assert.True(t, records[0].SavedAt.Equal(savedAt))
}

func TestToYAML(t *testing.T) {
	out, err := Marshal(sampleRecords(), FormatYAML)
	require.NoError(t, err)

	var decoded []map[string]string
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "flow-a", decoded[0]["artifactId"])
	assert.Equal(t, "https://qa.example", decoded[0]["parameterValue"])
}

func TestToProperties(t *testing.T) {
	out, err := Marshal(sampleRecords(), FormatProperties)
	require.NoError(t, err)

	assert.Equal(t,
		"flow-a/endpoint=https://qa.example\nflow-b/timeout=30\n",
		string(out))
}

func TestToEnvFile(t *testing.T) {
	records := []domain.ConfigurationRecord{
		{Environment: domain.EnvDev, ArtifactID: "flow-a", ParameterKey: "db.host", ParameterValue: "localhost"},
		{Environment: domain.EnvDev, ArtifactID: "flow-a", ParameterKey: "greeting", ParameterValue: "hello world"},
	}

	out, err := Marshal(records, FormatEnv)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "FLOW_A_DB_HOST=localhost", lines[0])
	assert.Equal(t, `FLOW_A_GREETING="hello world"`, lines[1])
}

func TestEnvQuote(t *testing.T) {
	assert.Equal(t, "plain", envQuote("plain"))
	assert.Equal(t, `"has space"`, envQuote("has space"))
	assert.Equal(t, `"a \"quoted\" value"`, envQuote(`a "quoted" value`))
	assert.Equal(t, `"costs \$5"`, envQuote("costs $5"))
	assert.Equal(t, `"back\\slash"`, envQuote(`back\slash`))
}

func TestMarshal_EmptyInput(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatJSON, FormatProperties, FormatEnv, FormatYAML} {
		_, err := Marshal(nil, format)
		assert.NoError(t, err, format)
	}
}
