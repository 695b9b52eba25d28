package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	for _, valid := range []string{"dev", "qa", "production"} {
		env, err := ParseEnvironment(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, env.String())
	}

	for _, invalid := range []string{"", "DEV", "staging", "prod"} {
		_, err := ParseEnvironment(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestRecordKey(t *testing.T) {
	rec := ConfigurationRecord{ArtifactID: "flow-a", ParameterKey: "endpoint"}
	key := rec.Key()

	assert.Equal(t, RecordKey{ArtifactID: "flow-a", ParameterKey: "endpoint"}, key)
	assert.Equal(t, "flow-a/endpoint", key.String())
}

func TestArtifactRef_Normalized(t *testing.T) {
	assert.Equal(t, ArtifactRef{ID: "flow-a", Version: DefaultArtifactVersion},
		ArtifactRef{ID: "flow-a"}.Normalized())
	assert.Equal(t, ArtifactRef{ID: "flow-a", Version: "1.0.4"},
		ArtifactRef{ID: "flow-a", Version: "1.0.4"}.Normalized())
}

func TestJobState_Terminal(t *testing.T) {
	terminal := []JobState{StateCompleted, StateFailed, StateTimedOut}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), s)
	}

	nonTerminal := []JobState{StateIdle, StateTriggering, StateWaiting, StatePolling}
	for _, s := range nonTerminal {
		assert.False(t, s.Terminal(), s)
	}
}

func TestDiffResult_SummaryAndDrift(t *testing.T) {
	empty := DiffResult{}
	assert.False(t, empty.HasDrift())
	assert.Zero(t, empty.Summary().Total())

	key := RecordKey{ArtifactID: "flow-a", ParameterKey: "endpoint"}
	drifted := DiffResult{
		Modified: map[RecordKey]ValueChange{key: {Key: key, SourceValue: "a", TargetValue: "b"}},
		Unchanged: map[RecordKey]ConfigurationRecord{
			{ArtifactID: "flow-a", ParameterKey: "timeout"}: {},
		},
	}
	assert.True(t, drifted.HasDrift())
	assert.Equal(t, DiffSummary{Modified: 1, Unchanged: 1}, drifted.Summary())
	assert.Equal(t, 2, drifted.Summary().Total())
}
