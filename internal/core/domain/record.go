package domain

import (
	"fmt"
	"time"
)

type Environment string

const (
	EnvDev        Environment = "dev"
	EnvQA         Environment = "qa"
	EnvProduction Environment = "production"
)

func (e Environment) String() string {
	return string(e)
}

func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvDev, EnvQA, EnvProduction:
		return Environment(s), nil
	}
	return "", fmt.Errorf("unknown environment %q (expected dev, qa or production)", s)
}

// DefaultArtifactVersion is used when a reference omits the version, matching
// the designtime convention of the upstream platform.
const DefaultArtifactVersion = "active"

// ConfigurationRecord is one parameter value for one artifact in one
// environment. Records are immutable; a new save produces a new record with a
// fresh SavedAt that logically supersedes the old one.
type ConfigurationRecord struct {
	Environment     Environment `json:"environment"`
	ArtifactID      string      `json:"artifactId"`
	ArtifactName    string      `json:"artifactName,omitempty"`
	ArtifactVersion string      `json:"artifactVersion,omitempty"`
	ParameterKey    string      `json:"parameterKey"`
	ParameterValue  string      `json:"parameterValue"`
	SavedAt         time.Time   `json:"savedAt"`
}

// RecordKey is the identity of a parameter within one environment.
type RecordKey struct {
	ArtifactID   string
	ParameterKey string
}

func (k RecordKey) String() string {
	return k.ArtifactID + "/" + k.ParameterKey
}

func (r ConfigurationRecord) Key() RecordKey {
	return RecordKey{ArtifactID: r.ArtifactID, ParameterKey: r.ParameterKey}
}

// ConfigurationSet is the materialized view of one environment: the latest
// record per key. Treat as an immutable snapshot once built.
type ConfigurationSet map[RecordKey]ConfigurationRecord

// PersistResult describes a snapshot written to the configuration store.
type PersistResult struct {
	Filename    string `json:"filename"`
	RecordCount int    `json:"recordCount"`
}
