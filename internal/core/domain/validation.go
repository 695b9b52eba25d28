package domain

import "time"

// JobState is the per-artifact compliance validation state machine.
//
//	Idle -> Triggering -> Waiting -> Polling -> {Completed, Failed, TimedOut}
//
// Artifacts with usable execution history jump straight from Idle to
// Completed without triggering a remote run.
type JobState string

const (
	StateIdle       JobState = "Idle"
	StateTriggering JobState = "Triggering"
	StateWaiting    JobState = "Waiting"
	StatePolling    JobState = "Polling"
	StateCompleted  JobState = "Completed"
	StateFailed     JobState = "Failed"
	StateTimedOut   JobState = "TimedOut"
)

func (s JobState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut:
		return true
	}
	return false
}

// ArtifactRef identifies one artifact+version to validate.
type ArtifactRef struct {
	ID      string
	Version string
}

func (r ArtifactRef) Normalized() ArtifactRef {
	if r.Version == "" {
		r.Version = DefaultArtifactVersion
	}
	return r
}

type RuleStatus string

const (
	RulePassed        RuleStatus = "Passed"
	RuleFailed        RuleStatus = "Failed"
	RuleWarning       RuleStatus = "Warning"
	RuleNotApplicable RuleStatus = "NotApplicable"
)

// RuleResult is one design-guideline outcome, consumed read-only from the
// compliance check service.
type RuleResult struct {
	RuleID   string     `json:"ruleId"`
	RuleName string     `json:"ruleName"`
	Category string     `json:"category,omitempty"`
	Severity string     `json:"severity,omitempty"`
	Status   RuleStatus `json:"status"`
	Message  string     `json:"message,omitempty"`
}

// ComplianceReport is the result set for one execution. An empty Guidelines
// slice means the remote run has not produced results yet.
type ComplianceReport struct {
	Guidelines           []RuleResult `json:"guidelines"`
	TotalRules           int          `json:"totalRules"`
	CompliantRules       int          `json:"compliantRules"`
	CompliancePercentage float64      `json:"compliancePercentage"`
	IsCompliant          bool         `json:"isCompliant"`
	LastExecuted         time.Time    `json:"lastExecuted"`
}

// ValidationJob is the state of one compliance check for one artifact+version.
type ValidationJob struct {
	ArtifactID           string       `json:"artifactId"`
	Version              string       `json:"version"`
	State                JobState     `json:"state"`
	ExecutionID          string       `json:"executionId,omitempty"`
	Guidelines           []RuleResult `json:"guidelines"`
	CompliancePercentage float64      `json:"compliancePercentage"`
	IsCompliant          bool         `json:"isCompliant"`
	LastExecuted         time.Time    `json:"lastExecuted,omitempty"`
	FailureReason        string       `json:"failureReason,omitempty"`
}

// BatchReport aggregates a batch once every artifact reached a terminal state.
type BatchReport struct {
	Jobs                  []ValidationJob `json:"jobs"`
	OverallCompliance     float64         `json:"overallCompliance"`
	NonCompliantArtifacts []string        `json:"nonCompliantArtifacts"`
	Completed             int             `json:"completed"`
	Failed                int             `json:"failed"`
	TimedOut              int             `json:"timedOut"`
}
