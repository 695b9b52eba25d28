package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/core/ports"
	"github.com/tolujimoh/flowdrift/internal/errors"
	"github.com/tolujimoh/flowdrift/pkg/latency"
)

const (
	opTrigger = "compliance.trigger"
	opPoll    = "compliance.poll"
)

// Config carries the orchestrator tunables. The defaults mirror the observed
// behavior of the upstream console: one long initial wait for the remote run,
// then two fixed-interval poll retries, 75% compliance threshold.
type Config struct {
	ComplianceThreshold float64
	InitialWait         time.Duration
	PollInterval        time.Duration
	PollRetries         int
}

func DefaultConfig() Config {
	return Config{
		ComplianceThreshold: 75,
		InitialWait:         30 * time.Second,
		PollInterval:        15 * time.Second,
		PollRetries:         2,
	}
}

// Orchestrator drives the per-artifact compliance validation state machine:
// trigger a remote check only when no usable execution history exists, wait,
// poll for results with a bounded retry budget, and aggregate the batch.
//
// Artifacts in a batch are processed sequentially in input order; the remote
// compliance service is easy to overwhelm and offers no job cancellation.
type Orchestrator struct {
	compliance ports.ComplianceService
	clock      ports.Clock
	logger     ports.Logger
	monitor    *latency.Monitor
	config     Config

	inflight *inflightSet
	jobs     *jobStore
}

func NewOrchestrator(
	compliance ports.ComplianceService,
	clock ports.Clock,
	logger ports.Logger,
	monitor *latency.Monitor,
	cfg Config,
) (*Orchestrator, error) {
	if compliance == nil {
		return nil, errors.New(errors.CodeConfigValidation, "compliance service cannot be nil")
	}
	if clock == nil {
		clock = SystemClock()
	}
	if monitor == nil {
		monitor = latency.NewMonitor()
	}
	if cfg.ComplianceThreshold <= 0 {
		cfg.ComplianceThreshold = DefaultConfig().ComplianceThreshold
	}
	if cfg.InitialWait <= 0 {
		cfg.InitialWait = DefaultConfig().InitialWait
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.PollRetries < 0 {
		cfg.PollRetries = 0
	}

	return &Orchestrator{
		compliance: compliance,
		clock:      clock,
		logger:     logger,
		monitor:    monitor,
		config:     cfg,
		inflight:   newInflightSet(),
		jobs:       newJobStore(),
	}, nil
}

// Monitor exposes the latency monitor for reporting.
func (o *Orchestrator) Monitor() *latency.Monitor {
	return o.monitor
}

// ValidateBatch ensures each referenced artifact has a compliance report and
// aggregates the batch once every artifact reached a terminal state.
// Re-invoking with the same refs does not re-trigger artifacts that already
// completed; only stale or missing reports are refreshed.
func (o *Orchestrator) ValidateBatch(ctx context.Context, refs []domain.ArtifactRef) (*domain.BatchReport, error) {
	if len(refs) == 0 {
		return nil, errors.NewUserFacing(errors.CodeValidationError,
			"no artifacts supplied for validation", "Pass at least one artifact id.")
	}

	o.logger.Infof(ctx, "Starting compliance validation for %d artifact(s)", len(refs))

	jobs := make([]domain.ValidationJob, 0, len(refs))
	for _, ref := range refs {
		ref = ref.Normalized()

		if cached, ok := o.jobs.completed(ref.ID); ok {
			o.logger.Debugf(ctx, "Artifact %s already has a completed report, skipping", ref.ID)
			jobs = append(jobs, cached)
			continue
		}

		job := o.runArtifact(ctx, ref)
		o.jobs.put(job)
		jobs = append(jobs, job)

		if ctx.Err() != nil {
			o.logger.Warnf(ctx, "Validation batch cancelled after artifact %s", ref.ID)
			break
		}
	}

	report := o.aggregate(jobs)
	o.logger.Infof(ctx, "Validation batch finished: %d completed, %d failed, %d timed out, overall %.1f%%",
		report.Completed, report.Failed, report.TimedOut, report.OverallCompliance)

	if ctx.Err() != nil {
		return report, errors.Wrap(ctx.Err(), errors.CodeValidationError, "validation batch cancelled")
	}
	return report, nil
}

// runArtifact executes the full state machine for one artifact and always
// returns a job in a terminal state.
func (o *Orchestrator) runArtifact(ctx context.Context, ref domain.ArtifactRef) domain.ValidationJob {
	job := domain.ValidationJob{
		ArtifactID: ref.ID,
		Version:    ref.Version,
		State:      domain.StateIdle,
		Guidelines: []domain.RuleResult{},
	}
	log := o.logger.WithFields(map[string]any{"artifact_id": ref.ID, "version": ref.Version})

	// Idle: an artifact with usable execution history skips the trigger
	// entirely; re-triggering wastes remote capacity and can spawn duplicate
	// jobs.
	if report, err := o.fetchResults(ctx, ref, ""); err == nil && len(report.Guidelines) > 0 {
		log.Debugf(ctx, "Execution history found (%d guidelines), skipping trigger", len(report.Guidelines))
		o.complete(&job, report)
		return job
	} else if ctx.Err() != nil {
		return o.fail(&job, "cancelled before trigger")
	}

	// Triggering: the in-flight marker must be set before the network call.
	if !o.inflight.TryAcquire(ref.ID) {
		log.Warnf(ctx, "Validation already in flight for artifact %s", ref.ID)
		job.State = domain.StateFailed
		job.FailureReason = errors.Newf(errors.CodeValidationInFlight,
			"validation already in flight for artifact %s", ref.ID).Error()
		return job
	}
	defer o.inflight.Release(ref.ID)

	job.State = domain.StateTriggering
	stopTrigger := o.monitor.Start(opTrigger)
	executionID, err := o.compliance.Trigger(ctx, ref.ID, ref.Version)
	stopTrigger()
	if err != nil {
		log.Errorf(ctx, err, "Trigger rejected for artifact %s", ref.ID)
		return o.fail(&job, fmt.Sprintf("trigger rejected: %v", err))
	}
	job.ExecutionID = executionID
	log.Debugf(ctx, "Triggered compliance run %s", executionID)

	// Waiting: one fixed initial wait, long enough for typical remote
	// processing, then a bounded poll/retry loop.
	job.State = domain.StateWaiting
	if !o.wait(ctx, o.config.InitialWait) {
		return o.fail(&job, "cancelled while waiting for results")
	}

	for attempt := 0; ; attempt++ {
		job.State = domain.StatePolling
		stopPoll := o.monitor.Start(opPoll)
		report, err := o.fetchResults(ctx, ref, executionID)
		stopPoll()
		if err != nil {
			log.Errorf(ctx, err, "Polling failed for artifact %s", ref.ID)
			return o.fail(&job, fmt.Sprintf("poll failed: %v", err))
		}
		if len(report.Guidelines) > 0 {
			log.Infof(ctx, "Results ready after %d poll(s): %.1f%% compliant", attempt+1, report.CompliancePercentage)
			o.complete(&job, report)
			return job
		}

		if attempt >= o.config.PollRetries {
			log.Warnf(ctx, "No results for artifact %s after %d poll(s), giving up", ref.ID, attempt+1)
			job.State = domain.StateTimedOut
			job.IsCompliant = false
			job.FailureReason = "no results available after poll retries were exhausted"
			return job
		}

		job.State = domain.StateWaiting
		if !o.wait(ctx, o.config.PollInterval) {
			return o.fail(&job, "cancelled while waiting for results")
		}
	}
}

func (o *Orchestrator) fetchResults(ctx context.Context, ref domain.ArtifactRef, executionID string) (domain.ComplianceReport, error) {
	return o.compliance.FetchResults(ctx, ref.ID, ref.Version, executionID)
}

// wait blocks for d using the injected clock; false means the context was
// cancelled first.
func (o *Orchestrator) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-o.clock.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) complete(job *domain.ValidationJob, report domain.ComplianceReport) {
	job.State = domain.StateCompleted
	job.Guidelines = report.Guidelines
	job.CompliancePercentage = report.CompliancePercentage
	job.IsCompliant = report.CompliancePercentage >= o.config.ComplianceThreshold
	job.LastExecuted = report.LastExecuted
}

func (o *Orchestrator) fail(job *domain.ValidationJob, reason string) domain.ValidationJob {
	job.State = domain.StateFailed
	job.IsCompliant = false
	job.FailureReason = reason
	return *job
}

// aggregate computes the batch-level report: arithmetic mean of per-artifact
// percentages and the artifacts below the threshold.
func (o *Orchestrator) aggregate(jobs []domain.ValidationJob) *domain.BatchReport {
	report := &domain.BatchReport{
		Jobs:                  jobs,
		NonCompliantArtifacts: make([]string, 0),
	}

	var total float64
	for _, job := range jobs {
		total += job.CompliancePercentage
		switch job.State {
		case domain.StateCompleted:
			report.Completed++
		case domain.StateFailed:
			report.Failed++
		case domain.StateTimedOut:
			report.TimedOut++
		}
		if !job.IsCompliant {
			report.NonCompliantArtifacts = append(report.NonCompliantArtifacts, job.ArtifactID)
		}
	}
	if len(jobs) > 0 {
		report.OverallCompliance = total / float64(len(jobs))
	}
	return report
}

// jobStore remembers terminal jobs across ValidateBatch calls so re-entry is
// idempotent for completed artifacts.
type jobStore struct {
	mu   sync.RWMutex
	byID map[string]domain.ValidationJob
}

func newJobStore() *jobStore {
	return &jobStore{byID: make(map[string]domain.ValidationJob)}
}

func (s *jobStore) completed(artifactID string) (domain.ValidationJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.byID[artifactID]
	if !ok || job.State != domain.StateCompleted {
		return domain.ValidationJob{}, false
	}
	return job, true
}

func (s *jobStore) put(job domain.ValidationJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[job.ArtifactID] = job
}
