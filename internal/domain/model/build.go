package model

import (
	"fmt"
	"time"
)

// StepKind identifies one stage of the provisioning pipeline. The six kinds
// form a strictly sequential chain; each depends on the completion of the
// previous one.
type StepKind string

const (
	StepBase       StepKind = "base"
	StepEnv        StepKind = "env"
	StepSystemDeps StepKind = "system_deps"
	StepAppDeps    StepKind = "app_deps"
	StepSource     StepKind = "source"
	StepLaunch     StepKind = "launch"
)

// StepOrder is the fixed execution order of the pipeline.
var StepOrder = []StepKind{
	StepBase,
	StepEnv,
	StepSystemDeps,
	StepAppDeps,
	StepSource,
	StepLaunch,
}

// StepStatus is the lifecycle state of a single pipeline step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCached    StepStatus = "cached"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// validStepTransitions encodes the step state machine. A cached step never
// runs; a skipped step is one that follows a failure. A pending step fails
// directly when its preparation (cache lookup, context staging) fails.
var validStepTransitions = map[StepStatus][]StepStatus{
	StepStatusPending: {StepStatusRunning, StepStatusCached, StepStatusSkipped, StepStatusFailed},
	StepStatusRunning: {StepStatusCompleted, StepStatusFailed},
}

// Transition validates and returns the new status, or an error if the state
// machine does not allow the move.
func (s StepStatus) Transition(to StepStatus) (StepStatus, error) {
	for _, allowed := range validStepTransitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, fmt.Errorf("invalid step transition %s -> %s", s, to)
}

// IsTerminal reports whether no further transitions are possible.
func (s StepStatus) IsTerminal() bool {
	return len(validStepTransitions[s]) == 0
}

// BuildStatus is the overall state of one pipeline run.
type BuildStatus string

const (
	BuildStatusRunning   BuildStatus = "running"
	BuildStatusCompleted BuildStatus = "completed"
	BuildStatusFailed    BuildStatus = "failed"
)

// StepRecord captures the outcome of one pipeline step.
type StepRecord struct {
	Kind     StepKind      `json:"kind"`
	Status   StepStatus    `json:"status"`
	Digest   string        `json:"digest"`
	LayerTag string        `json:"layer_tag"`
	CacheHit bool          `json:"cache_hit"`
	Duration time.Duration `json:"duration"`
	Output   string        `json:"output,omitempty"`
}

// Build is the record of one pipeline run. The final ImageTag is set only
// when every step completed; a failed build never promotes an image.
type Build struct {
	ID         string       `json:"id"`
	RecipeName string       `json:"recipe_name"`
	Digest     string       `json:"digest"`
	ImageTag   string       `json:"image_tag,omitempty"`
	Status     BuildStatus  `json:"status"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at,omitempty"`
	Steps      []StepRecord `json:"steps"`
}

// CacheHits counts the steps that were satisfied from the layer cache.
func (b *Build) CacheHits() int {
	hits := 0
	for _, s := range b.Steps {
		if s.CacheHit {
			hits++
		}
	}
	return hits
}

// StepByKind returns the recorded step of the given kind, or nil.
func (b *Build) StepByKind(kind StepKind) *StepRecord {
	for i := range b.Steps {
		if b.Steps[i].Kind == kind {
			return &b.Steps[i]
		}
	}
	return nil
}
