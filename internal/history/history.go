// Package history records deploy, publish and destroy runs in the local
// state database so `sitekit history` can show what happened and when.
package history

import "time"

// Kind is the operation a run performed.
type Kind string

const (
	KindDeploy  Kind = "deploy"
	KindPublish Kind = "publish"
	KindDestroy Kind = "destroy"
)

// Status is how a run ended.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusNoChanges Status = "no_changes"
)

// Run is one recorded operation.
type Run struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Stack      string    `json:"stack"`
	Status     Status    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration is how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// StatusOf maps a run's error to its status.
func StatusOf(err error, noChanges bool) Status {
	switch {
	case err != nil:
		return StatusFailed
	case noChanges:
		return StatusNoChanges
	default:
		return StatusSucceeded
	}
}
