package domain

import "time"

// JobStatus is the lifecycle state of a bulk import job.
type JobStatus string

const (
	JobStatusStarted   JobStatus = "started"
	JobStatusCompleted JobStatus = "completed"
	JobStatusTimeout   JobStatus = "timeout"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is one of the final states. Transitions
// out of a terminal status are not allowed.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusTimeout, JobStatusFailed:
		return true
	}
	return false
}

// ImportJob is the ledger entry for one bulk import request. It records what
// was asked for, how far the run got, and how it ended.
type ImportJob struct {
	ID             string     `bson:"_id" json:"id"`
	RequestedBy    string     `bson:"requestedBy" json:"requestedBy"`
	ShipmentIDs    []string   `bson:"shipmentIds" json:"shipmentIds"`
	TotalItems     int        `bson:"totalItems" json:"totalItems"`
	ProcessedItems int        `bson:"processedItems" json:"processedItems"`
	Status         JobStatus  `bson:"status" json:"status"`
	Error          string     `bson:"error,omitempty" json:"error,omitempty"`
	StartedAt      time.Time  `bson:"startedAt" json:"startedAt"`
	FinishedAt     *time.Time `bson:"finishedAt,omitempty" json:"finishedAt,omitempty"`
}

// NewImportJob opens a job in the started state.
func NewImportJob(id, requestedBy string, shipmentIDs []string, totalItems int, startedAt time.Time) *ImportJob {
	return &ImportJob{
		ID:          id,
		RequestedBy: requestedBy,
		ShipmentIDs: shipmentIDs,
		TotalItems:  totalItems,
		Status:      JobStatusStarted,
		StartedAt:   startedAt,
	}
}

func (j *ImportJob) finish(status JobStatus, processed int, errMsg string, at time.Time) error {
	if j.Status.Terminal() {
		return ErrJobFinished
	}
	j.Status = status
	j.ProcessedItems = processed
	j.Error = errMsg
	j.FinishedAt = &at
	return nil
}

// Complete marks the job as fully processed.
func (j *ImportJob) Complete(processed int, at time.Time) error {
	return j.finish(JobStatusCompleted, processed, "", at)
}

// Timeout marks the job as stopped at a shipment boundary because the
// wall-clock budget ran out. Work written so far stays durable.
func (j *ImportJob) Timeout(processed int, at time.Time) error {
	return j.finish(JobStatusTimeout, processed, "", at)
}

// Fail marks the job as aborted with an error.
func (j *ImportJob) Fail(processed int, errMsg string, at time.Time) error {
	return j.finish(JobStatusFailed, processed, errMsg, at)
}

// Duration returns how long the job ran, or zero if it is still open.
func (j *ImportJob) Duration() time.Duration {
	if j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
