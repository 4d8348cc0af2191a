package jobs

import (
	"context"
	"errors"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeArchiveExport writes an exported scenario to object storage.
	JobTypeArchiveExport JobType = "archive_export"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is scheduled again.
	JobStatusRetrying JobStatus = "retrying"
)

// ErrJobNotFound is returned by stores for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// ArchiveExportJob copies one scenario export to DestinationURI.
type ArchiveExportJob struct {
	JobID          string `json:"job_id"`
	UserID         string `json:"user_id"`
	ExportID       string `json:"export_id"`
	DestinationURI string `json:"destination_uri"`

	// Payload is the encoded export. It is not reported back to clients.
	Payload []byte `json:"-"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ArchiveExportJob) GetID() string        { return j.JobID }
func (j *ArchiveExportJob) GetType() JobType     { return JobTypeArchiveExport }
func (j *ArchiveExportJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs.
type Publisher interface {
	PublishArchiveExport(ctx context.Context, job *ArchiveExportJob) error
	Close() error
}

// Consumer runs jobs taken from a queue.
type Consumer interface {
	// Start launches workers that call handler for each job.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error marks the attempt failed
// and schedules a retry while retries remain.
type JobHandler func(ctx context.Context, job Job) error

// JobStore keeps job state so clients can poll it.
type JobStore interface {
	SaveJob(ctx context.Context, job *ArchiveExportJob) error
	GetJob(ctx context.Context, jobID string) (*ArchiveExportJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ArchiveExportJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
	Offset int
}
