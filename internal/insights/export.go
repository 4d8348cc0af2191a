package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/spendsense/internal/gcs"
	"github.com/dvloznov/spendsense/internal/jobs"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/whatif"
)

const exportContentType = "application/json"

// Export wraps a scenario result for download or archiving.
type Export struct {
	ExportID   string        `json:"export_id"`
	UserID     string        `json:"user_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Scenario   whatif.Result `json:"scenario"`

	// ArchiveURI is where the export is being archived, if archiving is on.
	ArchiveURI string `json:"archive_uri,omitempty"`
	// ArchiveJobID identifies the archive job; it is not part of the archived copy.
	ArchiveJobID string `json:"archive_job_id,omitempty"`
}

// ExportScenario runs spec and returns the export envelope. When archiving
// is enabled an archive job is enqueued as well; failing to enqueue it is
// logged and does not fail the export.
func (s *Service) ExportScenario(ctx context.Context, userID string, spec whatif.ScenarioSpec) (*Export, error) {
	res, err := s.RunScenario(ctx, userID, spec)
	if err != nil {
		return nil, fmt.Errorf("ExportScenario: %w", err)
	}

	exp := &Export{
		ExportID:   uuid.New().String(),
		UserID:     userID,
		ExportedAt: s.now().UTC(),
		Scenario:   res,
	}

	if s.archive == nil || s.archivePrefix == "" {
		return exp, nil
	}

	exp.ArchiveURI = gcs.JoinURI(s.archivePrefix, userID, exp.ExportID+".json")
	payload, err := json.Marshal(exp)
	if err != nil {
		return nil, fmt.Errorf("ExportScenario: encode: %w", err)
	}

	job := &jobs.ArchiveExportJob{
		UserID:         userID,
		ExportID:       exp.ExportID,
		DestinationURI: exp.ArchiveURI,
		Payload:        payload,
		MaxRetries:     s.maxRetries,
	}

	log := logger.WithUser(s.log, userID)
	if err := s.archive.PublishArchiveExport(ctx, job); err != nil {
		log.Error().Err(err).Str("export_id", exp.ExportID).Msg("Failed to enqueue export archive")
		exp.ArchiveURI = ""
		return exp, nil
	}

	exp.ArchiveJobID = job.JobID
	log.Info().
		Str("export_id", exp.ExportID).
		Str("job_id", job.JobID).
		Str("destination", job.DestinationURI).
		Msg("Export archive enqueued")
	return exp, nil
}

// ArchiveHandler returns a job handler that writes archive payloads to store.
func ArchiveHandler(store gcs.ObjectStore) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		archive, ok := job.(*jobs.ArchiveExportJob)
		if !ok {
			return fmt.Errorf("ArchiveHandler: unsupported job type %s", job.GetType())
		}

		log := logger.FromContext(ctx)
		if err := store.Write(ctx, archive.DestinationURI, archive.Payload, exportContentType); err != nil {
			log.Warn().Err(err).Str("job_id", archive.JobID).Int("retry", archive.RetryCount).Msg("Archive write failed")
			return fmt.Errorf("ArchiveHandler: %w", err)
		}

		log.Info().
			Str("job_id", archive.JobID).
			Str("destination", archive.DestinationURI).
			Int("bytes", len(archive.Payload)).
			Msg("Export archived")
		return nil
	}
}
