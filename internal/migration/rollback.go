package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/casemigrate/internal/domain"
)

// RollbackConfirmationPhrase must be supplied verbatim to run a rollback.
const RollbackConfirmationPhrase = "ROLLBACK"

// DeletionExecutor deletes imported domain entities on behalf of a rollback.
// The real implementation lives with the import executor.
type DeletionExecutor interface {
	DeleteEntity(ctx context.Context, organizationID uuid.UUID, entityType string, entityID uuid.UUID) error
}

// RollbackEligibility reports whether a job can be rolled back and why not.
type RollbackEligibility struct {
	CanRollback     bool       `json:"canRollback"`
	Reason          string     `json:"reason,omitempty"`
	TotalRecords    int        `json:"totalRecords"`
	ModifiedRecords int        `json:"modifiedRecords"`
	WindowExpiresAt *time.Time `json:"windowExpiresAt,omitempty"`
}

// RollbackResult summarizes a completed rollback.
type RollbackResult struct {
	Job            domain.MigrationJob `json:"job"`
	RolledBack     int                 `json:"rolledBack"`
	Skipped        int                 `json:"skipped"`
	SkippedDetails []string            `json:"skippedDetails,omitempty"`
}

// CanRollback checks the three eligibility conditions: the job completed,
// the rollback window has not expired, and at least one provenance record is
// still unmodified since import.
func (s *Service) CanRollback(ctx context.Context, jobID uuid.UUID) (RollbackEligibility, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return RollbackEligibility{}, err
	}

	records, err := s.recordRepo.ListByJob(ctx, job.ID)
	if err != nil {
		return RollbackEligibility{}, fmt.Errorf("failed to load provenance records: %w", err)
	}

	return eligibility(job, records, time.Now()), nil
}

// Rollback undoes a completed import: provenance records not modified since
// import are handed to the deletion executor, records modified after import
// are skipped with a human-readable reason, and the job is marked rolled back.
func (s *Service) Rollback(ctx context.Context, jobID uuid.UUID, confirmation string, actor uuid.UUID) (RollbackResult, error) {
	if confirmation != RollbackConfirmationPhrase {
		return RollbackResult{}, fmt.Errorf("rollback requires confirmation phrase %q", RollbackConfirmationPhrase)
	}
	if s.executor == nil {
		return RollbackResult{}, errors.New("no deletion executor configured")
	}

	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return RollbackResult{}, err
	}

	records, err := s.recordRepo.ListByJob(ctx, job.ID)
	if err != nil {
		return RollbackResult{}, fmt.Errorf("failed to load provenance records: %w", err)
	}

	check := eligibility(job, records, time.Now())
	if !check.CanRollback {
		return RollbackResult{}, errors.New(check.Reason)
	}

	result := RollbackResult{}
	for _, record := range records {
		if record.ModifiedAfterImport {
			result.Skipped++
			result.SkippedDetails = append(result.SkippedDetails,
				fmt.Sprintf("%s %s was modified after import", record.EntityType, record.EntityID))
			continue
		}
		if err := s.executor.DeleteEntity(ctx, job.OrganizationID, record.EntityType, record.EntityID); err != nil {
			return result, fmt.Errorf("failed to delete %s %s: %w", record.EntityType, record.EntityID, err)
		}
		result.RolledBack++
	}

	job, err = Apply(job, RolledBack{Actor: actor, At: time.Now()})
	if err != nil {
		return result, err
	}
	job, err = s.jobRepo.Update(ctx, job)
	if err != nil {
		return result, fmt.Errorf("failed to update migration job: %w", err)
	}
	result.Job = job

	s.logger.WithFields(logrus.Fields{"job": job.ID, "rolledBack": result.RolledBack, "skipped": result.Skipped}).
		Info("[MIGRATION] rollback completed")
	return result, nil
}

func eligibility(job domain.MigrationJob, records []domain.MigrationRecord, now time.Time) RollbackEligibility {
	check := RollbackEligibility{
		TotalRecords:    len(records),
		WindowExpiresAt: job.RollbackDeadline,
	}
	for _, record := range records {
		if record.ModifiedAfterImport {
			check.ModifiedRecords++
		}
	}

	switch {
	case job.Status != domain.JobStatusCompleted:
		check.Reason = fmt.Sprintf("only completed imports can be rolled back (job is %s)", job.Status)
	case job.RollbackDeadline == nil || now.After(*job.RollbackDeadline):
		check.Reason = "rollback window has expired"
	case len(records) > 0 && check.ModifiedRecords == len(records):
		check.Reason = "every imported record was modified after import"
	default:
		check.CanRollback = true
	}

	return check
}
