package migration

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/casemigrate/internal/domain"
)

// RollbackWindow is how long after completion an import stays reversible.
const RollbackWindow = 7 * 24 * time.Hour

// Event is a lifecycle event applied to a migration job. Every structural
// mutation of a job flows through Apply so illegal transitions are caught in
// one place.
type Event interface {
	eventName() string
}

// FormatDetected records the outcome of source-format detection. It moves a
// pending job through VALIDATING into MAPPING once field counts are known.
type FormatDetected struct {
	SourceType domain.SourceType
	TotalRows  int
}

// MappingsSaved attaches an operator-confirmed mapping set to the job.
type MappingsSaved struct {
	Mappings []domain.FieldMapping
}

// ValidationCompleted records the counts and bounded error detail of a
// validation run. Errors are data, not a blocking condition: the job moves
// to PREVIEW regardless of the error count.
type ValidationCompleted struct {
	TotalRows int
	ValidRows int
	ErrorRows int
	Errors    []domain.ValidationError
}

// PreviewGenerated persists a bounded preview sample onto the job.
type PreviewGenerated struct {
	Rows []domain.PreviewRow
}

// ImportStarted hands the job to the external import executor.
type ImportStarted struct{}

// ImportCompleted is signaled by the executor when every row was written.
// It opens the rollback window.
type ImportCompleted struct {
	ImportedRows int
	At           time.Time
}

// ImportFailed is signaled by the executor on a system or storage failure.
type ImportFailed struct {
	Message string
	Details map[string]any
}

// ImportCancelled flips an in-flight import to FAILED. Cancellation is
// cooperative: the executor observes the status between row writes and
// stops; already-written rows remain until an explicit rollback.
type ImportCancelled struct{}

// RolledBack marks a completed import as undone.
type RolledBack struct {
	Actor uuid.UUID
	At    time.Time
}

func (FormatDetected) eventName() string      { return "format detected" }
func (MappingsSaved) eventName() string       { return "mappings saved" }
func (ValidationCompleted) eventName() string { return "validation completed" }
func (PreviewGenerated) eventName() string    { return "preview generated" }
func (ImportStarted) eventName() string       { return "import started" }
func (ImportCompleted) eventName() string     { return "import completed" }
func (ImportFailed) eventName() string        { return "import failed" }
func (ImportCancelled) eventName() string     { return "import cancelled" }
func (RolledBack) eventName() string          { return "rollback" }

// Apply transitions a job according to one lifecycle event and returns the
// updated job. Violations are user-facing errors, never silent no-ops.
func Apply(job domain.MigrationJob, event Event) (domain.MigrationJob, error) {
	switch e := event.(type) {
	case FormatDetected:
		if err := requireStatus(job, event, domain.JobStatusPending, domain.JobStatusValidating, domain.JobStatusMapping); err != nil {
			return job, err
		}
		job.SourceType = e.SourceType
		job.TotalRows = e.TotalRows
		job.Status = domain.JobStatusMapping
		job.CurrentStep = "mapping fields"
		job.Progress = 0

	case MappingsSaved:
		if err := requireStatus(job, event, domain.JobStatusMapping, domain.JobStatusPreview); err != nil {
			return job, err
		}
		if len(e.Mappings) == 0 {
			return job, fmt.Errorf("cannot save an empty mapping set")
		}
		job.FieldMappings = domain.CloneMappings(e.Mappings)
		job.Status = domain.JobStatusMapping
		job.CurrentStep = "mappings saved"

	case ValidationCompleted:
		if err := requireStatus(job, event, domain.JobStatusMapping, domain.JobStatusPreview); err != nil {
			return job, err
		}
		if len(job.FieldMappings) == 0 {
			return job, fmt.Errorf("cannot validate before field mappings are saved")
		}
		job.TotalRows = e.TotalRows
		job.ValidRows = e.ValidRows
		job.ErrorRows = e.ErrorRows
		job.ValidationErrors = append([]domain.ValidationError(nil), e.Errors...)
		job.Status = domain.JobStatusPreview
		job.Progress = 100
		job.CurrentStep = fmt.Sprintf("validated %d rows (%d errors)", e.TotalRows, e.ErrorRows)

	case PreviewGenerated:
		if err := requireStatus(job, event, domain.JobStatusMapping, domain.JobStatusPreview); err != nil {
			return job, err
		}
		if len(job.FieldMappings) == 0 {
			return job, fmt.Errorf("cannot preview before field mappings are saved")
		}
		job.PreviewRows = append([]domain.PreviewRow(nil), e.Rows...)
		job.CurrentStep = "preview generated"

	case ImportStarted:
		if err := requireStatus(job, event, domain.JobStatusPreview); err != nil {
			return job, err
		}
		if len(job.FieldMappings) == 0 {
			return job, fmt.Errorf("cannot start import before field mappings are saved")
		}
		job.Status = domain.JobStatusImporting
		job.Progress = 0
		job.CurrentStep = "importing rows"

	case ImportCompleted:
		if err := requireStatus(job, event, domain.JobStatusImporting); err != nil {
			return job, err
		}
		completedAt := e.At
		if completedAt.IsZero() {
			completedAt = time.Now()
		}
		deadline := completedAt.Add(RollbackWindow)
		job.Status = domain.JobStatusCompleted
		job.ImportedRows = e.ImportedRows
		job.RollbackDeadline = &deadline
		job.Progress = 100
		job.CurrentStep = fmt.Sprintf("imported %d rows", e.ImportedRows)

	case ImportFailed:
		if err := requireStatus(job, event, domain.JobStatusImporting); err != nil {
			return job, err
		}
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = e.Message
		job.ErrorDetails = e.Details
		job.CurrentStep = "import failed"

	case ImportCancelled:
		if err := requireStatus(job, event, domain.JobStatusImporting); err != nil {
			return job, err
		}
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = "import cancelled by operator"
		job.CurrentStep = "import cancelled"

	case RolledBack:
		if err := requireStatus(job, event, domain.JobStatusCompleted); err != nil {
			return job, err
		}
		at := e.At
		if at.IsZero() {
			at = time.Now()
		}
		actor := e.Actor
		job.Status = domain.JobStatusRolledBack
		job.RolledBackBy = &actor
		job.RolledBackAt = &at
		job.CurrentStep = "rolled back"

	default:
		return job, fmt.Errorf("unknown job event %T", event)
	}

	job.UpdatedAt = time.Now()
	return job, nil
}

func requireStatus(job domain.MigrationJob, event Event, allowed ...domain.MigrationJobStatus) error {
	for _, status := range allowed {
		if job.Status == status {
			return nil
		}
	}
	return fmt.Errorf("%s is not allowed while job is %s", event.eventName(), job.Status)
}
