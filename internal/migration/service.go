package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/casemigrate/internal/auth"
	"github.com/rpattn/casemigrate/internal/detect"
	"github.com/rpattn/casemigrate/internal/domain"
	"github.com/rpattn/casemigrate/internal/mapping"
	"github.com/rpattn/casemigrate/internal/repository"
	"github.com/rpattn/casemigrate/internal/storage"
)

// DefaultMaxFileSize caps uploads at 100MB unless configured otherwise.
const DefaultMaxFileSize = 100 << 20

// Service drives migration jobs through detection, mapping, validation,
// preview, import hand-off, and rollback. It is stateless between calls and
// trusts the persisted job status as the single source of truth; concurrent
// phase calls for the same job are rejected by the state machine.
type Service struct {
	jobRepo      repository.MigrationJobRepository
	templateRepo repository.MappingTemplateRepository
	recordRepo   repository.MigrationRecordRepository
	store        storage.ObjectStore
	executor     DeletionExecutor
	bucket       string
	maxFileSize  int64
	logger       *logrus.Logger
}

// NewService wires a migration service.
func NewService(
	jobRepo repository.MigrationJobRepository,
	templateRepo repository.MappingTemplateRepository,
	recordRepo repository.MigrationRecordRepository,
	store storage.ObjectStore,
	executor DeletionExecutor,
	bucket string,
	maxFileSize int64,
	logger *logrus.Logger,
) *Service {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		jobRepo:      jobRepo,
		templateRepo: templateRepo,
		recordRepo:   recordRepo,
		store:        store,
		executor:     executor,
		bucket:       bucket,
		maxFileSize:  maxFileSize,
		logger:       logger,
	}
}

// UploadRequest describes a new file upload.
type UploadRequest struct {
	OrganizationID uuid.UUID
	FileName       string
	Data           io.Reader
	CreatedBy      uuid.UUID
}

// UploadFile stores the raw file and creates a pending migration job.
func (s *Service) UploadFile(ctx context.Context, req UploadRequest) (domain.MigrationJob, error) {
	if err := auth.EnforceOrganizationScope(ctx, req.OrganizationID); err != nil {
		return domain.MigrationJob{}, err
	}
	if strings.TrimSpace(req.FileName) == "" {
		return domain.MigrationJob{}, errors.New("file name is required")
	}
	if req.Data == nil {
		return domain.MigrationJob{}, errors.New("data reader is required")
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	switch ext {
	case ".csv", ".tsv", ".txt", ".xlsx":
	default:
		return domain.MigrationJob{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	payload, err := io.ReadAll(io.LimitReader(req.Data, s.maxFileSize+1))
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(payload) == 0 {
		return domain.MigrationJob{}, errors.New("file is empty")
	}
	if int64(len(payload)) > s.maxFileSize {
		return domain.MigrationJob{}, fmt.Errorf("file exceeds maximum size of %d bytes", s.maxFileSize)
	}

	job := domain.NewMigrationJob(req.OrganizationID, req.FileName, "", int64(len(payload)), req.CreatedBy)
	job.FileKey = fmt.Sprintf("%s/%s/%s", req.OrganizationID, job.ID, req.FileName)

	if err := s.store.PutObject(ctx, s.bucket, job.FileKey, payload); err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to store upload: %w", err)
	}

	created, err := s.jobRepo.Create(ctx, job)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to create migration job: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"job": created.ID, "file": created.FileName, "bytes": created.FileSize}).
		Info("[MIGRATION] file uploaded")
	return created, nil
}

// DetectResult reports a completed format detection.
type DetectResult struct {
	Job        domain.MigrationJob `json:"job"`
	SourceType domain.SourceType   `json:"sourceType"`
	Confidence int                 `json:"confidence"`
	Headers    []string            `json:"headers"`
	TotalRows  int                 `json:"totalRows"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// DetectFormat parses the uploaded file, scores its headers against the
// known source schemas, and moves the job into the mapping phase. Detection
// is idempotent for identical bytes and hint.
func (s *Service) DetectFormat(ctx context.Context, jobID uuid.UUID, hint domain.SourceType) (DetectResult, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return DetectResult{}, err
	}
	if hint != "" && !domain.ValidSourceType(hint) {
		return DetectResult{}, fmt.Errorf("unknown source type hint %q", hint)
	}

	reader, err := s.openJobFile(ctx, job)
	if err != nil {
		return DetectResult{}, err
	}
	defer func() { _ = reader.Close() }()

	headers := reader.Headers()
	totalRows, err := CountRows(reader)
	if err != nil {
		return DetectResult{}, fmt.Errorf("failed to count rows: %w", err)
	}

	sourceType, confidence := detect.DetectSourceType(headers, hint)

	job, err = Apply(job, FormatDetected{SourceType: sourceType, TotalRows: totalRows})
	if err != nil {
		return DetectResult{}, err
	}
	job, err = s.jobRepo.Update(ctx, job)
	if err != nil {
		return DetectResult{}, fmt.Errorf("failed to update migration job: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"job": job.ID, "sourceType": sourceType, "confidence": confidence, "rows": totalRows}).
		Info("[MIGRATION] format detected")

	return DetectResult{
		Job:        job,
		SourceType: sourceType,
		Confidence: confidence,
		Headers:    headers,
		TotalRows:  totalRows,
		Warnings:   detect.Warnings(confidence, totalRows),
	}, nil
}

// SuggestedMappings returns the best available mapping set for a job: its
// own saved mappings first, then the tenant's most-recently-updated template
// for the detected source type, then a fresh heuristic suggestion from the
// file headers.
func (s *Service) SuggestedMappings(ctx context.Context, jobID uuid.UUID) (mapping.Suggestion, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return mapping.Suggestion{}, err
	}

	if len(job.FieldMappings) > 0 {
		return mapping.Suggestion{
			Mappings:   domain.CloneMappings(job.FieldMappings),
			Confidence: mappedShare(job.FieldMappings),
		}, nil
	}

	if template, found, err := s.templateRepo.Latest(ctx, job.OrganizationID, job.SourceType); err != nil {
		return mapping.Suggestion{}, fmt.Errorf("failed to load mapping template: %w", err)
	} else if found {
		return mapping.Suggestion{
			Mappings:   domain.CloneMappings(template.Mappings),
			Confidence: mappedShare(template.Mappings),
		}, nil
	}

	reader, err := s.openJobFile(ctx, job)
	if err != nil {
		return mapping.Suggestion{}, err
	}
	defer func() { _ = reader.Close() }()

	return mapping.Suggest(reader.Headers(), job.SourceType), nil
}

// SaveMappings validates and attaches an operator-submitted mapping set to
// the job, optionally persisting it as a reusable named template.
func (s *Service) SaveMappings(ctx context.Context, jobID uuid.UUID, mappings []domain.FieldMapping, templateName string) (domain.MigrationJob, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return domain.MigrationJob{}, err
	}

	if err := mapping.ValidateMappings(mappings); err != nil {
		return domain.MigrationJob{}, err
	}

	job, err = Apply(job, MappingsSaved{Mappings: mappings})
	if err != nil {
		return domain.MigrationJob{}, err
	}
	job, err = s.jobRepo.Update(ctx, job)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to update migration job: %w", err)
	}

	if name := strings.TrimSpace(templateName); name != "" {
		template := domain.NewMappingTemplate(job.OrganizationID, job.SourceType, name, mappings)
		if _, err := s.templateRepo.Upsert(ctx, template); err != nil {
			return domain.MigrationJob{}, fmt.Errorf("failed to save mapping template: %w", err)
		}
	}

	return job, nil
}

// Validate applies the job's mapping set in validate mode to every row,
// checkpointing progress onto the job record as it goes. The job moves to
// PREVIEW regardless of the error count.
func (s *Service) Validate(ctx context.Context, jobID uuid.UUID) (domain.MigrationJob, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return domain.MigrationJob{}, err
	}
	if len(job.FieldMappings) == 0 {
		return domain.MigrationJob{}, errors.New("cannot validate before field mappings are saved")
	}
	if job.Status != domain.JobStatusMapping && job.Status != domain.JobStatusPreview {
		return domain.MigrationJob{}, fmt.Errorf("validation is not allowed while job is %s", job.Status)
	}

	reader, err := s.openJobFile(ctx, job)
	if err != nil {
		return domain.MigrationJob{}, err
	}
	defer func() { _ = reader.Close() }()

	progress := func(percent int, step string) {
		if err := s.jobRepo.UpdateProgress(ctx, job.ID, percent, step); err != nil {
			s.logger.WithField("job", job.ID).Warnf("[MIGRATION] progress checkpoint failed: %v", err)
		}
	}

	result, err := ValidateRows(reader, job.FieldMappings, job.TotalRows, progress)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("validation failed: %w", err)
	}

	job, err = Apply(job, ValidationCompleted{
		TotalRows: result.TotalRows,
		ValidRows: result.ValidRows,
		ErrorRows: result.ErrorRows,
		Errors:    result.Errors,
	})
	if err != nil {
		return domain.MigrationJob{}, err
	}
	job, err = s.jobRepo.Update(ctx, job)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to update migration job: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"job": job.ID, "total": result.TotalRows, "valid": result.ValidRows, "errors": result.ErrorRows}).
		Info("[MIGRATION] validation completed")
	return job, nil
}

// GeneratePreview transforms a bounded prefix of rows and persists the
// resulting sample onto the job.
func (s *Service) GeneratePreview(ctx context.Context, jobID uuid.UUID, limit int) (domain.MigrationJob, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return domain.MigrationJob{}, err
	}
	if len(job.FieldMappings) == 0 {
		return domain.MigrationJob{}, errors.New("cannot preview before field mappings are saved")
	}

	reader, err := s.openJobFile(ctx, job)
	if err != nil {
		return domain.MigrationJob{}, err
	}
	defer func() { _ = reader.Close() }()

	rows, err := GeneratePreview(reader, job.FieldMappings, limit)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("preview generation failed: %w", err)
	}

	job, err = Apply(job, PreviewGenerated{Rows: rows})
	if err != nil {
		return domain.MigrationJob{}, err
	}
	job, err = s.jobRepo.Update(ctx, job)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to update migration job: %w", err)
	}
	return job, nil
}

// StartImport hands a previewed job to the external import executor.
func (s *Service) StartImport(ctx context.Context, jobID uuid.UUID) (domain.MigrationJob, error) {
	return s.transition(ctx, jobID, ImportStarted{})
}

// CancelImport flips an in-flight import to FAILED. The executor observes
// the status between row writes and stops; no partial-write rollback runs.
func (s *Service) CancelImport(ctx context.Context, jobID uuid.UUID) (domain.MigrationJob, error) {
	return s.transition(ctx, jobID, ImportCancelled{})
}

// CompleteImport is invoked by the executor once every row was written. It
// records the imported-row count and opens the rollback window.
func (s *Service) CompleteImport(ctx context.Context, jobID uuid.UUID, importedRows int) (domain.MigrationJob, error) {
	return s.transition(ctx, jobID, ImportCompleted{ImportedRows: importedRows})
}

// FailImport is invoked by the executor on a system or storage failure.
func (s *Service) FailImport(ctx context.Context, jobID uuid.UUID, message string, details map[string]any) (domain.MigrationJob, error) {
	return s.transition(ctx, jobID, ImportFailed{Message: message, Details: details})
}

// GetJob loads one job.
func (s *Service) GetJob(ctx context.Context, jobID uuid.UUID) (domain.MigrationJob, error) {
	return s.loadJob(ctx, jobID)
}

// ListJobs pages through a tenant's jobs, optionally filtered by source type
// and status.
func (s *Service) ListJobs(ctx context.Context, organizationID uuid.UUID, filter repository.JobFilter, limit, offset int) ([]domain.MigrationJob, int, error) {
	if err := auth.EnforceOrganizationScope(ctx, organizationID); err != nil {
		return nil, 0, err
	}
	if filter.SourceType != "" && !domain.ValidSourceType(filter.SourceType) {
		return nil, 0, fmt.Errorf("unknown source type %q", filter.SourceType)
	}
	if filter.Status != "" && !domain.ValidJobStatus(filter.Status) {
		return nil, 0, fmt.Errorf("unknown job status %q", filter.Status)
	}
	return s.jobRepo.List(ctx, organizationID, filter, limit, offset)
}

// ListTemplates returns the tenant's saved mapping templates for a source type.
func (s *Service) ListTemplates(ctx context.Context, organizationID uuid.UUID, sourceType domain.SourceType) ([]domain.MappingTemplate, error) {
	if err := auth.EnforceOrganizationScope(ctx, organizationID); err != nil {
		return nil, err
	}
	return s.templateRepo.List(ctx, organizationID, sourceType)
}

func (s *Service) transition(ctx context.Context, jobID uuid.UUID, event Event) (domain.MigrationJob, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return domain.MigrationJob{}, err
	}
	job, err = Apply(job, event)
	if err != nil {
		return domain.MigrationJob{}, err
	}
	job, err = s.jobRepo.Update(ctx, job)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to update migration job: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"job": job.ID, "status": job.Status}).
		Infof("[MIGRATION] %s", event.eventName())
	return job, nil
}

func (s *Service) loadJob(ctx context.Context, jobID uuid.UUID) (domain.MigrationJob, error) {
	if jobID == uuid.Nil {
		return domain.MigrationJob{}, errors.New("job id is required")
	}
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to load migration job: %w", err)
	}
	if err := auth.EnforceOrganizationScope(ctx, job.OrganizationID); err != nil {
		return domain.MigrationJob{}, err
	}
	return job, nil
}

func (s *Service) openJobFile(ctx context.Context, job domain.MigrationJob) (RowReader, error) {
	payload, err := s.store.GetObject(ctx, s.bucket, job.FileKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", job.FileName, err)
	}
	return OpenTable(job.FileName, payload)
}

func mappedShare(mappings []domain.FieldMapping) int {
	if len(mappings) == 0 {
		return 0
	}
	matched := 0
	for _, m := range mappings {
		if m.TargetField != "" {
			matched++
		}
	}
	return matched * 100 / len(mappings)
}
