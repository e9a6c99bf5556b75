package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/casemigrate/internal/domain"
	"github.com/rpattn/casemigrate/internal/repository"
)

// Handler exposes the migration pipeline as flat JSON endpoints under
// /migrations. Routing is done by hand over the path segments.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with its HTTP surface.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/migrations"), "/")
	segments := []string{}
	if path != "" {
		segments = strings.Split(path, "/")
	}

	switch {
	case len(segments) == 0 && r.Method == http.MethodPost:
		h.upload(w, r)
	case len(segments) == 0 && r.Method == http.MethodGet:
		h.list(w, r)
	case len(segments) == 1 && segments[0] == "templates" && r.Method == http.MethodGet:
		h.listTemplates(w, r)
	case len(segments) == 1 && r.Method == http.MethodGet:
		h.get(w, r, segments[0])
	case len(segments) == 2:
		h.jobAction(w, r, segments[0], segments[1])
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) jobAction(w http.ResponseWriter, r *http.Request, rawID, action string) {
	jobID, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid job id: %v", err), http.StatusBadRequest)
		return
	}

	switch {
	case action == "detect" && r.Method == http.MethodPost:
		h.detect(w, r, jobID)
	case action == "mappings" && r.Method == http.MethodGet:
		h.suggestedMappings(w, r, jobID)
	case action == "mappings" && r.Method == http.MethodPut:
		h.saveMappings(w, r, jobID)
	case action == "validate" && r.Method == http.MethodPost:
		h.validate(w, r, jobID)
	case action == "preview" && r.Method == http.MethodPost:
		h.preview(w, r, jobID)
	case action == "import" && r.Method == http.MethodPost:
		h.respondJob(w, r, func() (domain.MigrationJob, error) {
			return h.service.StartImport(r.Context(), jobID)
		})
	case action == "cancel" && r.Method == http.MethodPost:
		h.respondJob(w, r, func() (domain.MigrationJob, error) {
			return h.service.CancelImport(r.Context(), jobID)
		})
	case action == "complete" && r.Method == http.MethodPost:
		h.complete(w, r, jobID)
	case action == "fail" && r.Method == http.MethodPost:
		h.fail(w, r, jobID)
	case action == "errors" && r.Method == http.MethodGet:
		h.errorReport(w, r, jobID)
	case action == "rollback" && r.Method == http.MethodGet:
		h.canRollback(w, r, jobID)
	case action == "rollback" && r.Method == http.MethodPost:
		h.rollback(w, r, jobID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	orgID, err := uuid.Parse(strings.TrimSpace(r.FormValue("organizationId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid organization id: %v", err), http.StatusBadRequest)
		return
	}

	var createdBy uuid.UUID
	if raw := strings.TrimSpace(r.FormValue("createdBy")); raw != "" {
		if createdBy, err = uuid.Parse(raw); err != nil {
			http.Error(w, fmt.Sprintf("invalid creator id: %v", err), http.StatusBadRequest)
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	job, err := h.service.UploadFile(r.Context(), UploadRequest{
		OrganizationID: orgID,
		FileName:       header.Filename,
		Data:           bytes.NewReader(data),
		CreatedBy:      createdBy,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("organizationId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid organization id: %v", err), http.StatusBadRequest)
		return
	}

	filter := repository.JobFilter{
		SourceType: domain.SourceType(r.URL.Query().Get("sourceType")),
		Status:     domain.MigrationJobStatus(r.URL.Query().Get("status")),
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	jobs, total, err := h.service.ListJobs(r.Context(), orgID, filter, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":   jobs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("organizationId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid organization id: %v", err), http.StatusBadRequest)
		return
	}

	templates, err := h.service.ListTemplates(r.Context(), orgID, domain.SourceType(r.URL.Query().Get("sourceType")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, rawID string) {
	jobID, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid job id: %v", err), http.StatusBadRequest)
		return
	}
	job, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) detect(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	var body struct {
		SourceTypeHint domain.SourceType `json:"sourceTypeHint"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.DetectFormat(r.Context(), jobID, body.SourceTypeHint)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) suggestedMappings(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	suggestion, err := h.service.SuggestedMappings(r.Context(), jobID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

func (h *Handler) saveMappings(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	var body struct {
		Mappings     []domain.FieldMapping `json:"mappings"`
		TemplateName string                `json:"templateName"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, err := h.service.SaveMappings(r.Context(), jobID, body.Mappings, body.TemplateName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	h.respondJob(w, r, func() (domain.MigrationJob, error) {
		return h.service.Validate(r.Context(), jobID)
	})
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	var body struct {
		Limit int `json:"limit"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondJob(w, r, func() (domain.MigrationJob, error) {
		return h.service.GeneratePreview(r.Context(), jobID, body.Limit)
	})
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	var body struct {
		ImportedRows int `json:"importedRows"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondJob(w, r, func() (domain.MigrationJob, error) {
		return h.service.CompleteImport(r.Context(), jobID, body.ImportedRows)
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	var body struct {
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondJob(w, r, func() (domain.MigrationJob, error) {
		return h.service.FailImport(r.Context(), jobID, body.Message, body.Details)
	})
}

func (h *Handler) errorReport(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	report, err := h.service.ErrorReportFor(r.Context(), jobID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", report.FileName))
	if err := WriteErrorReport(w, report.Job); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) canRollback(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	check, err := h.service.CanRollback(r.Context(), jobID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (h *Handler) rollback(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	var body struct {
		Confirmation string    `json:"confirmation"`
		Actor        uuid.UUID `json:"actor"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Rollback(r.Context(), jobID, body.Confirmation, body.Actor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) respondJob(w http.ResponseWriter, _ *http.Request, fn func() (domain.MigrationJob, error)) {
	job, err := fn()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func decodeBody(r *http.Request, out any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
