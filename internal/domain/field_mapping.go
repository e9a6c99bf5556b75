package domain

import (
	"time"

	"github.com/google/uuid"
)

// TargetEntity names one of the fixed destination record kinds a mapped
// field can be routed to.
type TargetEntity string

const (
	TargetEntityCase          TargetEntity = "case"
	TargetEntityIncident      TargetEntity = "incident"
	TargetEntityPerson        TargetEntity = "person"
	TargetEntityInvestigation TargetEntity = "investigation"
)

// allowedTargetFields is the fixed set of field names each target entity accepts.
var allowedTargetFields = map[TargetEntity][]string{
	TargetEntityCase: {
		"case_number", "title", "description", "status", "severity",
		"category", "source", "location", "reported_date", "closed_date", "tags",
	},
	TargetEntityIncident: {
		"incident_type", "description", "occurred_date", "location", "severity",
	},
	TargetEntityPerson: {
		"first_name", "last_name", "full_name", "email", "phone", "role", "department",
	},
	TargetEntityInvestigation: {
		"investigator", "started_date", "completed_date", "outcome", "notes",
	},
}

// AllowedTargetFields returns the accepted field names for a target entity.
// The returned slice must not be mutated.
func AllowedTargetFields(entity TargetEntity) []string {
	return allowedTargetFields[entity]
}

// TargetFieldAllowed reports whether field is a member of the allowed set for entity.
func TargetFieldAllowed(entity TargetEntity, field string) bool {
	for _, allowed := range allowedTargetFields[entity] {
		if allowed == field {
			return true
		}
	}
	return false
}

// FieldMapping routes one source column onto a target field. An empty
// TargetField means the column is unmapped and its values are ignored.
type FieldMapping struct {
	SourceField     string            `json:"sourceField"`
	TargetField     string            `json:"targetField"`
	TargetEntity    TargetEntity      `json:"targetEntity"`
	Required        bool              `json:"required"`
	Transform       string            `json:"transform,omitempty"`
	TransformParams map[string]string `json:"transformParams,omitempty"`
	DefaultValue    string            `json:"defaultValue,omitempty"`
}

// MappingTemplate is a reusable named mapping set scoped to a tenant and
// source type. Templates are upserted by the (organization, source type,
// name) triple.
type MappingTemplate struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organizationId"`
	SourceType     SourceType     `json:"sourceType"`
	Name           string         `json:"name"`
	Mappings       []FieldMapping `json:"mappings"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// NewMappingTemplate creates a template with a fresh identity.
func NewMappingTemplate(organizationID uuid.UUID, sourceType SourceType, name string, mappings []FieldMapping) MappingTemplate {
	now := time.Now()
	return MappingTemplate{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		SourceType:     sourceType,
		Name:           name,
		Mappings:       CloneMappings(mappings),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CloneMappings returns an independent copy of a mapping set so snapshots
// stored on jobs and templates cannot alias each other.
func CloneMappings(mappings []FieldMapping) []FieldMapping {
	if mappings == nil {
		return nil
	}
	cloned := make([]FieldMapping, len(mappings))
	for i, m := range mappings {
		if m.TransformParams != nil {
			params := make(map[string]string, len(m.TransformParams))
			for k, v := range m.TransformParams {
				params[k] = v
			}
			m.TransformParams = params
		}
		cloned[i] = m
	}
	return cloned
}
