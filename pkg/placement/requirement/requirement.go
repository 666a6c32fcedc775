package requirement

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/workforce/pkg/errx"
	"github.com/Abraxas-365/workforce/pkg/kernel"
)

// ============================================================================
// Requirement Entity
// ============================================================================

// RequirementStatus define los estados de un requerimiento de cliente
type RequirementStatus string

const (
	RequirementStatusDraft        RequirementStatus = "DRAFT"
	RequirementStatusSubmitted    RequirementStatus = "SUBMITTED"
	RequirementStatusClientReview RequirementStatus = "CLIENT_REVIEW"
	RequirementStatusCompleted    RequirementStatus = "COMPLETED"
	RequirementStatusRejected     RequirementStatus = "REJECTED"
)

// Requirement es la solicitud global de un cliente, compuesta por puestos
type Requirement struct {
	ID         kernel.RequirementID `db:"id" json:"id"`
	ClientID   kernel.ClientID      `db:"client_id" json:"client_id"`
	ClientName string               `db:"client_name" json:"client_name"`
	Status     RequirementStatus    `db:"status" json:"status"`
	CreatedAt  time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `db:"updated_at" json:"updated_at"`
}

// MoveToClientReview pasa el requerimiento a revisión del cliente. Solo el
// agregador de estados invoca esta transición; el resto del ciclo de vida del
// requerimiento pertenece a otro subsistema.
func (r *Requirement) MoveToClientReview() {
	r.Status = RequirementStatusClientReview
	r.UpdatedAt = time.Now()
}

// ============================================================================
// Job Role Entity
// ============================================================================

// JobRoleAdminStatus es el estado agregado de un puesto según el admin
type JobRoleAdminStatus string

const (
	JobRoleUnderReview   JobRoleAdminStatus = "UNDER_REVIEW"
	JobRoleAccepted      JobRoleAdminStatus = "ACCEPTED"
	JobRoleNeedsRevision JobRoleAdminStatus = "NEEDS_REVISION"
)

// JobRole es una línea de demanda dentro de un requerimiento: un título y la
// cantidad de colocaciones primarias solicitadas
type JobRole struct {
	ID            kernel.JobRoleID     `db:"id" json:"id"`
	RequirementID kernel.RequirementID `db:"requirement_id" json:"requirement_id"`
	Title         string               `db:"title" json:"title"`
	Quantity      int                  `db:"quantity" json:"quantity"`

	// AdminStatus y NeedsMoreLabour son derivados: los escribe exclusivamente
	// el agregador de estados tras cada operación del orquestador.
	AdminStatus     JobRoleAdminStatus `db:"admin_status" json:"admin_status"`
	NeedsMoreLabour bool               `db:"needs_more_labour" json:"needs_more_labour"`

	AssignedAgencyID *kernel.AgencyID `db:"assigned_agency_id" json:"assigned_agency_id,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("REQUIREMENT")

var (
	CodeRequirementNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Requerimiento no encontrado")
	CodeJobRoleNotFound     = ErrRegistry.Register("JOB_ROLE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Puesto no encontrado")
)

func ErrRequirementNotFound() *errx.Error {
	return ErrRegistry.New(CodeRequirementNotFound)
}

func ErrJobRoleNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobRoleNotFound)
}
