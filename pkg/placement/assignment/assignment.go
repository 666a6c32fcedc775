package assignment

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/workforce/pkg/errx"
	"github.com/Abraxas-365/workforce/pkg/kernel"
)

// ============================================================================
// Assignment Entity
// ============================================================================

// Status es el vocabulario compartido de decisión de los tres actores
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusSubmitted     Status = "SUBMITTED"
	StatusAccepted      Status = "ACCEPTED"
	StatusRejected      Status = "REJECTED"
	StatusNeedsRevision Status = "NEEDS_REVISION"
)

// IsTerminalDecision reporta si el estado es una decisión final de admin
func (s Status) IsTerminalDecision() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Assignment vincula un perfil de trabajador con un puesto y lleva la decisión
// independiente de cada actor: agencia, admin y cliente. El perfil y el puesto
// son inmutables una vez creada la asignación.
type Assignment struct {
	ID        kernel.AssignmentID `db:"id" json:"id"`
	ProfileID kernel.ProfileID    `db:"profile_id" json:"profile_id"`
	JobRoleID kernel.JobRoleID    `db:"job_role_id" json:"job_role_id"`
	AgencyID  kernel.AgencyID     `db:"agency_id" json:"agency_id"`

	AgencyStatus Status `db:"agency_status" json:"agency_status"`
	AdminStatus  Status `db:"admin_status" json:"admin_status"`
	ClientStatus Status `db:"client_status" json:"client_status"`

	AdminFeedback  *string `db:"admin_feedback" json:"admin_feedback,omitempty"`
	ClientFeedback *string `db:"client_feedback" json:"client_feedback,omitempty"`

	// IsBackup solo tiene significado cuando AdminStatus == ACCEPTED: una
	// asignación de respaldo está aceptada pero no cuenta para la cantidad
	// solicitada del puesto.
	IsBackup bool `db:"is_backup" json:"is_backup"`

	// CreatedAt es el único criterio de desempate del ranking: orden de
	// inserción = orden de prioridad.
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// AdminAccept registra la aceptación del admin y limpia el feedback
func (a *Assignment) AdminAccept() {
	a.AdminStatus = StatusAccepted
	a.AdminFeedback = nil
	a.UpdatedAt = time.Now()
}

// AdminReject registra el rechazo del admin. El rechazo del admin se propaga
// hacia abajo: el cliente nunca revisa una asignación rechazada por el admin.
func (a *Assignment) AdminReject(feedback string) {
	a.AdminStatus = StatusRejected
	a.ClientStatus = StatusRejected
	a.AdminFeedback = &feedback
	a.IsBackup = false
	a.UpdatedAt = time.Now()
}

// IsAcceptedPrimary reporta si la asignación cuenta para la cantidad del puesto
func (a *Assignment) IsAcceptedPrimary() bool {
	return a.AdminStatus == StatusAccepted && !a.IsBackup
}

// IsFulfilled reporta si la asignación está lista para revisión del cliente:
// aceptada por agencia y admin, enviada al cliente, y primaria
func (a *Assignment) IsFulfilled() bool {
	return a.AdminStatus == StatusAccepted &&
		a.AgencyStatus == StatusAccepted &&
		a.ClientStatus == StatusSubmitted &&
		!a.IsBackup
}

// ============================================================================
// Derived Read - estado de presentación de un puesto
// ============================================================================

// SubmissionStatus es la lectura derivada del avance de un puesto frente al
// cliente, calculada sobre el conjunto de asignaciones del puesto
type SubmissionStatus string

const (
	SubmissionNone          SubmissionStatus = "NO_SUBMISSIONS"
	SubmissionUnderReview   SubmissionStatus = "UNDER_REVIEW"
	SubmissionPartial       SubmissionStatus = "PARTIAL_SUBMISSIONS"
	SubmissionNeedsRevision SubmissionStatus = "NEEDS_REVISION"
	SubmissionFullyAccepted SubmissionStatus = "FULLY_ACCEPTED"
)

// ============================================================================
// DTOs
// ============================================================================

// DecisionRequest es la petición de decisión sobre una asignación
type DecisionRequest struct {
	Status   Status  `json:"status"`
	Feedback *string `json:"feedback,omitempty"`
}

// BulkDecisionRequest es la petición de decisión sobre varias asignaciones
type BulkDecisionRequest struct {
	AssignmentIDs []kernel.AssignmentID `json:"assignment_ids"`
	Status        Status                `json:"status"`
	Feedback      *string               `json:"feedback,omitempty"`
}

// BulkDecisionResult reporta el resultado de una decisión masiva: las
// asignaciones efectivamente modificadas y las omitidas por ser no-op
type BulkDecisionResult struct {
	Updated []Assignment          `json:"updated"`
	Skipped []kernel.AssignmentID `json:"skipped,omitempty"`
}

// RoleStatusResponse es la respuesta de la lectura derivada de un puesto
type RoleStatusResponse struct {
	JobRoleID        kernel.JobRoleID `json:"job_role_id"`
	SubmissionStatus SubmissionStatus `json:"submission_status"`
	Quantity         int              `json:"quantity"`
	AcceptedPrimary  int              `json:"accepted_primary"`
	NeedsMoreLabour  bool             `json:"needs_more_labour"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("ASSIGNMENT")

var (
	CodeNotFound        = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Asignación no encontrada")
	CodeInvalidStatus   = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation, http.StatusBadRequest, "Estado de decisión inválido: solo se permite ACCEPTED o REJECTED")
	CodeMissingFeedback = ErrRegistry.Register("MISSING_FEEDBACK", errx.TypeValidation, http.StatusBadRequest, "El rechazo requiere feedback")
	CodeForbidden       = ErrRegistry.Register("FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "El actor no tiene permiso para esta decisión")
	CodeConflict        = ErrRegistry.Register("CONFLICT", errx.TypeConflict, http.StatusConflict, "Conflicto de transacción: reintente la operación completa")
)

func ErrNotFound() *errx.Error {
	return ErrRegistry.New(CodeNotFound)
}

func ErrInvalidStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatus)
}

func ErrMissingFeedback() *errx.Error {
	return ErrRegistry.New(CodeMissingFeedback)
}

func ErrForbidden() *errx.Error {
	return ErrRegistry.New(CodeForbidden)
}

func ErrConflict() *errx.Error {
	return ErrRegistry.New(CodeConflict)
}
