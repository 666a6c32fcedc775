package labour

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/workforce/pkg/errx"
	"github.com/Abraxas-365/workforce/pkg/kernel"
)

// ============================================================================
// Labour Profile Entity
// ============================================================================

// ProfileStatus define el ciclo de vida de un perfil de trabajador
type ProfileStatus string

const (
	ProfileStatusUnderReview ProfileStatus = "UNDER_REVIEW"
	ProfileStatusShortlisted ProfileStatus = "SHORTLISTED"
	ProfileStatusApproved    ProfileStatus = "APPROVED"
	ProfileStatusRejected    ProfileStatus = "REJECTED"
	ProfileStatusDeployed    ProfileStatus = "DEPLOYED"
)

// Profile es la entidad que representa a un candidato individual
type Profile struct {
	ID       kernel.ProfileID `db:"id" json:"id"`
	FullName string           `db:"full_name" json:"full_name"`
	AgencyID kernel.AgencyID  `db:"agency_id" json:"agency_id"`
	Status   ProfileStatus    `db:"status" json:"status"`

	// CurrentRequirementID es la referencia inversa al requerimiento al que el
	// perfil está asignado actualmente. Solo el orquestador de aprobaciones la
	// escribe, como efecto de cambios de estado de asignación.
	CurrentRequirementID *kernel.RequirementID `db:"current_requirement_id" json:"current_requirement_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// Shortlist marca el perfil como preseleccionado para un requerimiento
func (p *Profile) Shortlist(requirementID kernel.RequirementID) {
	p.Status = ProfileStatusShortlisted
	p.CurrentRequirementID = &requirementID
	p.UpdatedAt = time.Now()
}

// Reject rechaza el perfil y limpia la referencia al requerimiento
func (p *Profile) Reject() {
	p.Status = ProfileStatusRejected
	p.CurrentRequirementID = nil
	p.UpdatedAt = time.Now()
}

// ReturnToReview devuelve el perfil a revisión para que la agencia reenvíe
func (p *Profile) ReturnToReview() {
	p.Status = ProfileStatusUnderReview
	p.UpdatedAt = time.Now()
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("LABOUR")

var (
	CodeProfileNotFound = ErrRegistry.Register("PROFILE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Perfil de trabajador no encontrado")
)

func ErrProfileNotFound() *errx.Error {
	return ErrRegistry.New(CodeProfileNotFound)
}
