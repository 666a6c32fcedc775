package assignment

import (
	"context"

	"github.com/Abraxas-365/workforce/pkg/audit"
	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/Abraxas-365/workforce/pkg/placement/agency"
	"github.com/Abraxas-365/workforce/pkg/placement/labour"
	"github.com/Abraxas-365/workforce/pkg/placement/requirement"
)

// ============================================================================
// Ports
// ============================================================================

// AssignmentRepository define el contrato de persistencia de asignaciones.
// Los tres estados, el feedback y la marca de respaldo se actualizan siempre
// juntos a través de Save, nunca campo por campo.
type AssignmentRepository interface {
	Create(ctx context.Context, a Assignment) error
	FindByID(ctx context.Context, id kernel.AssignmentID) (*Assignment, error)
	FindByIDs(ctx context.Context, ids []kernel.AssignmentID) ([]*Assignment, error)
	FindByJobRole(ctx context.Context, jobRoleID kernel.JobRoleID) ([]*Assignment, error)
	FindByAgency(ctx context.Context, agencyID kernel.AgencyID) ([]*Assignment, error)
	Save(ctx context.Context, a Assignment) error
}

// Tx agrupa los repositorios que participan en una misma transacción de
// decisión. Toda escritura del orquestador pasa por una instancia de Tx.
type Tx interface {
	Assignments() AssignmentRepository
	JobRoles() requirement.JobRoleRepository
	Requirements() requirement.RequirementRepository
	Profiles() labour.ProfileRepository
	Agencies() agency.AgencyRepository
	Audit() audit.Repository
}

// Store es la unidad de trabajo transaccional del motor de aprobaciones. La
// implementación debe garantizar aislamiento serializable sobre las filas
// tocadas: o la función completa confirma, o nada de lo que hizo es visible.
type Store interface {
	Transact(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
