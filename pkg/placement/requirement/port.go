package requirement

import (
	"context"

	"github.com/Abraxas-365/workforce/pkg/kernel"
)

// RequirementRepository define el contrato de persistencia de requerimientos
type RequirementRepository interface {
	FindByID(ctx context.Context, id kernel.RequirementID) (*Requirement, error)
	Save(ctx context.Context, r Requirement) error
}

// JobRoleRepository define el contrato de persistencia de puestos
type JobRoleRepository interface {
	FindByID(ctx context.Context, id kernel.JobRoleID) (*JobRole, error)
	FindByRequirement(ctx context.Context, requirementID kernel.RequirementID) ([]*JobRole, error)
	Save(ctx context.Context, jr JobRole) error
}
