package agency

import (
	"context"

	"github.com/Abraxas-365/workforce/pkg/kernel"
)

// AgencyRepository define el contrato de persistencia de agencias
type AgencyRepository interface {
	FindByID(ctx context.Context, id kernel.AgencyID) (*Agency, error)
}
