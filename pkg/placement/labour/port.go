package labour

import (
	"context"

	"github.com/Abraxas-365/workforce/pkg/kernel"
)

// ProfileRepository define el contrato de persistencia de perfiles
type ProfileRepository interface {
	FindByID(ctx context.Context, id kernel.ProfileID) (*Profile, error)
	FindByAgency(ctx context.Context, agencyID kernel.AgencyID) ([]*Profile, error)
	Save(ctx context.Context, p Profile) error
}
