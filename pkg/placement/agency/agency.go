package agency

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/workforce/pkg/errx"
	"github.com/Abraxas-365/workforce/pkg/kernel"
)

// ============================================================================
// Agency Entity
// ============================================================================

// Agency es la agencia de reclutamiento que presenta candidatos
type Agency struct {
	ID          kernel.AgencyID `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	OwnerUserID kernel.UserID   `db:"owner_user_id" json:"owner_user_id"`
	Email       string          `db:"email" json:"email"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AGENCY")

var (
	CodeAgencyNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Agencia no encontrada")
)

func ErrAgencyNotFound() *errx.Error {
	return ErrRegistry.New(CodeAgencyNotFound)
}
