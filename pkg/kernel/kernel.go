package kernel

import (
	"slices"

	"github.com/google/uuid"
)

// ============================================================================
// Typed IDs
// ============================================================================

type (
	// UserID identifica a un usuario de la plataforma (admin, cliente o agencia)
	UserID string

	// AgencyID identifica a una agencia de reclutamiento
	AgencyID string

	// ClientID identifica a una empresa cliente
	ClientID string

	// ProfileID identifica a un perfil de trabajador
	ProfileID string

	// JobRoleID identifica una línea de demanda dentro de un requerimiento
	JobRoleID string

	// RequirementID identifica un requerimiento de un cliente
	RequirementID string

	// AssignmentID identifica el vínculo perfil-puesto
	AssignmentID string
)

func (id UserID) String() string        { return string(id) }
func (id AgencyID) String() string      { return string(id) }
func (id ClientID) String() string      { return string(id) }
func (id ProfileID) String() string     { return string(id) }
func (id JobRoleID) String() string     { return string(id) }
func (id RequirementID) String() string { return string(id) }
func (id AssignmentID) String() string  { return string(id) }

func NewUserID() UserID               { return UserID(uuid.NewString()) }
func NewAgencyID() AgencyID           { return AgencyID(uuid.NewString()) }
func NewClientID() ClientID           { return ClientID(uuid.NewString()) }
func NewProfileID() ProfileID         { return ProfileID(uuid.NewString()) }
func NewJobRoleID() JobRoleID         { return JobRoleID(uuid.NewString()) }
func NewRequirementID() RequirementID { return RequirementID(uuid.NewString()) }
func NewAssignmentID() AssignmentID   { return AssignmentID(uuid.NewString()) }

// ============================================================================
// Roles
// ============================================================================

// Role es el rol del actor autenticado, provisto por el colaborador de auth
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
	RoleAgency Role = "agency"
)

// ============================================================================
// Auth Context
// ============================================================================

// AuthContext es la identidad autenticada que viaja con cada request
type AuthContext struct {
	UserID *UserID
	Role   Role
	Email  string
	Name   string
	Scopes []string
}

// HasScope verifica si el contexto incluye el scope dado
func (a *AuthContext) HasScope(scope string) bool {
	for _, s := range a.Scopes {
		if s == scope || s == "*" {
			return true
		}
	}
	return false
}

// HasAnyScope verifica si el contexto incluye alguno de los scopes
func (a *AuthContext) HasAnyScope(scopes ...string) bool {
	return slices.ContainsFunc(scopes, a.HasScope)
}

// IsAdmin reporta si el actor es administrador de plataforma
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}
