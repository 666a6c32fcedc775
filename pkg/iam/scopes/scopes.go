package scopes

// ============================================================================
// Platform Scopes
// ============================================================================

const (
	// Super scope - full access to everything
	ScopeAll = "*"

	// Admin scopes
	ScopeAdminAll = "admin:*"

	// Assignment scopes
	ScopeAssignmentsAll    = "assignments:*"
	ScopeAssignmentsRead   = "assignments:read"
	ScopeAssignmentsDecide = "assignments:decide"

	// Requirement scopes
	ScopeRequirementsAll  = "requirements:*"
	ScopeRequirementsRead = "requirements:read"

	// Labour profile scopes
	ScopeLabourAll  = "labour:*"
	ScopeLabourRead = "labour:read"
)

// ScopeGroups son las plantillas de scopes por rol de plataforma
var ScopeGroups = map[string][]string{
	"admin": {
		ScopeAdminAll,
	},
	"client": {
		ScopeAssignmentsRead,
		ScopeRequirementsRead,
	},
	"agency": {
		ScopeAssignmentsRead,
		ScopeRequirementsRead,
		ScopeLabourRead,
	},
}

// GetScopesByGroup retorna los scopes de una plantilla
func GetScopesByGroup(group string) []string {
	return ScopeGroups[group]
}
