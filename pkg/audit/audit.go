package audit

import (
	"context"
	"time"

	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/google/uuid"
)

// ============================================================================
// Audit Entry Entity
// ============================================================================

// Action identifica la operación auditada
type Action string

const (
	ActionAssignmentDecision     Action = "ASSIGNMENT_DECISION"
	ActionAssignmentBulkDecision Action = "ASSIGNMENT_BULK_DECISION"
)

// Entry es un registro de auditoría: quién hizo qué sobre qué entidad, con el
// estado anterior y el nuevo. Ninguna decisión se acepta sin su entrada.
type Entry struct {
	ID         string         `db:"id" json:"id"`
	Action     Action         `db:"action" json:"action"`
	EntityType string         `db:"entity_type" json:"entity_type"`
	EntityID   string         `db:"entity_id" json:"entity_id"`
	ActorID    kernel.UserID  `db:"actor_id" json:"actor_id"`
	OldData    map[string]any `db:"-" json:"old_data,omitempty"`
	NewData    map[string]any `db:"-" json:"new_data,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// NewEntry construye una entrada de auditoría lista para persistir
func NewEntry(action Action, entityType, entityID string, actorID kernel.UserID, oldData, newData map[string]any) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		OldData:    oldData,
		NewData:    newData,
		CreatedAt:  time.Now(),
	}
}

// ============================================================================
// Port
// ============================================================================

// Repository define el contrato de persistencia del registro de auditoría.
// Record participa de la misma transacción que el cambio de estado que audita.
type Repository interface {
	Record(ctx context.Context, e Entry) error
}
