package notify

import (
	"context"
	"time"

	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/google/uuid"
)

// ============================================================================
// Notification Entity
// ============================================================================

// Priority define la urgencia de una notificación
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// Notification es el mensaje dirigido a un usuario de la plataforma. La
// entrega es best-effort: nunca condiciona la transacción que la originó.
type Notification struct {
	ID          string        `json:"id"`
	RecipientID kernel.UserID `json:"recipient_id"`
	Email       string        `json:"email,omitempty"`
	Title       string        `json:"title"`
	Message     string        `json:"message"`
	Priority    Priority      `json:"priority"`
	ActionURL   string        `json:"action_url,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// New construye una notificación lista para encolar
func New(recipientID kernel.UserID, email, title, message string, priority Priority, actionURL string) Notification {
	return Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Email:       email,
		Title:       title,
		Message:     message,
		Priority:    priority,
		ActionURL:   actionURL,
		CreatedAt:   time.Now(),
	}
}

// ============================================================================
// Ports
// ============================================================================

// Outbox recibe las notificaciones que quedaron pendientes durante una
// transacción. Publish se invoca después del commit; un fallo se registra en
// logs y no se propaga al llamador de la operación.
type Outbox interface {
	Publish(ctx context.Context, notifications []Notification) error
}

// Sender entrega una notificación dentro de la plataforma
type Sender interface {
	Notify(ctx context.Context, n Notification) error
}

// Mailer entrega el correo que acompaña a una notificación
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
