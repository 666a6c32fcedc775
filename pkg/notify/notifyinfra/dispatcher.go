package notifyinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/workforce/pkg/logx"
	"github.com/Abraxas-365/workforce/pkg/notify"
)

// Queue es la cara de consumo del outbox
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (*notify.Notification, error)
}

// Dispatcher drena el outbox en background y entrega cada notificación por el
// canal interno y por correo. La entrega es best-effort: un fallo se registra
// y el loop continúa con la siguiente.
type Dispatcher struct {
	outbox      Queue
	sender      notify.Sender
	mailer      notify.Mailer
	pollTimeout time.Duration
}

// NewDispatcher crea un nuevo dispatcher de notificaciones
func NewDispatcher(outbox Queue, sender notify.Sender, mailer notify.Mailer, pollTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		outbox:      outbox,
		sender:      sender,
		mailer:      mailer,
		pollTimeout: pollTimeout,
	}
}

// Start inicia el loop de entrega hasta que el contexto se cancele
func (d *Dispatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logx.Info("Notification dispatcher stopped")
			return
		default:
		}

		n, err := d.outbox.Pop(ctx, d.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.Errorf("Error polling notification outbox: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if n == nil {
			continue
		}

		d.deliver(ctx, *n)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n notify.Notification) {
	if err := d.sender.Notify(ctx, n); err != nil {
		logx.WithFields(logx.Fields{
			"notification_id": n.ID,
			"recipient_id":    n.RecipientID.String(),
		}).Errorf("Failed to deliver notification: %v", err)
	}

	if n.Email == "" {
		return
	}
	if err := d.mailer.Send(ctx, n.Email, n.Title, n.Message+"\n\n"+n.ActionURL); err != nil {
		logx.WithFields(logx.Fields{
			"notification_id": n.ID,
			"email":           n.Email,
		}).Errorf("Failed to deliver notification email: %v", err)
	}
}
