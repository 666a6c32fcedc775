package notifyinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/workforce/pkg/notify"
	"github.com/redis/go-redis/v9"
)

// RedisOutbox implementación en Redis del buzón de salida de notificaciones.
// Las notificaciones confirmadas se encolan en una lista; el dispatcher las
// drena en background.
type RedisOutbox struct {
	client *redis.Client
	key    string
}

// NewRedisOutbox crea un nuevo outbox sobre Redis
func NewRedisOutbox(client *redis.Client, key string) *RedisOutbox {
	return &RedisOutbox{
		client: client,
		key:    key,
	}
}

// Publish encola las notificaciones para entrega asíncrona
func (o *RedisOutbox) Publish(ctx context.Context, notifications []notify.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	payloads := make([]any, 0, len(notifications))
	for _, n := range notifications {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("failed to marshal notification: %w", err)
		}
		payloads = append(payloads, data)
	}

	if err := o.client.LPush(ctx, o.key, payloads...).Err(); err != nil {
		return fmt.Errorf("failed to push notifications to outbox: %w", err)
	}
	return nil
}

// Pop extrae la notificación más antigua de la cola, bloqueando hasta timeout.
// Retorna nil sin error cuando el timeout vence con la cola vacía.
func (o *RedisOutbox) Pop(ctx context.Context, timeout time.Duration) (*notify.Notification, error) {
	res, err := o.client.BRPop(ctx, timeout, o.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop notification from outbox: %w", err)
	}

	// BRPop retorna [key, value]
	var n notify.Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return &n, nil
}
