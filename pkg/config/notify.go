// pkg/config/notify.go
package config

import "time"

type NotifyConfig struct {
	OutboxKey   string
	PollTimeout time.Duration
}

func loadNotifyConfig() NotifyConfig {
	return NotifyConfig{
		OutboxKey:   getEnv("NOTIFY_OUTBOX_KEY", "notify:outbox"),
		PollTimeout: getEnvDuration("NOTIFY_POLL_TIMEOUT", 5*time.Second),
	}
}
