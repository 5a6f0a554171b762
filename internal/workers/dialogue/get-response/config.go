// internal/workers/dialogue/get-response/config.go
package getresponse

import (
	"time"

	"support-bot/internal/common/config"
)

type Config struct {
	Timeout          time.Duration
	MaxMessageLength int
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:          config.GetDuration(wc.Timeout),
		MaxMessageLength: defaultMaxMessageLength,
	}
}
