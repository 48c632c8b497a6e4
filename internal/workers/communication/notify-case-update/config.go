package notifycaseupdate

import (
	"time"

	"crime-case-workers/internal/models"
)

type Config struct {
	EmailEnabled         bool
	SMSEnabled           bool
	FromEmail            string
	SMSSeverityThreshold models.Severity
	Timeout              time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled:         true,
		SMSEnabled:           true,
		SMSSeverityThreshold: models.SeverityHigh,
		Timeout:              30 * time.Second,
	}
}
