package matchcases

import "time"

type Config struct {
	GenAIBaseURL string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	CacheTTL     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		CacheTTL:   15 * time.Minute,
	}
}
