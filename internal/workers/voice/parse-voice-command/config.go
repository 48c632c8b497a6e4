package parsevoicecommand

import "time"

type Config struct {
	Timeout time.Duration
	// Now overrides the clock used for relative time ranges. Nil means time.Now.
	Now func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
