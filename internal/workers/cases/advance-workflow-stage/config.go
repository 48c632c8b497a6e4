package advanceworkflowstage

import "time"

type Config struct {
	Timeout   time.Duration
	CaseIndex string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   15 * time.Second,
		CaseIndex: "cases",
	}
}
