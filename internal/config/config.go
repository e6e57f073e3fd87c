package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	PipelineURL      string `env:"SIGNTRACK_PIPELINE_URL,required=true"`
	AuthToken        string `env:"SIGNTRACK_AUTH_TOKEN"`
	JournalPath      string `env:"SIGNTRACK_JOURNAL_PATH,default=signtrack.db"`
	ListenAddr       string `env:"SIGNTRACK_LISTEN_ADDR,default=127.0.0.1:8745"`
	RefreshPerMinute int    `env:"SIGNTRACK_REFRESH_PER_MINUTE,default=12"`
	RefreshBurst     int    `env:"SIGNTRACK_REFRESH_BURST,default=3"`
	LogLevel         string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
