package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		TelegramAPIToken string `env:"TOKEN,required"`
		TelegramAPIHost  string `env:"API_HOST,default=api.telegram.org"`
		DefaultLanguage  string `env:"LANG,default=en"`
		LogLevel         int    `env:"LOG_LEVEL,default=2"`
		DotPath          string `env:"DOT_PATH,default=~/.tgward"`
		MetricsAddr      string `env:"METRICS_ADDR,default=:9090"`

		PollInterval time.Duration `env:"POLL_INTERVAL,default=1s"`

		SpamFilter SpamFilter
	}

	SpamFilter struct {
		Interval        time.Duration `env:"SPAM_INTERVAL,default=1s"`
		ExcomDuration   float64       `env:"SPAM_EXCOM_DURATION,default=2"`
		FirstThreshold  int           `env:"SPAM_FIRST_THRESHOLD,default=3"`
		SecondThreshold int           `env:"SPAM_SECOND_THRESHOLD,default=5"`
		ShouldWarn      bool          `env:"SPAM_SHOULD_WARN,default=true"`
		ShouldExcom     bool          `env:"SPAM_SHOULD_EXCOM,default=true"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("TGW_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			globalErr = fmt.Errorf("get user home directory: %w", err)
			return
		}
		cfg.DotPath = strings.Replace(cfg.DotPath, "~", home, 1)
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
