package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Handshake struct {
	Secret      string   `mapstructure:"secret"`
	Module      string   `mapstructure:"module"`
	Phase       int      `mapstructure:"phase"`
	Mode        string   `mapstructure:"mode"`
	HeaderCheck bool     `mapstructure:"header_check"`
	BypassPaths []string `mapstructure:"bypass_paths"`
}

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	Secret       string        `mapstructure:"secret"`
	Backpressure string        `mapstructure:"backpressure"`
	Handshake    Handshake     `mapstructure:"handshake"`
}

// Load reads file, or config/config.<CONFIG_ENV>.yaml when file is empty.
// A missing file is not an error; defaults apply. Flags that were set win
// over the file and the environment; dashes in flag names map to
// underscores in keys.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if file == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		file = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(file)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 7788)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("secret", "")
	v.SetDefault("backpressure", "skip")
	v.SetDefault("handshake.secret", "55-45-17")
	v.SetDefault("handshake.module", "n3x-rtc")
	v.SetDefault("handshake.phase", 10)
	v.SetDefault("handshake.mode", "PROOF_ONLY")
	v.SetDefault("handshake.header_check", true)
	v.SetDefault("handshake.bypass_paths", []string{"/health", "/ping", "/status"})

	v.SetEnvPrefix("N3X")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("handshake.secret", "N3X_HANDSHAKE_SECRET", "N3XUS_HANDSHAKE"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", file).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", file).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if extra := os.Getenv("N3XUS_BYPASS_PATHS"); extra != "" {
		for _, p := range strings.Split(extra, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Handshake.BypassPaths = append(cfg.Handshake.BypassPaths, p)
			}
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("backpressure", cfg.Backpressure).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send_buffer must be positive, got %d", c.SendBuffer)
	}
	if c.PingPeriod <= 0 {
		return fmt.Errorf("ping_period must be positive, got %s", c.PingPeriod)
	}
	if c.Handshake.Secret == "" {
		return fmt.Errorf("handshake.secret is empty")
	}
	return nil
}
