package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"production"`
	Logging     struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token" validate:"required"`
	} `yaml:"telegram"`
	API struct {
		URL         string        `yaml:"url" default:"https://sectormap.dpdns.org/api/sheets"`
		Key         string        `yaml:"key"`
		Timeout     time.Duration `yaml:"timeout" default:"30s"`
		SideTimeout time.Duration `yaml:"side_timeout" default:"10s"`
	} `yaml:"api"`
	AI struct {
		URL     string        `yaml:"url" default:"https://sectormap.dpdns.org/api/ai"`
		Enabled bool          `yaml:"enabled" default:"true"`
		Timeout time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"ai"`
	Alerts struct {
		TokenSurgePct       float64 `yaml:"token_surge_pct" default:"15"`
		TokenDumpPct        float64 `yaml:"token_dump_pct" default:"-15"`
		BreakoutFlatMax     float64 `yaml:"breakout_flat_max" default:"5"`
		BreakoutSurgeMin    float64 `yaml:"breakout_surge_min" default:"8"`
		Rotation7dThreshold float64 `yaml:"rotation_7d_threshold" default:"3"`
		Rotation24hThresh   float64 `yaml:"rotation_24h_threshold" default:"2"`
		AlphaMinPct         float64 `yaml:"alpha_min_pct" default:"10"`
		SectorDiffPct       float64 `yaml:"sector_diff_pct" default:"5"`
	} `yaml:"alerts"`
	Timing struct {
		CheckInterval   time.Duration `yaml:"check_interval" default:"300s"`
		DailyReportHour int           `yaml:"daily_report_hour" default:"9" validate:"gte=0,lte=23"`
		WeeklyReportDay int           `yaml:"weekly_report_day" default:"1" validate:"gte=0,lte=6"` // time.Weekday: 1 = Monday
		SendDelay       time.Duration `yaml:"send_delay" default:"1s"`
	} `yaml:"timing"`
	Filters struct {
		MinMcapUSD    float64  `yaml:"min_mcap_usd" default:"50000000"`
		IgnoreTokens  []string `yaml:"ignore_tokens"`
		IgnoreSectors []string `yaml:"ignore_sectors"`
	} `yaml:"filters"`
	Dedup struct {
		Window     time.Duration `yaml:"window" default:"1h"`
		Retention  time.Duration `yaml:"retention" default:"2h"`
		MaxEntries int           `yaml:"max_entries" default:"500"`
	} `yaml:"dedup"`
	State struct {
		Backend string `yaml:"backend" default:"file" validate:"oneof=file redis"`
		File    string `yaml:"file" default:"state.json"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key" default:"sectorpulse:state"`
		} `yaml:"redis"`
	} `yaml:"state"`
	Users struct {
		File string `yaml:"file" default:"users.json"`
	} `yaml:"users"`
	History struct {
		Backend string        `yaml:"backend" default:"http" validate:"oneof=http kafka clickhouse none"`
		URL     string        `yaml:"url" default:"https://sectormap.dpdns.org/api/signals"`
		Key     string        `yaml:"key"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
		Kafka   struct {
			Brokers []string `yaml:"brokers"`
			Topic   string   `yaml:"topic" default:"sectorpulse.signals"`
		} `yaml:"kafka"`
		ClickHouse struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port" default:"9000"`
			Database string `yaml:"database" default:"sectorpulse"`
			User     string `yaml:"user" default:"default"`
			Password string `yaml:"password"`
			Table    string `yaml:"table" default:"sectorpulse.signals"`
		} `yaml:"clickhouse"`
	} `yaml:"history"`
}

// Load reads, defaults, parses and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides secrets from environment.
func LoadWithEnv(path string) (*Config, error) {
	var c *Config
	var err error

	if _, statErr := os.Stat(path); statErr == nil {
		c, err = loadLenient(path)
		if err != nil {
			return nil, err
		}
	} else {
		c = &Config{}
		if err := defaults.Set(c); err != nil {
			return nil, fmt.Errorf("apply defaults: %w", err)
		}
	}

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("SIGNALS_API_KEY"); v != "" {
		c.History.Key = v
	}
	if v := os.Getenv("IGNORE_TOKENS"); v != "" {
		c.Filters.IgnoreTokens = strings.Split(v, ",")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// loadLenient parses without validating, so env overrides can still satisfy
// required fields afterwards.
func loadLenient(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Validate checks the configuration. Delivery credentials are the only
// fields fatal when missing; every threshold falls back to its default.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, fmt.Sprintf("%s (%s)", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return err
	}
	if c.Timing.CheckInterval <= 0 {
		return fmt.Errorf("timing.check_interval must be positive")
	}
	return nil
}
