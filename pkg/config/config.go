package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type TickerConfig struct {
	ID         int64  `yaml:"id"`
	Symbol     string `yaml:"symbol" validate:"required"`
	Name       string `yaml:"name"`
	Exchange   string `yaml:"exchange" validate:"required"`
	MarketType string `yaml:"market_type" default:"stock" validate:"oneof=stock crypto"`
	QuoteAsset string `yaml:"quote_asset"`
	Active     *bool  `yaml:"active"`
}

type MarketHoursConfig struct {
	Timezone string `yaml:"timezone" validate:"required"`
	Open     string `yaml:"open" validate:"required"`
	Close    string `yaml:"close" validate:"required"`
}

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Logging     struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr" default:":9090"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Backend struct {
		Type string `yaml:"type" default:"clickhouse" validate:"oneof=clickhouse kafka"`
	} `yaml:"backend"`
	Generator struct {
		Mode                   string        `yaml:"mode" default:"confirmed-buy" validate:"oneof=confirmed-buy all"`
		Workers                int           `yaml:"workers" default:"8" validate:"gte=1"`
		RetentionDays          int           `yaml:"retention_days" default:"10" validate:"gte=1"`
		LookbackCandles        int           `yaml:"lookback_candles" default:"100" validate:"gte=50"`
		Timeframe              string        `yaml:"timeframe" default:"1d"`
		RunInterval            time.Duration `yaml:"run_interval"` // 0 = single pass
		AllowUnconfirmedVolume bool          `yaml:"allow_unconfirmed_volume"`
	} `yaml:"generator"`
	// Markets overrides the built-in exchange session table when non-empty.
	Markets map[string]MarketHoursConfig `yaml:"markets" validate:"omitempty,dive"`
	Tickers []TickerConfig               `yaml:"tickers" validate:"required,min=1,dive"`
	Kafka   struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"signals"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"signalforge"`
		Table            string        `yaml:"table" default:"signals"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Binance struct {
		BaseURL      string        `yaml:"base_url" default:"https://api.binance.com"`
		Timeout      time.Duration `yaml:"timeout" default:"10s"`
		CacheTTL     time.Duration `yaml:"cache_ttl" default:"5m"`
		RateCapacity float64       `yaml:"rate_capacity" default:"20"`
		RatePerSec   float64       `yaml:"rate_per_sec" default:"15"`
	} `yaml:"binance"`
	Finnhub struct {
		APIKey       string        `yaml:"api_key"`
		BaseURL      string        `yaml:"base_url" default:"https://finnhub.io/api/v1"`
		Timeout      time.Duration `yaml:"timeout" default:"10s"`
		CacheTTL     time.Duration `yaml:"cache_ttl" default:"5m"`
		RateCapacity float64       `yaml:"rate_capacity" default:"10"`
		RatePerSec   float64       `yaml:"rate_per_sec" default:"1"`
	} `yaml:"finnhub"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	// Override with environment variables
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required for the kafka backend")
	}
	for _, t := range c.Tickers {
		if t.MarketType == "stock" && c.Finnhub.APIKey == "" {
			return fmt.Errorf("finnhub.api_key required for stock ticker %s", t.Symbol)
		}
		if t.MarketType == "crypto" && t.QuoteAsset == "" {
			return fmt.Errorf("quote_asset required for crypto ticker %s", t.Symbol)
		}
	}
	return nil
}

// IsActive treats a missing active flag as enabled.
func (t TickerConfig) IsActive() bool {
	return t.Active == nil || *t.Active
}
