package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tradequest/tradequest/internal/core"
)

// Config is the root configuration structure
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Backtest   BacktestConfig   `mapstructure:"backtest"`
	MarketData MarketDataConfig `mapstructure:"marketdata"`
	Storage    StorageConfig    `mapstructure:"storage"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host" default:"0.0.0.0"`
	Port        int    `mapstructure:"port" default:"8080"`
	APIKey      string `mapstructure:"api_key"`
	JobTTLHours int    `mapstructure:"job_ttl_hours" default:"24"`
	MaxJobs     int    `mapstructure:"max_jobs" default:"1000"`
}

// JobTTL returns how long finished jobs are retained
func (s ServerConfig) JobTTL() time.Duration {
	return time.Duration(s.JobTTLHours) * time.Hour
}

type BacktestConfig struct {
	InitialCapital float64       `mapstructure:"initial_capital" default:"10000"`
	CommissionRate float64       `mapstructure:"commission_rate" default:"0.001"`
	Slippage       float64       `mapstructure:"slippage" default:"0.0005"`
	MinBars        int           `mapstructure:"min_bars" default:"50"`
	Timeout        time.Duration `mapstructure:"timeout" default:"2m"`
}

type MarketDataConfig struct {
	Sources      SourcesConfig      `mapstructure:"sources"`
	AlphaVantage AlphaVantageConfig `mapstructure:"alpha_vantage"`
	CoinGecko    CoinGeckoConfig    `mapstructure:"coingecko"`
	Binance      BinanceConfig      `mapstructure:"binance"`
	Cache        CacheConfig        `mapstructure:"cache"`
}

// SourcesConfig lists source names in the order they are tried
type SourcesConfig struct {
	Stock  []string `mapstructure:"stock" default:"[\"yahoo\",\"alphavantage\"]"`
	Crypto []string `mapstructure:"crypto" default:"[\"binance\",\"coingecko\"]"`
}

type AlphaVantageConfig struct {
	APIKey            string `mapstructure:"api_key"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" default:"5"`
}

type CoinGeckoConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type BinanceConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type CacheConfig struct {
	Type  string        `mapstructure:"type" default:"memory"` // memory, redis, none
	TTL   time.Duration `mapstructure:"ttl" default:"1h"`
	Redis RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" default:"localhost:6379"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix" default:"tradequest"`
}

type StorageConfig struct {
	Archive ArchiveConfig `mapstructure:"archive"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // localfs, s3; empty disables archiving
	Path string   `mapstructure:"path" default:"./data/archive"`
	S3   S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region" default:"us-east-1"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"` // claude, openai; empty disables insight
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model" default:"claude-sonnet-4-20250514"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model" default:"gpt-4o"`
	BaseURL string `mapstructure:"base_url"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" default:"true"`
	Path    string `mapstructure:"path" default:"/metrics"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" default:"info"`
	Development bool   `mapstructure:"development"`
}

// LoadDotEnv loads a .env file into the process environment if one exists
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from file on top of Defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	// ZeroFields keeps a configured source list from inheriting default entries
	cfg := Defaults()
	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) { dc.ZeroFields = true }); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config populated from the struct default tags
func Defaults() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.JobTTLHours < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("job_ttl_hours cannot be negative, got %d", c.Server.JobTTLHours))
	}
	if c.Server.MaxJobs < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_jobs cannot be negative, got %d", c.Server.MaxJobs))
	}

	// Backtest validation
	if c.Backtest.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %f", c.Backtest.InitialCapital))
	}
	if c.Backtest.CommissionRate < 0 || c.Backtest.CommissionRate >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission_rate must be in [0, 1), got %f", c.Backtest.CommissionRate))
	}
	if c.Backtest.Slippage < 0 || c.Backtest.Slippage >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("slippage must be in [0, 1), got %f", c.Backtest.Slippage))
	}
	if c.Backtest.MinBars < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_bars must be at least 1, got %d", c.Backtest.MinBars))
	}

	// Market data validation
	for _, name := range c.MarketData.Sources.Stock {
		if name != "yahoo" && name != "alphavantage" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown stock source %q", name))
		}
	}
	for _, name := range c.MarketData.Sources.Crypto {
		if name != "binance" && name != "coingecko" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown crypto source %q", name))
		}
	}
	switch c.MarketData.Cache.Type {
	case "", "none", "memory":
	case "redis":
		if c.MarketData.Cache.Redis.Addr == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("redis addr required when cache type is redis"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cache type %q", c.MarketData.Cache.Type))
	}

	// Archive validation
	switch c.Storage.Archive.Type {
	case "":
	case "localfs":
		if c.Storage.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive path required when archive type is localfs"))
		}
	case "s3":
		if c.Storage.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Storage.Archive.Type))
	}

	// LLM validation - if provider set, check config exists
	switch c.LLM.Provider {
	case "":
	case "claude":
		if c.LLM.Claude.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("claude api_key required when provider is claude"))
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("openai api_key required when provider is openai"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	return nil
}
