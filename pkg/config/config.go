// Package config loads SDK settings from a config file and environment
// variables. Everything here is optional: the SDK's constructors take the
// same values directly, config just centralizes them for applications that
// want file or env driven wiring.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/GoPolymarket/polymarket-go-sdk/internal/logger"
)

type Config struct {
	CLOB       CLOBConfig       `mapstructure:"clob"`
	Data       DataConfig       `mapstructure:"data"`
	Stream     StreamConfig     `mapstructure:"stream"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Chain      ChainConfig      `mapstructure:"chain"`
	Credential CredentialConfig `mapstructure:"credential"`
	Builder    BuilderConfig    `mapstructure:"builder"`
}

type CLOBConfig struct {
	Host                     string `mapstructure:"host"`
	UseServerTime            bool   `mapstructure:"use_server_time"`
	HeartbeatIntervalSeconds int    `mapstructure:"heartbeat_interval_seconds"`
}

func (c CLOBConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalSeconds) * time.Second
}

type DataConfig struct {
	Host string `mapstructure:"host"`
}

type StreamConfig struct {
	MarketURL string `mapstructure:"market_url"`
	UserURL   string `mapstructure:"user_url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ChainConfig struct {
	ID int64 `mapstructure:"id"`
}

// CredentialConfig carries the user's L1 key and optional pre-minted L2
// credentials.
type CredentialConfig struct {
	PrivateKey    string `mapstructure:"private_key"`
	ApiKey        string `mapstructure:"api_key"`
	ApiSecret     string `mapstructure:"api_secret"`
	ApiPassphrase string `mapstructure:"api_passphrase"`
}

// BuilderConfig carries builder attribution credentials.
type BuilderConfig struct {
	ApiKey        string `mapstructure:"api_key"`
	ApiSecret     string `mapstructure:"api_secret"`
	ApiPassphrase string `mapstructure:"api_passphrase"`
}

// Load reads config.yaml from the working directory or ./configs, layered
// under environment variables prefixed POLYMARKET
// (e.g. POLYMARKET_CREDENTIAL_API_KEY).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("polymarket")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("clob.host", "https://clob.polymarket.com")
	v.SetDefault("clob.use_server_time", false)
	v.SetDefault("clob.heartbeat_interval_seconds", 5)
	v.SetDefault("data.host", "https://data-api.polymarket.com")
	v.SetDefault("stream.market_url", "wss://ws-subscriptions-clob.polymarket.com/ws/market")
	v.SetDefault("stream.user_url", "wss://ws-subscriptions-clob.polymarket.com/ws/user")
	v.SetDefault("chain.id", 137)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Info("no config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
