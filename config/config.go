package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

type WebServerConfig struct {
	Port            string `mapstructure:"port"`
	IP              string `mapstructure:"ip"`
	Scheme          string `mapstructure:"scheme"`
	BaseURL         string `mapstructure:"base_url"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Address          string `mapstructure:"address"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	PoolSize         int    `mapstructure:"pool_size"`
	MinIdleConns     int    `mapstructure:"min_idle_conns"`
	OperationTimeout int    `mapstructure:"operation_timeout"`
}

// ChainConfig points the service at the deployed UserDataContract.
// ContractAddress and ProjectID have no defaults: the service refuses
// to start without them.
type ChainConfig struct {
	GatewayURL      string `mapstructure:"gateway_url"`
	ContractAddress string `mapstructure:"contract_address"`
	ProjectID       string `mapstructure:"project_id"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
}

// AnalyticsConfig controls the event log and dashboard refresh cadence.
type AnalyticsConfig struct {
	StorageKey     string `mapstructure:"storage_key"`
	Capacity       int    `mapstructure:"capacity"`
	RefreshSeconds int    `mapstructure:"refresh_seconds"`
}

type CacheConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxSizeMB   int  `mapstructure:"max_size_mb"`
	TTLSeconds  int  `mapstructure:"ttl_seconds"`
	CounterSize int  `mapstructure:"counter_size"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type Config struct {
	WebServer WebServerConfig `mapstructure:"webserver"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

var (
	ErrMissingContractAddress = errors.New("chain.contract_address is required")
	ErrMissingProjectID       = errors.New("chain.project_id is required")
)

func LoadConfig() (Config, error) {
	var config Config

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Enable environment variable overrides (LINKTREE_CHAIN.CONTRACT_ADDRESS etc.)
	viper.SetEnvPrefix("LINKTREE")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Error reading config file: %v", err)
		return config, err
	}

	if err := viper.Unmarshal(&config); err != nil {
		log.Printf("Unable to decode into struct: %v", err)
		return config, err
	}

	if err := Validate(config); err != nil {
		return config, err
	}

	return config, nil
}

func MustLoadConfig() Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return config
}

// Validate rejects configurations the service must not run with.
// Operating without a contract address or wallet project id would mean
// reading an undefined target, so both are startup-time fatal.
func Validate(cfg Config) error {
	if cfg.Chain.ContractAddress == "" {
		return ErrMissingContractAddress
	}
	if cfg.Chain.ProjectID == "" {
		return ErrMissingProjectID
	}
	if cfg.Analytics.Capacity <= 0 {
		return fmt.Errorf("analytics.capacity must be positive, got %d", cfg.Analytics.Capacity)
	}
	return nil
}

func setDefaults() {
	// WebServer defaults
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.ip", "127.0.0.1")
	viper.SetDefault("webserver.scheme", "http")
	viper.SetDefault("webserver.base_url", "")
	viper.SetDefault("webserver.read_timeout", 15)
	viper.SetDefault("webserver.write_timeout", 15)
	viper.SetDefault("webserver.shutdown_timeout", 30)

	// Redis defaults
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 5)
	viper.SetDefault("redis.operation_timeout", 5)

	// Chain defaults (contract_address and project_id have none on purpose)
	viper.SetDefault("chain.gateway_url", "http://localhost:8545")
	viper.SetDefault("chain.request_timeout", 10)

	// Analytics defaults
	viper.SetDefault("analytics.storage_key", "analytics:events")
	viper.SetDefault("analytics.capacity", 5000)
	viper.SetDefault("analytics.refresh_seconds", 5)

	// Cache defaults
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size_mb", 50)
	viper.SetDefault("cache.ttl_seconds", 60)
	viper.SetDefault("cache.counter_size", 100000)

	// RateLimit defaults
	viper.SetDefault("ratelimit.requests_per_second", 10.0)
	viper.SetDefault("ratelimit.burst", 20)
}
