package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Solr           SolrConfig           `mapstructure:"solr"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Interactions   InteractionsConfig   `mapstructure:"interactions"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type SolrConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// Interaction log sources.
const (
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

// InteractionsConfig selects where the interaction log is read from.
// Source is "postgres" or "file".
type InteractionsConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

type RecommendationConfig struct {
	ContentWeight float64 `mapstructure:"content_weight"`
	CollabWeight  float64 `mapstructure:"collab_weight"`
	// UserBoost is the personalization boost weight. It is additive on top of
	// content and collaborative weights, so combined scores are not bounded
	// to [0, 1].
	UserBoost float64 `mapstructure:"user_boost"`
	// PoolMultiplier sizes each source's candidate pool relative to the
	// requested result count, leaving room for overlap and exclusions.
	PoolMultiplier  int           `mapstructure:"pool_multiplier"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RebuildInterval time.Duration `mapstructure:"rebuild_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	viper.SetDefault("redis.url", "localhost:6379")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	viper.SetDefault("solr.url", "http://localhost:8983/solr/products")
	viper.SetDefault("solr.timeout", "2s")

	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "user-interactions")
	viper.SetDefault("kafka.group_id", "recommender")

	viper.SetDefault("interactions.source", "file")
	viper.SetDefault("interactions.path", "interactions.json")

	viper.SetDefault("recommendation.content_weight", 0.5)
	viper.SetDefault("recommendation.collab_weight", 0.5)
	viper.SetDefault("recommendation.user_boost", 0.3)
	viper.SetDefault("recommendation.pool_multiplier", 2)
	viper.SetDefault("recommendation.cache_ttl", "15m")
	viper.SetDefault("recommendation.rebuild_interval", "0")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
