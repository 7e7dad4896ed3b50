// Package config loads service configuration from config.toml and PROMO_* env vars.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Spanner   SpannerConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Recalc    RecalcConfig
	Outbox    OutboxConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Name string
	Env  string
}

// SpannerConfig holds the Spanner database path.
type SpannerConfig struct {
	Database string
}

// RedisConfig holds the price cache connection. An empty Addr falls back to
// the in-process cache; TTL bounds entries in either cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// KafkaConfig holds the durable recalculation queue. No brokers means the in-memory queue.
type KafkaConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	EventsTopic string
}

// Enabled reports whether Kafka brokers are configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// RecalcConfig tunes the recalculation engine and its workers.
type RecalcConfig struct {
	ReadChunkSize  int
	WriteBatchSize int
	Workers        int
	QueueSize      int
	// RepairCooldown is the minimum gap between full recalculations
	// scheduled after failed jobs.
	RepairCooldown time.Duration
}

// OutboxConfig tunes the relay that publishes outbox events to EventsTopic.
// The relay only runs when Kafka is enabled.
type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int64
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	Insecure          bool
}

// Load reads config.toml (optional) and environment overrides.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("PROMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Spanner: SpannerConfig{
			Database: v.GetString("spanner.database"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(v.GetStringSlice("kafka.brokers")),
			Topic:       v.GetString("kafka.topic"),
			GroupID:     v.GetString("kafka.group_id"),
			EventsTopic: v.GetString("kafka.events_topic"),
		},
		Recalc: RecalcConfig{
			ReadChunkSize:  v.GetInt("recalc.read_chunk_size"),
			WriteBatchSize: v.GetInt("recalc.write_batch_size"),
			Workers:        v.GetInt("recalc.workers"),
			QueueSize:      v.GetInt("recalc.queue_size"),
			RepairCooldown: v.GetDuration("recalc.repair_cooldown"),
		},
		Outbox: OutboxConfig{
			PollInterval: v.GetDuration("outbox.poll_interval"),
			BatchSize:    v.GetInt("outbox.batch_size"),
			MaxRetries:   v.GetInt64("outbox.max_retries"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			Port:            v.GetString("http.port"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// env vars arrive as a single comma separated value
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "promo-engine"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Spanner.Database == "" {
		cfg.Spanner.Database = "projects/test-project/instances/dev-instance/databases/promo-engine-db"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 10 * time.Minute
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "promotion-recalculation"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "promo-engine-recalc"
	}
	if cfg.Kafka.EventsTopic == "" {
		cfg.Kafka.EventsTopic = "promotion-events"
	}
	if cfg.Outbox.PollInterval == 0 {
		cfg.Outbox.PollInterval = 2 * time.Second
	}
	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 100
	}
	if cfg.Outbox.MaxRetries == 0 {
		cfg.Outbox.MaxRetries = 5
	}
	if cfg.Recalc.ReadChunkSize == 0 {
		cfg.Recalc.ReadChunkSize = 200
	}
	if cfg.Recalc.WriteBatchSize == 0 {
		cfg.Recalc.WriteBatchSize = 500
	}
	if cfg.Recalc.Workers == 0 {
		cfg.Recalc.Workers = 1
	}
	if cfg.Recalc.QueueSize == 0 {
		cfg.Recalc.QueueSize = 256
	}
	if cfg.Recalc.RepairCooldown == 0 {
		cfg.Recalc.RepairCooldown = time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
}

func (c *Config) validate() error {
	if c.Recalc.ReadChunkSize < 0 || c.Recalc.WriteBatchSize < 0 {
		return fmt.Errorf("recalc chunk sizes must be positive")
	}
	if c.Recalc.Workers < 0 {
		return fmt.Errorf("recalc.workers must be positive")
	}
	if c.Outbox.BatchSize < 0 || c.Outbox.MaxRetries < 0 {
		return fmt.Errorf("outbox batch size and retries must be positive")
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1")
	}
	if c.Telemetry.Enabled && c.Telemetry.CollectorEndpoint == "" {
		return fmt.Errorf("telemetry.collector_endpoint is required when telemetry is enabled")
	}
	if c.App.Env == "production" && !c.Kafka.Enabled() {
		return fmt.Errorf("kafka.brokers is required in production (in-memory queue loses jobs on restart)")
	}
	return nil
}
