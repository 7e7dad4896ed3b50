package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "promo-engine", cfg.App.Name)
	assert.Equal(t, 200, cfg.Recalc.ReadChunkSize)
	assert.Equal(t, 500, cfg.Recalc.WriteBatchSize)
	assert.Equal(t, 1, cfg.Recalc.Workers)
	assert.Equal(t, time.Minute, cfg.Recalc.RepairCooldown)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "promotion-events", cfg.Kafka.EventsTopic)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, int64(5), cfg.Outbox.MaxRetries)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("PROMO_RECALC_WRITE_BATCH_SIZE", "50")
	t.Setenv("PROMO_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("PROMO_REDIS_ADDR", "localhost:6379")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Recalc.WriteBatchSize)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled())
}

func TestFromViper_Validation(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]interface{}
	}{
		{"telemetry without endpoint", map[string]interface{}{"telemetry.enabled": true}},
		{"sampling ratio out of range", map[string]interface{}{"telemetry.sampling_ratio": 1.5}},
		{"production without kafka", map[string]interface{}{"app.env": "production"}},
		{"negative workers", map[string]interface{}{"recalc.workers": -1}},
		{"negative outbox batch", map[string]interface{}{"outbox.batch_size": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}
}
