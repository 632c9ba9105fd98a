package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PawelBis/transaction-system/config"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 256, cfg.Buffer)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "transactions", cfg.Kafka.Topic)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: 9000
buffer: 32
report_db: ./report.db
kafka:
  enabled: true
  brokers: ["localhost:9092"]
  topic: tx
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 32, cfg.Buffer)
	assert.Equal(t, "./report.db", cfg.ReportDB)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "tx", cfg.Kafka.Topic)
	// Unset fields keep their defaults.
	assert.Equal(t, "transaction-system", cfg.Kafka.GroupID)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Port)
	assert.True(t, cfg.Kafka.Enabled, "setting brokers enables the kafka source")
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "700000")
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [oops"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}
