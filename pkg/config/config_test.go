package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "none", c.Backend.Type)
	require.Equal(t, 8080, c.Server.Port)
	require.Equal(t, "nltk", c.Text.Stemmer)
	require.Equal(t, 1, c.UpClassValue())
	require.Equal(t, 24*time.Hour, c.Pipeline.DedupWindow)
	require.Equal(t, "0 */5 * * * *", c.RSS.Schedule)
	require.Equal(t, -1, c.Kafka.RequiredAcks)
}

func TestLoad_YAMLKeepsExplicitValues(t *testing.T) {
	p := writeFile(t, "config.yaml", `
environment: production
backend:
  type: sqlite
sqlite:
  path: /tmp/audit.db
model:
  up_class: 0
  vectorizer: redis://newssignal:vectorizer
text:
  stemmer: porter2
server:
  port: 9090
`)
	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "sqlite", c.Backend.Type)
	require.Equal(t, 0, c.UpClassValue())
	require.Equal(t, "redis://newssignal:vectorizer", c.Model.Vectorizer)
	require.Equal(t, "models/classifier.json", c.Model.Classifier)
	require.Equal(t, "porter2", c.Text.Stemmer)
	require.Equal(t, 9090, c.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown backend":     "backend:\n  type: s3\n",
		"kafka no brokers":    "backend:\n  type: kafka\n",
		"clickhouse no host":  "backend:\n  type: clickhouse\n",
		"bad stemmer":         "text:\n  stemmer: lancaster\n",
		"finnhub without key": "finnhub:\n  enabled: true\n  symbols: [AAPL]\n",
		"collector no kafka":  "logging:\n  collector_topic: logs\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", body))
			require.Error(t, err)
		})
	}
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	p := writeFile(t, "config.yaml", "backend:\n  type: none\n")
	envFile := writeFile(t, ".env", "NEWSSIGNAL_REDIS_ADDR=localhost:6379\n")

	t.Setenv("NEWSSIGNAL_BACKEND", "kafka")
	t.Setenv("NEWSSIGNAL_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("NEWSSIGNAL_LOG_LEVEL", "debug")
	t.Cleanup(func() { _ = os.Unsetenv("NEWSSIGNAL_REDIS_ADDR") })

	c, err := LoadWithEnv(p, envFile)
	require.NoError(t, err)
	require.Equal(t, "kafka", c.Backend.Type)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	require.Equal(t, "debug", c.Logging.Level)
	require.Equal(t, "localhost:6379", c.Redis.Addr)
}

func TestLoadWithEnv_MissingEnvFileIsFine(t *testing.T) {
	_, err := LoadWithEnv("", filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}
