package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "s3cret")

	path := writeConfig(t, `
camunda:
  broker_address: zeebe:26500
database:
  postgres:
    host: db
    database: cases
    user: investigator
    password: ${TEST_PG_PASSWORD}
  elasticsearch:
    url: http://es:9200
  redis:
    address: redis:6379
workers:
  parse-voice-command:
    enabled: true
  match-cases:
    enabled: false
    timeout: 5000
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, []string{"http://es:9200"}, cfg.Database.Elasticsearch.Addresses)
	assert.Equal(t, "cases", cfg.Database.Elasticsearch.CaseIndex)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 8081, cfg.Server.Port)

	pvc := cfg.Workers["parse-voice-command"]
	assert.True(t, pvc.Enabled)
	assert.Equal(t, 5, pvc.MaxJobsActive)
	assert.Equal(t, 30000, pvc.Timeout)
	assert.Equal(t, 3, pvc.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "match-cases"))
	assert.Equal(t, 5000, GetWorkerConfig(cfg, "match-cases").Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "unregistered"))

	assert.NoError(t, cfg.RequireWorkerServices())
}

func TestLoadFromFile_MissingPostgres(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: db
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.postgres.database is required")
}

func TestRequireWorkerServices(t *testing.T) {
	cfg := &Config{}
	assert.EqualError(t, cfg.RequireWorkerServices(), "camunda.broker_address is required")

	cfg.Camunda.BrokerAddress = "zeebe:26500"
	assert.EqualError(t, cfg.RequireWorkerServices(), "database.elasticsearch.addresses or url is required")

	cfg.Database.Elasticsearch.URL = "http://es:9200"
	assert.EqualError(t, cfg.RequireWorkerServices(), "database.redis.address is required")
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "cases", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cases sslmode=disable", p.GetDSN())
}
