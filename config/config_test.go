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

func TestLoadConfig_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8000"
database:
  host: db
  user: opd
  name: opd
kafka:
  brokers: ["kafka:9092"]
queue:
  token_scope: doctor
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, TokenScopeDoctor, cfg.Queue.TokenScope)
	assert.Equal(t, 15, cfg.Queue.PerPatientMinutes)
	assert.Equal(t, 7, cfg.Queue.AverageConsultMinutes)
	assert.Equal(t, PositionSourceLive, cfg.Queue.PositionSource)
	assert.False(t, cfg.Queue.ExcludeCompletedFromWait)
	assert.Equal(t, "host=db port=5432 user=opd password= dbname=opd sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  host: db\n")
	t.Setenv("OPD_DATABASE_HOST", "pg.internal")
	t.Setenv("OPD_QUEUE_STRICT_TRANSITIONS", "true")
	t.Setenv("OPD_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.True(t, cfg.Queue.StrictTransitions)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "http: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = LoadConfig(writeConfig(t, "queue:\n  token_scope: hospital\n"))
	assert.ErrorContains(t, err, "token_scope")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Queue.PositionSource = "guess"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Queue.AverageConsultMinutes = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Queue.TokenScope = TokenScopeGlobal
	cfg.Queue.TokenMaxAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Queue.TokenScope = TokenScopeDoctor
	cfg.Queue.TokenClaimTTLSeconds = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_claim_ttl_seconds")

	cfg = Default()
	cfg.Queue.TokenClaimTTLSeconds = 0
	assert.NoError(t, cfg.Validate(), "claims are unused without a token scope")
}
