package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "hire-match")
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_HTTP_PORT", "8080")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, GuardLocal, cfg.Guard.Backend)
	assert.Equal(t, 5*time.Second, cfg.Guard.LockTimeout)
	assert.Equal(t, 30*time.Second, cfg.Guard.LeaseTTL)
	assert.Equal(t, 25*time.Millisecond, cfg.Guard.RetryInterval)
	assert.InDelta(t, 0.6, cfg.Scoring.SkillWeight, 1e-9)
	assert.InDelta(t, 0.25, cfg.Scoring.CompensationWeight, 1e-9)
	assert.InDelta(t, 0.15, cfg.Scoring.LocationWeight, 1e-9)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoad_MissingRequiredListsEveryKey(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_HTTP_PORT", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.ErrorIs(t, err, errMissingRequiredEnv)
	assert.Contains(t, err.Error(), "APP_NAME")
	assert.Contains(t, err.Error(), "APP_ENV")
	assert.Contains(t, err.Error(), "APP_HTTP_PORT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "  ")

	_, err := Load("")
	require.ErrorIs(t, err, errMissingRequiredEnv)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.NotContains(t, err.Error(), "APP_NAME")
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("GUARD_BACKEND", "redis")
	t.Setenv("GUARD_LOCK_TIMEOUT", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, GuardRedis, cfg.Guard.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Guard.LockTimeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "hire-match.yaml")
	body := "scoring:\n  skill_weight: 1\n  compensation_weight: 0\n  location_weight: 0\nlog:\n  json: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cfg.Scoring.SkillWeight, 1e-9)
	assert.Zero(t, cfg.Scoring.LocationWeight)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown driver":  {"STORAGE_DRIVER", "sqlite"},
		"unknown backend": {"GUARD_BACKEND", "etcd"},
		"negative weight": {"SCORING_SKILL_WEIGHT", "-1"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load("")
			assert.ErrorIs(t, err, errInvalidConfig)
		})
	}
}
