package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, "file://migrations", cfg.Database.MigrationPath)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.DefaultTTL)
	assert.Equal(t, DefaultCandidateLimit, cfg.Search.CandidateLimit)
	assert.Equal(t, DefaultResultLimit, cfg.Search.DefaultResultLimit)
	assert.Equal(t, DefaultMaxResultLimit, cfg.Search.MaxResultLimit)
	assert.False(t, cfg.Search.UseChirality, "identity ignores stereo by default")
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Database.Host = "pg.internal"
	cfg.Search.CandidateLimit = 42

	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Equal(t, 42, cfg.Search.CandidateLimit)
	// Untouched fields still get defaults.
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
}
