package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "ENVIRONMENT", "STORE_DRIVER",
		"DATABASE_URL", "REDIS_URL", "LOCK_TTL", "SEED_ON_START", "REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("DATABASE_PATH", "/tmp/activities-test.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/activities-test.db", cfg.DatabasePath)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")
	t.Setenv("LOCK_TTL", "750ms")
	t.Setenv("SEED_ON_START", "false")
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.LockTTL)
	assert.False(t, cfg.SeedOnStart)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "sqlite ok",
			cfg:  Config{StoreDriver: DriverSQLite, DatabasePath: "x.db", LockTTL: time.Second},
		},
		{
			name:    "sqlite without path",
			cfg:     Config{StoreDriver: DriverSQLite, LockTTL: time.Second},
			wantErr: "DATABASE_PATH",
		},
		{
			name:    "postgres without url",
			cfg:     Config{StoreDriver: DriverPostgres, LockTTL: time.Second},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown driver",
			cfg:     Config{StoreDriver: "mysql", LockTTL: time.Second},
			wantErr: "unknown STORE_DRIVER",
		},
		{
			name:    "zero lock ttl",
			cfg:     Config{StoreDriver: DriverSQLite, DatabasePath: "x.db"},
			wantErr: "LOCK_TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{}, parseOrigins(""))
	assert.Equal(t, []string{"a", "b"}, parseOrigins(" a ,b,, "))
}

func TestIsDevelopment(t *testing.T) {
	for env, want := range map[string]bool{
		"development": true,
		"local":       true,
		"staging":     false,
		"production":  false,
	} {
		cfg := Config{Environment: env}
		assert.Equal(t, want, cfg.IsDevelopment(), env)
	}
}
