package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Reset viper state before test
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, "https://test.api.amadeus.com", cfg.Amadeus.BaseURL)
	assert.Equal(t, 8*time.Second, cfg.Amadeus.HTTPTimeout)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Quota.PerMinute)
	assert.Equal(t, 39, cfg.Quota.PerDay)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()

	t.Setenv("PORT", "9090")
	t.Setenv("FAREFINDER_CLIENT_ID", "id-123")
	t.Setenv("FAREFINDER_CLIENT_SECRET", "secret-456")
	t.Setenv("FAREFINDER_BASE_URL", "https://api.amadeus.com")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("STORE_PATH", "/tmp/ff.db")
	t.Setenv("QUOTA_PER_DAY", "20")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("LOG_FORMAT", "pretty")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "id-123", cfg.Amadeus.ClientID)
	assert.Equal(t, "secret-456", cfg.Amadeus.ClientSecret)
	assert.Equal(t, "https://api.amadeus.com", cfg.Amadeus.BaseURL)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/ff.db", cfg.Store.Path)
	assert.Equal(t, 20, cfg.Quota.PerDay)
	assert.Equal(t, 3*time.Second, cfg.Amadeus.HTTPTimeout)
	assert.Equal(t, "pretty", cfg.Log.Format)
}

func TestEffectiveOffline(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{
			name: "credentials present",
			cfg:  Config{Amadeus: AmadeusConfig{ClientID: "id", ClientSecret: "secret"}},
			want: false,
		},
		{
			name: "explicit offline flag wins over credentials",
			cfg:  Config{Amadeus: AmadeusConfig{ClientID: "id", ClientSecret: "secret", Offline: true}},
			want: true,
		},
		{
			name: "missing client id",
			cfg:  Config{Amadeus: AmadeusConfig{ClientSecret: "secret"}},
			want: true,
		},
		{
			name: "missing secret",
			cfg:  Config{Amadeus: AmadeusConfig{ClientID: "id"}},
			want: true,
		},
		{
			name: "no credentials at all",
			cfg:  Config{},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.EffectiveOffline())
		})
	}
}
