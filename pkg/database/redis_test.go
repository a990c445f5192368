package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/recruit-intake/internal/config"
)

func TestUniversalOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RedisConfig
		wantErr  bool
		wantMode string
		addrs    []string
	}{
		{"single from addr", config.RedisConfig{Addr: "localhost:6379"}, false, "single", []string{"localhost:6379"}},
		{"cluster", config.RedisConfig{Mode: "cluster", Addrs: []string{"a:1", "b:2"}}, false, "cluster", []string{"a:1", "b:2"}},
		{"sentinel without master", config.RedisConfig{Mode: "sentinel", Addr: "a:1"}, true, "", nil},
		{"no address", config.RedisConfig{}, true, "", nil},
		{"unknown mode", config.RedisConfig{Mode: "ring", Addr: "a:1"}, true, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, mode, err := universalOptions(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, mode)
			assert.Equal(t, tt.addrs, opts.Addrs)
		})
	}
}

func TestUniversalOptions_Backoff(t *testing.T) {
	opts, _, err := universalOptions(config.RedisConfig{Addr: "a:1", MaxRetries: 3, MinRetryBackoff: 10, MaxRetryBackoff: 200})

	require.NoError(t, err)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, opts.MinRetryBackoff)
	assert.Equal(t, 200*time.Millisecond, opts.MaxRetryBackoff)
}
