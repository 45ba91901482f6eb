package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("DB_TIMEOUT", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.StorageDriver)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "order.exchange", cfg.OrderExchange)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		expectedError string
	}{
		{
			name:          "missing jwt secret",
			env:           map[string]string{"JWT_SECRET": "", "STORAGE_DRIVER": "memory"},
			expectedError: "JWT_SECRET is required",
		},
		{
			name:          "unknown driver",
			env:           map[string]string{"JWT_SECRET": "x", "STORAGE_DRIVER": "oracle"},
			expectedError: "unknown STORAGE_DRIVER",
		},
		{
			name:          "postgres without url",
			env:           map[string]string{"JWT_SECRET": "x", "STORAGE_DRIVER": "postgres", "DATABASE_URL": ""},
			expectedError: "DATABASE_URL is required",
		},
		{
			name:          "bad timeout",
			env:           map[string]string{"JWT_SECRET": "x", "STORAGE_DRIVER": "memory", "DB_TIMEOUT": "soon"},
			expectedError: "DB_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_CORSOriginsList(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CORS_ORIGINS", "https://shop.example.com, https://admin.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
}
