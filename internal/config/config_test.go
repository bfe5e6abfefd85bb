package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":3333", c.Addr)
	assert.Equal(t, ":9999", c.DiagAddr)
	assert.Equal(t, StoreMemory, c.Store)
	assert.Equal(t, 5*time.Minute, c.TokenCacheTTL)
	assert.False(t, c.Debug)
}

func TestLoadPrecedence(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BLOG_ADDR", ":8080")
	t.Setenv("BLOG_DATABASE_DSN", "postgres://blog@localhost/blog")
	t.Setenv("BLOG_DEBUG", "true")
	t.Setenv("BLOG_TOKEN_CACHE_TTL", "30s")

	c, err := Load([]string{"-addr", ":9090"})
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Addr, "flags win over the environment")
	assert.Equal(t, StorePostgres, c.Store, "a DSN selects postgres")
	assert.True(t, c.Debug)
	assert.Equal(t, 30*time.Second, c.TokenCacheTTL)
}

func TestLoadRejects(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"unknown store", []string{"-store", "mongo"}},
		{"postgres without dsn", []string{"-store", "postgres"}},
		{"promote in memory", []string{"-promote", "peter"}},
		{"zero ttl", []string{"-token_cache_ttl", "0s"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}
