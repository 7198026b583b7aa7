package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths_HomeOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv("TODOFLOW_HOME", base)

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, base, paths.Base)
	assert.Equal(t, filepath.Join(base, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(base, "credentials"), paths.Credentials)
	assert.Equal(t, filepath.Join(base, "data", "cache.db"), paths.CacheDB)
}

func TestEnsureDirs(t *testing.T) {
	base := filepath.Join(t.TempDir(), "todoflow-home")
	t.Setenv("TODOFLOW_HOME", base)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirs())

	assert.DirExists(t, paths.Base)
	assert.DirExists(t, paths.Credentials)
	assert.DirExists(t, paths.Data)
}

func TestParseConfigPath(t *testing.T) {
	parts, err := ParseConfigPath("server.baseUrl")
	require.NoError(t, err)
	assert.Equal(t, []string{"server", "baseUrl"}, parts)

	_, err = ParseConfigPath("")
	assert.Error(t, err)

	_, err = ParseConfigPath("server..baseUrl")
	assert.Error(t, err)
}

func TestValueAtPathHelpers(t *testing.T) {
	root := map[string]any{}

	SetValueAtPath(root, []string{"server", "baseUrl"}, "http://x")
	val, ok := GetValueAtPath(root, []string{"server", "baseUrl"})
	require.True(t, ok)
	assert.Equal(t, "http://x", val)

	assert.True(t, UnsetValueAtPath(root, []string{"server", "baseUrl"}))
	_, ok = GetValueAtPath(root, []string{"server", "baseUrl"})
	assert.False(t, ok)

	assert.False(t, UnsetValueAtPath(root, []string{"server", "missing"}))
}
