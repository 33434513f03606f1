package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codevf/codevf-go/pkg/codevf"
)

func writeProject(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDiscovery_CurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, `project_id = 12`)

	cfg, err := DiscoverProjectConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(12), cfg.ProjectID)
}

func TestDiscovery_DeeplyNested(t *testing.T) {
	root := t.TempDir()
	path := writeProject(t, root, `project_id = 3`)

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := DiscoverProjectConfigFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cfg.ProjectID)
	assert.Equal(t, path, cfg.Path)
}

func TestDiscovery_FromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, `project_id = 8`)
	t.Chdir(dir)

	cfg, err := DiscoverProjectConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(8), cfg.ProjectID)
}

func TestDiscovery_NotFound(t *testing.T) {
	_, err := DiscoverProjectConfigFrom(t.TempDir())
	assert.ErrorIs(t, err, ErrNoProjectConfig)
}

func TestParse_FullConfig(t *testing.T) {
	path := writeProject(t, t.TempDir(), `
project_id = 42
tier = "fast"

[api]
base_url = "http://localhost:8080/api/v1"
max_retries = 0
`)

	cfg, err := ParseProjectConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.ProjectID)
	assert.Equal(t, codevf.TierFast, cfg.Tier)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL)
	require.NotNil(t, cfg.API.MaxRetries)
	assert.Equal(t, 0, *cfg.API.MaxRetries)
}

func TestParse_MinimalConfig(t *testing.T) {
	path := writeProject(t, t.TempDir(), ``)

	cfg, err := ParseProjectConfig(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.ProjectID)
	assert.Empty(t, cfg.Tier)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown tier", content: `tier = "turbo"`, wantErr: "not a supported service tier"},
		{name: "negative project", content: `project_id = -1`, wantErr: "invalid project_id"},
		{name: "bad toml", content: `project_id = `, wantErr: "failed to parse TOML"},
		{name: "bad timeout", content: "[api]\ntimeout = \"-3s\"\n", wantErr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProject(t, t.TempDir(), tt.content)
			_, err := ParseProjectConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_FileNotFound(t *testing.T) {
	_, err := ParseProjectConfig(filepath.Join(t.TempDir(), ConfigFileName))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
