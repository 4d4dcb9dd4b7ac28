package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigWriteRead verifies a written configuration is read back unchanged.
func TestConfigWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultProjectConfigFilename)

	projectConfig := DefaultProjectConfig()
	projectConfig.ChecksumAlgorithm = "keccak256"
	projectConfig.FetchTimeout = 5
	projectConfig.Logging.Level = zerolog.DebugLevel
	require.NoError(t, projectConfig.WriteToFile(path))

	read, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, projectConfig, read)
	assert.Equal(t, 5*time.Second, read.FetchTimeoutDuration())
}

// TestConfigPartialFile verifies fields absent from the file keep their defaults.
func TestConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultProjectConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(`{"checksumAlgorithm": "sha256", "logging": {"level": "warn"}}`), 0644))

	read, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sha256", read.ChecksumAlgorithm)
	assert.Equal(t, zerolog.WarnLevel, read.Logging.Level)
	assert.Equal(t, DefaultProjectConfig().CacheDirectory, read.CacheDirectory)
	assert.NoError(t, read.Validate())
}

// TestConfigReadErrors verifies missing and malformed files are reported.
func TestConfigReadErrors(t *testing.T) {
	directory := t.TempDir()
	_, err := ReadProjectConfigFromFile(filepath.Join(directory, "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(directory, DefaultProjectConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(`{"fetchTimeout": "soon"}`), 0644))
	_, err = ReadProjectConfigFromFile(path)
	assert.Error(t, err)
}

// TestConfigValidate verifies each invalid setting is rejected.
func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultProjectConfig().Validate())

	tests := []struct {
		name   string
		modify func(p *ProjectConfig)
	}{
		{name: "empty cache directory", modify: func(p *ProjectConfig) { p.CacheDirectory = "" }},
		{name: "unsupported algorithm", modify: func(p *ProjectConfig) { p.ChecksumAlgorithm = "crc32" }},
		{name: "negative timeout", modify: func(p *ProjectConfig) { p.FetchTimeout = -1 }},
		{name: "invalid level", modify: func(p *ProjectConfig) { p.Logging.Level = zerolog.Level(42) }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			projectConfig := DefaultProjectConfig()
			test.modify(projectConfig)
			assert.Error(t, projectConfig.Validate())
		})
	}
}
