package config

import (
	"github.com/crytic/ethpm/manifest/types"
	"github.com/rs/zerolog"
)

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "ethpm.json"

// DefaultProjectConfig obtains a default configuration for a project.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		CacheDirectory:    ".ethpm",
		ChecksumAlgorithm: types.DefaultChecksumAlgorithm,
		FetchTimeout:      30,
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			LogDirectory: "",
		},
	}
}
