package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/crytic/ethpm/manifest/checksum"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the configuration of a project using ethpm, as read from its configuration file.
type ProjectConfig struct {
	// CacheDirectory describes the directory the artifact cache database is stored in. Relative paths are resolved
	// against the working directory.
	CacheDirectory string `json:"cacheDirectory"`

	// ChecksumAlgorithm describes the algorithm used when computing source checksums.
	ChecksumAlgorithm string `json:"checksumAlgorithm"`

	// FetchTimeout describes the timeout, in seconds, of a single source fetch. Zero disables the timeout.
	FetchTimeout int `json:"fetchTimeout"`

	// Logging describes the configuration used for logging to file and console
	Logging LoggingConfig `json:"logging"`
}

// LoggingConfig describes the configuration options for logging to console and file
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// LogDirectory describes what directory log files should be outputted in. A non-empty LogDirectory enables
	// structured logging to file.
	LogDirectory string `json:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Fields absent from the
// file keep their default values.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	projectConfig := DefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	if p.CacheDirectory == "" {
		return errors.Errorf("cache directory must not be empty")
	}

	if !checksum.IsSupported(p.ChecksumAlgorithm) {
		return errors.Errorf("unsupported checksum algorithm '%s', expected one of %v", p.ChecksumAlgorithm, checksum.SupportedAlgorithms())
	}

	if p.FetchTimeout < 0 {
		return errors.Errorf("fetch timeout must not be negative")
	}

	if p.Logging.Level < zerolog.TraceLevel || p.Logging.Level > zerolog.Disabled {
		return errors.Errorf("invalid log level %d", p.Logging.Level)
	}
	return nil
}

// FetchTimeoutDuration returns FetchTimeout as a time.Duration.
func (p *ProjectConfig) FetchTimeoutDuration() time.Duration {
	return time.Duration(p.FetchTimeout) * time.Second
}
