package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/crytic/ethpm/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ReadManifestFile reads a JSON manifest from the provided file path.
// Returns the Manifest, or an error if the file could not be read or describes an invalid manifest.
func ReadManifestFile(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "could not parse manifest '%s'", path)
	}
	return &m, nil
}

// WriteToFile writes the Manifest as indented JSON to the provided file path, creating parent directories as needed.
// The content is written to a temporary file in the same directory first and then renamed into place, so readers
// never observe a partially written manifest.
func (m *Manifest) WriteToFile(path string) error {
	b, err := json.MarshalIndent(m, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	directory := filepath.Dir(path)
	tempName := "." + filepath.Base(path) + "." + uuid.NewString() + ".tmp"
	file, err := utils.CreateFile(directory, tempName)
	if err != nil {
		return err
	}
	tempPath := file.Name()

	_, err = file.Write(b)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return errors.WithStack(err)
	}

	if err = os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WithStack(err)
	}
	return nil
}
