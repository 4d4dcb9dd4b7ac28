package utils

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// CreateFile creates (or truncates) a file with the given name inside the given directory, creating the directory
// first if it does not exist. If the directory is the empty string, the file is created in the current working
// directory.
func CreateFile(directory string, fileName string) (*os.File, error) {
	filePath := fileName
	if directory != "" {
		if err := MakeDirectory(directory); err != nil {
			return nil, err
		}
		filePath = filepath.Join(directory, fileName)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return file, nil
}

// MakeDirectory creates a directory at the given path, including any parent directories which do not exist.
// Returns an error if the path exists but refers to a file.
func MakeDirectory(dirToMake string) error {
	dirInfo, err := os.Stat(dirToMake)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.WithStack(os.MkdirAll(dirToMake, 0755))
		}
		return errors.WithStack(err)
	}

	if !dirInfo.IsDir() {
		return errors.Errorf("cannot create directory '%s' as a file with the same name exists", dirToMake)
	}
	return nil
}

// FileExists reports whether a regular file exists at the given path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetFileNameWithoutExtension obtains a filename without the extension or any preceding directories.
func GetFileNameWithoutExtension(filePath string) string {
	base := filepath.Base(filePath)
	return base[:len(base)-len(filepath.Ext(base))]
}
