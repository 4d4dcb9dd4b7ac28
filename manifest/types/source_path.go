package types

import (
	"path"
	"path/filepath"
)

// SourcePath describes the location of a source file relative to a project root. It is always stored in cleaned,
// slash-separated form regardless of the host platform.
type SourcePath string

// NewSourcePath normalizes a path string into a SourcePath. The empty string yields an empty SourcePath.
func NewSourcePath(p string) SourcePath {
	if p == "" {
		return ""
	}
	return SourcePath(path.Clean(filepath.ToSlash(p)))
}

// String returns the slash-separated path.
func (p SourcePath) String() string {
	return string(p)
}

// Base returns the last element of the path.
func (p SourcePath) Base() string {
	return path.Base(string(p))
}

// Dir returns all but the last element of the path.
func (p SourcePath) Dir() SourcePath {
	return SourcePath(path.Dir(string(p)))
}

// Ext returns the file name extension of the path, including the leading dot.
func (p SourcePath) Ext() string {
	return path.Ext(string(p))
}

// Local returns the path using the host platform's separator.
func (p SourcePath) Local() string {
	return filepath.FromSlash(string(p))
}
