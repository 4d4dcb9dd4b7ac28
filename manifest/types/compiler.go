package types

import (
	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Compiler describes the toolchain which produced a set of contract types.
type Compiler struct {
	// Name describes the compiler, e.g. "solc" or "vyper".
	Name string

	// Version describes the compiler version, e.g. "0.8.19+commit.7dd6d404".
	Version string

	// Settings describes the opaque compiler settings used.
	Settings string

	// ContractTypes describes the names of the contract types produced by this compiler.
	ContractTypes []string
}

// CompilerFromRecord constructs a Compiler from its untyped Record form.
func CompilerFromRecord(record Record) (*Compiler, error) {
	r := newRecordReader("Compiler", record)
	name, err := r.requiredString("name")
	if err != nil {
		return nil, err
	}
	version, err := r.requiredString("version")
	if err != nil {
		return nil, err
	}
	settings, _, err := r.documentString("settings")
	if err != nil {
		return nil, err
	}
	contractTypes, err := r.optionalStrings("contractTypes")
	if err != nil {
		return nil, err
	}
	return &Compiler{Name: name, Version: version, Settings: settings, ContractTypes: contractTypes}, nil
}

// ToRecord renders the Compiler into its untyped Record form.
func (c Compiler) ToRecord() Record {
	b := newRecordBuilder()
	b.put("name", c.Name, alwaysEmit)
	b.put("version", c.Version, alwaysEmit)
	b.put("settings", c.Settings, pruneEmpty)
	b.put("contractTypes", slices.Clone(c.ContractTypes), pruneEmpty)
	return b.record
}

// MarshalJSON encodes the Compiler through its Record form.
func (c Compiler) MarshalJSON() ([]byte, error) {
	return recordToJSON(c)
}

// UnmarshalJSON decodes the Compiler through its Record form.
func (c *Compiler) UnmarshalJSON(data []byte) error {
	record, err := recordFromJSON(data)
	if err != nil {
		return err
	}
	decoded, err := CompilerFromRecord(record)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

// SemVer parses Version as a semantic version. Solidity style build metadata ("+commit.<hash>") is accepted.
func (c *Compiler) SemVer() (*semver.Version, error) {
	version, err := semver.NewVersion(c.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse version of compiler '%s'", c.Name)
	}
	return version, nil
}
