package types

import (
	"github.com/crytic/medusa-geth/accounts/abi"
)

// ContractType describes a compiled contract: its interface, documentation, source location, and bytecode. It is the
// top-level artifact of a manifest and is keyed by ContractName.
type ContractType struct {
	// ContractName describes the name of the contract, unique within a manifest.
	ContractName string

	// SourceID describes the identifier of the Source the contract was compiled from.
	SourceID string

	// SourcePath describes the path of the source file the contract was compiled from.
	SourcePath SourcePath

	// DeploymentBytecode describes the bytecode used to deploy the contract.
	DeploymentBytecode *Bytecode

	// RuntimeBytecode describes the bytecode expected on-chain once deployed.
	RuntimeBytecode *Bytecode

	// Abi describes the JSON-encoded application binary interface. Nil means the ABI is unknown, while an empty
	// string is a known, empty ABI.
	Abi *string

	// Userdoc describes the JSON-encoded user documentation.
	Userdoc string

	// Devdoc describes the JSON-encoded developer documentation.
	Devdoc string
}

// ContractTypeFromRecord constructs a ContractType from its untyped Record form. The "sourcePath" field is normalized
// into a SourcePath, and "abi", "userdoc" and "devdoc" may be provided either as strings or as raw JSON values.
func ContractTypeFromRecord(record Record) (*ContractType, error) {
	r := newRecordReader("ContractType", record)
	name, err := r.requiredString("contractName")
	if err != nil {
		return nil, err
	}
	c := &ContractType{ContractName: name}

	if c.SourceID, err = r.optionalString("sourceId"); err != nil {
		return nil, err
	}
	sourcePath, err := r.optionalString("sourcePath")
	if err != nil {
		return nil, err
	}
	c.SourcePath = NewSourcePath(sourcePath)

	if c.DeploymentBytecode, err = bytecodeFromAny("ContractType", "deploymentBytecode", r.nested("deploymentBytecode")); err != nil {
		return nil, err
	}
	if c.RuntimeBytecode, err = bytecodeFromAny("ContractType", "runtimeBytecode", r.nested("runtimeBytecode")); err != nil {
		return nil, err
	}

	abiString, hasAbi, err := r.documentString("abi")
	if err != nil {
		return nil, err
	}
	if hasAbi {
		c.Abi = &abiString
	}
	if c.Userdoc, _, err = r.documentString("userdoc"); err != nil {
		return nil, err
	}
	if c.Devdoc, _, err = r.documentString("devdoc"); err != nil {
		return nil, err
	}
	return c, nil
}

// ToRecord renders the ContractType into its untyped Record form. Unlike other optional fields, "abi" is emitted
// whenever it is set, even when empty.
func (c ContractType) ToRecord() Record {
	b := newRecordBuilder()
	b.put("contractName", c.ContractName, alwaysEmit)
	b.put("sourceId", c.SourceID, pruneEmpty)
	b.put("sourcePath", c.SourcePath.String(), pruneEmpty)
	if c.DeploymentBytecode != nil {
		b.put("deploymentBytecode", c.DeploymentBytecode.ToRecord(), pruneEmpty)
	}
	if c.RuntimeBytecode != nil {
		b.put("runtimeBytecode", c.RuntimeBytecode.ToRecord(), pruneEmpty)
	}
	if c.Abi != nil {
		b.put("abi", *c.Abi, alwaysEmit)
	}
	b.put("userdoc", c.Userdoc, pruneEmpty)
	b.put("devdoc", c.Devdoc, pruneEmpty)
	return b.record
}

// MarshalJSON encodes the ContractType through its Record form.
func (c ContractType) MarshalJSON() ([]byte, error) {
	return recordToJSON(c)
}

// UnmarshalJSON decodes the ContractType through its Record form.
func (c *ContractType) UnmarshalJSON(data []byte) error {
	record, err := recordFromJSON(data)
	if err != nil {
		return err
	}
	decoded, err := ContractTypeFromRecord(record)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

// ParseABI parses Abi into an abi.ABI. An unset or empty ABI yields an empty abi.ABI.
func (c *ContractType) ParseABI() (*abi.ABI, error) {
	if c.Abi == nil || *c.Abi == "" {
		return &abi.ABI{}, nil
	}
	return ParseABIFromInterface(*c.Abi)
}
