package types

import (
	"github.com/crytic/medusa-geth/common"
	"github.com/pkg/errors"
)

// ContractInstance describes a single on-chain deployment of a ContractType.
type ContractInstance struct {
	// ContractType describes the name of the ContractType deployed. It must resolve within the owning manifest.
	ContractType string

	// Address describes the address the contract was deployed to.
	Address string

	// Transaction describes the transaction which created the contract.
	Transaction string

	// Block describes the block in which the contract was created.
	Block string

	// RuntimeBytecode describes the bytecode found on-chain at Address.
	RuntimeBytecode *Bytecode
}

// ContractInstanceFromRecord constructs a ContractInstance from its untyped Record form.
func ContractInstanceFromRecord(record Record) (*ContractInstance, error) {
	r := newRecordReader("ContractInstance", record)
	contractType, err := r.requiredString("contractType")
	if err != nil {
		return nil, err
	}
	address, err := r.requiredString("address")
	if err != nil {
		return nil, err
	}
	c := &ContractInstance{ContractType: contractType, Address: address}

	if c.Transaction, err = r.optionalString("transaction"); err != nil {
		return nil, err
	}
	if c.Block, err = r.optionalString("block"); err != nil {
		return nil, err
	}
	if c.RuntimeBytecode, err = bytecodeFromAny("ContractInstance", "runtimeBytecode", r.nested("runtimeBytecode")); err != nil {
		return nil, err
	}
	return c, nil
}

// ToRecord renders the ContractInstance into its untyped Record form.
func (c ContractInstance) ToRecord() Record {
	b := newRecordBuilder()
	b.put("contractType", c.ContractType, alwaysEmit)
	b.put("address", c.Address, alwaysEmit)
	b.put("transaction", c.Transaction, pruneEmpty)
	b.put("block", c.Block, pruneEmpty)
	if c.RuntimeBytecode != nil {
		b.put("runtimeBytecode", c.RuntimeBytecode.ToRecord(), pruneEmpty)
	}
	return b.record
}

// MarshalJSON encodes the ContractInstance through its Record form.
func (c ContractInstance) MarshalJSON() ([]byte, error) {
	return recordToJSON(c)
}

// UnmarshalJSON decodes the ContractInstance through its Record form.
func (c *ContractInstance) UnmarshalJSON(data []byte) error {
	record, err := recordFromJSON(data)
	if err != nil {
		return err
	}
	decoded, err := ContractInstanceFromRecord(record)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

// HexAddress parses Address into a common.Address, returning an error if it is not a valid hex address.
func (c *ContractInstance) HexAddress() (common.Address, error) {
	if !common.IsHexAddress(c.Address) {
		return common.Address{}, errors.Errorf("contract instance of '%s' has malformed address '%s'", c.ContractType, c.Address)
	}
	return common.HexToAddress(c.Address), nil
}
