package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor"
)

// ContractMetadata is a CBOR-encoded structure appended to the end of bytecode by the Solidity and Vyper compilers,
// describing the compiler version and a hash of the full compilation metadata.
// Reference: https://docs.soliditylang.org/en/latest/metadata.html
type ContractMetadata map[string]any

// metadataPrefixes describes the leading bytes of known CBOR metadata maps, used when the trailing length suffix is
// missing or does not describe a valid map.
var metadataPrefixes = [][]byte{
	{0xa1, 0x65, 'b', 'z', 'z', 'r', '0', 0x58, 0x20},  // solc <= 0.5.8
	{0xa2, 0x65, 'b', 'z', 'z', 'r', '0', 0x58, 0x20},  // solc >= 0.5.9
	{0xa2, 0x65, 'b', 'z', 'z', 'r', '1', 0x58, 0x20},  // solc >= 0.5.11
	{0xa2, 0x64, 'i', 'p', 'f', 's', 0x58, 0x22},       // solc >= 0.6.0
}

// bytecodeHashMetadataKeys describes the keys within ContractMetadata which may hold the hash of the compilation
// metadata.
var bytecodeHashMetadataKeys = [...]string{"ipfs", "bzzr1", "bzzr0"}

// ExtractContractMetadata decodes the contract metadata appended to the provided bytecode. Nil is returned if no
// metadata could be found.
func ExtractContractMetadata(bytecode []byte) *ContractMetadata {
	// Compilers append the CBOR length as a two byte big-endian suffix, so try that first.
	if len(bytecode) > 2 {
		length := int(binary.BigEndian.Uint16(bytecode[len(bytecode)-2:]))
		start := len(bytecode) - 2 - length
		if length > 0 && start >= 0 {
			var metadata ContractMetadata
			if err := cbor.Unmarshal(bytecode[start:len(bytecode)-2], &metadata); err == nil && len(metadata) > 0 {
				return &metadata
			}
		}
	}

	// Otherwise, search for a known map prefix. Constructor arguments may follow the metadata in deployment code.
	for _, prefix := range metadataPrefixes {
		offset := bytes.LastIndex(bytecode, prefix)
		if offset == -1 {
			continue
		}
		var metadata ContractMetadata
		if err := cbor.Unmarshal(bytecode[offset:], &metadata); err != nil {
			continue
		}
		return &metadata
	}
	return nil
}

// ExtractBytecodeHash returns the compilation metadata hash embedded within the contract metadata, or nil if none
// is present.
func (m ContractMetadata) ExtractBytecodeHash() []byte {
	for _, key := range bytecodeHashMetadataKeys {
		if value, ok := m[key]; ok {
			if hash, ok := value.([]byte); ok {
				return hash
			}
		}
	}
	return nil
}

// CompilerVersion returns the "solc" entry of the metadata formatted as a version string, or the empty string if it
// is absent. Release builds encode it as three bytes; prerelease builds as a string.
func (m ContractMetadata) CompilerVersion() string {
	switch v := m["solc"].(type) {
	case []byte:
		if len(v) == 3 {
			return formatVersionBytes(v)
		}
	case string:
		return v
	}
	return ""
}

func formatVersionBytes(v []byte) string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}
