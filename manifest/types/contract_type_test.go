package types

import (
	"encoding/json"
	"testing"

	"github.com/crytic/medusa-geth/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"}]`

func stringPtr(s string) *string {
	return &s
}

// newTestContractType creates a fully populated ContractType.
func newTestContractType() *ContractType {
	return &ContractType{
		ContractName: "Token",
		SourceID:     "Token.sol",
		SourcePath:   NewSourcePath("contracts/Token.sol"),
		DeploymentBytecode: &Bytecode{
			Bytecode:       "0x6080604052",
			LinkReferences: []LinkReference{{Offsets: []int{1}, Length: 20, Name: "SafeMath"}},
		},
		RuntimeBytecode: &Bytecode{Bytecode: "0x60806040"},
		Abi:             stringPtr(testABI),
		Userdoc:         `{"kind":"user"}`,
		Devdoc:          `{"kind":"dev"}`,
	}
}

// TestContractTypeRecordRoundTrip ensures a ContractType is reproduced field-for-field from its Record form.
func TestContractTypeRecordRoundTrip(t *testing.T) {
	t.Parallel()

	original := newTestContractType()
	decoded, err := ContractTypeFromRecord(original.ToRecord())
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

// TestContractTypeJSONRoundTrip ensures a ContractType is reproduced from its JSON encoding.
func TestContractTypeJSONRoundTrip(t *testing.T) {
	t.Parallel()

	original := newTestContractType()
	b, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ContractType
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, *original, decoded)
}

// TestContractTypeAbiEmitPolicy ensures an empty ABI is emitted while an unset ABI is pruned.
func TestContractTypeAbiEmitPolicy(t *testing.T) {
	t.Parallel()

	empty := ContractType{ContractName: "Empty", Abi: stringPtr("")}
	record := empty.ToRecord()
	value, ok := record["abi"]
	require.True(t, ok)
	assert.Equal(t, "", value)

	decoded, err := ContractTypeFromRecord(record)
	require.NoError(t, err)
	require.NotNil(t, decoded.Abi)
	assert.Equal(t, "", *decoded.Abi)

	unset := ContractType{ContractName: "Unset"}
	_, ok = unset.ToRecord()["abi"]
	assert.False(t, ok)

	// Other empty optional fields are still pruned.
	assert.Equal(t, Record{"contractName": "Unset"}, unset.ToRecord())
}

// TestContractTypeSourcePath ensures sourcePath is normalized into a SourcePath.
func TestContractTypeSourcePath(t *testing.T) {
	t.Parallel()

	contractType, err := ContractTypeFromRecord(Record{"contractName": "Foo", "sourcePath": "contracts/Foo.vy"})
	require.NoError(t, err)
	assert.Equal(t, SourcePath("contracts/Foo.vy"), contractType.SourcePath)
	assert.Equal(t, "Foo.vy", contractType.SourcePath.Base())
	assert.Equal(t, ".vy", contractType.SourcePath.Ext())
	assert.Equal(t, SourcePath("contracts"), contractType.SourcePath.Dir())

	contractType, err = ContractTypeFromRecord(Record{"contractName": "Foo", "sourcePath": "./contracts//Foo.vy"})
	require.NoError(t, err)
	assert.Equal(t, "contracts/Foo.vy", contractType.SourcePath.String())
}

// TestContractTypeRequiresName ensures a missing contractName is reported as a ValidationError.
func TestContractTypeRequiresName(t *testing.T) {
	t.Parallel()

	_, err := ContractTypeFromRecord(Record{"sourcePath": "contracts/Foo.vy"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "ContractType", validationErr.Type)
	assert.Equal(t, "contractName", validationErr.Field)

	var contractType ContractType
	assert.Error(t, json.Unmarshal([]byte(`{"abi": "[]"}`), &contractType))
}

// TestContractTypeNestedValidationError ensures errors from nested bytecode are returned unmodified.
func TestContractTypeNestedValidationError(t *testing.T) {
	t.Parallel()

	_, err := ContractTypeFromRecord(Record{
		"contractName":       "Foo",
		"deploymentBytecode": Record{"bytecode": "0x00", "linkReferences": []any{Record{"length": 20}}},
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "LinkReference", validationErr.Type)
	assert.Equal(t, "offsets", validationErr.Field)

	_, err = ContractTypeFromRecord(Record{"contractName": "Foo", "runtimeBytecode": "0x00"})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "runtimeBytecode", validationErr.Field)
}

// TestContractTypeAcceptsStructuredDocuments ensures compiler-style ABI arrays are stored as JSON strings.
func TestContractTypeAcceptsStructuredDocuments(t *testing.T) {
	t.Parallel()

	contractType, err := ContractTypeFromRecord(Record{
		"contractName":    "Foo",
		"abi":             []any{},
		"devdoc":          Record{"kind": "dev"},
		"runtimeBytecode": &Bytecode{Bytecode: "0x00"},
	})
	require.NoError(t, err)
	require.NotNil(t, contractType.Abi)
	assert.Equal(t, "[]", *contractType.Abi)
	assert.Equal(t, `{"kind":"dev"}`, contractType.Devdoc)
	assert.Equal(t, "0x00", contractType.RuntimeBytecode.Bytecode)
}

// TestContractTypeParseABI verifies the ABI is parsed into method definitions.
func TestContractTypeParseABI(t *testing.T) {
	t.Parallel()

	parsed, err := newTestContractType().ParseABI()
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "transfer")

	parsed, err = (&ContractType{ContractName: "Empty"}).ParseABI()
	require.NoError(t, err)
	assert.Empty(t, parsed.Methods)

	_, err = (&ContractType{ContractName: "Bad", Abi: stringPtr("not json")}).ParseABI()
	assert.Error(t, err)
}

// TestContractInstanceFromRecord verifies conversion of required fields and nested bytecode.
func TestContractInstanceFromRecord(t *testing.T) {
	t.Parallel()

	record := Record{
		"contractType":    "Token",
		"address":         "0x1111111111111111111111111111111111111111",
		"transaction":     "0xabc",
		"runtimeBytecode": Record{"bytecode": "0x6080"},
	}
	instance, err := ContractInstanceFromRecord(record)
	require.NoError(t, err)
	assert.Equal(t, "Token", instance.ContractType)
	assert.Equal(t, "0xabc", instance.Transaction)
	assert.Empty(t, instance.Block)
	assert.Equal(t, &Bytecode{Bytecode: "0x6080"}, instance.RuntimeBytecode)
	assert.Equal(t, record, instance.ToRecord())

	address, err := instance.HexAddress()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), address)

	_, err = ContractInstanceFromRecord(Record{"contractType": "Token"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "address", validationErr.Field)

	_, err = (&ContractInstance{ContractType: "Token", Address: "nope"}).HexAddress()
	assert.Error(t, err)
}

// TestCompilerFromRecord verifies compiler conversion and version parsing.
func TestCompilerFromRecord(t *testing.T) {
	t.Parallel()

	compiler, err := CompilerFromRecord(Record{
		"name":          "solc",
		"version":       "0.8.19+commit.7dd6d404",
		"settings":      Record{"optimizer": Record{"enabled": true}},
		"contractTypes": []any{"Token", "SafeMath"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"optimizer":{"enabled":true}}`, compiler.Settings)
	assert.Equal(t, []string{"Token", "SafeMath"}, compiler.ContractTypes)

	version, err := compiler.SemVer()
	require.NoError(t, err)
	assert.Equal(t, int64(8), version.Minor())

	decoded, err := CompilerFromRecord(compiler.ToRecord())
	require.NoError(t, err)
	assert.Equal(t, compiler, decoded)

	_, err = CompilerFromRecord(Record{"name": "solc"})
	assert.Error(t, err)

	_, err = (&Compiler{Name: "solc", Version: "latest"}).SemVer()
	assert.Error(t, err)
}
