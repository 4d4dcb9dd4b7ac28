package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/ethpm/manifest/checksum"
	"github.com/crytic/ethpm/manifest/types"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testManifestJSON describes a small manifest with one source, one contract type, a compiler and a deployment.
const testManifestJSON = `{
	"manifest": "ethpm/3",
	"name": "token",
	"version": "1.0.0",
	"sources": {
		"Token.sol": {
			"urls": ["https://example.com/Token.sol"],
			"installPath": "./contracts/Token.sol",
			"type": "solidity",
			"license": "MIT"
		}
	},
	"contractTypes": {
		"Token": {
			"contractName": "Token",
			"sourceId": "Token.sol",
			"sourcePath": "contracts/./Token.sol",
			"deploymentBytecode": {"bytecode": "0x6080"},
			"runtimeBytecode": {"bytecode": "0x6001"},
			"abi": "[]"
		}
	},
	"compilers": [
		{"name": "solc", "version": "0.8.19", "contractTypes": ["Token"]}
	],
	"deployments": {
		"1": {
			"Token": {"contractType": "Token", "address": "0x000000000000000000000000000000000000dEaD"}
		}
	}
}`

// loadTestManifest decodes testManifestJSON.
func loadTestManifest(t *testing.T) *Manifest {
	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(testManifestJSON), &m))
	return &m
}

// TestManifestDecode verifies every section of a manifest is converted into its typed form.
func TestManifestDecode(t *testing.T) {
	m := loadTestManifest(t)

	assert.Equal(t, "ethpm/3", m.ManifestVersion)
	assert.Equal(t, "token", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, []string{"Token.sol"}, m.SourceIDs())
	assert.Equal(t, []string{"Token"}, m.ContractTypeNames())
	assert.Equal(t, "contracts/Token.sol", m.ContractTypes["Token"].SourcePath.String())
	require.Len(t, m.Compilers, 1)
	assert.Equal(t, "solc", m.Compilers[0].Name)
	assert.Equal(t, "Token", m.Deployments["1"]["Token"].ContractType)
	assert.NoError(t, m.Validate())
}

// TestManifestRecordRoundTrip verifies rendering and re-reading a manifest preserves it.
func TestManifestRecordRoundTrip(t *testing.T) {
	m := loadTestManifest(t)

	b, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Manifest
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, m.ToRecord(), decoded.ToRecord())
}

// TestManifestDecodeErrors verifies malformed sections are rejected.
func TestManifestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		record types.Record
	}{
		{name: "name not a string", record: types.Record{"name": 5}},
		{name: "sources not an object", record: types.Record{"sources": []any{}}},
		{name: "source not an object", record: types.Record{"sources": types.Record{"a": "b"}}},
		{name: "source missing urls", record: types.Record{"sources": types.Record{"a": types.Record{}}}},
		{name: "compilers not a list", record: types.Record{"compilers": types.Record{}}},
		{name: "contract type missing name", record: types.Record{"contractTypes": types.Record{"A": types.Record{}}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := FromRecord(test.record)
			assert.Error(t, err)
		})
	}
}

// TestManifestValidate verifies dangling references are reported.
func TestManifestValidate(t *testing.T) {
	m := loadTestManifest(t)
	m.Deployments["1"]["Other"] = &types.ContractInstance{ContractType: "Missing", Address: "0x00"}
	assert.ErrorContains(t, m.Validate(), "unknown contract type 'Missing'")

	m = loadTestManifest(t)
	m.Compilers[0].ContractTypes = append(m.Compilers[0].ContractTypes, "Missing")
	assert.ErrorContains(t, m.Validate(), "compiler 'solc'")

	m = loadTestManifest(t)
	m.ContractTypes["Alias"] = m.ContractTypes["Token"]
	assert.ErrorContains(t, m.Validate(), "keyed as 'Alias'")
}

// TestLoadSources verifies sources are fetched, checksummed, and reported per source on failure.
func TestLoadSources(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", "https://example.com/Token.sol",
		httpmock.NewStringResponder(200, "contract Token {}"))
	httpmock.RegisterResponder("GET", "https://example.com/Broken.sol",
		httpmock.NewStringResponder(404, "not found"))

	m := loadTestManifest(t)
	m.Sources["Broken.sol"] = &types.Source{URLs: []string{"https://example.com/Broken.sol"}}
	m.Sources["Empty.sol"] = &types.Source{URLs: []string{}}
	m.Sources["Inline.sol"] = &types.Source{URLs: []string{}, Content: "contract Inline {}"}

	var loaded []SourceLoadedEvent
	m.Events.SourceLoaded.Subscribe(func(event SourceLoadedEvent) error {
		loaded = append(loaded, event)
		return nil
	})

	err := m.LoadSources(context.Background(), types.DefaultFetcher, "sha256", false)
	require.Error(t, err)

	var failures SourceErrors
	require.ErrorAs(t, err, &failures)
	assert.Len(t, failures, 1)
	assert.Contains(t, failures, "Broken.sol")
	assert.Contains(t, err.Error(), "Broken.sol: ")

	expected, err := checksum.Compute([]byte("contract Token {}"), "sha256")
	require.NoError(t, err)
	token := m.Sources["Token.sol"]
	assert.Equal(t, "contract Token {}", token.Content)
	assert.Equal(t, &types.Checksum{Algorithm: "sha256", Hash: expected}, token.Checksum)
	assert.Nil(t, m.Sources["Empty.sol"].Checksum)
	assert.NotNil(t, m.Sources["Inline.sol"].Checksum)

	// Only successfully loaded sources are published, in identifier order
	require.Len(t, loaded, 2)
	assert.Equal(t, "Inline.sol", loaded[0].ID)
	assert.False(t, loaded[0].Fetched)
	assert.Equal(t, "Token.sol", loaded[1].ID)
	assert.True(t, loaded[1].Fetched)
	assert.Same(t, token, loaded[1].Source)

	// Loaded sources are not fetched again unless forced
	delete(m.Sources, "Broken.sol")
	delete(m.Sources, "Inline.sol")
	require.NoError(t, m.LoadSources(context.Background(), types.DefaultFetcher, "md5", false))
	assert.Equal(t, 1, httpmock.GetCallCountInfo()["GET https://example.com/Token.sol"])
	assert.Equal(t, "sha256", token.Checksum.Algorithm)

	require.NoError(t, m.LoadSources(context.Background(), types.DefaultFetcher, "md5", true))
	assert.Equal(t, 2, httpmock.GetCallCountInfo()["GET https://example.com/Token.sol"])
	assert.Equal(t, "md5", token.Checksum.Algorithm)
}

// TestLoadSourcesCancelled verifies nothing is fetched once the context is cancelled.
func TestLoadSourcesCancelled(t *testing.T) {
	m := loadTestManifest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetched := false
	err := m.LoadSources(ctx, func(url string) ([]byte, error) {
		fetched = true
		return []byte("contract Token {}"), nil
	}, "", false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, fetched)
}

// TestVerifySources verifies modified content is detected and unloaded sources are skipped.
func TestVerifySources(t *testing.T) {
	m := NewManifest("token", "1.0.0")
	m.Sources["A.sol"] = &types.Source{URLs: []string{}, Content: "contract A {}"}
	m.Sources["B.sol"] = &types.Source{URLs: []string{}, Content: "contract B {}"}
	m.Sources["C.sol"] = &types.Source{URLs: []string{"https://example.com/C.sol"}}
	require.NoError(t, m.Sources["A.sol"].ComputeChecksum("", false))
	require.NoError(t, m.Sources["B.sol"].ComputeChecksum("keccak256", false))

	mismatched, err := m.VerifySources()
	require.NoError(t, err)
	assert.Empty(t, mismatched)

	m.Sources["B.sol"].Content = "contract B { uint x; }"
	mismatched, err = m.VerifySources()
	require.NoError(t, err)
	assert.Equal(t, []string{"B.sol"}, mismatched)

	m.Sources["A.sol"].Checksum.Algorithm = "crc32"
	_, err = m.VerifySources()
	assert.ErrorIs(t, err, checksum.ErrUnsupportedAlgorithm)
}

// TestComputeArtifactHash verifies the hash is deterministic and sensitive to bytecode changes.
func TestComputeArtifactHash(t *testing.T) {
	empty := NewManifest("token", "1.0.0").ComputeArtifactHash()
	assert.NotEmpty(t, empty)

	m1 := loadTestManifest(t)
	m2 := loadTestManifest(t)
	assert.Equal(t, m1.ComputeArtifactHash(), m2.ComputeArtifactHash())
	assert.NotEqual(t, empty, m1.ComputeArtifactHash())

	m2.ContractTypes["Token"].RuntimeBytecode.Bytecode = "0x6002"
	assert.NotEqual(t, m1.ComputeArtifactHash(), m2.ComputeArtifactHash())

	// Contract types without bytecode still contribute their name
	m2.AddContractType(&types.ContractType{ContractName: "Interface"})
	assert.NoError(t, m2.Validate())
	assert.Contains(t, m2.ContractTypeNames(), "Interface")
}

// TestManifestFileRoundTrip verifies a manifest written to disk is read back unchanged and no temporary files are
// left behind.
func TestManifestFileRoundTrip(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "build")
	path := filepath.Join(directory, "manifest.json")

	m := loadTestManifest(t)
	require.NoError(t, m.WriteToFile(path))

	read, err := ReadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.ToRecord(), read.ToRecord())

	entries, err := os.ReadDir(directory)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = ReadManifestFile(filepath.Join(directory, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = ReadManifestFile(path)
	assert.Error(t, err)
}
