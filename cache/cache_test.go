package cache

import (
	"bytes"
	"testing"
	"time"

	"github.com/crytic/ethpm/logging"
	"github.com/crytic/ethpm/manifest"
	"github.com/crytic/ethpm/manifest/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestCache opens a cache in a temporary directory which is closed when the test ends.
func openTestCache(t *testing.T) *ArtifactCache {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

// createTestManifest returns a manifest with a single contract type and source.
func createTestManifest(runtimeBytecode string) *manifest.Manifest {
	abi := "[]"
	m := manifest.NewManifest("token", "1.0.0")
	m.AddContractType(&types.ContractType{
		ContractName:    "Token",
		SourceID:        "Token.sol",
		RuntimeBytecode: &types.Bytecode{Bytecode: runtimeBytecode},
		Abi:             &abi,
	})
	m.Sources["Token.sol"] = &types.Source{
		URLs:     []string{"https://example.com/Token.sol"},
		Content:  "contract Token {}",
		Checksum: &types.Checksum{Algorithm: "md5", Hash: "abc"},
	}
	return m
}

func TestContractTypeRoundTrip(t *testing.T) {
	t.Parallel()
	c := openTestCache(t)

	_, err := c.GetContractType("Token")
	assert.ErrorIs(t, err, ErrCacheMiss)

	m := createTestManifest("0x6001")
	require.NoError(t, c.PutContractType(m.ContractTypes["Token"]))
	require.NoError(t, c.PutContractType(&types.ContractType{ContractName: "Alpha"}))

	contractType, err := c.GetContractType("Token")
	require.NoError(t, err)
	assert.Equal(t, m.ContractTypes["Token"], contractType)

	names, err := c.ContractTypeNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Token"}, names)

	assert.Error(t, c.PutContractType(&types.ContractType{}))
}

func TestSourceRoundTrip(t *testing.T) {
	t.Parallel()
	c := openTestCache(t)

	_, err := c.GetSource("Token.sol")
	assert.ErrorIs(t, err, ErrCacheMiss)

	m := createTestManifest("0x6001")
	require.NoError(t, c.PutSource("Token.sol", m.Sources["Token.sol"]))

	source, err := c.GetSource("Token.sol")
	require.NoError(t, err)
	assert.Equal(t, m.Sources["Token.sol"], source)
}

func TestPutManifest(t *testing.T) {
	t.Parallel()
	c := openTestCache(t)

	m := createTestManifest("0x6001")
	require.NoError(t, c.PutManifest(m))

	contractType, err := c.GetContractType("Token")
	require.NoError(t, err)
	assert.Equal(t, "0x6001", contractType.RuntimeBytecode.Bytecode)

	source, err := c.GetSource("Token.sol")
	require.NoError(t, err)
	assert.Equal(t, "contract Token {}", source.Content)
}

func TestReopenPersists(t *testing.T) {
	t.Parallel()
	directory := t.TempDir()

	c, err := Open(directory)
	require.NoError(t, err)
	require.NoError(t, c.PutManifest(createTestManifest("0x6001")))
	require.NoError(t, c.SetArtifactHash("abc123"))
	require.NoError(t, c.Close())

	c, err = Open(directory)
	require.NoError(t, err)
	defer c.Close()

	names, err := c.ContractTypeNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Token"}, names)

	hash, err := c.ArtifactHash()
	require.NoError(t, err)
	require.NotNil(t, hash)
	assert.Equal(t, "abc123", hash.Hash)
	assert.WithinDuration(t, time.Now(), hash.Timestamp, time.Minute)
}

func TestArtifactHashEmpty(t *testing.T) {
	t.Parallel()
	c := openTestCache(t)

	hash, err := c.ArtifactHash()
	require.NoError(t, err)
	assert.Nil(t, hash)
}

func TestNotifyArtifactHashStatus(t *testing.T) {
	t.Parallel()
	c := openTestCache(t)

	var buf bytes.Buffer
	logger := logging.NewLogger(zerolog.InfoLevel, false)
	logger.AddWriter(&buf, logging.UNSTRUCTURED)

	// Manifests without contract types are ignored
	NotifyArtifactHashStatus(manifest.NewManifest("empty", "1.0.0"), c, logger)
	assert.Zero(t, buf.Len())
	hash, err := c.ArtifactHash()
	require.NoError(t, err)
	assert.Nil(t, hash)

	m := createTestManifest("0x6001")
	NotifyArtifactHashStatus(m, c, logger)
	assert.Contains(t, buf.String(), "new set of build artifacts")

	hash, err = c.ArtifactHash()
	require.NoError(t, err)
	require.NotNil(t, hash)
	assert.Equal(t, m.ComputeArtifactHash(), hash.Hash)

	buf.Reset()
	NotifyArtifactHashStatus(m, c, logger)
	assert.Contains(t, buf.String(), "same as previously cached")

	buf.Reset()
	NotifyArtifactHashStatus(createTestManifest("0x6002"), c, logger)
	assert.Contains(t, buf.String(), "new set of build artifacts")
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		duration time.Duration
		expected string
	}{
		{30 * time.Second, "30 seconds"},
		{1 * time.Minute, "1 minute"},
		{5 * time.Minute, "5 minutes"},
		{1 * time.Hour, "1 hour"},
		{3 * time.Hour, "3 hours"},
		{24 * time.Hour, "1 day"},
		{72 * time.Hour, "3 days"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
