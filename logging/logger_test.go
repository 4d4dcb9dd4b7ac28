package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/crytic/ethpm/logging/colors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAddAndRemoveWriter ensures writers are tracked once each and can be removed regardless of format.
func TestAddAndRemoveWriter(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel, false)

	var unstructured, structured bytes.Buffer
	logger.AddWriter(&unstructured, UNSTRUCTURED)
	logger.AddWriter(&structured, STRUCTURED)
	assert.Len(t, logger.writers, 2)

	// Duplicates are ignored
	logger.AddWriter(&unstructured, UNSTRUCTURED)
	logger.AddWriter(&structured, STRUCTURED)
	assert.Len(t, logger.writers, 2)

	logger.RemoveWriter(&unstructured)
	logger.RemoveWriter(&structured)
	assert.Len(t, logger.writers, 0)

	// Nothing is written once the writers are gone
	logger.Info("foo")
	assert.Zero(t, unstructured.Len())
	assert.Zero(t, structured.Len())
}

// TestStructuredOutput verifies structured writers receive JSON events with sub-logger context, errors and
// structured info attached, and without any color codes.
func TestStructuredOutput(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel, false)
	var buf bytes.Buffer
	logger.AddWriter(&buf, STRUCTURED)

	subLogger := logger.NewSubLogger("module", MANIFEST_SERVICE)
	subLogger.Warn("fetched ", colors.Bold, "Token.sol", errors.New("checksum mismatch"), StructuredLogInfo{"urls": 2})

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.EqualValues(t, "warn", event["level"])
	assert.EqualValues(t, "fetched Token.sol", event["message"])
	assert.EqualValues(t, MANIFEST_SERVICE, event["module"])
	assert.EqualValues(t, "checksum mismatch", event["error"])
	assert.EqualValues(t, map[string]any{"urls": float64(2)}, event["info"])
}

// TestLevelFiltering verifies events below the logger level are dropped, and that SetLevel takes effect.
func TestLevelFiltering(t *testing.T) {
	logger := NewLogger(zerolog.WarnLevel, false)
	var buf bytes.Buffer
	logger.AddWriter(&buf, UNSTRUCTURED)

	logger.Info("hidden")
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	logger.SetLevel(zerolog.DebugLevel)
	assert.Equal(t, zerolog.DebugLevel, logger.Level())
	logger.Debug("shown")
	assert.True(t, strings.Contains(buf.String(), "shown"))
	assert.False(t, strings.Contains(buf.String(), "hidden"))
}

// TestPanicReachesWriters verifies that Panic logs to every writer before panicking.
func TestPanicReachesWriters(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel, false)
	var buf bytes.Buffer
	logger.AddWriter(&buf, UNSTRUCTURED)

	assert.PanicsWithValue(t, "unrecoverable", func() {
		logger.Panic("unrecoverable")
	})
	assert.Contains(t, buf.String(), "unrecoverable")
}

// TestBuildMsgs verifies color functions only affect the console message.
func TestBuildMsgs(t *testing.T) {
	colors.EnableColor()

	consoleMsg, writerMsg, err, info := buildMsgs("a", colors.Red, "b")
	assert.Equal(t, "ab", writerMsg)
	assert.Equal(t, colors.Reset("a")+colors.Red("b"), consoleMsg)
	assert.NotEqual(t, writerMsg, consoleMsg)
	assert.NoError(t, err)
	assert.Nil(t, info)
}
