package logger_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sluglab/slugline/internal/logger"
)

func TestVerboseToggle(t *testing.T) {
	defer logger.SetVerbose(false)

	logger.SetVerbose(true)
	assert.True(t, logger.IsVerbose())

	logger.SetVerbose(false)
	assert.False(t, logger.IsVerbose())
}

func TestDebugSuppressedWhenQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)
	defer logger.SetVerbose(false)

	logger.SetVerbose(false)
	logger.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	logger.SetVerbose(true)
	logger.Debug("visible %d", 2)
	assert.Contains(t, buf.String(), "[DEBUG] visible 2")
}

func TestErrorAlwaysPrinted(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)
	defer logger.SetVerbose(false)

	logger.SetVerbose(false)
	logger.Error("broke: %s", "disk")
	assert.Contains(t, buf.String(), "[ERROR] broke: disk")
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)
	defer logger.SetVerbose(false)

	logger.SetVerbose(true)
	logger.Section("Indexing")
	assert.Contains(t, buf.String(), "=== Indexing ===")
}
