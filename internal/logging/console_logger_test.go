package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

var _ sprocc.Logger = (*ConsoleLogger)(nil)
var _ sprocc.Logger = (*NullLogger)(nil)

func TestConsoleLoggerVerboseSuppressed(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(false, &buf)

	logger.Verbose("hidden %s", "detail")
	assert.Empty(t, buf.String())

	logger.Info("visible")
	assert.Equal(t, "visible\n", buf.String())
}

func TestConsoleLoggerPrefixes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(true, &buf)

	logger.Verbose("v")
	logger.Warn("w %d", 1)
	logger.Error("e")

	assert.Contains(t, buf.String(), "[VERBOSE] v\n")
	assert.Contains(t, buf.String(), "[WARNING] w 1\n")
	assert.Contains(t, buf.String(), "[ERROR] e\n")
}

func TestConsoleLoggerLiteralPercent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(false, &buf)

	// Messages without args must not be interpreted as format strings.
	logger.Info("100% done")
	assert.Equal(t, "100% done\n", buf.String())
}

func TestNullLoggerDiscards(t *testing.T) {
	logger := NewNullLogger()
	logger.Verbose("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")
}
