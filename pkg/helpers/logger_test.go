package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_LevelOverride(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, logrus.DebugLevel, newLogger(&buf, "api", "development", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, newLogger(&buf, "api", "production", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, newLogger(&buf, "api", "production", "warn").GetLevel())

	buf.Reset()
	assert.Equal(t, logrus.InfoLevel, newLogger(&buf, "api", "production", "chatty").GetLevel())
	assert.Contains(t, buf.String(), "ignoring LOG_LEVEL")
}

func TestLogError_WritesErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "api", "production", "")
	buf.Reset()

	LogError(logger, "request failed", errors.New("boom"), logrus.Fields{"path": "/x"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "request failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "/x", entry["path"])
	assert.Equal(t, "error", entry["level"])
}
