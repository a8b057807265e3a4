package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostfound/found-api/internal/config"
)

func TestNew_JSONWithDefaultFields(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Log:    config.LogConfig{Level: "debug", Format: "json"},
	}
	logger := New(cfg)
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	WithUserID(logger, "user-1").Info("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "found-api", line["service"])
	assert.Equal(t, "test", line["environment"])
	assert.Equal(t, "user-1", line["user_id"])
	assert.Contains(t, line, "ts")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	logger := New(&config.Config{Log: config.LogConfig{Level: "loud", Format: "text"}})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
