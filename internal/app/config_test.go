package app

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATA_PATH", "")
	t.Setenv("LOG_FORMAT", "")
	cfg, err := LoadConfig()
	require.Error(t, err, "blank DATA_PATH must be rejected")
	assert.Nil(t, cfg)

	t.Setenv("DATA_PATH", " testdata/metrics.csv ")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("GOTENBERG_URL", "")
	t.Setenv("LOG_FORMAT", "json")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "testdata/metrics.csv", cfg.DataPath)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Less(t, cfg.PDFTimeout, cfg.AppWriteTimeout)
	assert.Less(t, cfg.PDFTimeout, cfg.AppRequestTimeout)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.PDFEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("DATA_PATH", "data.csv")
	t.Setenv("LOG_FORMAT", "xml")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("LOG_FORMAT", "pretty")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT_PER_MINUTE", "60")
	t.Setenv("CACHE_TTL", "soon")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigKeepsPDFWithinWriteTimeout(t *testing.T) {
	t.Setenv("DATA_PATH", "data.csv")
	t.Setenv("LOG_FORMAT", "pretty")
	t.Setenv("GOTENBERG_URL", "http://gotenberg:3000")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.PDFEnabled())

	t.Setenv("APP_WRITE_TIMEOUT", "15s")
	t.Setenv("PDF_TIMEOUT", "30s")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf timeout")

	t.Setenv("GOTENBERG_URL", "")
	_, err = LoadConfig()
	assert.NoError(t, err, "the budget only matters when PDF export is on")
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{LogFormat: "json"}, &buf).Info("loaded", "rows", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "loaded", line["msg"])
	assert.EqualValues(t, 3, line["rows"])
	assert.NotNil(t, line["source"])

	buf.Reset()
	newLogger(&Config{LogFormat: "pretty", AppEnv: "production"}, &buf).Debug("hidden")
	assert.Zero(t, buf.Len())
}

func TestInTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
