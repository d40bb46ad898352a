package meter_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ineyio/llmselector"
	"github.com/ineyio/llmselector/meter"
)

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestLogMeter_Select(t *testing.T) {
	var buf bytes.Buffer
	m := meter.NewLogMeter(slog.New(slog.NewJSONHandler(&buf, nil)))

	m.OnSelect(llmselector.SelectEvent{
		ID:              "sel-1",
		Index:           1,
		Model:           "gpt-3.5-turbo-16k-0613",
		EstimatedTokens: 6000,
		ExactTokens:     4500,
		ExactPass:       true,
		Streaming:       true,
		CacheHit:        true,
	})

	rec := decodeRecord(t, &buf)
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "select", rec["msg"])
	assert.Equal(t, "sel-1", rec["id"])
	assert.Equal(t, "gpt-3.5-turbo-16k-0613", rec["model"])
	assert.EqualValues(t, 4500, rec["exact_tokens"])
	assert.Equal(t, true, rec["cache_hit"])
}

func TestLogMeter_Fallback(t *testing.T) {
	var buf bytes.Buffer
	m := meter.NewLogMeter(slog.New(slog.NewJSONHandler(&buf, nil)))

	m.OnSelect(llmselector.SelectEvent{ID: "sel-2", Model: "big", Fallback: true, ExactTokens: 99999})

	rec := decodeRecord(t, &buf)
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "select_fallback", rec["msg"])
	assert.Equal(t, "big", rec["model"])
}

func TestNewLogMeter_DefaultLogger(t *testing.T) {
	m := meter.NewLogMeter(nil)
	assert.Same(t, slog.Default(), m.Logger)
}
