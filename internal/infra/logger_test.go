package infra

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerJSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")
	logger.Info().Msg("hidden")
	logger.Warn().Str("id", "1718000000000-abc").Msg("shown")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "shown" || line["service"] != "padhai-video" || line["id"] != "1718000000000-abc" {
		t.Fatalf("line = %v", line)
	}
}

func TestNewLoggerIgnoresUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "loud")
	logger.Info().Msg("kept")
	if buf.Len() == 0 {
		t.Fatal("info line dropped with an unparseable level")
	}
}
