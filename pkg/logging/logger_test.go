package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("warn", &buf)

	logger.Info("should be dropped")
	logger.Warn("kept", "key", "value")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "kept" {
		t.Errorf("expected msg 'kept', got %v", record["msg"])
	}
	if record["key"] != "value" {
		t.Errorf("expected attribute to be carried, got %v", record["key"])
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("verbose", &buf)

	logger.Debug("dropped")
	if buf.Len() != 0 {
		t.Errorf("debug should be dropped at default level, got %q", buf.String())
	}

	logger.Info("kept")
	if buf.Len() == 0 {
		t.Error("info should be emitted at default level")
	}
}

func TestWithCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", &buf).With("component", "test")

	logger.Info("hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if record["component"] != "test" {
		t.Errorf("expected component attribute, got %v", record)
	}
}
