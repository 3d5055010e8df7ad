package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}
	// All writes on a nil manager are no-ops.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil WriteTelemetry: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestTelemetryHeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	for i := 0; i < 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: int64(i)}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	om.Close()

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 records", len(lines))
	}
	if !strings.Contains(lines[0], "window_end") {
		t.Errorf("first line is not a header: %q", lines[0])
	}
	if strings.Contains(lines[1], "window_end") {
		t.Errorf("header repeated in record line: %q", lines[1])
	}
}

func TestConfigSnapshotWritten(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	if err := om.WriteConfigSnapshot([]byte(`{"gravity":{"strength":500}}`)); err != nil {
		t.Fatalf("WriteConfigSnapshot: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("reading config.json: %v", err)
	}
	if !strings.Contains(string(data), "gravity") {
		t.Errorf("config.json content = %q", data)
	}
}
