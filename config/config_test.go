package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Screen.Width <= 0 || cfg.Screen.Height <= 0 {
		t.Errorf("default screen size invalid: %dx%d", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Physics.DT <= 0 {
		t.Errorf("default dt = %v, want > 0", cfg.Physics.DT)
	}
	if cfg.Mode != "forces" {
		t.Errorf("default mode = %q, want forces", cfg.Mode)
	}
	if cfg.Spawn.Count <= 0 {
		t.Errorf("default spawn count = %d, want > 0", cfg.Spawn.Count)
	}

	// World defaults to screen size.
	if cfg.Derived.WorldW32 != float32(cfg.Screen.Width) {
		t.Errorf("derived world width = %v, want %d", cfg.Derived.WorldW32, cfg.Screen.Width)
	}
}

func TestLoadUserFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	doc := "mode: trail\nspawn:\n  count: 42\nworld:\n  width: 2000\n  height: 1500\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "trail" {
		t.Errorf("mode = %q, want trail", cfg.Mode)
	}
	if cfg.Spawn.Count != 42 {
		t.Errorf("spawn count = %d, want 42", cfg.Spawn.Count)
	}
	if cfg.Derived.WorldW32 != 2000 || cfg.Derived.WorldH32 != 1500 {
		t.Errorf("derived world = %vx%v, want 2000x1500", cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	}
	// Untouched keys keep their defaults.
	if cfg.Spawn.Shape != "grid" {
		t.Errorf("spawn shape = %q, want default grid", cfg.Spawn.Shape)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/run.yaml"); err == nil {
		t.Error("missing file accepted")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in         string
		r, g, b, a uint8
		wantErr    bool
	}{
		{in: "#ff4081", r: 0xff, g: 0x40, b: 0x81, a: 0xff},
		{in: "#FF4081", r: 0xff, g: 0x40, b: 0x81, a: 0xff},
		{in: "#00000080", r: 0, g: 0, b: 0, a: 0x80},
		{in: "ff4081", wantErr: true},
		{in: "#ff40", wantErr: true},
		{in: "#gg4081", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, g, b, a, err := ParseHexColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseHexColor(%q) accepted", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHexColor(%q): %v", tt.in, err)
			}
			if r != tt.r || g != tt.g || b != tt.b || a != tt.a {
				t.Errorf("got (%d,%d,%d,%d), want (%d,%d,%d,%d)", r, g, b, a, tt.r, tt.g, tt.b, tt.a)
			}
		})
	}
}
