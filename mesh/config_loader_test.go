package mesh

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func validConfigYAML() string {
	return `input: scanners.txt
alignment:
  minCorrespondences: 10
  workers: 3
mqtt:
  broker: tcp://localhost:1883
  publishPrefix: beacons
  clientId: beaconmesh-test
http:
  port: 9090
output:
  report: out/report.json
  geojson: out/beacons.geojson
  plane: xz
  gridSpacing: 250
`
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// LoadConfig
// ---------------------------------------------------------------------------

func TestLoadConfig_NotExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, validConfigYAML())

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Input != "scanners.txt" {
		t.Errorf("Input = %q, want scanners.txt", cfg.Input)
	}
	if cfg.Alignment.MinCorrespondences != 10 || cfg.Alignment.Workers != 3 {
		t.Errorf("Alignment = %+v", cfg.Alignment)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("Broker = %q, want %q", cfg.MQTT.Broker, "tcp://localhost:1883")
	}
	if cfg.MQTT.PublishPrefix != "beacons" {
		t.Errorf("PublishPrefix = %q, want beacons", cfg.MQTT.PublishPrefix)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("HTTP.Port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.GetPlane() != PlaneXZ {
		t.Errorf("GetPlane() = %q, want xz", cfg.GetPlane())
	}
	if cfg.Output.GridSpacing != 250 {
		t.Errorf("GridSpacing = %g, want 250", cfg.Output.GridSpacing)
	}

	ac := cfg.AlignConfig()
	if ac.MinCorrespondences != 10 || ac.Workers != 3 {
		t.Errorf("AlignConfig() = %+v", ac)
	}
}

func TestLoadConfig_DefaultsForMissingFields(t *testing.T) {
	path := writeConfig(t, "input: scanners.txt\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Alignment.MinCorrespondences != DefaultMinCorrespondences {
		t.Errorf("MinCorrespondences = %d, want %d", cfg.Alignment.MinCorrespondences, DefaultMinCorrespondences)
	}
	if cfg.HTTP.Port != DefaultHTTPPort {
		t.Errorf("HTTP.Port = %d, want %d", cfg.HTTP.Port, DefaultHTTPPort)
	}
	if cfg.GetPlane() != PlaneXY {
		t.Errorf("GetPlane() = %q, want xy", cfg.GetPlane())
	}
	if cfg.MQTT.PublishPrefix != "beaconmesh" {
		t.Errorf("PublishPrefix = %q, want beaconmesh", cfg.MQTT.PublishPrefix)
	}
	if ac := cfg.AlignConfig(); ac.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("AlignConfig().Workers = %d, want GOMAXPROCS", ac.Workers)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "alignment: [unclosed\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected YAML error, got nil")
	}
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"negative correspondences", "alignment:\n  minCorrespondences: -1\n", "minCorrespondences"},
		{"correspondences below usable floor", "alignment:\n  minCorrespondences: 2\n", "minCorrespondences"},
		{"negative workers", "alignment:\n  workers: -2\n", "workers"},
		{"port too large", "http:\n  port: 70000\n", "port"},
		{"unknown plane", "output:\n  plane: xw\n", "plane"},
		{"negative grid", "output:\n  gridSpacing: -5\n", "gridSpacing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_SmallestUsableOverlap(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "alignment:\n  minCorrespondences: 3\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AlignConfig().MinCorrespondences != MinUsableCorrespondences {
		t.Errorf("MinCorrespondences = %d, want %d", cfg.AlignConfig().MinCorrespondences, MinUsableCorrespondences)
	}
}

// ---------------------------------------------------------------------------
// SaveConfig
// ---------------------------------------------------------------------------

func TestSaveConfig_RoundTrip(t *testing.T) {
	original, err := LoadConfig(writeConfig(t, validConfigYAML()))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(saved): %v", err)
	}
	if *loaded != *original {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", *loaded, *original)
	}
}

func TestSaveConfig_BadPath(t *testing.T) {
	err := SaveConfig(filepath.Join(t.TempDir(), "missing", "dir", "c.yaml"), DefaultConfig())
	if err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
