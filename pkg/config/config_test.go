package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kml_router/pkg/export"
)

// clearEnv blanks every variable Load reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GRAPH_DATA", "LINE_WIDTH", "LINE_COLOR", "PORT", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "SNAPPER"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.LineWidth != export.DefaultLineWidth || cfg.Export.LineColor != export.DefaultLineColor {
		t.Errorf("export = %+v", cfg.Export)
	}
	if cfg.Routing.Snapper != "rtree" {
		t.Errorf("snapper = %q, want rtree", cfg.Routing.Snapper)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
server:
  port: 9000
  request_timeout: 2s
  cors_origins: ["https://a.example"]
graph:
  path: /srv/graph.json
routing:
  snapper: scan
export:
  line_width: 4.5
  line_color: ff00ff00
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.RequestTimeout != 2*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://a.example" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Graph.Path != "/srv/graph.json" || cfg.Routing.Snapper != "scan" {
		t.Errorf("graph/routing = %+v %+v", cfg.Graph, cfg.Routing)
	}
	if s := cfg.Style(); s.LineWidth != 4.5 || s.LineColor != "ff00ff00" {
		t.Errorf("style = %+v", s)
	}
	// Unset keys keep their defaults.
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout = %v, want default 5s", cfg.Server.ReadTimeout)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeFile(t, "empty.yaml", "")); err != nil {
		t.Errorf("Load(empty) = %v", err)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "export:\n  line_width: 4\n")
	t.Setenv("LINE_WIDTH", "7")
	t.Setenv("LINE_COLOR", "ff0000ff")
	t.Setenv("GRAPH_DATA", "other.json")
	t.Setenv("PORT", "5000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SNAPPER", "scan")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.LineWidth != 7 || cfg.Export.LineColor != "ff0000ff" {
		t.Errorf("export = %+v", cfg.Export)
	}
	if cfg.Graph.Path != "other.json" || cfg.Server.Port != 5000 || cfg.Routing.Snapper != "scan" {
		t.Errorf("cfg = %+v", cfg)
	}
	if strings.Join(cfg.Server.CORSOrigins, "|") != "https://a.example|https://b.example" {
		t.Errorf("cors origins = %q", cfg.Server.CORSOrigins)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad width env", env: map[string]string{"LINE_WIDTH": "wide"}},
		{name: "negative width", env: map[string]string{"LINE_WIDTH": "-1"}},
		{name: "bad color", env: map[string]string{"LINE_COLOR": "blue"}},
		{name: "bad port", env: map[string]string{"PORT": "http"}},
		{name: "unknown snapper", env: map[string]string{"SNAPPER": "kdtree"}},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "unknown yaml key", file: "routing:\n  algorithm: astar\n"},
		{name: "malformed yaml", file: "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, "config.yaml", tt.file)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("LINE_COLOR")
	path := writeFile(t, ".env", "LINE_COLOR=ff123456\n")

	LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env"))
	t.Cleanup(func() { os.Unsetenv("LINE_COLOR") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.LineColor != "ff123456" {
		t.Errorf("line color = %q, want value from .env", cfg.Export.LineColor)
	}
}
