// Package config loads server settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"kml_router/pkg/export"
	"kml_router/pkg/routing"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Graph   GraphConfig   `yaml:"graph"`
	Routing RoutingConfig `yaml:"routing"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
	CORSOrigins    []string      `yaml:"cors_origins"`
}

type GraphConfig struct {
	// Path is an adjacency JSON file or an OSM extract (.osm, .xml, .pbf).
	Path string `yaml:"path"`
}

type RoutingConfig struct {
	Snapper string `yaml:"snapper"`
}

type ExportConfig struct {
	LineWidth float64 `yaml:"line_width"`
	LineColor string  `yaml:"line_color"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			RequestTimeout: 5 * time.Second,
			MaxConcurrent:  runtime.NumCPU() * 2,
		},
		Graph:   GraphConfig{Path: "./data/graph_example.json"},
		Routing: RoutingConfig{Snapper: routing.SnapperRTree},
		Export: ExportConfig{
			LineWidth: export.DefaultLineWidth,
			LineColor: export.DefaultLineColor,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadDotEnv loads each existing .env file into the process environment.
// Variables that are already set win.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped
// when path is empty) and then the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("GRAPH_DATA"); v != "" {
		c.Graph.Path = v
	}
	if v := getenv("LINE_WIDTH"); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("LINE_WIDTH: %w", err)
		}
		c.Export.LineWidth = w
	}
	if v := getenv("LINE_COLOR"); v != "" {
		c.Export.LineColor = v
	}
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := getenv("SNAPPER"); v != "" {
		c.Routing.Snapper = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Style returns the export line style.
func (c Config) Style() export.Style {
	return export.Style{LineWidth: c.Export.LineWidth, LineColor: c.Export.LineColor}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Graph.Path == "" {
		return errors.New("graph.path is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxConcurrent < 1 {
		return fmt.Errorf("server.max_concurrent must be at least 1, got %d", c.Server.MaxConcurrent)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	switch c.Routing.Snapper {
	case routing.SnapperScan, routing.SnapperRTree:
	default:
		return fmt.Errorf("routing.snapper %q: want %s or %s", c.Routing.Snapper, routing.SnapperScan, routing.SnapperRTree)
	}
	if err := c.Style().Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	return nil
}
