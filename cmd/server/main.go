package main

import (
	"context"
	"flag"
	"os"
	"time"

	"kml_router/pkg/api"
	"kml_router/pkg/config"
	"kml_router/pkg/export"
	"kml_router/pkg/graph"
	"kml_router/pkg/logger"
	"kml_router/pkg/routing"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	graphPath := flag.String("graph", "", "Network source: adjacency .json, .osm/.xml or .pbf (overrides config)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	config.LoadDotEnv(".env")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Setup("info", "text", nil).Error("config_error", "err", err)
		os.Exit(1)
	}
	if *graphPath != "" {
		cfg.Graph.Path = *graphPath
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.Setup(cfg.Log.Level, cfg.Log.Format, nil)
	start := time.Now()

	// Load network.
	log.Info("graph_loading", "path", cfg.Graph.Path)
	adj, err := graph.LoadFile(context.Background(), cfg.Graph.Path)
	if err != nil {
		log.Error("graph_load_error", "path", cfg.Graph.Path, "err", err)
		os.Exit(1)
	}
	g, buildStats, err := graph.BuildWithStats(adj)
	if err != nil {
		log.Error("graph_build_error", "err", err)
		os.Exit(1)
	}
	log.Info("graph_loaded",
		"nodes", g.NumNodes(),
		"edges", g.NumEdges(),
		"self_loops_skipped", buildStats.SelfLoops,
		"duplicate_edges", buildStats.DuplicateEdges,
	)
	if n := g.NumComponents(); n > 1 {
		log.Warn("graph_disconnected", "components", n, "largest", len(graph.LargestComponent(g)))
	}

	// Build routing engine.
	snapper, err := routing.NewSnapper(g, cfg.Routing.Snapper)
	if err != nil {
		log.Error("snapper_error", "err", err)
		os.Exit(1)
	}
	exporters, err := export.NewAll(g, cfg.Style())
	if err != nil {
		log.Error("exporter_error", "err", err)
		os.Exit(1)
	}
	engine := routing.NewEngine(g, snapper, exporters)
	log.Info("ready", "snapper", cfg.Routing.Snapper, "elapsed_ms", time.Since(start).Milliseconds())

	// Setup HTTP server.
	srvCfg := api.DefaultConfig(cfg.Addr())
	srvCfg.ReadTimeout = cfg.Server.ReadTimeout
	srvCfg.WriteTimeout = cfg.Server.WriteTimeout
	srvCfg.RequestTimeout = cfg.Server.RequestTimeout
	srvCfg.MaxConcurrent = cfg.Server.MaxConcurrent
	srvCfg.CORSOrigins = cfg.Server.CORSOrigins

	handlers := api.NewHandlers(engine, api.NewStats(g), log)
	srv := api.NewServer(srvCfg, handlers, log)

	if err := api.ListenAndServe(srv, log); err != nil {
		log.Error("server_stopped", "err", err)
		os.Exit(1)
	}
}
