package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"kml_router/pkg/graph"
	"kml_router/pkg/logger"
	osmparser "kml_router/pkg/osm"
)

func main() {
	input := flag.String("input", "", "Path to .osm, .osm.pbf or adjacency .json file")
	output := flag.String("output", "graph.json", "Output adjacency JSON file path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	largest := flag.Bool("largest-component", false, "Keep only the largest connected component")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	flag.Parse()

	log := logger.Setup(*logLevel, "text", nil)

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--output graph.json] [--bbox minLat,minLng,maxLat,maxLng] [--largest-component]")
		os.Exit(1)
	}

	// Parse bbox option.
	var opts osmparser.ParseOptions
	if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		_, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng)
		if err != nil {
			log.Error("invalid_bbox", "bbox", *bbox, "err", err)
			os.Exit(1)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Info("bbox_filter", "min_lat", minLat, "max_lat", maxLat, "min_lng", minLng, "max_lng", maxLng)
	}

	start := time.Now()

	// Step 1: Read the source.
	log.Info("parsing", "input", *input)
	adj, err := graph.LoadFile(context.Background(), *input, opts)
	if err != nil {
		log.Error("parse_error", "input", *input, "err", err)
		os.Exit(1)
	}

	// Step 2: Build graph.
	g, stats, err := graph.BuildWithStats(adj)
	if err != nil {
		log.Error("build_error", "err", err)
		os.Exit(1)
	}
	log.Info("graph_built", "nodes", g.NumNodes(), "edges", g.NumEdges(),
		"components", g.NumComponents(), "self_loops_skipped", stats.SelfLoops)

	// Step 3: Optionally extract the largest connected component.
	if *largest {
		nodes := graph.LargestComponent(g)
		log.Info("largest_component", "nodes", len(nodes),
			"percent", float64(len(nodes))/float64(g.NumNodes())*100)
		adj = graph.FilterToComponent(g, nodes)
	} else {
		adj = g.Adjacency()
	}

	// Step 4: Write adjacency JSON.
	if err := writeOutput(*output, adj); err != nil {
		log.Error("write_error", "output", *output, "err", err)
		os.Exit(1)
	}

	info, _ := os.Stat(*output)
	log.Info("done", "elapsed", time.Since(start).Round(time.Millisecond).String(),
		"output", *output, "bytes", info.Size())
}

func writeOutput(path string, adj graph.Adjacency) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := graph.WriteAdjacencyJSON(w, adj); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
