package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"kml_router/pkg/config"
	"kml_router/pkg/export"
	"kml_router/pkg/graph"
	"kml_router/pkg/logger"
	"kml_router/pkg/routing"
)

func main() {
	log := logger.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), nil)
	if err := run(context.Background(), os.Args[1:], os.Stdout, log); err != nil {
		log.Error("route_failed", "err", err)
		os.Exit(1)
	}
}

// run answers one query from the command line and writes the rendered
// document to a temporary file, printing its path to stdout.
func run(ctx context.Context, args []string, stdout io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("route", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file (optional)")
	graphPath := fs.String("graph", "", "Network source: adjacency .json, .osm/.xml or .pbf (overrides config)")
	from := fs.String("from", "", "Start point as lat,lon")
	to := fs.String("to", "", "End point as lat,lon")
	format := fs.String("format", "kml", "Document format: kml or geojson")
	outDir := fs.String("out", "", "Directory for the document (default: system temp dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from == "" || *to == "" {
		return errors.New("both -from and -to are required")
	}

	start, err := graph.ParseNodeKey(*from)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	end, err := graph.ParseNodeKey(*to)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *graphPath != "" {
		cfg.Graph.Path = *graphPath
	}

	adj, err := graph.LoadFile(ctx, cfg.Graph.Path)
	if err != nil {
		return err
	}
	g, err := graph.Build(adj)
	if err != nil {
		return err
	}
	snapper, err := routing.NewSnapper(g, cfg.Routing.Snapper)
	if err != nil {
		return err
	}
	exporters, err := export.NewAll(g, cfg.Style())
	if err != nil {
		return err
	}

	res, err := routing.NewEngine(g, snapper, exporters).Query(ctx, routing.Query{
		Start:        start,
		End:          end,
		WantDocument: true,
		Format:       f,
	})
	if err != nil {
		return err
	}
	doc, ok := res.(*routing.DocumentResult)
	if !ok {
		return fmt.Errorf("unexpected query result %T", res)
	}

	path, err := doc.Document.Save(*outDir)
	if err != nil {
		return err
	}
	log.Info("document_saved", "path", path, "format", string(doc.Document.Format), "hops", doc.Route.Hops())
	fmt.Fprintln(stdout, path)
	return nil
}
