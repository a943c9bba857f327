package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kml_router/pkg/export"
	"kml_router/pkg/geo"
	"kml_router/pkg/graph"
	"kml_router/pkg/metrics"
	"kml_router/pkg/routing"
)

const maxBodyBytes = 4096

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	stats  StatsResponse
	log    *slog.Logger
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, stats StatsResponse, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		router: router,
		stats:  stats,
		log:    log,
	}
}

// HandleRoute handles POST /calculate_shortest_path and POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		h.reject(w, start, "invalid_request", "Content-Type must be application/json", "")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.reject(w, start, "invalid_request", "request body must be a JSON object", "")
		return
	}

	q, field, err := req.query()
	if err != nil {
		code := "invalid_coordinates"
		switch field {
		case "kml":
			code = "invalid_kml_flag"
		case "format":
			code = "invalid_format"
		}
		h.reject(w, start, code, err.Error(), field)
		return
	}

	result, err := h.router.Query(r.Context(), q)
	if err != nil {
		h.writeQueryError(w, start, err)
		return
	}

	switch res := result.(type) {
	case *routing.RouteResult:
		path := make([][2]float64, len(res.Route))
		for i, c := range res.Route {
			path[i] = [2]float64{c.Lat, c.Lon}
		}
		writeJSON(w, http.StatusOK, PathResponse{Path: path})
		observe(start, metrics.ResultOK, res.Route.Hops())

	case *routing.DocumentResult:
		doc := res.Document
		w.Header().Set("Content-Type", doc.MediaType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
		w.WriteHeader(http.StatusOK)
		w.Write(doc.Body)
		metrics.ExportsTotal.WithLabelValues(string(doc.Format)).Inc()
		observe(start, metrics.ResultOK, res.Route.Hops())

	default:
		h.log.Error("unexpected_query_result", "type", fmt.Sprintf("%T", result))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error", "")
		observe(start, metrics.ResultError, -1)
	}
}

// query validates the request and converts it to a routing query. On
// failure it also returns the name of the offending field.
func (req *RouteRequest) query() (routing.Query, string, error) {
	var q routing.Query
	if req.Start == nil {
		return q, "start", errors.New(`"start" is required`)
	}
	if req.End == nil {
		return q, "end", errors.New(`"end" is required`)
	}

	var err error
	if q.Start, err = req.Start.coordinate(); err != nil {
		return q, "start", fmt.Errorf(`"start": %w`, err)
	}
	if q.End, err = req.End.coordinate(); err != nil {
		return q, "end", fmt.Errorf(`"end": %w`, err)
	}

	if len(req.KML) > 0 && !bytes.Equal(req.KML, []byte("null")) {
		if err := json.Unmarshal(req.KML, &q.WantDocument); err != nil {
			return q, "kml", errors.New(`"kml" must be a boolean`)
		}
	}

	if q.Format, err = export.ParseFormat(req.Format); err != nil {
		return q, "format", err
	}
	return q, "", nil
}

func (p *PointJSON) coordinate() (geo.Coordinate, error) {
	lat, err := parseComponent("x", p.X)
	if err != nil {
		return geo.Coordinate{}, err
	}
	lon, err := parseComponent("y", p.Y)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.Coordinate{Lat: lat, Lon: lon}, nil
}

// parseComponent accepts a JSON number or a string holding a number.
func parseComponent(name string, raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%q is required", name)
	}

	var v float64
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%q must be numeric", name)
		}
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%q must be numeric", name)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q must be finite", name)
	}
	return v, nil
}

// writeQueryError translates core errors into HTTP responses.
func (h *Handlers) writeQueryError(w http.ResponseWriter, start time.Time, err error) {
	var (
		noRoute *routing.NoRouteError
		unknown *routing.UnknownNodeError
		ioErr   *export.ExportIOError
	)
	switch {
	case errors.As(err, &noRoute) || errors.Is(err, routing.ErrNoRoute):
		writeError(w, http.StatusNotFound, "no_route_found", err.Error(), "")
		observe(start, metrics.ResultNoRoute, -1)
	case errors.As(err, &unknown):
		writeError(w, http.StatusUnprocessableEntity, "unknown_node", err.Error(), "")
		observe(start, metrics.ResultUnknownNode, -1)
	case errors.Is(err, routing.ErrUnsupportedFormat):
		h.reject(w, start, "invalid_format", err.Error(), "format")
	case errors.Is(err, graph.ErrEmptyNetwork):
		writeError(w, http.StatusServiceUnavailable, "empty_network", err.Error(), "")
		observe(start, metrics.ResultError, -1)
	case errors.As(err, &ioErr):
		h.log.Error("export_failed", "op", ioErr.Op, "err", ioErr.Err)
		writeError(w, http.StatusInternalServerError, "export_failed", "could not render the route document", "")
		observe(start, metrics.ResultError, -1)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "request timed out", "")
		observe(start, metrics.ResultError, -1)
	default:
		h.log.Error("route_query_failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error", "")
		observe(start, metrics.ResultError, -1)
	}
}

func (h *Handlers) reject(w http.ResponseWriter, start time.Time, code, message, field string) {
	writeError(w, http.StatusBadRequest, code, message, field)
	observe(start, metrics.ResultBadRequest, -1)
}

// observe records a finished query. hops < 0 means no route was returned.
func observe(start time.Time, result string, hops int) {
	metrics.QueriesTotal.WithLabelValues(result).Inc()
	metrics.QueryDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	if hops >= 0 {
		metrics.RouteHops.Observe(float64(hops))
	}
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message, Field: field})
}
