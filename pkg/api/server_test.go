package api

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kml_router/pkg/export"
	"kml_router/pkg/graph"
	"kml_router/pkg/routing"
)

func newTestServer(t *testing.T, cfg ServerConfig, router routing.Router, stats StatsResponse) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewHandler(cfg, NewHandlers(router, stats, log), log))
	t.Cleanup(srv.Close)
	return srv
}

func scenarioEngine(t *testing.T) (*routing.Engine, *graph.Network) {
	t.Helper()
	g, err := graph.Build(graph.Adjacency{
		{Source: "(0, 0)", Targets: [][]string{{"0", "1"}}},
		{Source: "(0, 1)", Targets: [][]string{{"0", "2"}}},
		{Source: "(10, 10)"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	exporters, err := export.NewAll(g, export.DefaultStyle())
	if err != nil {
		t.Fatalf("NewAll: %v", err)
	}
	return routing.NewEngine(g, routing.NewIndexSnapper(g), exporters), g
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServerRouteScenario(t *testing.T) {
	engine, g := scenarioEngine(t)
	srv := newTestServer(t, DefaultConfig(""), engine, NewStats(g))

	for _, path := range []string{"/calculate_shortest_path", "/api/v1/route"} {
		resp := post(t, srv.URL+path, `{"start":{"x":0.1,"y":0.1},"end":{"x":0,"y":1.9}}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d", path, resp.StatusCode)
		}
		var pr PathResponse
		if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
			t.Fatalf("decode: %v", err)
		}
		want := [][2]float64{{0, 0}, {0, 1}, {0, 2}}
		if len(pr.Path) != 3 || pr.Path[0] != want[0] || pr.Path[1] != want[1] || pr.Path[2] != want[2] {
			t.Errorf("%s: path = %v, want %v", path, pr.Path, want)
		}
		if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s: missing security headers", path)
		}
	}
}

func TestServerDisconnected(t *testing.T) {
	engine, g := scenarioEngine(t)
	srv := newTestServer(t, DefaultConfig(""), engine, NewStats(g))

	resp := post(t, srv.URL+"/calculate_shortest_path", `{"start":{"x":10,"y":10},"end":{"x":0,"y":0}}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var er ErrorResponse
	json.NewDecoder(resp.Body).Decode(&er)
	if er.Error != "no_route_found" {
		t.Errorf("error = %+v", er)
	}
}

func TestServerKMLDownload(t *testing.T) {
	engine, g := scenarioEngine(t)
	srv := newTestServer(t, DefaultConfig(""), engine, NewStats(g))

	req, _ := http.NewRequest("POST", srv.URL+"/calculate_shortest_path",
		strings.NewReader(`{"start":{"x":0,"y":0},"end":{"x":0,"y":2},"kml":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != export.KMLMediaType {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "shortest_path.kml") {
		t.Errorf("Content-Disposition = %q", resp.Header.Get("Content-Disposition"))
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Expose-Headers"), "Content-Disposition") {
		t.Errorf("Content-Disposition not exposed to browsers: %v", resp.Header)
	}

	body, _ := io.ReadAll(resp.Body)
	if err := xml.Unmarshal(body, new(struct{})); err != nil {
		t.Errorf("body is not XML: %v", err)
	}
}

func TestServerCORSPreflight(t *testing.T) {
	engine, g := scenarioEngine(t)
	srv := newTestServer(t, DefaultConfig(""), engine, NewStats(g))

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/calculate_shortest_path", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	// Browsers send the requested headers lowercased and sorted.
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("preflight missing Access-Control-Allow-Origin")
	}
	if !strings.EqualFold(resp.Header.Get("Access-Control-Allow-Headers"), "content-type") {
		t.Errorf("Access-Control-Allow-Headers = %q, want content-type", resp.Header.Get("Access-Control-Allow-Headers"))
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Access-Control-Allow-Methods = %q, want POST", resp.Header.Get("Access-Control-Allow-Methods"))
	}
}

func TestServerMethodNotAllowed(t *testing.T) {
	engine, g := scenarioEngine(t)
	srv := newTestServer(t, DefaultConfig(""), engine, NewStats(g))

	resp, err := http.Get(srv.URL + "/calculate_shortest_path")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestServerHealthStatsMetrics(t *testing.T) {
	engine, g := scenarioEngine(t)
	srv := newTestServer(t, DefaultConfig(""), engine, NewStats(g))

	for _, path := range []string{"/api/v1/health", "/api/v1/stats", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status = %d", path, resp.StatusCode)
		}
	}
}

func TestServerConcurrencyLimit(t *testing.T) {
	engine, g := scenarioEngine(t)
	cfg := DefaultConfig("")
	cfg.MaxConcurrent = 0 // no slots: every request is shed
	srv := newTestServer(t, cfg, engine, NewStats(g))

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable || resp.Header.Get("Retry-After") != "1" {
		t.Errorf("status = %d, Retry-After = %q", resp.StatusCode, resp.Header.Get("Retry-After"))
	}
}

type panicRouter struct{}

func (panicRouter) Query(context.Context, routing.Query) (routing.QueryResult, error) {
	panic("boom")
}

func TestServerRecoversPanics(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(""), panicRouter{}, StatsResponse{})

	resp := post(t, srv.URL+"/calculate_shortest_path", `{"start":{"x":0,"y":0},"end":{"x":0,"y":1}}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
