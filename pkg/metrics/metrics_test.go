package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCollectors(t *testing.T) {
	QueriesTotal.WithLabelValues(ResultOK).Inc()
	ExportsTotal.WithLabelValues("kml").Inc()
	QueryDurationMs.Observe(3)
	RouteHops.Observe(2)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`kmlrouter_queries_total{result="ok"}`,
		`kmlrouter_exports_total{format="kml"}`,
		"kmlrouter_query_duration_ms_bucket",
		"kmlrouter_route_hops_count",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
