package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
)

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObserveInterpolation(types.CategoryHeating, "ok", 20*time.Millisecond)
	m.ObserveFetch(types.CategoryHeating, 5*time.Millisecond, errors.RegionNotFound("X", "2024-01"))

	wrapped := m.WrapHandler("/teapot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`interpolations_total{category="heating",outcome="ok"} 1`,
		`climate_fetch_errors_total{category="heating",type="REGION_NOT_FOUND"} 1`,
		`http_requests_total{route="/teapot",status="418"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %s\n%s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveInterpolation(types.CategoryWater, "ok", time.Second)
	m.ObserveFetch(types.CategoryCooling, time.Second, nil)
}
