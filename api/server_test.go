package api

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"consumption-interp/core/climate"
	"consumption-interp/core/engine"
	"consumption-interp/core/types"
	"consumption-interp/internal/metrics"
)

func newTestServer(t *testing.T, m *metrics.Metrics) *Server {
	t.Helper()
	provider := climate.SeriesProvider(types.CategoryHeating, "BERLIN",
		types.Month{Year: 2024, Month: time.January}, []float64{300, 200, 100})
	eng := engine.NewEngine(provider, nil, engine.DefaultConfig())
	s := NewServer(eng, Options{
		Version:   "test",
		Provider:  provider.Name(),
		Regions:   []string{"BERLIN", "HAMBURG"},
		Precision: 2,
		Metrics:   m,
	})
	s.now = func() time.Time { return time.Date(2024, 6, 18, 12, 0, 0, 0, time.UTC) }
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

const heatingBody = `{"category":"heating","region":"BERLIN","start":"01.01.2024","end":"31.03.2024","annual_value":9000}`

func TestInterpolateJSON(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodPost, "/interpolate", heatingBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Category types.Category       `json:"category"`
		Strategy types.Strategy       `json:"strategy"`
		Months   []types.MonthlyValue `json:"months"`
		Total    float64              `json:"total"`
		Metadata ResponseMetadata     `json:"metadata"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []float64{4500, 3000, 1500}
	if len(resp.Months) != len(want) {
		t.Fatalf("got %d months, want %d", len(resp.Months), len(want))
	}
	for i, m := range resp.Months {
		if m.Value != want[i] {
			t.Errorf("month %d = %v, want %v", i, m.Value, want[i])
		}
	}
	if resp.Total != 9000 || resp.Strategy != types.StrategyClimate {
		t.Errorf("total = %v, strategy = %s", resp.Total, resp.Strategy)
	}
	if resp.Metadata.EngineVersion != "test" || resp.Metadata.Provider != "static" {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
}

func TestInterpolateCSVAttachment(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodPost, "/interpolate?format=csv", heatingBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="240618_Wärmemenge.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d CSV lines, want header + 3:\n%s", len(lines), rec.Body)
	}
	if lines[1] != "2024,01,4500.00" {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestInterpolateSeasonalStringAmount(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"category":"wasser","start":"2024-01-01","end":"2024-12-31","annual_value":"1200,5"}`
	rec := do(s, http.MethodPost, "/interpolate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Total float64 `json:"total"`
		Curve string  `json:"curve"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if diff := resp.Total - 1200.5; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("total = %v, want 1200.5", resp.Total)
	}
	if resp.Curve != "base" {
		t.Errorf("curve = %q, want base", resp.Curve)
	}
}

func TestInterpolateErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"malformed json", "/interpolate", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", "/interpolate", `{"categroy":"heating"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad category", "/interpolate", `{"category":"gas","start":"2024-01-01","end":"2024-02-01","annual_value":1}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"start after end", "/interpolate", `{"category":"water","start":"2024-03-01","end":"2024-02-01","annual_value":1}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"negative value", "/interpolate", `{"category":"water","start":"2024-01-01","end":"2024-02-01","annual_value":-5}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "/interpolate?format=xml", heatingBody, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown month", "/interpolate", `{"category":"heating","region":"BERLIN","start":"2024-01-01","end":"2024-06-30","annual_value":1}`, http.StatusBadGateway, "DATA_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newTestServer(t, nil), http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.code)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/regions", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":2`) {
		t.Errorf("/regions = %d %s", rec.Code, rec.Body)
	}

	rec = do(s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("/health = %d %s", rec.Code, rec.Body)
	}

	rec = do(s, http.MethodGet, "/version", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"version":"test"`) {
		t.Errorf("/version = %d %s", rec.Code, rec.Body)
	}

	if rec = do(s, http.MethodGet, "/interpolate", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /interpolate = %d, want 405", rec.Code)
	}
	if rec = do(s, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", rec.Code)
	}
	if rec = do(s, http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("/metrics without metrics = %d, want 404", rec.Code)
	}
}

func TestCoefficients(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/coefficients", "")
	var resp CoefficientsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Categories) != 2 {
		t.Fatalf("got %d categories, want electricity and water", len(resp.Categories))
	}
	elec := resp.Categories[types.CategoryElectricity]
	if len(elec.Base) != 12 || elec.Adjusted != nil {
		t.Errorf("electricity = %+v", elec)
	}

	rec = do(s, http.MethodGet, "/coefficients?building_size=2000&occupancy=50", "")
	resp = CoefficientsResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Categories[types.CategoryElectricity].Adjusted) != 12 {
		t.Errorf("adjusted curve missing: %s", rec.Body)
	}

	if rec = do(s, http.MethodGet, "/coefficients?occupancy=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad query = %d, want 400", rec.Code)
	}
	if rec = do(s, http.MethodGet, "/coefficients?occupancy=-1", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("negative occupancy = %d, want 400", rec.Code)
	}
}

func TestCoefficientsExtremeParameters(t *testing.T) {
	s := newTestServer(t, nil)

	for _, q := range []string{"building_size=Inf&occupancy=5", "building_size=5&occupancy=NaN", "cooling_factor=-Inf"} {
		if rec := do(s, http.MethodGet, "/coefficients?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400 (%s)", q, rec.Code, rec.Body)
		}
	}

	rec := do(s, http.MethodGet, "/coefficients?building_size=1e200&occupancy=1e200", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp CoefficientsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v (%q)", err, rec.Body)
	}
	var sum float64
	for _, v := range resp.Categories[types.CategoryElectricity].Adjusted {
		sum += v
	}
	if sum < 0.999999 || sum > 1.000001 {
		t.Errorf("adjusted electricity curve sums to %v, want 1", sum)
	}
}

func TestUnencodableResponseIs500(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.writeJSON(rec, map[string]float64{"v": math.NaN()}, http.StatusOK)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error.Code != "INTERNAL" {
		t.Errorf("body = %q, err = %v", rec.Body, err)
	}
}

func TestMetricsRoute(t *testing.T) {
	m := metrics.New()
	s := newTestServer(t, m)
	do(s, http.MethodPost, "/interpolate", heatingBody)

	rec := do(s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`interpolations_total{category="heating",outcome="ok"} 1`,
		`http_requests_total{route="/interpolate",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}
