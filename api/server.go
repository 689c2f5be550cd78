// Package api - Thin HTTP layer over the interpolation engine
// The API is ONLY responsible for: input ingestion, engine orchestration, output serialization.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"consumption-interp/core/engine"
	"consumption-interp/core/output"
	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
	"consumption-interp/internal/logging"
	"consumption-interp/internal/metrics"
)

// maxBodyBytes bounds a request body
const maxBodyBytes = 1 << 20

// Options configures a Server
type Options struct {
	Version   string
	Provider  string
	Regions   []string
	Precision int32

	// Metrics is optional. When set it observes the engine, counts requests
	// per route and is served on /metrics.
	Metrics *metrics.Metrics
}

// Server is the API server
type Server struct {
	engine  *engine.Engine
	router  *mux.Router
	options Options
	now     func() time.Time
}

// NewServer creates a new API server
func NewServer(eng *engine.Engine, opts Options) *Server {
	if opts.Metrics != nil {
		eng.WithObserver(opts.Metrics)
	}
	s := &Server{
		engine:  eng,
		router:  mux.NewRouter(),
		options: opts,
		now:     time.Now,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	m := s.options.Metrics
	route := func(path, method string, h http.HandlerFunc) {
		s.router.Handle(path, m.WrapHandler(path, h)).Methods(method)
	}

	// Core endpoints
	route("/interpolate", http.MethodPost, s.handleInterpolate)
	route("/health", http.MethodGet, s.handleHealth)

	// Supporting endpoints
	route("/regions", http.MethodGet, s.handleRegions)
	route("/coefficients", http.MethodGet, s.handleCoefficients)
	route("/version", http.MethodGet, s.handleVersion)

	if m != nil {
		s.router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.New("NOT_FOUND", "no route for "+r.URL.Path), http.StatusNotFound)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.New("METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path), http.StatusMethodNotAllowed)
	})
}

// handleInterpolate handles POST /interpolate
func (s *Server) handleInterpolate(w http.ResponseWriter, r *http.Request) {
	start := s.now()

	format := output.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := output.ParseFormat(q)
		if err != nil {
			s.writeError(w, errors.InvalidInput("format", err.Error()), http.StatusBadRequest)
			return
		}
		format = f
	}

	var body InterpolateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, errors.Wrap(errors.TypeInvalidInput, "invalid JSON body", err), http.StatusBadRequest)
		return
	}

	req, err := body.toEngine()
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}

	alloc, err := s.engine.Interpolate(r.Context(), req)
	if err != nil {
		s.writeError(w, err, statusFor(err))
		return
	}

	if format != output.FormatJSON {
		s.writeRendered(w, alloc, format, start)
		return
	}

	s.writeJSON(w, &InterpolateResponse{
		Allocation: alloc,
		Total:      alloc.Total(),
		Metadata: &ResponseMetadata{
			EngineVersion: s.options.Version,
			Provider:      s.options.Provider,
			DurationMs:    s.now().Sub(start).Milliseconds(),
		},
	}, http.StatusOK)
}

// writeRendered serves a CSV download or a plain-text table
func (s *Server) writeRendered(w http.ResponseWriter, alloc *types.Allocation, format output.Format, start time.Time) {
	f, err := output.New(format, s.options.Precision)
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := f.Render(&buf, alloc); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}

	if format == output.FormatCSV {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", output.FileName(alloc.Category, format, start)))
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Header().Set("X-Request-ID", alloc.RequestID)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRegions handles GET /regions
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	regions := s.options.Regions
	if regions == nil {
		regions = []string{}
	}
	s.writeJSON(w, map[string]interface{}{
		"regions": regions,
		"count":   len(regions),
	}, http.StatusOK)
}

// handleCoefficients handles GET /coefficients. Adjustment parameters may
// be passed as query parameters to include the adjusted curves.
func (s *Server) handleCoefficients(w http.ResponseWriter, r *http.Request) {
	p, err := adjustmentFromQuery(r)
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}

	resp := CoefficientsResponse{Categories: make(map[types.Category]CurveSet)}
	for _, c := range types.Categories {
		base, ok := s.engine.Table().Base(c)
		if !ok {
			continue
		}
		if p == nil {
			resp.Categories[c] = curveSet(base, nil)
			continue
		}
		adjusted, err := s.engine.Adjusted(c, p)
		if err != nil {
			s.writeError(w, err, statusFor(err))
			return
		}
		resp.Categories[c] = curveSet(base, &adjusted)
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.options.Version,
		"time":    s.now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.options.Version,
		"engine":      "consumption-interp",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
		buf.Reset()
		buf.WriteString(`{"error":{"code":"INTERNAL","message":"response could not be encoded"}}` + "\n")
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, err error, status int) {
	body := ErrorBody{Code: "INTERNAL", Message: err.Error()}
	if e, ok := errors.As(err); ok {
		body.Code = string(e.Type)
		body.Context = e.Context
	}
	if status >= http.StatusInternalServerError {
		logging.Error("Request failed", zap.Int("status", status), zap.Error(err))
	}
	s.writeJSON(w, ErrorResponse{Error: body}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// statusFor maps an engine error to an HTTP status
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.TypeInvalidInput:
		return http.StatusBadRequest
	case errors.TypeRegionNotFound:
		return http.StatusNotFound
	case errors.TypeDataUnavailable:
		return http.StatusBadGateway
	case errors.TypeNoUsableClimateData, errors.TypeAdjustmentDegenerate:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// toEngine converts the wire request into an engine request
func (b *InterpolateRequest) toEngine() (engine.Request, error) {
	category, err := types.ParseCategory(b.Category)
	if err != nil {
		return engine.Request{}, errors.InvalidInput("category", err.Error())
	}
	start, err := types.ParseDate(b.Start)
	if err != nil {
		return engine.Request{}, errors.InvalidInput("start", err.Error())
	}
	end, err := types.ParseDate(b.End)
	if err != nil {
		return engine.Request{}, errors.InvalidInput("end", err.Error())
	}
	return engine.Request{
		Category:    category,
		Region:      b.Region,
		Start:       start,
		End:         end,
		AnnualValue: string(b.AnnualValue),
		Adjustment:  b.Adjustment,
	}, nil
}

func adjustmentFromQuery(r *http.Request) (*types.AdjustmentParameters, error) {
	q := r.URL.Query()
	var p types.AdjustmentParameters
	var set bool

	parse := func(key string) (*float64, error) {
		raw := q.Get(key)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.InvalidInput(key, fmt.Sprintf("%s must be a number, got %q", key, raw))
		}
		set = true
		return &v, nil
	}

	var err error
	if p.BuildingSize, err = parse("building_size"); err != nil {
		return nil, err
	}
	if p.Occupancy, err = parse("occupancy"); err != nil {
		return nil, err
	}
	cooling, err := parse("cooling_factor")
	if err != nil {
		return nil, err
	}
	if cooling != nil {
		p.CoolingFactor = *cooling
	}
	winter, err := parse("winter_lighting_factor")
	if err != nil {
		return nil, err
	}
	if winter != nil {
		p.WinterLightingFactor = *winter
	}

	if !set {
		return nil, nil
	}
	return &p, nil
}
