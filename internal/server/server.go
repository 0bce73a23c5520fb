// Package server implements the Menuforge HTTP API.
//
// The API exposes the pipeline stages over chi routes:
//
//	POST /api/detect   image bytes -> clear zone JSON
//	POST /api/layout   content + format JSON -> layout JSON
//	POST /api/render   content + format JSON -> SVG or PNG preview
//	GET  /api/records  recent generation records (when a store is configured)
//	GET  /healthz      liveness probe
//
// Handlers delegate to a shared pipeline.Runner, so the API serves from the
// same caches as the CLI.
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/menuforge/menuforge/pkg/errors"
	"github.com/menuforge/menuforge/pkg/menu"
	"github.com/menuforge/menuforge/pkg/pipeline"
	"github.com/menuforge/menuforge/pkg/store"
	"github.com/menuforge/menuforge/pkg/vision"
)

// maxUploadBytes caps request bodies; print backgrounds run a few megabytes.
const maxUploadBytes = 64 << 20

// Server wires the pipeline runner and record store into HTTP handlers.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the records endpoints.
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server around the given runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/detect", s.handleDetect)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		if s.store != nil {
			r.Get("/records", s.handleListRecords)
			r.Get("/records/{id}", s.handleGetRecord)
		}
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDetect measures the clear zone of an uploaded background image.
// The request body is the raw encoded image.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	image, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading request body"))
		return
	}

	zone, detected, err := s.runner.Detect(r.Context(), image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"zone":     zone,
		"detected": detected,
	})
}

// layoutRequest is the shared body for the layout and render endpoints.
type layoutRequest struct {
	Content     *menu.Content     `json:"content"`
	Brand       *menu.Brand       `json:"brand,omitempty"`
	Format      string            `json:"format,omitempty"`
	Zone        *vision.ClearZone `json:"zone,omitempty"`
	NoZone      bool              `json:"no_zone,omitempty"`
	AccentColor string            `json:"accent_color,omitempty"`
	HeadingFont string            `json:"heading_font,omitempty"`
	BodyFont    string            `json:"body_font,omitempty"`
}

func (s *Server) decodeLayoutRequest(r *http.Request) (layoutRequest, menu.Brand, menu.Format, pipeline.Options, error) {
	var req layoutRequest
	var opts pipeline.Options
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		return req, menu.Brand{}, menu.Format{}, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	if req.Content == nil {
		return req, menu.Brand{}, menu.Format{}, opts, errors.New(errors.ErrCodeInvalidContent, "content is required")
	}
	if req.Format == "" {
		req.Format = menu.DefaultFormat
	}
	format, err := menu.FormatByName(req.Format)
	if err != nil {
		return req, menu.Brand{}, menu.Format{}, opts, err
	}
	brand := menu.DefaultBrand()
	if req.Brand != nil {
		brand = *req.Brand
	}
	opts = pipeline.Options{
		Format:      req.Format,
		NoZone:      req.NoZone,
		AccentColor: req.AccentColor,
		HeadingFont: req.HeadingFont,
		BodyFont:    req.BodyFont,
		Logger:      s.logger,
	}
	return req, brand, format, opts, nil
}

// handleLayout computes a text layout for posted content.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, brand, format, opts, err := s.decodeLayoutRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	zone := req.Zone
	if req.NoZone {
		zone = nil
	}
	l, err := s.runner.ComputeLayout(r.Context(), req.Content, brand, format, zone, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleRender renders posted content to SVG (default) or a PNG preview,
// selected with ?output=svg|preview.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, brand, format, opts, err := s.decodeLayoutRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	output := r.URL.Query().Get("output")
	if output == "" {
		output = pipeline.FormatSVG
	}
	if output != pipeline.FormatSVG && output != pipeline.FormatPreview {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat,
			"invalid output: %q (must be svg or preview)", output))
		return
	}
	opts.Formats = []string{output}

	zone := req.Zone
	if req.NoZone {
		zone = nil
	}
	l, err := s.runner.ComputeLayout(r.Context(), req.Content, brand, format, zone, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), l, nil, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch output {
	case pipeline.FormatPreview:
		w.Header().Set("Content-Type", "image/png")
	default:
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[output])
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context(), 50)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err == store.ErrNotFound {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "record not found"))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// writeError maps error codes to HTTP statuses and emits a JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidImage, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidContent, errors.ErrCodeInvalidBrand, errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, map[string]any{
		"error": errors.UserMessage(err),
		"code":  errors.GetCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
