// Package server exposes the compiler and the generation history over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/scbrown/blockwright/internal/compile"
	"github.com/scbrown/blockwright/internal/concept"
	"github.com/scbrown/blockwright/internal/logger"
	"github.com/scbrown/blockwright/internal/model"
	"github.com/scbrown/blockwright/internal/render"
	"github.com/scbrown/blockwright/internal/store"
)

// Server wraps a compiler and a store.Store and exposes them over HTTP.
type Server struct {
	compiler *compile.Compiler
	store    store.Store
	record   bool
	log      *slog.Logger
	mux      *http.ServeMux
	srv      *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithoutHistory stops POST /api/v1/generate from recording generations.
func WithoutHistory() Option {
	return func(s *Server) { s.record = false }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a Server that compiles with c and records history in st.
func New(c *compile.Compiler, st store.Store, opts ...Option) *Server {
	srv := &Server{
		compiler: c,
		store:    st,
		record:   true,
		log:      slog.Default(),
		mux:      http.NewServeMux(),
	}
	for _, o := range opts {
		o(srv)
	}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/v1/generate", s.handleGenerate)
	s.mux.HandleFunc("GET /api/v1/actions", s.handleActions)
	s.mux.HandleFunc("GET /api/v1/blocks/{id}", s.handleBlock)
	s.mux.HandleFunc("GET /api/v1/concepts/{name}", s.handleConcept)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/v1/templates", s.handleTemplates)
	s.mux.HandleFunc("POST /api/v1/templates/{game}", s.handleTemplate)
	s.mux.HandleFunc("POST /api/v1/generations", s.handleRecordGeneration)
	s.mux.HandleFunc("GET /api/v1/generations", s.handleListGenerations)
	s.mux.HandleFunc("GET /api/v1/generations/{id}", s.handleGetGeneration)
	s.mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.srv.ListenAndServe()
}

// Serve accepts connections on the given listener.
func (s *Server) Serve(ln net.Listener) error {
	s.srv = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.srv.Serve(ln)
}

// Handler returns the HTTP handler for use with httptest.Server or custom listeners.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// generateRequest is the body of POST /api/v1/generate.
type generateRequest struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := logger.WithRequestID(s.log, requestID(r))

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	res, err := s.compiler.Compile(req.Text, req.Format)
	if errors.Is(err, render.ErrUnknownFormat) || errors.Is(err, render.ErrUnsupportedFormat) {
		writeErr(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "compiling: %v", err)
		return
	}
	s.finish(w, r, log, "generate", res)
}

// finish records res unless history is off and writes it as the response.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, res *compile.Result) {
	if s.record {
		if _, err := s.store.RecordGeneration(r.Context(), res.Generation()); err != nil {
			logger.WithError(log, err).Warn("recording generation failed")
		}
	}
	log.Info(op, "format", res.Format, "summary", res.Summary())
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, compile.TemplateNames())
}

// templateRequest is the optional body of POST /api/v1/templates/{game}.
type templateRequest struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	log := logger.WithRequestID(s.log, requestID(r))

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	res, err := s.compiler.Template(r.PathValue("game"), model.Difficulty(req.Level), req.Format)
	switch {
	case errors.Is(err, compile.ErrUnknownTemplate):
		writeErr(w, http.StatusNotFound, "%v", err)
		return
	case errors.Is(err, compile.ErrUnknownComplexity),
		errors.Is(err, render.ErrUnknownFormat),
		errors.Is(err, render.ErrUnsupportedFormat):
		writeErr(w, http.StatusBadRequest, "%v", err)
		return
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "compiling template: %v", err)
		return
	}
	s.finish(w, r, log, "template", res)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.compiler.Generator().AvailableActions())
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	def, ok := s.compiler.Generator().BlockInfo(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "unknown block %q", id)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleConcept(w http.ResponseWriter, r *http.Request) {
	level := model.Difficulty(r.URL.Query().Get("level"))
	exp, err := concept.Explain(r.PathValue("name"), level)
	if errors.Is(err, concept.ErrUnknownConcept) {
		writeErr(w, http.StatusNotFound, "%v", err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "explaining concept: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.compiler.Status())
}

func (s *Server) handleRecordGeneration(w http.ResponseWriter, r *http.Request) {
	var g model.Generation
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	stored, err := s.store.RecordGeneration(r.Context(), g)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "recording generation: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleListGenerations(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOpts(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "%v", err)
		return
	}
	gens, err := s.store.ListGenerations(r.Context(), opts)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing generations: %v", err)
		return
	}
	if gens == nil {
		gens = []model.Generation{}
	}
	writeJSON(w, http.StatusOK, gens)
}

func (s *Server) handleGetGeneration(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.GetGeneration(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "%v", err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "getting generation: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "getting stats: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// requestID returns the caller's X-Request-ID or a fresh one.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// writeErr writes a JSON error response.
func writeErr(w http.ResponseWriter, status int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, status, map[string]string{"error": msg})
}
