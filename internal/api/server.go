package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pbaille/inspo/internal/catalog"
	"github.com/pbaille/inspo/internal/domain"
	"github.com/pbaille/inspo/internal/facet"
	"github.com/pbaille/inspo/internal/filter"
	"github.com/pbaille/inspo/internal/render"
)

const (
	shutdownTimeout    = 10 * time.Second
	serverReadTimeout  = 10 * time.Second
	serverWriteTimeout = 15 * time.Second
	serverIdleTimeout  = 60 * time.Second
)

type galleryRenderer interface {
	Gallery(w io.Writer, p render.Page) error
}

// Server serves the gallery page and its JSON API
type Server struct {
	catalog  *catalog.Catalog
	records  []domain.InspirationRecord
	facets   facet.Facets
	renderer galleryRenderer
	log      *zap.Logger
	metrics  *metrics
	registry *prometheus.Registry
	addr     string
}

// New creates a new server over a loaded catalog
func New(c *catalog.Catalog, addr string, log *zap.Logger) (*Server, error) {
	r, err := render.New()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}

	records := c.Records()
	m.catalogSize.Set(float64(len(records)))

	return &Server{
		catalog:  c,
		records:  records,
		facets:   facet.Extract(records),
		renderer: r,
		log:      log,
		metrics:  m,
		registry: reg,
		addr:     addr,
	}, nil
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Get("/", s.gallery)

	r.Route("/api", func(r chi.Router) {
		r.Get("/records", s.listRecords)
		r.Get("/records/{id}", s.getRecord)
		r.Get("/facets", s.listFacets)
	})

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.addr), zap.Int("records", len(s.records)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.observeRequest(route, ww.Status(), time.Since(start))

		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apply(r *http.Request) (*filter.State, []domain.InspirationRecord) {
	state := filter.FromValues(r.URL.Query())
	matched := filter.Apply(s.records, state)
	s.metrics.resultSize.Observe(float64(len(matched)))
	return state, matched
}

func (s *Server) gallery(w http.ResponseWriter, r *http.Request) {
	state, matched := s.apply(r)
	page := render.NewPage("/", len(s.records), s.facets, state, matched)

	// render fully before writing so a template error never leaves a partial 200
	var buf bytes.Buffer
	if err := s.renderer.Gallery(&buf, page); err != nil {
		s.log.Error("render gallery", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// ListRecordsResponse is the filtered catalog
type ListRecordsResponse struct {
	Records []domain.InspirationRecord `json:"records"`
	Shown   int                        `json:"shown"`
	Total   int                        `json:"total"`
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	_, matched := s.apply(r)
	writeJSON(w, http.StatusOK, ListRecordsResponse{
		Records: matched,
		Shown:   len(matched),
		Total:   len(s.records),
	})
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.Get(chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listFacets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.facets)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
