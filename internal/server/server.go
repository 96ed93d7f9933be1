package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/five82/parkdash/internal/parking"
	"github.com/five82/parkdash/internal/render"
	"github.com/five82/parkdash/internal/state"
)

const (
	defaultTitle    = "Parking occupancy"
	shutdownTimeout = 5 * time.Second
)

// Options configure the HTTP surface.
type Options struct {
	Listen string
	// Refresh is the reload cadence advertised by the full page.
	Refresh time.Duration
	Title   string
	Logger  *zerolog.Logger
}

// Server publishes the latest rendered cycle over HTTP.
type Server struct {
	store   *state.Store
	listen  string
	refresh time.Duration
	title   string
	logger  zerolog.Logger
	handler http.Handler
}

// New builds a server reading from store.
func New(store *state.Store, opts Options) *Server {
	s := &Server{
		store:   store,
		listen:  opts.Listen,
		refresh: opts.Refresh,
		title:   opts.Title,
		logger:  log.Logger,
	}
	if s.title == "" {
		s.title = defaultTitle
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	s.logger = s.logger.With().Str("component", "http_server").Logger()
	s.handler = requestLogger(s.logger)(s.routes())
	return s
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *httprouter.Router {
	router := httprouter.New()
	router.GET("/", s.handleDocument)
	router.GET("/widget", s.handleWidget)
	router.GET("/api/stations", s.handleStations)
	router.GET("/healthz", s.handleHealth)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	return router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("starting server")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info().Msg("server stopped")
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	snap := s.store.Snapshot()
	status := http.StatusOK
	fragment := snap.Markup
	if !snap.HasData {
		status = http.StatusServiceUnavailable
		fragment = ""
	}
	page, err := render.Document(fragment, s.title, s.refresh)
	if err != nil {
		s.logger.Error().Err(err).Msg("render document")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleWidget(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	snap := s.store.Snapshot()
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "no-store")
	if !snap.HasData {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(snap.Markup))
}

type stationJSON struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Occupied   int    `json:"occupied"`
	Capacity   int    `json:"capacity"`
	Percentage *int   `json:"percentage"`
	Status     string `json:"status"`
	Color      string `json:"color"`
	UpdatedAt  string `json:"updatedAt"`
}

type stationsJSON struct {
	Stations    []stationJSON `json:"stations"`
	LastSuccess *time.Time    `json:"lastSuccess,omitempty"`
	LastError   string        `json:"lastError,omitempty"`
	Offline     bool          `json:"offline"`
}

func newStationJSON(c parking.Card) stationJSON {
	out := stationJSON{
		Code:      c.Code,
		Name:      c.Name,
		Occupied:  c.Occupied,
		Capacity:  c.Capacity,
		Status:    string(c.Status),
		Color:     render.BadgeClass(c.Status),
		UpdatedAt: c.Updated.Format(time.RFC3339),
	}
	if c.Known {
		pct := c.Percentage
		out.Percentage = &pct
	}
	return out
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	snap := s.store.Snapshot()
	body := stationsJSON{
		Stations: make([]stationJSON, 0, len(snap.Cards)),
		Offline:  snap.IsOffline(),
	}
	for _, c := range snap.Cards {
		body.Stations = append(body.Stations, newStationJSON(c))
	}
	if !snap.LastSuccess.IsZero() {
		ts := snap.LastSuccess
		body.LastSuccess = &ts
	}
	if snap.LastError != nil {
		body.LastError = snap.LastError.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn().Err(err).Msg("encode stations")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	snap := s.store.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	switch {
	case !snap.HasData:
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintln(w, "waiting for first update")
	case snap.IsOffline():
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintf(w, "offline: %v\n", snap.LastError)
	case snap.LastError != nil:
		_, _ = fmt.Fprintf(w, "degraded: %v\n", snap.LastError)
	default:
		_, _ = fmt.Fprintln(w, "ok")
	}
}
