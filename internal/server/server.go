// Package server exposes the tufting layout engine over HTTP.
//
// Routes:
//
//	GET  /              form page for interactive use
//	POST /calculate     layout as JSON
//	POST /download_csv  layout as a CSV attachment
//	POST /preview.svg   SVG preview
//	POST /preview.png   PNG preview
//	GET  /health        liveness probe
//
// POST routes accept application/json bodies only and answer 415 otherwise.
package server

import (
	"context"
	"embed"
	"errors"
	"net"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/matelas/pkg/config"
	"github.com/matzehuels/matelas/pkg/export"
	"github.com/matzehuels/matelas/pkg/pipeline"
)

//go:embed static/index.html
var static embed.FS

// Server serves layout requests through a pipeline runner.
type Server struct {
	cfg    config.Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New builds a server and its routes. The runner is shared by all requests.
func New(cfg config.Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:    cfg,
		runner: runner,
		logger: logger.WithPrefix("http"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/calculate", s.handleCalculate)
		r.Post("/download_csv", s.handleDownloadCSV)
		r.Post("/preview.svg", s.handlePreview(export.FormatSVG))
		r.Post("/preview.png", s.handlePreview(export.FormatPNG))
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String(), "service", s.cfg.Server.ServiceName)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
