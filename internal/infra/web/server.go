// File: internal/infra/web/server.go
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"docustream/internal/config"
	"docustream/internal/domain/ports"
	"docustream/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg     *config.Config
	intake  usecase.IntakeUseCase
	notify  usecase.NotifyUseCase
	status  http.Handler
	limiter ports.RateLimiter
	log     *zerolog.Logger
	srv     *http.Server
}

func NewServer(
	cfg *config.Config,
	intake usecase.IntakeUseCase,
	notify usecase.NotifyUseCase,
	statusHandler http.Handler,
	limiter ports.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		cfg:     cfg,
		intake:  intake,
		notify:  notify,
		status:  statusHandler,
		limiter: limiter,
		log:     logger,
	}
}

// Router assembles the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(Recover(s.log))

	// REST surface gets request logging and a per-request deadline.
	// The websocket route stays outside both: the logger's writer
	// wrapper would break the connection hijack, and an upgraded
	// connection outlives any sane request timeout.
	r.Group(func(r chi.Router) {
		r.Use(RequestLog(s.log))
		r.Use(Timeout(30 * time.Second))

		r.Route("/api/document", func(r chi.Router) {
			r.Post("/upload", s.handleUpload)
			r.Get("/progress/{id}", s.handleProgress)
			r.Get("/summary/{id}", s.handleSummary)
		})

		r.Route("/api/notifications", func(r chi.Router) {
			r.With(s.internalAuth).Post("/internal/notify", s.handleNotify)
		})

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})
		r.Handle("/metrics", promhttp.Handler())
	})

	r.Get("/status/{fileId}", s.status.ServeHTTP)

	return r
}

func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Router(),
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("http server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
