package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/raven-go"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/apperror"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/config"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg          config.Config
	Conn         *sql.DB
	router       *mux.Router
	logger       zerolog.Logger
	SessionStore *sessions.CookieStore
}

func NewServer(
	cfg config.Config,
	conn *sql.DB,
	r *mux.Router,
	logger zerolog.Logger,
	sessionStore *sessions.CookieStore,
) Server {
	if cfg.SentryDSN != "" {
		if err := raven.SetDSN(cfg.SentryDSN); err != nil {
			logger.Error().Err(err).Msg("unable to configure sentry")
		}
	}

	svr := Server{
		cfg:          cfg,
		Conn:         conn,
		router:       r,
		logger:       logger,
		SessionStore: sessionStore,
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svr.Error(w, r, apperror.NotFound("Not Found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusMethodNotAllowed, (&apperror.Error{Status: http.StatusMethodNotAllowed, Message: "Method Not Allowed"}).Response())
	})

	return svr
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) GetJWTSigningKey() []byte {
	return s.cfg.JwtSigningKey
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error().Err(err).Msg("unable to encode json response")
		}
	}
}

// Error is the single place errors are turned into responses. Known errors
// keep their status, anything else is logged and reported as a 500.
func (s Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperror.From(err)
	if !ok {
		s.Log(err, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
		e = apperror.Internal()
	}
	s.JSON(w, e.Status, e.Response())
}

func (s Server) Log(err error, msg string) {
	if s.cfg.SentryDSN != "" {
		raven.CaptureErrorAndWait(err, map[string]string{"ctx": msg})
	}
	s.logger.Error().Err(err).Msg(msg)
}

func (s Server) Logger() zerolog.Logger {
	return s.logger
}

// Handler returns the router wrapped in the server middleware.
func (s Server) Handler() http.Handler {
	return middleware.LoggingMiddleware(s.logger, middleware.HeadersMiddleware(s.router, s.cfg.Env))
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		s.logger.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
