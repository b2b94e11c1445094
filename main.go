package main

import (
	"log"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/authoriser"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/config"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/database"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/handler"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/job"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config: %+v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Env == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	conn, err := database.GetDbConn(cfg.DatabaseURL, cfg.DatabaseMaxOpenConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to connect to postgres")
	}
	defer database.CloseDbConn(conn)

	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.Env != "dev"

	svr := server.NewServer(
		cfg,
		conn,
		mux.NewRouter(),
		logger,
		sessionStore,
	)

	jobRepo := job.NewRepository(conn)
	handler.RegisterRoutes(svr, jobRepo, authoriser.NewAuthoriser(cfg))

	if err := svr.Run(); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}
}
