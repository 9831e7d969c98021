// Command feedbackd runs the feedback store: it migrates the schema, starts
// the background job workers and serves the operational HTTP routes.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Naenyn/FeedbackPortlet/internal/config"
	"github.com/Naenyn/FeedbackPortlet/internal/database"
	"github.com/Naenyn/FeedbackPortlet/internal/handler"
	"github.com/Naenyn/FeedbackPortlet/internal/lib/email"
	"github.com/Naenyn/FeedbackPortlet/internal/lib/job"
	"github.com/Naenyn/FeedbackPortlet/internal/logger"
	"github.com/Naenyn/FeedbackPortlet/internal/repository"
	"github.com/Naenyn/FeedbackPortlet/internal/router"
	"github.com/Naenyn/FeedbackPortlet/internal/server"
	"github.com/Naenyn/FeedbackPortlet/internal/service"
	"github.com/rs/zerolog"
)

const DefaultContextTimeout = 30

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		console := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		console.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if err := database.Migrate(context.Background(), &log, cfg.Database.DSN()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewServices(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	jobHandlers := job.NewHandlers(
		services.Feedback,
		services.Feedback,
		email.NewClient(cfg, &log),
		cfg.Reports,
		&log,
		srv.Metrics,
	)
	if err := srv.Job.Start(jobHandlers); err != nil {
		log.Fatal().Err(err).Msg("failed to start background jobs")
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)
	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
