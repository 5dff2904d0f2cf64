package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/auth"
	"vocab-quiz-service/internal/config"
	"vocab-quiz-service/internal/logging"
	"vocab-quiz-service/internal/metrics"
	transport "vocab-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.ValidateAuth(); err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	m := metrics.New()
	bank := app.NewQuestionBank(st.questions, log)
	stats := app.NewStatsService(st.results, st.stats, log)
	service := app.NewQuizService(st.sessions, bank, stats, log, app.QuizConfig{
		QuestionCount: cfg.Quiz.QuestionCount,
		TimeLimit:     cfg.Quiz.TimeLimit,
		Tick:          config.TTLDuration(cfg.Quiz.Tick, time.Second),
	}).WithObserver(m)

	provider := auth.NewTokenProvider(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour), st.revocations, log).
		WithIssuer(cfg.Auth.Issuer, cfg.Auth.IssuerKey)
	gate := auth.NewGate(provider, cfg.Auth.CookieName, log)
	router := transport.NewRouter(transport.Handlers{
		Gate:    gate,
		Auth:    transport.NewAuthHandler(provider, gate, cfg.Auth.CookieName, log),
		Home:    transport.NewHomeHandler(bank, stats, log),
		Quiz:    transport.NewWSHandler(service, provider, log),
		Metrics: m,
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
