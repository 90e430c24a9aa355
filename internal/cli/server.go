package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"excel-interview-service/internal/app"
	"excel-interview-service/internal/catalog"
	"excel-interview-service/internal/config"
	"excel-interview-service/internal/domain"
	"excel-interview-service/internal/evaluator"
	"excel-interview-service/internal/infra/memory"
	"excel-interview-service/internal/infra/postgres"
	redisstore "excel-interview-service/internal/infra/redis"
	transport "excel-interview-service/internal/transport/http"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the interview server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	questionsPath := cfg.Questions.Path
	if questionsPath == "" {
		questionsPath = "static/questions.json"
	}
	var source catalog.Source = catalog.NewFileSource(questionsPath)
	if pool != nil && cfg.Questions.Source == "postgres" {
		source = postgres.NewCatalogSource(pool)
	}
	questions := catalog.NewCache(source)

	var sessions app.SessionStore = memory.NewSessionStore(sessionTTL)
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, sessionTTL)
	}

	var reports app.ReportStore = memory.NewReportStore()
	if pool != nil {
		reports = postgres.NewReportStore(pool)
	}

	var eval evaluator.Evaluator
	if cfg.Evaluator.Model != "" {
		eval = evaluator.New(
			cfg.Evaluator.BaseURL,
			cfg.Evaluator.APIKey,
			cfg.Evaluator.Model,
			config.TTLDuration(cfg.Evaluator.Timeout, time.Minute),
		)
	} else {
		log.Printf("no evaluator model configured, submissions get a placeholder evaluation")
		eval = evaluator.NewStatic(domain.Evaluation{
			Score:     3,
			IsCorrect: false,
			Feedback:  "Automatic scoring is not configured; this is a placeholder evaluation.",
		})
	}

	service := app.NewInterviewService(sessions, questions, eval, reports)
	wsHandler := transport.NewWSHandler(service)
	restHandler := transport.NewRESTHandler(service)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Get("/ws", wsHandler.ServeWS)
	router.Mount("/api", restHandler.Routes())

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting interview service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
