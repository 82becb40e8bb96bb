package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"english-star-service/internal/ai"
	"english-star-service/internal/app"
	"english-star-service/internal/config"
	"english-star-service/internal/domain"
	"english-star-service/internal/infra/memory"
	pgstore "english-star-service/internal/infra/postgres"
	redisinfra "english-star-service/internal/infra/redis"
	transport "english-star-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the companion server",
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

	logger := newLogger()
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

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
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var store app.Store = memory.NewStore()
	switch {
	case pool != nil:
		store = pgstore.NewStore(pool)
	case redisClient != nil:
		store = redisinfra.NewStore(redisClient)
	}

	var sessions app.SessionRegistry = memory.NewSessionRegistry()
	if redisClient != nil {
		sessions = redisinfra.NewSessionRegistry(redisClient, sessionTTL)
	}

	adapters := buildAdapters(cfg, sugar)

	service := app.NewCompanionService(sugar, store, sessions, adapters, cfg.Quiz.Topic)
	wsHandler := transport.NewWSHandler(sugar, service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		sugar.Infow("starting companion service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Errorw("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		sugar.Info("shutting down server...")
	case <-ctx.Done():
		sugar.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger() *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	return zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(zapcore.InfoLevel),
	))
}

// buildAdapters wires the AI collaborators. Without an API key the service
// runs on a fixed sample quiz and static fallbacks so it stays demoable.
func buildAdapters(cfg config.Config, logger *zap.SugaredLogger) app.Adapters {
	apiKey := cfg.AI.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		logger.Warn("no AI api key configured, serving sample quiz with static fallbacks")
		return app.Adapters{Generator: memory.NewStaticGenerator(sampleQuestions())}
	}

	client := ai.NewClient(ai.Config{
		APIKey:  apiKey,
		BaseURL: cfg.AI.BaseURL,
	})
	hintTTL := config.TTLDuration(cfg.Hints.TTL, 10*time.Minute)
	return app.Adapters{
		Generator: ai.NewGenerator(client, cfg.AI.QuizModel),
		Hints:     app.NewHintCache(ai.NewHinter(client, cfg.AI.HintModel), hintTTL),
		Chat:      ai.NewChatBot(client, cfg.AI.ChatModel),
		Speech:    ai.NewSpeaker(client, cfg.AI.SpeechModel, cfg.AI.Voice),
	}
}

// sampleQuestions provides a minimal daily quiz for keyless demo runs.
func sampleQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{
			ID:            1,
			Question:      "What color is the sky on a sunny day?",
			Options:       []string{"Blue", "Green", "Red", "Black"},
			CorrectAnswer: 0,
			Explanation:   "Think about what you see when you look up outside.",
		},
		{
			ID:            2,
			Question:      "Which word means 'con mèo'?",
			Options:       []string{"Dog", "Cat", "Bird", "Fish"},
			CorrectAnswer: 1,
			Explanation:   "This animal says 'meow'.",
		},
		{
			ID:            3,
			Question:      "How do you say 'xin chào' in English?",
			Options:       []string{"Goodbye", "Thanks", "Hello", "Sorry"},
			CorrectAnswer: 2,
			Explanation:   "It is the word you use when you meet someone.",
		},
	}
}
