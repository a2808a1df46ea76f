package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/achievements"
	"github.com/anki0476/rigveda-explorer/internal/adapters/cache"
	"github.com/anki0476/rigveda-explorer/internal/adapters/completionprovider"
	"github.com/anki0476/rigveda-explorer/internal/adapters/database"
	"github.com/anki0476/rigveda-explorer/internal/adapters/progressrepository"
	"github.com/anki0476/rigveda-explorer/internal/app"
	"github.com/anki0476/rigveda-explorer/internal/config"
	"github.com/anki0476/rigveda-explorer/internal/constants"
	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/notifications"
	"github.com/anki0476/rigveda-explorer/internal/ports"
	"github.com/anki0476/rigveda-explorer/internal/progress"
	"github.com/anki0476/rigveda-explorer/internal/reporting"
	"github.com/anki0476/rigveda-explorer/internal/story"
	"github.com/anki0476/rigveda-explorer/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	// Root certificates for minimal container images
	_ "golang.org/x/crypto/x509roots/fallback"
)

const SERVICE_NAME = "rigveda-explorer"

const SESSION_TTL = 30 * time.Minute
const ASSISTANT_ANSWER_TTL = 6 * time.Hour

func newPersistence(ctx context.Context, conf config.Config, logger *slog.Logger) (progress.Persistence, func(), error) {
	migratorLogger := logger.With("component", "migrator")

	switch conf.ProgressBackend() {
	case config.PostgresBackend:
		db, err := database.NewCloudsqlPostgresDatabase(conf)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}

		schemaName := database.GetSchemaName(!conf.IsProduction())
		err = database.NewDatabaseMigrator(db, migratorLogger).Migrate(ctx, schemaName)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}

		return progressrepository.NewPostgres(db, schemaName, time.Now), func() { db.Close() }, nil
	case config.SQLiteBackend:
		db, err := database.NewSQLiteDatabase(conf.SQLitePath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize sqlite: %w", err)
		}

		err = database.NewDatabaseMigrator(db, migratorLogger).MigrateSQLite(ctx)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate sqlite: %w", err)
		}

		return progressrepository.NewSQLite(db, time.Now), func() { db.Close() }, nil
	case config.MemoryBackend:
		return progressrepository.NewMemoryProgressRepository(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown progress backend %s", conf.ProgressBackend())
}

func loadGraph(conf config.Config) (*story.Graph, error) {
	if conf.StoryPath() == "" {
		return story.DefaultGraph(), nil
	}

	data, err := os.ReadFile(conf.StoryPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read story: %w", err)
	}
	return story.LoadGraph(data)
}

func main() {
	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	instanceID := uuid.New().String()

	baseHandler := slog.NewJSONHandler(os.Stdout, nil)
	logger := slog.New(baseHandler).With("instanceID", instanceID, "version", constants.VERSION)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	if project := config.GoogleCloudProject(); project != "" {
		logger = slog.New(logging.NewGoogleCloudTracingLogHandler(baseHandler, project)).
			With("instanceID", instanceID, "version", constants.VERSION)
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	if config.OTelEnabled() {
		shutdownOTel, err := telemetry.SetupOTelSDK(ctx, SERVICE_NAME, constants.VERSION)
		if err != nil {
			fail("Failed to set up OpenTelemetry", "error", err.Error())
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
			}
		}()
		logger.Info("Initialized OpenTelemetry")
	}

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	persistence, closePersistence, err := newPersistence(ctx, config, logger)
	if err != nil {
		fail("Failed to initialize progress persistence", "error", err.Error())
	}
	defer closePersistence()
	logger.Info("Initialized progress persistence", "backend", string(config.ProgressBackend()))

	graph, err := loadGraph(config)
	if err != nil {
		fail("Failed to load story", "error", err.Error())
	}
	for _, ref := range graph.DanglingReferences() {
		logger.Warn("Story choice points at a missing chapter", "chapter", ref.NodeID, "choice", ref.ChoiceID, "target", ref.Target)
	}
	logger.Info("Loaded story", "chapters", graph.Len(), "start", graph.Start())

	rulebook := achievements.DefaultRulebook()

	sessionCache := cache.NewTTLCache[*app.Session](
		SESSION_TTL,
		cache.WithTouchOnHit[*app.Session](),
		cache.WithEvictionCallback(func(playerID string, session *app.Session) {
			session.Close()
		}),
	)
	defer sessionCache.Stop()

	getSession := app.BuildGetSession(
		sessionCache,
		persistence,
		rulebook,
		graph,
		notifications.DefaultDurations(),
		time.Now,
	)

	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	completions, err := completionprovider.NewChatCompletions(
		httpClient,
		config.CompletionBaseURL(),
		config.CompletionAPIKey(),
		// Shared across players to stay within the provider's quota
		rate.NewLimiter(rate.Limit(2), 4),
	)
	if err != nil {
		fail("Failed to initialize completion provider", "error", err.Error())
	}
	if config.CompletionAPIKey() == "" {
		logger.Warn("No completion API key configured, the assistant will always apologize")
	}

	answerCache := cache.NewTTLCache[domain.AssistantReply](ASSISTANT_ANSWER_TTL)
	defer answerCache.Stop()
	askAssistant := app.BuildAskAssistant(completions, config.CompletionModels(), answerCache)

	allowedOrigins, err := ports.NewDomainSuffixes(config.AllowedOriginSuffixes()...)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}
	if config.IsDevelopment() {
		allowedOrigins.AllowLocalhost()
	}

	apiHandler, stopRateLimiters := ports.NewHandler(ports.Deps{
		GetSession:       getSession,
		AskAssistant:     askAssistant,
		Catalog:          rulebook,
		AllowedOrigins:   allowedOrigins,
		RootLogger:       logger,
		SentryMiddleware: sentryMiddleware,
		Instrument: func(h http.Handler) http.Handler {
			return otelhttp.NewHandler(h, SERVICE_NAME)
		},
	})
	defer stopRateLimiters()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Port()),
		Handler:           apiHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down server", "error", err.Error())
		}
	}()

	logger.Info("Init complete", "port", config.Port())
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
