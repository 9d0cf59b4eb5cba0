package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/DocValidator/internal/cache"
	"github.com/hetulpatel/DocValidator/internal/extract"
	"github.com/hetulpatel/DocValidator/internal/kafka"
	"github.com/hetulpatel/DocValidator/internal/llm"
	"github.com/hetulpatel/DocValidator/internal/logging"
	"github.com/hetulpatel/DocValidator/internal/server"
	sqlstore "github.com/hetulpatel/DocValidator/internal/storage/sqlite"
	"github.com/hetulpatel/DocValidator/internal/validator"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	addr := envString("HTTP_ADDR", ":8080")
	uploadDir := envString("UPLOAD_DIR", "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		logging.Fatalf("[server] ensure upload dir: %v", err)
	}

	llmClient, err := llm.New(llm.Config{
		APIKey:     os.Getenv("LLM_API_KEY"),
		BaseURL:    os.Getenv("LLM_BASE_URL"),
		Model:      os.Getenv("LLM_MODEL"),
		MaxTokens:  envInt("LLM_MAX_TOKENS", 800),
		SchemaName: "verdict",
		Schema:     llm.VerdictSchema(),
	})
	if err != nil {
		logging.Fatalf("[server] llm client: %v", err)
	}

	var verdictCache validator.VerdictCache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisCache, err := cache.NewRedisVerdictCache(
			redisAddr,
			os.Getenv("REDIS_PASSWORD"),
			envInt("REDIS_DB", 0),
			time.Duration(envInt("VERDICT_CACHE_TTL_HOURS", 24))*time.Hour,
			"doc_verdict",
		)
		if err != nil {
			logging.Fatalf("[server] redis cache: %v", err)
		}
		defer redisCache.Close()
		verdictCache = redisCache
		logging.Infof("[server] verdict cache enabled at %s", redisAddr)
	}

	validatorSvc, err := validator.NewService(validator.Config{
		Completer: llmClient,
		Cache:     verdictCache,
		Language:  os.Getenv("RESPONSE_LANGUAGE"),
		Model:     llmClient.Model(),
	})
	if err != nil {
		logging.Fatalf("[server] validator: %v", err)
	}

	var store *sqlstore.Store
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		store, err = sqlstore.Open(path)
		if err != nil {
			logging.Fatalf("[server] open sqlite: %v", err)
		}
		defer store.Close()
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := store.CreateTables(ensureCtx); err != nil {
			logging.Fatalf("[server] create tables: %v", err)
		}
		cancel()
		logging.Infof("[server] verdict audit log at %s", store.Path())
	}

	var writer *kafkago.Writer
	if os.Getenv("KAFKA_BROKERS") != "" {
		brokers := kafka.Brokers()
		topic := kafka.TopicFromEnv("VERDICTS_KAFKA_TOPIC", kafka.DefaultVerdictTopic)
		ensureCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
			logging.Errorf("[server] ensure topic warning: %v", err)
		}
		cancel()
		writer = kafka.NewWriter(brokers, topic)
		defer writer.Close()
		logging.Infof("[server] publishing verdict events to %s", topic)
	}

	srv, err := server.New(server.Config{
		Validator: validatorSvc,
		Extractor: extract.NewService(),
		UploadDir: uploadDir,
		Model:     llmClient.Model(),
		Store:     store,
		Writer:    writer,
	})
	if err != nil {
		logging.Fatalf("[server] init: %v", err)
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Infof("[server] listening on %s (model=%s)", addr, llmClient.Model())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("[server] listen: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("[server] shutdown: %v", err)
	}
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
