package bootstrap

import (
	"context"
	"log"
	"time"

	"gm-shield-be/internal/config"
	"gm-shield-be/internal/controller"
	"gm-shield-be/internal/pkg/logger"
	"gm-shield-be/internal/progress"
	"gm-shield-be/internal/repository/unitofwork"
	"gm-shield-be/internal/service"
	"gm-shield-be/internal/websocket"
	"gm-shield-be/pkg/chunker"
	"gm-shield-be/pkg/embedding"
	"gm-shield-be/pkg/embedding/jina"
	pkgNats "gm-shield-be/pkg/nats"
	"gm-shield-be/pkg/taskqueue"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	KnowledgeController controller.IKnowledgeController
	TaskController      controller.ITaskController
	SearchController    controller.ISearchController

	// Background components (exposed for main.go lifecycle)
	ProgressConsumer progress.IConsumer
	Hub              *websocket.Hub
	Queue            *taskqueue.Queue
	Logger           logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. In-process event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding provider, selected once and shared by ingestion and
	// retrieval so both sides live in the same embedding space.
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// 4. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	queue, err := taskqueue.New(cfg.Ingestion.WorkerPoolSize, 24*time.Hour)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize task queue: %v", err)
	}

	// 5. Services
	progressPublisher := progress.NewPublisher(pubSub)
	progressConsumer := progress.NewConsumer(pubSub, wsHub, wsLogger)

	splitter := chunker.NewSplitter(cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkOverlap)

	knowledgeService := service.NewKnowledgeService(uowFactory)
	ingestionService := service.NewIngestionService(
		uowFactory,
		splitter,
		embeddingProvider,
		progressPublisher,
		natsPub,
		sysLogger,
		cfg.Ingestion.EmbedBatchSize,
	)
	retrievalService := service.NewRetrievalService(uowFactory, embeddingProvider)

	// 6. Controllers
	return &Container{
		KnowledgeController: controller.NewKnowledgeController(knowledgeService, ingestionService, queue),
		TaskController:      controller.NewTaskController(queue),
		SearchController:    controller.NewSearchController(retrievalService),
		ProgressConsumer:    progressConsumer,
		Hub:                 wsHub,
		Queue:               queue,
		Logger:              sysLogger,
	}
}
