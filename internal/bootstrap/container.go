package bootstrap

import (
	"context"
	"log"
	"time"

	"docinsight-be/internal/config"
	"docinsight-be/internal/controller"
	"docinsight-be/internal/handler"
	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/internal/service"
	"docinsight-be/internal/websocket"
	"docinsight-be/pkg/embedding"
	"docinsight-be/pkg/llm/factory"

	pktNats "docinsight-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ingestTopic is the in-process channel carrying queued ingestion tasks from
// the API handlers to the background processor.
const ingestTopic = "ingest_tasks"

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	MeetingController  controller.IMeetingController
	ChatController     controller.IChatController
	InsightController  controller.IInsightController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	ProcessorService *service.ProcessorService

	// WebSockets & Status Push
	StatusHandler *handler.StatusHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)
	batchEmbedder := embedding.NewBatchEmbedder(embeddingProvider, float64(cfg.Ai.EmbeddingRateLimit))

	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIApiKey,
		cfg.Ai.OpenAIBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
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
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/status.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(ingestTopic, pubSub)

	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}
	ingestionService := service.NewIngestionService(
		uowFactory,
		batchEmbedder,
		eventPublisher,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
		nil, // per-chunk progress is only surfaced by the bulk ingest CLI
		sysLogger,
	)

	processorService := service.NewProcessorService(
		ingestionService,
		sysLogger,
		time.Duration(cfg.Rag.ProcessorIntervalMs)*time.Millisecond,
		cfg.Rag.ProcessorBatchSize,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		ingestTopic,
		processorService,
		sysLogger,
	)

	documentService := service.NewDocumentService(uowFactory, publisherService, sysLogger)
	meetingService := service.NewMeetingService(uowFactory, publisherService, sysLogger)

	retrievalService := service.NewRetrievalService(
		uowFactory,
		embeddingProvider,
		cfg.Rag.SimilarityThreshold,
		sysLogger,
	)

	chatService := service.NewChatService(
		uowFactory,
		retrievalService,
		llmProvider,
		cfg.Rag.RailwayURL,
		cfg.Rag.MaxResults,
		cfg.Rag.HistoryWindow,
		sysLogger,
	)

	insightService := service.NewInsightService(uowFactory, sysLogger)

	// 4.5 Bus Workers
	analysisService := service.NewAnalysisService(natsSub, uowFactory, llmProvider, sysLogger)
	if err := analysisService.Start(); err != nil {
		log.Printf("[WARN] Insight analyzer not started: %v", err)
	}

	statusHandler := handler.NewStatusHandler(natsSub, wsHub, wsLogger)
	if err := statusHandler.Start(); err != nil {
		log.Printf("[WARN] Status push not started: %v", err)
	}

	// 5. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		MeetingController:  controller.NewMeetingController(meetingService),
		ChatController:     controller.NewChatController(chatService),
		InsightController:  controller.NewInsightController(insightService),

		ConsumerService:  consumerService,
		ProcessorService: processorService,

		StatusHandler: statusHandler,
		WebSocketHub:  wsHub,
	}
}
