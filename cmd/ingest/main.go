package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docinsight-be/internal/bootstrap"
	"docinsight-be/internal/config"
	"docinsight-be/internal/entity"
	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/internal/service"
	"docinsight-be/pkg/database"
	"docinsight-be/pkg/embedding"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Bulk-ingests local text files straight through the pipeline: each file
// becomes a document, then the batch is chunked, embedded and stored with
// bounded concurrency. Per-chunk embedding progress is printed as it happens.
//
//	ingest -project <uuid> report.md notes.txt transcripts/*.txt

func main() {
	projectFlag := flag.String("project", "", "Project UUID (required)")
	flag.Parse()

	paths := flag.Args()
	if *projectFlag == "" || len(paths) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	projectId, err := uuid.Parse(*projectFlag)
	if err != nil {
		color.Red("Invalid project id: %v", err)
		os.Exit(1)
	}

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	provider, err := bootstrap.NewEmbeddingProvider(cfg)
	if err != nil {
		color.Red("Embedding provider: %v", err)
		os.Exit(1)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewIsolatedLogger("logs/ingest.log")

	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	titles := make(map[uuid.UUID]string)
	var ids []uuid.UUID
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			color.Red("Skipping %s: %v", path, err)
			continue
		}

		doc := &entity.Document{
			Id:        uuid.New(),
			ProjectId: projectId,
			Title:     filepath.Base(path),
			FileName:  filepath.Base(path),
			FileType:  strings.TrimPrefix(filepath.Ext(path), "."),
			Source:    path,
			Content:   string(content),
			Status:    entity.DocumentStatusPending,
			CreatedAt: time.Now(),
		}
		if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
			color.Red("Skipping %s: %v", path, err)
			continue
		}
		titles[doc.Id] = doc.Title
		ids = append(ids, doc.Id)
		color.Cyan("Queued %s (%d bytes)", doc.Title, len(content))
	}
	if len(ids) == 0 {
		color.Red("Nothing to ingest")
		os.Exit(1)
	}

	// Progress callbacks arrive from concurrent pipelines; titles is
	// read-only by now so no locking is needed.
	progress := func(id uuid.UUID, done, total int) {
		color.Yellow("  %s: embedded %d/%d chunks", titles[id], done, total)
	}

	ingestionService := service.NewIngestionService(
		uowFactory,
		embedding.NewBatchEmbedder(provider, float64(cfg.Ai.EmbeddingRateLimit)),
		nil,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
		progress,
		sysLogger,
	)

	started := time.Now()
	errs := ingestionService.IngestBatch(ctx, ids)

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			color.Red("%s: %v", titles[ids[i]], err)
		} else {
			color.Green("%s: done", titles[ids[i]])
		}
	}

	if failed > 0 {
		color.Red("Ingested %d of %d documents in %s", len(ids)-failed, len(ids), time.Since(started).Round(time.Millisecond))
		os.Exit(1)
	}
	color.Green("Ingested %d documents in %s", len(ids), time.Since(started).Round(time.Millisecond))
}
