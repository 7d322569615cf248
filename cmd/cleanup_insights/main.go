package main

import (
	"context"
	"log"
	"os"

	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/internal/service"
	"docinsight-be/pkg/database"

	"github.com/joho/godotenv"
)

// One-shot deduplication of the insights table. Databases populated before
// the content_hash unique index existed can hold redundant copies; this keeps
// the oldest row of every duplicate group.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal(err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewIsolatedLogger("logs/cleanup.log")
	insightService := service.NewInsightService(uowFactory, sysLogger)

	log.Println("Scanning insights for duplicate content hashes...")

	res, err := insightService.CleanupDuplicates(context.Background())
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}

	log.Printf("Done. Groups found: %d, rows deleted: %d.", res.GroupsFound, res.Deleted)
}
