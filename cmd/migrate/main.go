package main

import (
	"log"
	"os"

	"docinsight-be/internal/model"
	"docinsight-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions (AutoMigrate cannot create these)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Document{},
		&model.DocumentChunk{},
		&model.Meeting{},
		&model.MeetingChunk{},
		&model.Insight{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ChatSource{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: constraints and indexes AutoMigrate cannot express
	log.Println("Step 3: Creating Constraints and Vector Indexes...")

	postMigrationSQL := []string{
		// Every insight points at exactly one parent
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_insights_single_parent') THEN
		     ALTER TABLE insights ADD CONSTRAINT chk_insights_single_parent
		       CHECK ((meeting_id IS NULL) != (document_id IS NULL));
		   END IF;
		 END $$;`,

		// Approximate nearest neighbour indexes for cosine search
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
		   ON document_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);`,
		`CREATE INDEX IF NOT EXISTS idx_meeting_chunks_embedding
		   ON meeting_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);`,

		// Hot lookup paths
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_document_id ON document_chunks (document_id);`,
		`CREATE INDEX IF NOT EXISTS idx_meeting_chunks_meeting_id ON meeting_chunks (meeting_id);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_project_id ON documents (project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_project_id ON meetings (project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_insights_project_id ON insights (project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id ON chat_messages (chat_session_id);`,

		// Server-side similarity search, lets SQL clients and the dashboard
		// query without re-implementing the threshold math
		`CREATE OR REPLACE FUNCTION match_document_chunks(
		   query_embedding vector(1536),
		   match_threshold float,
		   match_count int,
		   filter_ids uuid[] DEFAULT NULL
		 )
		 RETURNS TABLE (
		   chunk_id uuid,
		   document_id uuid,
		   document_title varchar,
		   content text,
		   relevance_score float,
		   metadata jsonb
		 )
		 LANGUAGE sql STABLE
		 AS $$
		   SELECT
		     dc.id,
		     dc.document_id,
		     d.title,
		     dc.content,
		     1 - (dc.embedding <=> query_embedding) AS relevance_score,
		     dc.metadata
		   FROM document_chunks dc
		   JOIN documents d ON d.id = dc.document_id
		   WHERE dc.deleted_at IS NULL
		     AND d.deleted_at IS NULL
		     AND (filter_ids IS NULL OR dc.document_id = ANY(filter_ids))
		     AND 1 - (dc.embedding <=> query_embedding) > match_threshold
		   ORDER BY dc.embedding <=> query_embedding
		   LIMIT match_count;
		 $$;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v. Continuing...", err)
		}
	}

	log.Println("Migration complete.")
}
