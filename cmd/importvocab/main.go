package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/toeicbot/internal/config"
	"github.com/example/toeicbot/internal/database"
	"github.com/example/toeicbot/internal/importer"
	"github.com/example/toeicbot/internal/random"
)

func main() {
	file := flag.String("file", "bank.text", "word list (.text/.txt), .csv or .xlsx file to import")
	sheet := flag.String("sheet", "", "Excel sheet name, defaults to the first sheet")
	startRow := flag.Int("start-row", 2, "first data row for CSV and Excel files")
	driver := flag.String("driver", "", "database driver, overrides DATABASE_DRIVER")
	dsn := flag.String("dsn", "", "database DSN, overrides DATABASE_URL")
	flag.Parse()

	// Only the database settings are needed here, so no token checks
	if err := config.LoadEnvFiles(); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}
	if *driver == "" {
		*driver = config.Getenv("DATABASE_DRIVER", "sqlite3")
	}
	if *dsn == "" {
		*dsn = config.Getenv("DATABASE_URL", "data/toeicbot.db")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(*driver, *dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	importConfig := importer.DefaultImportConfig()
	importConfig.SheetName = *sheet
	importConfig.StartRow = *startRow

	repo := database.NewVocabularyRepository(db, random.NewTimeSeeded())
	result, err := importer.New(repo, importConfig).ImportFile(ctx, *file)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Processed: %d\nCreated: %d\nSkipped: %d\nErrors: %d\n",
		result.TotalProcessed, result.Created, result.Skipped, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Println("  " + e)
	}

	total, err := repo.CountActive(ctx)
	if err != nil {
		log.Fatalf("Failed to count vocabulary: %v", err)
	}
	fmt.Printf("Active words in bank: %d\n", total)
}
