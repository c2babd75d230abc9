package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"cybertrain/internal/config"
	"cybertrain/internal/database"
	"cybertrain/internal/repository"
	"cybertrain/internal/service"
)

func main() {
	output := flag.String("output", "", "Output file path (default: export_YYYYMMDD_HHMMSS.json)")
	flag.Usage = printUsage
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	exportService := service.NewExportService(
		repository.NewTownshipRepository(db),
		repository.NewUserRepository(db),
		repository.NewModuleRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewResultRepository(db),
	)

	outputPath := *output
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("export_%s.json", timestamp)
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer file.Close()

	log.Printf("Exporting portal data to: %s", outputPath)
	if err := exportService.Export(file); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fileInfo, _ := os.Stat(outputPath)
	log.Printf("Export complete! File size: %.2f MB", float64(fileInfo.Size())/1024/1024)
}

func printUsage() {
	fmt.Println("Cyber Awareness Training Portal Export Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  export [options]    Export portal data to a JSON file")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -output <file>    Output file path (default: export_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH    SQLite database path (default: ./cybertrain.db)")
	fmt.Println("  DB_URL     PostgreSQL or MySQL connection URL")
}
