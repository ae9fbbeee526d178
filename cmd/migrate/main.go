package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/feedbridge/backend/internal/infrastructure/config"
	"github.com/feedbridge/backend/internal/infrastructure/logger"
	"github.com/feedbridge/backend/internal/infrastructure/persistence"
	"github.com/feedbridge/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	switch command {
	case "up":
		if err := migrateUp(db, log); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
	case "status":
		if err := printStatus(db, log); err != nil {
			log.Fatal("Status check failed", zap.Error(err))
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

// migratedModels is every table the schema needs, in dependency order
var migratedModels = []any{
	&models.OrderModel{},
	&models.OrderItemModel{},
	&models.OrderMetadataModel{},
	&models.OrderNoteModel{},
	&models.ProductModel{},
	&models.ImportRunLogModel{},
}

func migrateUp(db *persistence.Database, log *zap.Logger) error {
	log.Info("Running schema migration")
	if err := db.DB.AutoMigrate(migratedModels...); err != nil {
		return err
	}
	log.Info("Schema migration complete")
	return nil
}

func printStatus(db *persistence.Database, log *zap.Logger) error {
	migrator := db.DB.Migrator()
	for _, model := range migratedModels {
		exists := migrator.HasTable(model)
		log.Info("Table status",
			zap.String("model", fmt.Sprintf("%T", model)),
			zap.Bool("exists", exists))
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up      Apply the schema to the configured database")
	fmt.Println("  status  Show which tables exist")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
