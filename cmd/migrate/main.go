package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/platform/config"
	"adminconsole/internal/platform/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Session)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session database")
	}
	defer db.Close()

	switch *direction {
	case "up":
		ran, err := database.Migrate(db)
		if err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		if len(ran) == 0 {
			fmt.Println("Nothing to migrate")
			return
		}
		for _, v := range ran {
			fmt.Printf("Applied %s\n", v)
		}
	case "down":
		version, err := database.Rollback(db)
		if err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
		if version == "" {
			fmt.Println("Nothing to roll back")
			return
		}
		fmt.Printf("Rolled back %s\n", version)
	default:
		log.Fatal().Str("direction", *direction).Msg("invalid direction: must be 'up' or 'down'")
	}
}
