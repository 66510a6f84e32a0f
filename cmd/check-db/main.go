// Connectivity and migration sanity check for the configured database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bedside-care/bedside/internal/config"
	"github.com/bedside-care/bedside/internal/database"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Open(cfg, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.DB().Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: ping: %v\n", err)
		os.Exit(1)
	}

	patients, err := db.ListPatients()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: query patients: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: %s database reachable, %d patients\n", cfg.Database.Driver, len(patients))
}
