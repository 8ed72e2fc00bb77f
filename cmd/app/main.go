package main

import (
	"log"
	"os"

	"SmartRental/internal/di"
	"SmartRental/pkg/config"

	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.StringP("config", "c", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s artifacts=%s ledger=%s alerts=%s",
		cfg.Environment, cfg.Artifacts.Source, cfg.Ledger.Source, cfg.Alerts.Backend)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	err = app.Run()
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
