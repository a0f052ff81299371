package main

import (
	"fmt"
	"log"
	"os"

	"github.com/levinOo/rsrc-pool/internal/config"
	"github.com/levinOo/rsrc-pool/internal/handler"
	"github.com/levinOo/rsrc-pool/internal/logger"
)

var (
	buildVersion string = "N/A"
	buildDate    string = "N/A"
	buildCommit  string = "N/A"
)

func main() {
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sugar, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer sugar.Sync()

	return handler.Serve(cfg, sugar)
}
