package main

import (
	"context"
	"fmt"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/config"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/handler"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/server"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
)

// Build metadata injected via -ldflags at release time.
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	// printBuildInfo replaces empty build metadata with placeholders,
	// so the release version has to be captured first.
	releaseVersion := buildVersion
	printBuildInfo()

	log := logger.New("server", "")

	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log = logger.New("server", cfg.App.LogLevel)
	log.Debug().Any("config", cfg).Msg("received configs")

	// The linker-injected version wins over the config default so the
	// version endpoint reports the released build.
	if releaseVersion != "" {
		cfg.App.Version = releaseVersion
	}

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	services, err := service.NewServices(storages, cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers := handler.NewHandlers(services, log)

	srv, err := server.NewServer(handlers, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
