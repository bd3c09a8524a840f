package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/adapter"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/client"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/config"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/tui"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// Build metadata injected via -ldflags at release time.
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	log := logger.NewClientLogger("basket-buddy", "")

	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log = logger.NewClientLogger("basket-buddy", cfg.LogLevel)

	// The context outlives the console so an in-flight commit can finish
	// after the user quits; a stop signal cancels it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating remote store adapter")
	}

	storages, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating local storage")
	}

	services := service.NewClientServices(ctx, storages.StateKV, remote, cfg, log)

	ui, err := tui.New(services, buildInfo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating console")
	}

	app, err := client.NewApp(ctx, services, ui, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating client app")
	}

	if err = app.Run(); err != nil {
		if errors.Is(err, tui.ErrUserQuit) {
			fmt.Println("bye")
			return
		}
		log.Fatal().Err(err).Msg("client run error")
	}
}
