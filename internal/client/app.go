// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/config"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/tui"
)

// App runs the Basket Buddy client: sign in (interactive or from
// configured credentials), start the optional verification job, then
// hand the terminal to the sync console until the user quits.
type App struct {
	ctx      context.Context
	services *service.ClientServices
	ui       *tui.TUI
	cfg      *config.ClientConfig
	logger   *logger.Logger
}

// NewApp assembles the client application from its wired parts. ctx is
// the process-lifetime context; cancelling it stops background jobs and
// the commits running under them.
func NewApp(ctx context.Context, services *service.ClientServices, ui *tui.TUI, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	if services == nil || ui == nil || cfg == nil {
		return nil, errors.New("client app is missing a dependency")
	}
	return &App{ctx: ctx, services: services, ui: ui, cfg: cfg, logger: logger}, nil
}

// Run implements [Client]. It returns [tui.ErrUserQuit] when the user
// leaves the sign-in flow without signing in.
func (a *App) Run() error {
	identity, loadWarning, err := a.signIn()
	if err != nil {
		return err
	}
	if loadWarning != nil {
		a.logger.Warn().Err(loadWarning).
			Str("func", "App.Run").
			Msg("initial load failed; automatic sync stays blocked")
	}

	a.services.VerifyJob.Start(a.ctx, a.cfg.Jobs.VerifyInterval)
	defer a.services.VerifyJob.Stop()

	return a.ui.Console(a.ctx, identity, loadWarning)
}

// signIn prefers credentials from the configuration; without them the
// interactive flow runs. A load failure after successful authentication
// is returned as a warning, not an error: the console still opens, with
// automatic commits blocked.
func (a *App) signIn() (identity string, loadWarning, err error) {
	email, password := a.cfg.Session.Email, a.cfg.Session.Password
	if email == "" || password == "" {
		return a.ui.SignInFlow(a.ctx)
	}

	signInErr := a.services.Session.Login(a.ctx, email, password)
	if errors.Is(signInErr, service.ErrLoadFailure) {
		return email, signInErr, nil
	}
	if signInErr != nil {
		return "", nil, fmt.Errorf("sign in with configured credentials: %w", signInErr)
	}
	return email, nil, nil
}
