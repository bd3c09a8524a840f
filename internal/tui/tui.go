// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package tui

import (
	"context"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
	tea "github.com/charmbracelet/bubbletea"
)

// TUI is the terminal front end: the sign-in flow followed by the sync
// console. It owns no state of its own beyond the wired services.
type TUI struct {
	services  *service.ClientServices
	buildInfo models.AppBuildInfo
}

// New creates the terminal front end over the wired client services.
func New(services *service.ClientServices, buildInfo models.AppBuildInfo, _ *logger.Logger) (*TUI, error) {
	return &TUI{services: services, buildInfo: buildInfo}, nil
}

// SignInFlow runs the menu/login/register program until the user signs
// in or quits. On success it returns the signed-in identity and, when
// the account authenticated but the initial remote load failed, a
// non-nil load warning (automatic sync stays blocked; the console still
// opens). A user-initiated exit returns ErrUserQuit.
func (t *TUI) SignInFlow(ctx context.Context) (identity string, loadWarning error, err error) {
	pages := map[string]tea.Model{
		"menu":     newMenuModel(),
		"login":    newLoginModel(ctx, t.services.Session),
		"register": newRegisterModel(ctx, t.services.Session),
	}

	root := NewRootModel(pages, "menu", t.buildInfo)
	finalModel, runErr := tea.NewProgram(root, tea.WithAltScreen()).Run()
	if runErr != nil {
		return "", nil, runErr
	}

	result, ok := finalModel.(RootModel)
	if !ok {
		return "", nil, tea.ErrProgramKilled
	}
	if result.quitByUser {
		return "", nil, ErrUserQuit
	}

	return result.identity, result.loadWarning, nil
}

// Console runs the sync dashboard for a signed-in identity and blocks
// until the user quits it.
func (t *TUI) Console(ctx context.Context, identity string, loadWarning error) error {
	model := newDashboardModel(ctx, t.services, identity, loadWarning)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
