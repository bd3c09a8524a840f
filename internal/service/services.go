package service

import (
	"fmt"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/config"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
)

// Services bundles the server-side service layer.
type Services struct {
	Auth      AuthService
	Documents DocumentService
	Profiles  ProfileService
	Info      AppInfoService
}

// NewServices wires every server service to its repository.
func NewServices(storages *store.Storages, cfg config.App, logger *logger.Logger) (*Services, error) {
	info, err := NewAppInfoService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create app info service: %w", err)
	}

	return &Services{
		Auth:      NewAuthService(storages.Users, cfg, logger),
		Documents: NewDocumentService(storages.Documents, logger),
		Profiles:  NewProfileService(storages.Profiles, logger),
		Info:      info,
	}, nil
}
