package handler

import (
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/handler/http"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
)

// Handlers groups the transport handlers exposed by the server binary.
type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers builds the transport handlers over the service layer.
func NewHandlers(services *service.Services, logger *logger.Logger) *Handlers {
	logger.Info().Msg("creating new handlers...")

	return &Handlers{
		HTTP: http.NewHandler(services, logger),
	}
}
