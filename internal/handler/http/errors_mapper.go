package http

import (
	"errors"
	"net/http"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/utils"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided: http.StatusBadRequest,
	service.ErrEmptyBatch:          http.StatusBadRequest,
	service.ErrBatchTooLarge:       http.StatusBadRequest,
	service.ErrUnknownCollection:   http.StatusBadRequest,

	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,

	// Account lookups only happen during login; a missing account must
	// read the same as a wrong password so the endpoint does not reveal
	// which emails are registered.
	store.ErrNoUserWasFound:     http.StatusUnauthorized,
	store.ErrEmailAlreadyExists: http.StatusConflict,

	store.ErrBuildingSQLQuery:      http.StatusInternalServerError,
	store.ErrBeginningTransaction:  http.StatusInternalServerError,
	store.ErrCommittingTransaction: http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// replyError writes a JSON error body with the given status.
func replyError(w http.ResponseWriter, message string, statusCode int) {
	_, _ = utils.WriteJSON(w, models.ErrorResponse{Error: message}, statusCode)
}

// replyServiceError maps a service-layer error onto an HTTP status.
// Client errors carry the error text so the caller can see what to fix;
// server errors are reported by status text only.
func replyServiceError(w http.ResponseWriter, err error) {
	status := statusFromError(err)

	message := http.StatusText(status)
	if status < http.StatusInternalServerError {
		message = err.Error()
	}

	replyError(w, message, status)
}
