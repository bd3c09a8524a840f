package http

import (
	"encoding/json"
	"net/http"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/utils"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// profile returns the identity's sync profile, currently the timestamp
// of the last confirmed synchronization (null before the first one).
func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.profile").Msg("no user ID in request context")
		replyError(w, "no user ID in request context", http.StatusUnauthorized)
		return
	}

	profile, err := h.services.Profiles.GetProfile(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.profile").Msg("error reading profile")
		replyServiceError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, profile, http.StatusOK)
}

// stampSync records the moment a client confirmed a successful
// synchronization.
func (h *Handler) stampSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.stampSync").Msg("no user ID in request context")
		replyError(w, "no user ID in request context", http.StatusUnauthorized)
		return
	}

	var req models.SyncStampRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.stampSync").Msg("invalid JSON was passed")
		replyError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.Profiles.StampLastSync(ctx, userID, req.LastSyncAt); err != nil {
		log.Err(err).Str("func", "*Handler.stampSync").Msg("error stamping last sync")
		replyServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
