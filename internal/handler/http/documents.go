// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package http

import (
	"encoding/json"
	"net/http"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/utils"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
	"github.com/go-chi/chi/v5"
)

// batch applies an ordered list of upsert/delete operations for the
// authenticated identity. The whole batch succeeds or fails as one
// transaction.
func (h *Handler) batch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.batch").Msg("no user ID in request context")
		replyError(w, "no user ID in request context", http.StatusUnauthorized)
		return
	}

	var req models.BatchWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.batch").Msg("invalid JSON was passed")
		replyError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.Documents.ApplyBatch(ctx, userID, req.Ops); err != nil {
		log.Err(err).
			Str("func", "*Handler.batch").
			Int("ops", len(req.Ops)).
			Msg("batch write rejected")
		replyServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// snapshot returns the identity's complete document set, every collection
// present even when it holds no records.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.snapshot").Msg("no user ID in request context")
		replyError(w, "no user ID in request context", http.StatusUnauthorized)
		return
	}

	ledger, err := h.services.Documents.Snapshot(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.snapshot").Msg("error reading snapshot")
		replyServiceError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.SnapshotResponse{Collections: ledger}, http.StatusOK)
}

func (h *Handler) listIDs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.listIDs").Msg("no user ID in request context")
		replyError(w, "no user ID in request context", http.StatusUnauthorized)
		return
	}

	collection := chi.URLParam(r, "collection")

	ids, err := h.services.Documents.ListIDs(ctx, userID, collection)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.listIDs").
			Str("collection", collection).
			Msg("error listing record ids")
		replyServiceError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	_, _ = utils.WriteJSON(w, models.IDListResponse{IDs: ids}, http.StatusOK)
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.count").Msg("no user ID in request context")
		replyError(w, "no user ID in request context", http.StatusUnauthorized)
		return
	}

	collection := chi.URLParam(r, "collection")

	count, err := h.services.Documents.Count(ctx, userID, collection)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.count").
			Str("collection", collection).
			Msg("error counting records")
		replyServiceError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.CountResponse{Count: count}, http.StatusOK)
}
