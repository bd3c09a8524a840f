package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/utils"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		replyError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	registeredUser, err := h.services.Auth.RegisterUser(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			replyError(w, "invalid data provided", http.StatusBadRequest)
		case errors.Is(err, store.ErrEmailAlreadyExists):
			log.Err(err).Msg("email already exists")
			replyError(w, "email already exists", http.StatusConflict)
		default:
			log.Err(err).Msg("unexpected error occurred during registration")
			replyError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	log.Debug().Int64("user_id", registeredUser.UserID).Msg("account registered")

	h.respondWithToken(w, r, registeredUser)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		replyError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	foundUser, err := h.services.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			replyError(w, "invalid data provided", http.StatusBadRequest)
		case errors.Is(err, store.ErrNoUserWasFound) || errors.Is(err, service.ErrWrongPassword):
			log.Err(err).Msg("no user was found/wrong password")
			replyError(w, "invalid email or password", http.StatusUnauthorized)
		default:
			log.Err(err).Msg("unexpected error occurred during login")
			replyError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	log.Debug().Int64("user_id", foundUser.UserID).Msg("user successfully logged in")

	h.respondWithToken(w, r, foundUser)
}

// respondWithToken issues a fresh JWT for user and writes it as the
// response body. The client derives its identity id from the token's
// subject claim, so no separate identity field travels in the response.
func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, user models.User) {
	log := logger.FromRequest(r)

	token, err := h.services.Auth.CreateToken(r.Context(), user)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		replyError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	_, _ = utils.WriteJSON(w, models.TokenResponse{Token: token.SignedString}, http.StatusOK)
}
