// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

// Package adapter is the transport layer between the client engine and
// the remote document store.
//
// The engine talks to [service.RemoteStore]; this package ships the
// HTTP/REST implementation on top of resty. Transport failures are
// translated into the engine's error kinds exactly once, in
// errors_mapper.go, so no layer above this one ever inspects a status
// code or a dial error.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/config"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/utils"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
	"github.com/go-resty/resty/v2"
)

type httpRemoteStore struct {
	client *utils.HTTPClient
	logger *logger.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPRemoteStore constructs the HTTP/REST implementation of
// [service.RemoteStore]. It normalises and validates the base URL from
// adapterCfg.ServerURL and configures the underlying HTTP client with
// the resolved base URL and request timeout.
//
// Returns an error if adapterCfg.ServerURL is empty or cannot be parsed
// as a valid URL.
func NewHTTPRemoteStore(adapterCfg config.ClientAdapter, logger *logger.Logger) (service.RemoteStore, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote store address: %w", err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpRemoteStore{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [service.RemoteStore]. It stores token
// (whitespace-trimmed) for use in the Authorization header of all
// subsequent identity-scoped requests.
func (h *httpRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteStore) bearer() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Register implements [service.RemoteStore]. It POSTs the credentials to
// POST /api/auth/register and, on success, stores the returned bearer
// token and derives the identity id from its subject claim.
func (h *httpRemoteStore) Register(ctx context.Context, email, password string) (models.Session, error) {
	return h.authenticate(ctx, "/api/auth/register", email, password)
}

// Login implements [service.RemoteStore]. It POSTs the credentials to
// POST /api/auth/login; token handling matches Register.
func (h *httpRemoteStore) Login(ctx context.Context, email, password string) (models.Session, error) {
	return h.authenticate(ctx, "/api/auth/login", email, password)
}

func (h *httpRemoteStore) authenticate(ctx context.Context, route, email, password string) (models.Session, error) {
	var body models.TokenResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.AuthRequest{Email: email, Password: password}).
		SetResult(&body).
		Post(route)
	if err != nil {
		return models.Session{}, transportError("auth request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Session{}, err
	}
	if body.Token == "" {
		return models.Session{}, fmt.Errorf("%w: auth response carries no token", service.ErrNetworkFailure)
	}

	identity, err := utils.ParseSubjectFromJWT(body.Token)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: parse identity from token: %v", service.ErrNetworkFailure, err)
	}

	h.SetToken(body.Token)
	return models.Session{IdentityID: identity, Token: body.Token}, nil
}

// CommitBatch implements [service.RemoteStore]. It POSTs the operations
// to POST /api/user/batch, which applies them atomically in order.
// Requires a valid bearer token.
func (h *httpRemoteStore) CommitBatch(ctx context.Context, ops []models.BatchOp) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.BatchWriteRequest{Ops: ops}).
		Post("/api/user/batch")
	if err != nil {
		return transportError("commit batch", err)
	}

	return mapHTTPError(resp)
}

// ListIDs implements [service.RemoteStore]. It GETs
// GET /api/user/collections/{name}/ids. Requires a valid bearer token.
func (h *httpRemoteStore) ListIDs(ctx context.Context, collection models.Collection) ([]string, error) {
	var body models.IDListResponse

	resp, err := h.authedRequest(ctx).
		SetResult(&body).
		Get("/api/user/collections/" + url.PathEscape(string(collection)) + "/ids")
	if err != nil {
		return nil, transportError("list ids", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return body.IDs, nil
}

// Count implements [service.RemoteStore]. It GETs
// GET /api/user/collections/{name}/count. Requires a valid bearer token.
func (h *httpRemoteStore) Count(ctx context.Context, collection models.Collection) (int, error) {
	var body models.CountResponse

	resp, err := h.authedRequest(ctx).
		SetResult(&body).
		Get("/api/user/collections/" + url.PathEscape(string(collection)) + "/count")
	if err != nil {
		return 0, transportError("count", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	return body.Count, nil
}

// Snapshot implements [service.RemoteStore]. It GETs the identity's full
// remote state from GET /api/user/snapshot. Requires a valid bearer
// token.
func (h *httpRemoteStore) Snapshot(ctx context.Context) (models.Ledger, error) {
	resp, err := h.authedRequest(ctx).Get("/api/user/snapshot")
	if err != nil {
		return nil, transportError("snapshot", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var body models.SnapshotResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot response: %v", service.ErrNetworkFailure, err)
	}

	return models.Ledger(body.Collections), nil
}

// Profile implements [service.RemoteStore]. It GETs the identity's sync
// metadata from GET /api/user/profile. Requires a valid bearer token.
func (h *httpRemoteStore) Profile(ctx context.Context) (models.Profile, error) {
	var body models.Profile

	resp, err := h.authedRequest(ctx).
		SetResult(&body).
		Get("/api/user/profile")
	if err != nil {
		return models.Profile{}, transportError("profile", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Profile{}, err
	}

	return body, nil
}

// StampLastSync implements [service.RemoteStore]. It PUTs the commit
// time to PUT /api/user/profile/sync-stamp. Requires a valid bearer
// token.
func (h *httpRemoteStore) StampLastSync(ctx context.Context, at time.Time) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SyncStampRequest{LastSyncAt: at.UTC()}).
		Put("/api/user/profile/sync-stamp")
	if err != nil {
		return transportError("stamp last sync", err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.bearer(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
