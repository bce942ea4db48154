// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session keeps the dashboard's client session (bearer token and
// user record) in a server-side scs session.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/furnishop/internal/model"
)

// Session keys
const (
	KeyToken = "token"
	KeyUser  = "user" // JSON-encoded model.User
)

// New creates a session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)
	configure(sm, isDev)
	return sm
}

// NewRedis creates a session manager backed by Redis.
func NewRedis(client *redis.Client, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = goredisstore.New(client)
	configure(sm, isDev)
	return sm
}

func configure(sm *scs.SessionManager, isDev bool) {
	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		// __Host- cookies require Secure, Path=/ and no Domain.
		sm.Cookie.Name = "__Host-session"
	}
}

// Load reads the client session from the request's scs session. A missing
// token yields an anonymous session. A token without a readable user record
// is treated as anonymous and reported as an error.
func Load(ctx context.Context, sm *scs.SessionManager) (*model.Session, error) {
	token := sm.GetString(ctx, KeyToken)
	if token == "" {
		return &model.Session{}, nil
	}

	raw := sm.GetString(ctx, KeyUser)
	if raw == "" {
		return &model.Session{}, fmt.Errorf("session has token but no user record")
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return &model.Session{}, fmt.Errorf("decoding session user: %w", err)
	}

	return &model.Session{Token: token, User: &user}, nil
}

// Save stores the token and user after a successful login. The scs token is
// renewed to prevent session fixation.
func Save(ctx context.Context, sm *scs.SessionManager, token string, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	sm.Put(ctx, KeyToken, token)
	sm.Put(ctx, KeyUser, string(raw))
	return nil
}

// Clear removes the token and user and renews the scs token.
func Clear(ctx context.Context, sm *scs.SessionManager) error {
	sm.Remove(ctx, KeyToken)
	sm.Remove(ctx, KeyUser)
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	return nil
}
