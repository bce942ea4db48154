// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for session loading,
// authorization, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/furnishop/internal/access"
	"github.com/olegiv/furnishop/internal/logging"
	"github.com/olegiv/furnishop/internal/model"
	"github.com/olegiv/furnishop/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys
const (
	ContextKeySession ContextKey = "session"
)

// RouteLogin is where unauthenticated visitors are sent.
const RouteLogin = "/login"

// LoadSession reads the client session from the scs session and stores it
// in the request context. Must run inside sm.LoadAndSave.
func LoadSession(sm *scs.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := session.Load(r.Context(), sm)
			if err != nil {
				logger.WarnContext(r.Context(), "discarding unreadable session", "error", err)
				if clearErr := session.Clear(r.Context(), sm); clearErr != nil {
					logger.ErrorContext(r.Context(), "failed to clear session", "error", clearErr)
				}
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the client session from the request context. It never
// returns nil; requests without LoadSession get an anonymous session.
func GetSession(r *http.Request) *model.Session {
	if sess, ok := r.Context().Value(ContextKeySession).(*model.Session); ok && sess != nil {
		return sess
	}
	return &model.Session{}
}

// GetUser returns the logged-in user, or nil.
func GetUser(r *http.Request) *model.User {
	return GetSession(r).CurrentUser()
}

// Auth requires an authenticated session and redirects to the login page
// otherwise.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetSession(r).Authenticated() {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability lets the request through only when allowed reports true
// for the current user's capabilities. Refused requests are passed to deny.
func RequireCapability(allowed func(access.Capabilities) bool, deny http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if !allowed(access.For(user)) {
				attrs := []any{"method", r.Method, "path", r.URL.Path}
				if user != nil {
					attrs = append(attrs, "user_id", user.ID, "user_role", user.Role)
				}
				slog.WarnContext(r.Context(), "access denied", attrs...)
				deny.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestPath stores the request path in the context for log records.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithPath(r.Context(), r.URL.Path)))
	})
}
