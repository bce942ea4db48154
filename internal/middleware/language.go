// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/furnishop/internal/i18n"
)

// ContextKeyLanguage holds the UI language code for the request.
const ContextKeyLanguage ContextKey = "language"

// SessionKeyLang stores an explicit language choice.
const SessionKeyLang = "lang"

// Language picks the UI language. Priority order:
// 1. Query parameter ?lang=XX (explicit switch, remembered in the session)
// 2. Language remembered in the session
// 3. Accept-Language header
// 4. Default language
func Language(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			lang := ""
			if q := r.URL.Query().Get("lang"); q != "" && i18n.IsSupported(q) {
				lang = i18n.MatchLanguage(q)
				sm.Put(ctx, SessionKeyLang, lang)
			}
			if lang == "" {
				if saved := sm.GetString(ctx, SessionKeyLang); i18n.IsSupported(saved) {
					lang = saved
				}
			}
			if lang == "" {
				lang = i18n.MatchLanguage(r.Header.Get("Accept-Language"))
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ContextKeyLanguage, lang)))
		})
	}
}

// GetLang returns the UI language for the request.
func GetLang(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}
