// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/furnishop/internal/i18n"
	"github.com/olegiv/furnishop/internal/middleware"
)

// DeleteUser handles POST /dashboard/users/{id}/delete.
func (h *DashboardHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	sess := middleware.GetSession(r)

	id, ok := parseIDParam(r)
	if !ok {
		NotFound(h.renderer)(w, r)
		return
	}

	if err := h.client.DeleteUser(r.Context(), sess.Token, id); err != nil {
		slog.WarnContext(r.Context(), "failed to delete user", "target_user_id", id, "error", err)
		flashError(w, r, h.renderer, redirectDashboard, i18n.T(lang, "user.delete_failed"))
		return
	}

	slog.InfoContext(r.Context(), "user deleted", "target_user_id", id, "user_id", sess.User.ID)
	flashSuccess(w, r, h.renderer, redirectDashboard, i18n.T(lang, "user.deleted"))
}
