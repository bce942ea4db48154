// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/furnishop/internal/access"
	"github.com/olegiv/furnishop/internal/api"
	"github.com/olegiv/furnishop/internal/i18n"
	"github.com/olegiv/furnishop/internal/middleware"
	"github.com/olegiv/furnishop/internal/model"
)

// UpdateOrder handles POST /dashboard/orders/{id}. The status is sent only
// for users allowed to set it.
func (h *DashboardHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	sess := middleware.GetSession(r)

	id, ok := parseIDParam(r)
	if !ok {
		NotFound(h.renderer)(w, r)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectDashboard) {
		return
	}

	editor := &OrderEditor{ID: id, Quantity: parseQuantity(r.FormValue("quantity"))}
	update := api.OrderUpdate{Quantity: editor.Quantity}

	if access.ForOrder(sess.User).SetStatus {
		status := model.OrderStatus(strings.TrimSpace(r.FormValue("status")))
		if status != "" && !model.IsValidOrderStatus(status) {
			editor.Error = i18n.T(lang, "order.update_failed")
			h.renderOrderError(w, r, editor)
			return
		}
		editor.Status = status
		update.Status = status
	}

	if _, err := h.client.UpdateOrder(r.Context(), sess.Token, id, update); err != nil {
		slog.WarnContext(r.Context(), "failed to update order", "order_id", id, "error", err)
		editor.Error = api.ErrorMessage(err, i18n.T(lang, "order.update_failed"), api.OrderErrorFields...)
		h.renderOrderError(w, r, editor)
		return
	}

	slog.InfoContext(r.Context(), "order updated", "order_id", id, "quantity", update.Quantity, "status", update.Status)
	http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
}

// DeleteOrder handles POST /dashboard/orders/{id}/delete.
func (h *DashboardHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	sess := middleware.GetSession(r)

	id, ok := parseIDParam(r)
	if !ok {
		NotFound(h.renderer)(w, r)
		return
	}

	if err := h.client.DeleteOrder(r.Context(), sess.Token, id); err != nil {
		slog.WarnContext(r.Context(), "failed to delete order", "order_id", id, "error", err)
		flashError(w, r, h.renderer, redirectDashboard, i18n.T(lang, "order.delete_failed"))
		return
	}

	slog.InfoContext(r.Context(), "order deleted", "order_id", id)
	flashSuccess(w, r, h.renderer, redirectDashboard, i18n.T(lang, "order.deleted"))
}

func (h *DashboardHandler) renderOrderError(w http.ResponseWriter, r *http.Request, editor *OrderEditor) {
	data := h.load(r)
	if editor.Status == "" {
		// keep the current status selected in the editor
		for _, o := range data.Orders {
			if o.ID == editor.ID {
				editor.Status = o.Status
			}
		}
	}
	data.EditOrder = editor
	h.render(w, r, http.StatusUnprocessableEntity, data)
}
