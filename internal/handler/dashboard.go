// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/olegiv/furnishop/internal/access"
	"github.com/olegiv/furnishop/internal/api"
	"github.com/olegiv/furnishop/internal/i18n"
	"github.com/olegiv/furnishop/internal/imaging"
	"github.com/olegiv/furnishop/internal/middleware"
	"github.com/olegiv/furnishop/internal/model"
	"github.com/olegiv/furnishop/internal/render"
)

// UsersState is the outcome of the users fetch. An empty list is only
// reported as "no users" when the fetch succeeded.
type UsersState string

// Users fetch outcomes.
const (
	UsersNotRequested UsersState = ""
	UsersLoaded       UsersState = "loaded"
	UsersForbidden    UsersState = "forbidden"
	UsersFailed       UsersState = "failed"
)

// Forbidden reports whether the API refused to list users.
func (s UsersState) Forbidden() bool { return s == UsersForbidden }

// Failed reports whether listing users failed for another reason.
func (s UsersState) Failed() bool { return s == UsersFailed }

// ProductForm holds product form values and the inline error.
type ProductForm struct {
	Name        string
	Description string
	Price       string
	Error       string
}

// ProductEditor is an open inline product editor.
type ProductEditor struct {
	ID   int64
	Form ProductForm
}

// OrderEditor is an open inline order editor.
type OrderEditor struct {
	ID       int64
	Quantity int
	Status   model.OrderStatus
	Error    string
}

// DashboardData is the view model of the dashboard.
type DashboardData struct {
	Products       []model.Product
	ProductsFailed bool
	Orders         []model.Order
	OrdersFailed   bool
	Users          []model.User
	UsersState     UsersState

	// ProductForm is the creation form; empty unless a submission failed.
	ProductForm ProductForm
	EditProduct *ProductEditor
	EditOrder   *OrderEditor
}

// DashboardHandler serves the dashboard and its write actions.
type DashboardHandler struct {
	client         *api.Client
	renderer       *render.Renderer
	images         *imaging.Processor
	maxUploadBytes int64
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(client *api.Client, renderer *render.Renderer, images *imaging.Processor, maxUploadBytes int64) *DashboardHandler {
	return &DashboardHandler{
		client:         client,
		renderer:       renderer,
		images:         images,
		maxUploadBytes: maxUploadBytes,
	}
}

// Show handles GET /dashboard. Products are listed for everyone; orders
// and, for admins, users only with a session.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	data := h.load(r)
	user := middleware.GetUser(r)

	if id, ok := queryID(r, queryEditProduct); ok {
		data.openProductEditor(user, id)
	}
	if id, ok := queryID(r, queryEditOrder); ok {
		data.openOrderEditor(user, id)
	}

	h.render(w, r, http.StatusOK, data)
}

// load fetches the lists shown on the dashboard. Failed reads are logged
// and shown as empty lists with a notice.
func (h *DashboardHandler) load(r *http.Request) *DashboardData {
	ctx := r.Context()
	sess := middleware.GetSession(r)
	data := &DashboardData{}

	products, err := h.client.ListProducts(ctx, sess.Token)
	if err != nil {
		slog.WarnContext(ctx, "failed to load products", "error", err)
		data.ProductsFailed = true
	} else {
		data.Products = products
	}

	if !sess.Authenticated() {
		return data
	}

	orders, err := h.client.ListOrders(ctx, sess.Token)
	if err != nil {
		slog.WarnContext(ctx, "failed to load orders", "error", err)
		data.OrdersFailed = true
	} else {
		data.Orders = orders
	}

	if access.For(sess.User).ViewUsers {
		users, err := h.client.ListUsers(ctx, sess.Token)
		switch {
		case err == nil:
			data.Users = users
			data.UsersState = UsersLoaded
		case api.IsStatus(err, http.StatusUnauthorized, http.StatusForbidden):
			slog.WarnContext(ctx, "users list refused", "error", err)
			data.UsersState = UsersForbidden
		default:
			slog.WarnContext(ctx, "failed to load users", "error", err)
			data.UsersState = UsersFailed
		}
	}

	return data
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, status int, data *DashboardData) {
	renderPage(w, r, h.renderer, status, templateDashboard, render.TemplateData{
		Title: i18n.T(middleware.GetLang(r), "dashboard.title"),
		Data:  data,
	})
}

// openProductEditor opens the editor for a product the user may edit,
// pre-filled with its current values. Unknown IDs are ignored.
func (d *DashboardData) openProductEditor(user *model.User, id int64) {
	for _, p := range d.Products {
		if p.ID != id {
			continue
		}
		if access.ForProduct(user, p).Edit {
			d.EditProduct = &ProductEditor{
				ID: id,
				Form: ProductForm{
					Name:        p.Name,
					Description: p.Description,
					Price:       p.Price.String(),
				},
			}
		}
		return
	}
}

// openOrderEditor opens the editor for an order, pre-filled with its
// current quantity and status. A missing quantity shows as 1 and a missing
// status as pending.
func (d *DashboardData) openOrderEditor(user *model.User, id int64) {
	if !access.ForOrder(user).Edit {
		return
	}
	for _, o := range d.Orders {
		if o.ID != id {
			continue
		}
		editor := &OrderEditor{ID: id, Quantity: o.Quantity, Status: o.Status}
		if editor.Quantity < 1 {
			editor.Quantity = 1
		}
		if editor.Status == "" {
			editor.Status = model.OrderPending
		}
		d.EditOrder = editor
		return
	}
}

// queryID reads a positive integer query parameter.
func queryID(r *http.Request, key string) (int64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
