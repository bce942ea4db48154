// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/furnishop/internal/access"
	"github.com/olegiv/furnishop/internal/middleware"
	"github.com/olegiv/furnishop/internal/render"
)

// Routes groups the handlers mounted by Mount.
type Routes struct {
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler
	Renderer  *render.Renderer

	// AuthLimit throttles the login and registration POSTs. Optional.
	AuthLimit func(http.Handler) http.Handler
}

// Mount registers the application routes. The session must already be
// loaded by sm.LoadAndSave, middleware.LoadSession and middleware.Language.
func (rt Routes) Mount(r chi.Router) {
	limit := rt.AuthLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	deny := AccessDenied(rt.Renderer)
	require := func(allowed func(access.Capabilities) bool) func(http.Handler) http.Handler {
		return middleware.RequireCapability(allowed, deny)
	}

	r.Get(RouteRoot, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, redirectDashboard, http.StatusFound)
	})
	if rt.Health != nil {
		r.Get(RouteHealth, rt.Health.Health)
	}

	r.Get(RouteLogin, rt.Auth.LoginForm)
	r.With(limit).Post(RouteLogin, rt.Auth.Login)
	r.Get(RouteRegister, rt.Auth.RegisterForm)
	r.With(limit).Post(RouteRegister, rt.Auth.Register)
	r.Post(RouteLogout, rt.Auth.Logout)

	r.Route(RouteDashboard, func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Get(RouteRoot, rt.Dashboard.Show)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			r.With(require(func(c access.Capabilities) bool { return c.CreateProduct })).
				Post(RouteProducts, rt.Dashboard.CreateProduct)
			r.With(require(func(c access.Capabilities) bool { return c.ManageProducts })).
				Post(RouteProductsID, rt.Dashboard.UpdateProduct)
			r.With(require(func(c access.Capabilities) bool { return c.ManageProducts })).
				Post(RouteProductsID+RouteSuffixDelete, rt.Dashboard.DeleteProduct)
			r.With(require(func(c access.Capabilities) bool { return c.PlaceOrder })).
				Post(RouteProductsID+RouteSuffixOrder, rt.Dashboard.PlaceOrder)

			r.With(require(func(c access.Capabilities) bool { return c.EditOrders })).
				Post(RouteOrdersID, rt.Dashboard.UpdateOrder)
			r.With(require(func(c access.Capabilities) bool { return c.DeleteOrders })).
				Post(RouteOrdersID+RouteSuffixDelete, rt.Dashboard.DeleteOrder)

			r.With(require(func(c access.Capabilities) bool { return c.DeleteUsers })).
				Post(RouteUsersID+RouteSuffixDelete, rt.Dashboard.DeleteUser)
		})
	})

	r.NotFound(NotFound(rt.Renderer))
}
