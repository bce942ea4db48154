// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteRegister is the registration route.
	RouteRegister = "/register"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteDashboard is the dashboard route.
	RouteDashboard = "/dashboard"
	// RouteHealth is the health check route.
	RouteHealth = "/health"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixDelete is the suffix for delete routes.
	RouteSuffixDelete = "/delete"
	// RouteSuffixOrder is the suffix for the place-order route.
	RouteSuffixOrder = "/order"

	// RouteProducts is the products dashboard route.
	RouteProducts = "/products"
	// RouteOrders is the orders dashboard route.
	RouteOrders = "/orders"
	// RouteUsers is the users dashboard route.
	RouteUsers = "/users"

	// RouteProductsID is the products ID route pattern.
	RouteProductsID = RouteProducts + RouteParamID
	// RouteOrdersID is the orders ID route pattern.
	RouteOrdersID = RouteOrders + RouteParamID
	// RouteUsersID is the users ID route pattern.
	RouteUsersID = RouteUsers + RouteParamID
)

const (
	redirectLogin     = RouteLogin
	redirectRegister  = RouteRegister
	redirectDashboard = RouteDashboard
)

// Query parameters that open an inline editor on the dashboard.
const (
	queryEditProduct = "edit_product"
	queryEditOrder   = "edit_order"
)

// Template names.
const (
	templateLogin     = "auth/login"
	templateRegister  = "auth/register"
	templateDashboard = "dashboard/index"
	templateError     = "errors/error"
)

// Utility constants used by main.go.
const (
	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
	// StaticMaxAge is the Cache-Control max-age for embedded assets.
	StaticMaxAge = 86400
)
