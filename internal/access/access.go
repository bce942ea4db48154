// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package access maps a user's role and resource ownership to the set of
// dashboard actions they may perform. Views and handlers consult these
// capability sets instead of comparing role strings.
package access

import "github.com/olegiv/furnishop/internal/model"

// Capabilities is the set of dashboard-wide actions available to a user.
type Capabilities struct {
	CreateProduct  bool
	ManageProducts bool // sees per-product edit/delete controls at all
	PlaceOrder     bool
	EditOrders     bool
	DeleteOrders   bool
	SetOrderStatus bool
	ViewUsers      bool
	DeleteUsers    bool
	ViewAllOrders  bool
}

// For returns the capabilities of user. A nil user has none.
func For(user *model.User) Capabilities {
	if user == nil {
		return Capabilities{}
	}

	switch user.Role {
	case model.RoleAdmin:
		return Capabilities{
			CreateProduct:  true,
			ManageProducts: true,
			EditOrders:     true,
			DeleteOrders:   true,
			SetOrderStatus: true,
			ViewUsers:      true,
			DeleteUsers:    true,
			ViewAllOrders:  true,
		}
	case model.RoleCarpenter:
		return Capabilities{
			CreateProduct:  true,
			ManageProducts: true,
		}
	case model.RoleCustomer:
		return Capabilities{
			PlaceOrder:   true,
			EditOrders:   true,
			DeleteOrders: true,
		}
	default:
		return Capabilities{}
	}
}

// ProductCapabilities is the set of actions a user may take on one product.
type ProductCapabilities struct {
	Edit   bool
	Delete bool
	Order  bool
}

// ForProduct returns what user may do with product. Admins may edit and
// delete any product; carpenters only their own.
func ForProduct(user *model.User, product model.Product) ProductCapabilities {
	caps := For(user)
	pc := ProductCapabilities{Order: caps.PlaceOrder}

	if !caps.ManageProducts {
		return pc
	}
	if user.Role == model.RoleAdmin || product.OwnedBy(user) {
		pc.Edit = true
		pc.Delete = true
	}
	return pc
}

// OrderCapabilities is the set of actions a user may take on one order.
type OrderCapabilities struct {
	Edit      bool
	Delete    bool
	SetStatus bool
}

// ForOrder returns what user may do with an order. Ownership of orders is
// scoped by the API (customers only receive their own), so only the role
// matters here.
func ForOrder(user *model.User) OrderCapabilities {
	caps := For(user)
	return OrderCapabilities{
		Edit:      caps.EditOrders,
		Delete:    caps.DeleteOrders,
		SetStatus: caps.SetOrderStatus,
	}
}
