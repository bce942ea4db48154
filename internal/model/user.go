// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the marketplace records consumed from the remote API
// (User, Product, Order) and the client-held Session.
package model

// Role is a marketplace user role.
type Role string

// Marketplace roles.
const (
	RoleCustomer  Role = "customer"
	RoleCarpenter Role = "carpenter"
	RoleAdmin     Role = "admin"
)

// RegisterRoles lists the roles a visitor may pick when creating an account.
var RegisterRoles = []Role{RoleCustomer, RoleCarpenter}

// IsRegisterRole reports whether r may be chosen at registration.
func IsRegisterRole(r Role) bool {
	for _, allowed := range RegisterRoles {
		if r == allowed {
			return true
		}
	}
	return false
}

// User is a marketplace account as returned by the API.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
