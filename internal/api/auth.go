// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegiv/furnishop/internal/model"
)

// API endpoint paths
const (
	PathLogin    = "/api/auth/login/"
	PathRegister = "/api/auth/register/"
	PathProducts = "/api/products/"
	PathOrders   = "/api/orders/"
	PathUsers    = "/api/users/"
)

// ErrNoAccessToken is returned when a login response carries no token.
var ErrNoAccessToken = errors.New("api: login response has no access token")

// LoginResult is the body of a successful login.
type LoginResult struct {
	Access string     `json:"access"`
	User   model.User `json:"user"`
}

// Login exchanges credentials for an access token and the user record.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	in := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var out LoginResult
	if err := c.doJSON(ctx, http.MethodPost, PathLogin, "", in, &out); err != nil {
		return nil, err
	}
	if out.Access == "" {
		return nil, ErrNoAccessToken
	}
	return &out, nil
}

// RegisterRequest is the payload of an account registration. Empty
// optional fields are left out of the request body.
type RegisterRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, PathRegister, "", req, nil)
}
