// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/olegiv/furnishop/internal/model"
)

// ListUsers returns all accounts. The API allows this for admins only.
func (c *Client) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	var users []model.User
	if err := c.doJSON(ctx, http.MethodGet, PathUsers, token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser deletes an account.
func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, PathUsers+strconv.FormatInt(id, 10)+"/", token, nil, nil)
}
