// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/olegiv/furnishop/internal/model"
)

// OrderUpdate is the body of an order PATCH. Status is sent only when set.
type OrderUpdate struct {
	Quantity int               `json:"quantity"`
	Status   model.OrderStatus `json:"status,omitempty"`
}

// ListOrders returns the orders visible to the token's user.
func (c *Client) ListOrders(ctx context.Context, token string) ([]model.Order, error) {
	var orders []model.Order
	if err := c.doJSON(ctx, http.MethodGet, PathOrders, token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder places an order for quantity units of product.
func (c *Client) CreateOrder(ctx context.Context, token string, product int64, quantity int) (*model.Order, error) {
	in := struct {
		Product  int64 `json:"product"`
		Quantity int   `json:"quantity"`
	}{product, quantity}

	var out model.Order
	if err := c.doJSON(ctx, http.MethodPost, PathOrders, token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrder changes an order's quantity and, for admins, its status.
func (c *Client) UpdateOrder(ctx context.Context, token string, id int64, in OrderUpdate) (*model.Order, error) {
	var out model.Order
	if err := c.doJSON(ctx, http.MethodPatch, orderPath(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteOrder deletes an order.
func (c *Client) DeleteOrder(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, orderPath(id), token, nil, nil)
}

func orderPath(id int64) string {
	return PathOrders + strconv.FormatInt(id, 10) + "/"
}
