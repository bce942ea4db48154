// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses, in workflow order.
const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status an admin may assign.
var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderConfirmed,
	OrderShipped,
	OrderDelivered,
	OrderCancelled,
}

// IsValidOrderStatus reports whether s is a known status.
func IsValidOrderStatus(s OrderStatus) bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is a customer's purchase of a product.
type Order struct {
	ID          int64       `json:"id"`
	Product     int64       `json:"product"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	Status      OrderStatus `json:"status"`
}
