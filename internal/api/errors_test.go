// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fields   []string
		fallback string
		want     string
	}{
		{
			name:     "string body",
			raw:      `"Token expired"`,
			fields:   ProductErrorFields,
			fallback: "Failed to create product.",
			want:     "Token expired",
		},
		{
			name:     "first populated field wins",
			raw:      `{"price":["A valid number is required."],"name":["This field is required."]}`,
			fields:   ProductErrorFields,
			fallback: "Failed to create product.",
			want:     "This field is required.",
		},
		{
			name:     "later field when earlier missing",
			raw:      `{"phone":["Invalid phone."]}`,
			fields:   RegisterErrorFields,
			fallback: "Registration failed",
			want:     "Invalid phone.",
		},
		{
			name:     "empty array skipped",
			raw:      `{"quantity":[],"status":["Bad status."]}`,
			fields:   OrderErrorFields,
			fallback: "Failed to update order.",
			want:     "Bad status.",
		},
		{
			name:     "unrelated fields fall back",
			raw:      `{"detail":"Not found."}`,
			fields:   OrderErrorFields,
			fallback: "Failed to update order.",
			want:     "Failed to update order.",
		},
		{
			name:     "field not an array falls back",
			raw:      `{"name":"oops"}`,
			fields:   ProductErrorFields,
			fallback: "Failed to update product.",
			want:     "Failed to update product.",
		},
		{
			name:     "non-json body is plain text",
			raw:      "<h1>Bad Gateway</h1>\n<p>upstream   down</p>",
			fields:   ProductErrorFields,
			fallback: "Failed",
			want:     "Bad Gateway upstream down",
		},
		{
			name:     "empty body falls back",
			raw:      "",
			fields:   ProductErrorFields,
			fallback: "Failed",
			want:     "Failed",
		},
		{
			name:     "markup stripped from string body",
			raw:      `"<b>can't</b> do that"`,
			fallback: "Failed",
			want:     "can't do that",
		},
		{
			name:     "no fields falls back for objects",
			raw:      `{"name":["x"]}`,
			fallback: "Error deleting product",
			want:     "Error deleting product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newError(http.MethodPost, "/api/products/", http.StatusBadRequest, []byte(tt.raw))
			got := ErrorMessage(fmt.Errorf("creating product: %w", err), tt.fallback, tt.fields...)
			if got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessageNonAPIError(t *testing.T) {
	if got := ErrorMessage(errors.New("dial tcp: refused"), "Login failed"); got != "Login failed" {
		t.Errorf("ErrorMessage() = %q, want %q", got, "Login failed")
	}
}

func TestFirstErrorExpr(t *testing.T) {
	want := `"quantity"[0] || "status"[0]`
	if got := firstErrorExpr(OrderErrorFields); got != want {
		t.Errorf("firstErrorExpr() = %q, want %q", got, want)
	}
}

func TestErrorString(t *testing.T) {
	err := newError(http.MethodDelete, "/api/orders/3/", http.StatusForbidden, nil)
	want := "api: DELETE /api/orders/3/: status 403"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
