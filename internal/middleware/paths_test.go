// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripTrailingSlash(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		method       string
		target       string
		wantStatus   int
		wantLocation string
	}{
		{http.MethodGet, "/", http.StatusOK, ""},
		{http.MethodGet, "/dashboard", http.StatusOK, ""},
		{http.MethodGet, "/dashboard/", http.StatusMovedPermanently, "/dashboard"},
		{http.MethodGet, "/dashboard/?edit_product=3", http.StatusMovedPermanently, "/dashboard?edit_product=3"},
		{http.MethodGet, "//evil.example/", http.StatusMovedPermanently, "/evil.example"},
		{http.MethodPost, "/dashboard/products/", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			StripTrailingSlash(ok).ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}

func TestCacheHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	StaticCache(3600)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("StaticCache Cache-Control = %q", got)
	}

	rec = httptest.NewRecorder()
	NoStore(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("NoStore Cache-Control = %q", got)
	}
}
