// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultCSRFConfig(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")

	dev := DefaultCSRFConfig(authKey, true, "0.0.0.0:3000")
	if len(dev.TrustedOrigins) == 0 {
		t.Fatal("expected TrustedOrigins in development")
	}
	for _, origin := range dev.TrustedOrigins {
		if len(origin) > 4 && origin[:4] == "http" {
			t.Errorf("TrustedOrigin should be host:port, not full URL: %s", origin)
		}
	}
	if dev.TrustedOrigins[0] != "0.0.0.0:3000" {
		t.Errorf("first TrustedOrigin = %q, want server address", dev.TrustedOrigins[0])
	}

	prod := DefaultCSRFConfig(authKey, false, "0.0.0.0:3000")
	if len(prod.TrustedOrigins) != 0 {
		t.Errorf("expected no TrustedOrigins in production, got %v", prod.TrustedOrigins)
	}
}

func TestCSRF(t *testing.T) {
	mw := CSRF(DefaultCSRFConfig([]byte("12345678901234567890123456789012"), false, "localhost:8080"))
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	tests := []struct {
		name       string
		method     string
		headers    map[string]string
		wantStatus int
	}{
		{"safe method allowed", http.MethodGet, map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusOK},
		{"same-origin post allowed", http.MethodPost, map[string]string{"Sec-Fetch-Site": "same-origin"}, http.StatusOK},
		{"cross-site post rejected", http.MethodPost, map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusForbidden},
		{"foreign origin rejected", http.MethodPost, map[string]string{"Origin": "https://evil.example"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://localhost:8080/dashboard/products", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
