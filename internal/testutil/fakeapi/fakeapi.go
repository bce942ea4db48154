// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fakeapi is an in-memory implementation of the marketplace REST API
// for tests. It records every request it receives so tests can assert on
// which calls were made and with which headers.
package fakeapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/olegiv/furnishop/internal/model"
)

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	UserAgent     string
	RequestID     string
	ContentType   string
	Body          []byte
}

type account struct {
	user     model.User
	password string
}

type order struct {
	model.Order
	owner int64
}

type failure struct {
	status int
	body   any
}

// Claims are the claims carried by issued access tokens.
type Claims struct {
	UserID int64      `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Server is a running fake API.
type Server struct {
	*httptest.Server

	secret []byte

	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*account
	products map[int64]*model.Product
	orders   map[int64]*order
	requests []Request
	failures map[string]failure
}

// New starts a fake API server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:   []byte("fakeapi-test-signing-key-0123456789"),
		accounts: make(map[int64]*account),
		products: make(map[int64]*model.Product),
		orders:   make(map[int64]*order),
		failures: make(map[string]failure),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login/", s.login)
		r.Post("/auth/register/", s.register)

		r.Get("/products/", s.listProducts)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/products/", s.createProduct)
			r.Patch("/products/{id}/", s.updateProduct)
			r.Delete("/products/{id}/", s.deleteProduct)

			r.Get("/orders/", s.listOrders)
			r.Post("/orders/", s.createOrder)
			r.Patch("/orders/{id}/", s.updateOrder)
			r.Delete("/orders/{id}/", s.deleteOrder)

			r.Get("/users/", s.listUsers)
			r.Delete("/users/{id}/", s.deleteUser)
		})
	})
	return r
}

// AddUser creates an account and returns its public record.
func (s *Server) AddUser(username, password string, role model.Role, email string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	u := model.User{ID: s.nextID, Username: username, Email: email, Role: role}
	s.accounts[u.ID] = &account{user: u, password: password}
	return u
}

// AddProduct stores p, assigning an ID, and returns it.
func (s *Server) AddProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p.ID = s.nextID
	if a, ok := s.accounts[p.Carpenter]; ok && p.CarpenterName == "" {
		p.CarpenterName = a.user.Username
	}
	s.products[p.ID] = &p
	return p
}

// AddOrder stores an order owned by the given user and returns it.
func (s *Server) AddOrder(owner int64, o model.Order) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	o.ID = s.nextID
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	if p, ok := s.products[o.Product]; ok && o.ProductName == "" {
		o.ProductName = p.Name
	}
	s.orders[o.ID] = &order{Order: o, owner: owner}
	return o
}

// Token issues an access token for the given user.
func (s *Server) Token(u model.User) string {
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: signing token: %v", err))
	}
	return signed
}

// Fail makes every request matching method and path answer with status
// and body (JSON-encoded) until ClearFailures is called.
func (s *Server) Fail(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// ClearFailures removes all injected failures.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.failures)
}

// Requests returns a copy of the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// RequestsTo returns recorded requests with the given method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests forgets all recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Products returns the stored products ordered by ID.
func (s *Server) Products() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productsLocked()
}

// Orders returns all stored orders ordered by ID.
func (s *Server) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersLocked(nil)
}

// Users returns all accounts ordered by ID.
func (s *Server) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usersLocked()
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			UserAgent:     r.Header.Get("User-Agent"),
			RequestID:     r.Header.Get("X-Request-ID"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if ok {
			writeJSON(w, f.status, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) parseToken(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

func fieldError(field, msg string) map[string][]string {
	return map[string][]string{field: {msg}}
}
