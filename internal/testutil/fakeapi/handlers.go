// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fakeapi

import (
	"cmp"
	"context"
	"encoding/json"
	"net/http"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/olegiv/furnishop/internal/model"
)

type ctxKey struct{}

const maxMultipartMemory = 10 << 20

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeJSON(w, http.StatusUnauthorized, detail("Authentication credentials were not provided."))
			return
		}
		claims, err := s.parseToken(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, detail("Given token not valid for any token type"))
			return
		}

		s.mu.Lock()
		a, exists := s.accounts[claims.UserID]
		var u model.User
		if exists {
			u = a.user
		}
		s.mu.Unlock()

		if !exists {
			writeJSON(w, http.StatusUnauthorized, detail("User not found"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func caller(r *http.Request) model.User {
	u, _ := r.Context().Value(ctxKey{}).(model.User)
	return u
}

func forbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, detail("You do not have permission to perform this action."))
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, detail("Not found."))
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("Malformed request."))
		return
	}

	s.mu.Lock()
	var found *model.User
	for _, a := range s.accounts {
		if a.user.Username == in.Username && a.password == in.Password {
			u := a.user
			found = &u
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		writeJSON(w, http.StatusUnauthorized, detail("No active account found with the given credentials"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access":  s.Token(*found),
		"refresh": "unused",
		"user":    found,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string     `json:"username"`
		Password string     `json:"password"`
		Role     model.Role `json:"role"`
		Email    string     `json:"email"`
		Phone    string     `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("Malformed request."))
		return
	}

	switch {
	case in.Username == "":
		writeJSON(w, http.StatusBadRequest, fieldError("username", "This field may not be blank."))
		return
	case in.Password == "":
		writeJSON(w, http.StatusBadRequest, fieldError("password", "This field may not be blank."))
		return
	case !model.IsRegisterRole(in.Role):
		writeJSON(w, http.StatusBadRequest, fieldError("role", `"`+string(in.Role)+`" is not a valid choice.`))
		return
	}

	s.mu.Lock()
	for _, a := range s.accounts {
		if a.user.Username == in.Username {
			s.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, fieldError("username", "A user with that username already exists."))
			return
		}
		if in.Email != "" && a.user.Email == in.Email {
			s.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, fieldError("email", "user with this email already exists."))
			return
		}
	}
	s.mu.Unlock()

	u := s.AddUser(in.Username, in.Password, in.Role, in.Email)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Products())
}

// canManageProduct reports whether u may change p.
func canManageProduct(u model.User, p *model.Product) bool {
	return u.Role == model.RoleAdmin || (u.Role == model.RoleCarpenter && p.Carpenter == u.ID)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	if u.Role != model.RoleCarpenter && u.Role != model.RoleAdmin {
		forbidden(w)
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("Multipart form parse error."))
		return
	}

	p := model.Product{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       model.Price(r.FormValue("price")),
		Carpenter:   u.ID,
	}
	for field, value := range map[string]string{"name": p.Name, "description": p.Description, "price": string(p.Price)} {
		if value == "" {
			writeJSON(w, http.StatusBadRequest, fieldError(field, "This field is required."))
			return
		}
	}
	price, ok := normalizePrice(string(p.Price))
	if !ok {
		writeJSON(w, http.StatusBadRequest, fieldError("price", "A valid number is required."))
		return
	}
	p.Price = price
	p.Image = imagePath(r)

	created := s.AddProduct(p)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w)
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("Multipart form parse error."))
		return
	}

	var price model.Price
	if raw := r.FormValue("price"); raw != "" {
		if price, ok = normalizePrice(raw); !ok {
			writeJSON(w, http.StatusBadRequest, fieldError("price", "A valid number is required."))
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		notFound(w)
		return
	}
	if !canManageProduct(caller(r), p) {
		forbidden(w)
		return
	}
	if v := r.FormValue("name"); v != "" {
		p.Name = v
	}
	if v := r.FormValue("description"); v != "" {
		p.Description = v
	}
	if price != "" {
		p.Price = price
	}
	if img := imagePath(r); img != "" {
		p.Image = img
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		notFound(w)
		return
	}
	if !canManageProduct(caller(r), p) {
		forbidden(w)
		return
	}
	delete(s.products, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	u := caller(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Role == model.RoleAdmin {
		writeJSON(w, http.StatusOK, s.ordersLocked(nil))
		return
	}
	writeJSON(w, http.StatusOK, s.ordersLocked(func(o *order) bool { return o.owner == u.ID }))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	if u.Role != model.RoleCustomer {
		forbidden(w)
		return
	}

	var in struct {
		Product  int64 `json:"product"`
		Quantity int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("Malformed request."))
		return
	}
	if in.Quantity < 1 {
		writeJSON(w, http.StatusBadRequest, fieldError("quantity", "Ensure this value is greater than or equal to 1."))
		return
	}

	s.mu.Lock()
	_, exists := s.products[in.Product]
	s.mu.Unlock()
	if !exists {
		writeJSON(w, http.StatusBadRequest, fieldError("product", `Invalid pk "`+strconv.FormatInt(in.Product, 10)+`" - object does not exist.`))
		return
	}

	created := s.AddOrder(u.ID, model.Order{Product: in.Product, Quantity: in.Quantity})
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w)
		return
	}
	u := caller(r)

	var in struct {
		Quantity *int              `json:"quantity"`
		Status   model.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("Malformed request."))
		return
	}
	if in.Quantity != nil && *in.Quantity < 1 {
		writeJSON(w, http.StatusBadRequest, fieldError("quantity", "Ensure this value is greater than or equal to 1."))
		return
	}
	if in.Status != "" {
		if u.Role != model.RoleAdmin {
			forbidden(w)
			return
		}
		if !model.IsValidOrderStatus(in.Status) {
			writeJSON(w, http.StatusBadRequest, fieldError("status", `"`+string(in.Status)+`" is not a valid choice.`))
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, exists := s.orders[id]
	if !exists {
		notFound(w)
		return
	}
	if u.Role != model.RoleAdmin && o.owner != u.ID {
		forbidden(w)
		return
	}
	if in.Quantity != nil {
		o.Quantity = *in.Quantity
	}
	if in.Status != "" {
		o.Status = in.Status
	}
	writeJSON(w, http.StatusOK, o.Order)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w)
		return
	}
	u := caller(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	o, exists := s.orders[id]
	if !exists {
		notFound(w)
		return
	}
	if u.Role != model.RoleAdmin && o.owner != u.ID {
		forbidden(w)
		return
	}
	delete(s.orders, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	if caller(r).Role != model.RoleAdmin {
		forbidden(w)
		return
	}
	writeJSON(w, http.StatusOK, s.Users())
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if caller(r).Role != model.RoleAdmin {
		forbidden(w)
		return
	}
	id, ok := idParam(r)
	if !ok {
		notFound(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[id]; !exists {
		notFound(w)
		return
	}
	delete(s.accounts, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) productsLocked() []model.Product {
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b model.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *Server) ordersLocked(keep func(*order) bool) []model.Order {
	out := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep == nil || keep(o) {
			out = append(out, o.Order)
		}
	}
	slices.SortFunc(out, func(a, b model.Order) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *Server) usersLocked() []model.User {
	out := make([]model.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.user)
	}
	slices.SortFunc(out, func(a, b model.User) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// normalizePrice formats a decimal price with two fractional digits.
func normalizePrice(raw string) (model.Price, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return "", false
	}
	return model.Price(d.StringFixed(2)), true
}

// imagePath returns the media path for an uploaded image part, or "".
func imagePath(r *http.Request) string {
	if r.MultipartForm == nil {
		return ""
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return ""
	}
	return "/media/products/" + path.Base(files[0].Filename)
}
