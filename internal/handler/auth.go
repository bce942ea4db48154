// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/furnishop/internal/api"
	"github.com/olegiv/furnishop/internal/i18n"
	"github.com/olegiv/furnishop/internal/middleware"
	"github.com/olegiv/furnishop/internal/model"
	"github.com/olegiv/furnishop/internal/render"
	"github.com/olegiv/furnishop/internal/session"
)

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	client         *api.Client
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(client *api.Client, renderer *render.Renderer, sm *scs.SessionManager) *AuthHandler {
	return &AuthHandler{
		client:         client,
		renderer:       renderer,
		sessionManager: sm,
	}
}

// LoginData is the view model of the login page.
type LoginData struct {
	Username string
}

// RegisterData is the view model of the registration page. Values survive a
// failed submission; the password never does.
type RegisterData struct {
	Username string
	Email    string
	Phone    string
	Role     model.Role
	Error    string
}

// LoginForm renders the login page.
// Already-authenticated users are sent to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r).Authenticated() {
		http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
		return
	}

	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, http.StatusOK, templateLogin, render.TemplateData{
		Title: i18n.T(lang, "login.title"),
		Data:  LoginData{},
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	if strings.TrimSpace(username) == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, i18n.T(lang, "login.required"))
		return
	}

	res, err := h.client.Login(r.Context(), username, password)
	if err != nil {
		slog.InfoContext(r.Context(), "login failed", "username", username, "error", err)
		flashError(w, r, h.renderer, redirectLogin, i18n.T(lang, "login.failed"))
		return
	}

	// Save renews the session token to prevent session fixation
	if err := session.Save(r.Context(), h.sessionManager, res.Access, res.User); err != nil {
		logAndInternalError(w, r, "failed to store session", "error", err)
		return
	}

	slog.InfoContext(r.Context(), "user logged in", "user_id", res.User.ID, "role", res.User.Role)
	http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r).Authenticated() {
		http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, http.StatusOK, RegisterData{Role: model.RoleCustomer})
}

// Register handles the registration form submission. Errors are shown inline
// with the submitted values kept.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectRegister) {
		return
	}

	data := RegisterData{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
		Role:     model.Role(r.FormValue("role")),
	}
	password := r.FormValue("password")

	if data.Role == "" {
		data.Role = model.RoleCustomer
	}
	if !model.IsRegisterRole(data.Role) {
		slog.WarnContext(r.Context(), "registration with unsupported role", "role", data.Role)
		data.Role = model.RoleCustomer
		data.Error = i18n.T(lang, "register.failed")
		h.renderRegister(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	if data.Username == "" || password == "" {
		data.Error = i18n.T(lang, "register.required")
		h.renderRegister(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	err := h.client.Register(r.Context(), api.RegisterRequest{
		Username: data.Username,
		Password: password,
		Role:     data.Role,
		Email:    data.Email,
		Phone:    data.Phone,
	})
	if err != nil {
		slog.InfoContext(r.Context(), "registration failed", "username", data.Username, "error", err)
		data.Error = api.ErrorMessage(err, i18n.T(lang, "register.failed"), api.RegisterErrorFields...)
		h.renderRegister(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	slog.InfoContext(r.Context(), "user registered", "username", data.Username, "role", data.Role)
	flashSuccess(w, r, h.renderer, redirectLogin, i18n.T(lang, "register.success"))
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, data RegisterData) {
	renderPage(w, r, h.renderer, status, templateRegister, render.TemplateData{
		Title: i18n.T(middleware.GetLang(r), "register.title"),
		Data:  data,
	})
}

// Logout removes the token and user from the session and returns to the
// login page. Requests after this carry no Authorization header.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if u := middleware.GetUser(r); u != nil {
		userID = u.ID
	}

	if err := session.Clear(r.Context(), h.sessionManager); err != nil {
		logAndInternalError(w, r, "failed to clear session", "error", err)
		return
	}

	slog.InfoContext(r.Context(), "user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, redirectLogin, i18n.T(middleware.GetLang(r), "logout.done"), render.FlashInfo)
}
