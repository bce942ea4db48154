// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render renders the server-side HTML views and carries flash
// messages between a POST and the page it redirects to.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"

	"github.com/olegiv/furnishop/internal/access"
	"github.com/olegiv/furnishop/internal/i18n"
	"github.com/olegiv/furnishop/internal/middleware"
	"github.com/olegiv/furnishop/internal/model"
)

// Flash types understood by the flash partial.
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashError   = "error"
)

const (
	sessionKeyFlash     = "flash"
	sessionKeyFlashType = "flash_type"
	baseLayout          = "layouts/base.html"
)

// pageDirs are the template directories rendered inside the base layout.
var pageDirs = []string{"auth", "dashboard", "errors"}

// htmlSanitizer cleans rendered Markdown from product descriptions.
var htmlSanitizer = bluemonday.UGCPolicy()

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	apiBaseURL     string
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	// APIBaseURL resolves relative product image paths.
	APIBaseURL string
	IsDev      bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		apiBaseURL:     strings.TrimRight(cfg.APIBaseURL, "/"),
		isDev:          cfg.IsDev,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page with the base layout and all partials.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := getTemplateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	for _, dir := range pageDirs {
		pages, err := getTemplateFiles(templatesFS, dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", dir, err)
		}

		for _, tmplPath := range pages {
			name := dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := []string{baseLayout}
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}

			r.templates[name] = tmpl
		}
	}

	if len(r.templates) == 0 {
		return fmt.Errorf("no page templates found")
	}
	return nil
}

// getTemplateFiles returns all .html files in a directory.
func getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// Directory might not exist, that's ok
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			// fs.FS paths always use forward slashes
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// templateFuncs returns custom template functions.
func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"T": func(lang, key string, args ...any) string {
			return i18n.T(lang, key, args...)
		},
		"price":       FormatPrice,
		"imageURL":    r.ImageURL,
		"markdown":    Markdown,
		"productCaps": access.ForProduct,
		"orderCaps":   access.ForOrder,
		"statusLabel": StatusLabel,
		"roleLabel":   RoleLabel,
		"statuses": func() []model.OrderStatus {
			return model.OrderStatuses
		},
		"registerRoles": func() []model.Role {
			return model.RegisterRoles
		},
		"languages": func() []string {
			return i18n.SupportedLanguages
		},
	}
}

// StatusLabel returns the translated order status. Statuses without a
// translation are shown as the API sent them.
func StatusLabel(lang string, s model.OrderStatus) string {
	return labelOrRaw(lang, "order.status.", string(s))
}

// RoleLabel returns the translated role, or the raw role when unknown.
func RoleLabel(lang string, role model.Role) string {
	return labelOrRaw(lang, "role.", string(role))
}

func labelOrRaw(lang, prefix, value string) string {
	if value == "" || !i18n.Has(lang, prefix+value) {
		return value
	}
	return i18n.T(lang, prefix+value)
}

// FormatPrice renders a price with two decimals. Values that are not
// decimal numbers are shown as received.
func FormatPrice(p model.Price) string {
	d, err := decimal.NewFromString(strings.TrimSpace(p.String()))
	if err != nil {
		return p.String()
	}
	return d.StringFixed(2)
}

// ImageURL returns an absolute URL for a product image. Absolute http(s)
// URLs are used as-is; other paths are served by the API host.
func (r *Renderer) ImageURL(src string) string {
	if src == "" {
		return ""
	}
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return src
	}
	if !strings.HasPrefix(src, "/") {
		src = "/" + src
	}
	return r.apiBaseURL + src
}

// Markdown converts a product description to sanitized HTML.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped above
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized by bluemonday
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Lang        string
	User        *model.User
	Caps        access.Capabilities
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	Dev         bool
}

// Render renders a template with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given status code. Session,
// language and capabilities of the request are filled in automatically.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.Dev = r.isDev
	data.Lang = middleware.GetLang(req)
	data.User = middleware.GetUser(req)
	data.Caps = access.For(data.User)
	if data.Title == "" {
		data.Title = i18n.T(data.Lang, "app.title")
	}

	if data.Flash == "" {
		data.Flash, data.FlashType = r.PopFlash(req)
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.DebugContext(req.Context(), "client went away during render", "template", name, "error", err)
	}
	return nil
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), sessionKeyFlash, message)
		r.sessionManager.Put(req.Context(), sessionKeyFlashType, flashType)
	}
}

// PopFlash returns and removes the pending flash message.
func (r *Renderer) PopFlash(req *http.Request) (message, flashType string) {
	if r.sessionManager == nil {
		return "", ""
	}
	message = r.sessionManager.PopString(req.Context(), sessionKeyFlash)
	flashType = r.sessionManager.PopString(req.Context(), sessionKeyFlashType)
	if message != "" && flashType == "" {
		flashType = FlashInfo
	}
	return message, flashType
}
