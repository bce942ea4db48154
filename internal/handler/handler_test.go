// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/furnishop/internal/api"
	"github.com/olegiv/furnishop/internal/handler"
	"github.com/olegiv/furnishop/internal/i18n"
	"github.com/olegiv/furnishop/internal/imaging"
	"github.com/olegiv/furnishop/internal/middleware"
	"github.com/olegiv/furnishop/internal/render"
	"github.com/olegiv/furnishop/internal/session"
	"github.com/olegiv/furnishop/internal/testutil"
	"github.com/olegiv/furnishop/internal/testutil/fakeapi"
	"github.com/olegiv/furnishop/internal/version"
	"github.com/olegiv/furnishop/web"
)

// routeSession exposes the stored session keys to tests.
const routeSession = "/_test/session"

// testApp is the dashboard wired to a fake marketplace API, driven through
// a cookie-keeping client that does not follow redirects.
type testApp struct {
	t      *testing.T
	api    *fakeapi.Server
	server *httptest.Server
	client *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	require.NoError(t, i18n.Init(nil))

	fake := fakeapi.New(t)
	sm := scs.New()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		APIBaseURL:     fake.URL,
		IsDev:          true,
	})
	require.NoError(t, err)

	client := api.New(fake.URL, 5*time.Second,
		api.WithHTTPClient(fake.Client()),
		api.WithLogger(testutil.TestLoggerSilent()),
	)
	routes := handler.Routes{
		Auth:      handler.NewAuthHandler(client, renderer, sm),
		Dashboard: handler.NewDashboardHandler(client, renderer, imaging.NewProcessor(0, 0, 0), 1<<20),
		Health:    handler.NewHealthHandler(testutil.TestDB(t), version.Info{Version: "v0.0.0-test"}),
		Renderer:  renderer,
	}

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadSession(sm, testutil.TestLoggerSilent()))
	r.Use(middleware.Language(sm))
	r.Get(routeSession, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, sm.GetString(r.Context(), session.KeyToken)+"\n"+sm.GetString(r.Context(), session.KeyUser))
	})
	routes.Mount(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		t:      t,
		api:    fake,
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// response is a fully read HTTP response.
type response struct {
	Status   int
	Location string
	Header   http.Header
	Body     string
}

func (a *testApp) do(req *http.Request) response {
	a.t.Helper()
	res, err := a.client.Do(req)
	require.NoError(a.t, err)
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	require.NoError(a.t, err)
	return response{
		Status:   res.StatusCode,
		Location: res.Header.Get("Location"),
		Header:   res.Header,
		Body:     string(body),
	}
}

func (a *testApp) get(path string) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	require.NoError(a.t, err)
	return a.do(req)
}

func (a *testApp) post(path string, form url.Values) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

// fileField is an uploaded file in a multipart form.
type fileField struct {
	name, filename string
	data           []byte
}

func (a *testApp) postMultipart(path string, fields map[string]string, files ...fileField) response {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.name, f.filename)
		require.NoError(a.t, err)
		_, err = part.Write(f.data)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req)
}

// login signs in through the login form and fails the test otherwise.
func (a *testApp) login(username, password string) {
	a.t.Helper()
	res := a.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(a.t, http.StatusSeeOther, res.Status)
	require.Equal(a.t, "/dashboard", res.Location)
}

// storedSession returns the token and raw user record kept for the client.
func (a *testApp) storedSession() (token, user string) {
	a.t.Helper()
	body := a.get(routeSession).Body
	token, user, _ = strings.Cut(body, "\n")
	return token, user
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		img.Set(x, 1, color.RGBA{R: 139, G: 94, B: 52, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
