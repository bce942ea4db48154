// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/furnishop/internal/api"
	"github.com/olegiv/furnishop/internal/model"
)

func TestCreateProduct_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"no name", map[string]string{"description": "Oak", "price": "10"}},
		{"no description", map[string]string{"name": "Chair", "price": "10"}},
		{"no price", map[string]string{"name": "Chair", "description": "Oak"}},
		{"whitespace only", map[string]string{"name": "  ", "description": "Oak", "price": "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
			app.login("maker", "pw")

			res := app.postMultipart("/dashboard/products", tt.fields)
			assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
			assert.Contains(t, res.Body, "Name, description, and price are required.")
			assert.Empty(t, app.api.RequestsTo(http.MethodPost, api.PathProducts))
		})
	}
}

func TestCreateProduct_Success(t *testing.T) {
	app := newTestApp(t)
	maker := app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
	app.login("maker", "pw")

	res := app.postMultipart("/dashboard/products",
		map[string]string{"name": "Rocking Chair", "description": "Hand **carved**", "price": "199.9"},
		fileField{name: "image", filename: "chair.png", data: pngImage(t)},
	)
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/dashboard", res.Location)

	products := app.api.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "Rocking Chair", products[0].Name)
	assert.Equal(t, maker.ID, products[0].Carpenter)
	assert.Equal(t, "/media/products/chair.png", products[0].Image)

	reqs := app.api.RequestsTo(http.MethodPost, api.PathProducts)
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].ContentType, "multipart/form-data")
	assert.NotEmpty(t, reqs[0].Authorization)

	page := app.get("/dashboard")
	require.Equal(t, http.StatusOK, page.Status)
	assert.Contains(t, page.Body, "Product created successfully.")
	assert.Contains(t, page.Body, "Rocking Chair")
	assert.Contains(t, page.Body, "$199.90")
	assert.Contains(t, page.Body, fmt.Sprintf(`src="%s/media/products/chair.png"`, app.api.URL))
	assert.Contains(t, page.Body, `name="name" placeholder="Name" value=""`, "create form is reset")

	again := app.get("/dashboard")
	assert.NotContains(t, again.Body, "Product created successfully.", "flash is shown once")
}

func TestCreateProduct_RejectsInvalidImage(t *testing.T) {
	app := newTestApp(t)
	app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
	app.login("maker", "pw")

	res := app.postMultipart("/dashboard/products",
		map[string]string{"name": "Stool", "description": "Pine", "price": "15"},
		fileField{name: "image", filename: "stool.png", data: []byte("not an image")},
	)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Contains(t, res.Body, "Image must be a JPEG, PNG, GIF or WebP file.")
	assert.Contains(t, res.Body, `value="Stool"`)
	assert.Empty(t, app.api.RequestsTo(http.MethodPost, api.PathProducts))
}

func TestCreateProduct_ImageTooLarge(t *testing.T) {
	app := newTestApp(t)
	app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
	app.login("maker", "pw")

	// the test app accepts images up to 1 MiB
	oversized := bytes.Repeat([]byte{0x89}, 1<<20+64<<10)
	res := app.postMultipart("/dashboard/products",
		map[string]string{"name": "Oak Chest", "description": "Dovetailed", "price": "410"},
		fileField{name: "image", filename: "chest.png", data: oversized},
	)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Contains(t, res.Body, "Image is too large.")
	assert.Contains(t, res.Body, `value="Oak Chest"`)
	assert.Contains(t, res.Body, `value="410"`)
	assert.Contains(t, res.Body, ">Dovetailed</textarea>")
	assert.Empty(t, app.api.RequestsTo(http.MethodPost, api.PathProducts))
}

func TestCreateProduct_APIErrorKeepsValues(t *testing.T) {
	app := newTestApp(t)
	app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
	app.login("maker", "pw")

	res := app.postMultipart("/dashboard/products",
		map[string]string{"name": "Bench", "description": "Elm", "price": "cheap"})
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Contains(t, res.Body, "A valid number is required.")
	assert.Contains(t, res.Body, `value="Bench"`)
	assert.Contains(t, res.Body, `value="cheap"`)
	assert.Empty(t, app.api.Products())
}

func TestCreateProduct_CustomerRefused(t *testing.T) {
	app := newTestApp(t)
	app.api.AddUser("buyer", "pw", model.RoleCustomer, "")
	app.login("buyer", "pw")

	res := app.postMultipart("/dashboard/products",
		map[string]string{"name": "Chair", "description": "Oak", "price": "10"})
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/dashboard", res.Location)
	assert.Empty(t, app.api.RequestsTo(http.MethodPost, api.PathProducts))

	page := app.get("/dashboard")
	assert.Contains(t, page.Body, "You do not have permission to do that.")
}

func TestProductActions_RequireLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/dashboard/products", "/dashboard/products/1", "/dashboard/products/1/delete", "/dashboard/products/1/order"} {
		res := app.post(path, url.Values{})
		assert.Equal(t, http.StatusSeeOther, res.Status, path)
		assert.Equal(t, "/login", res.Location, path)
	}
	assert.Empty(t, app.api.Requests())
}

func TestUpdateProduct(t *testing.T) {
	app := newTestApp(t)
	maker := app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
	p := app.api.AddProduct(model.Product{Name: "Shelf", Description: "Maple", Price: "55.00", Carpenter: maker.ID})
	app.login("maker", "pw")

	res := app.postMultipart(fmt.Sprintf("/dashboard/products/%d", p.ID),
		map[string]string{"name": "Wall Shelf", "description": "Maple", "price": "60"})
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/dashboard", res.Location)

	products := app.api.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "Wall Shelf", products[0].Name)
	assert.Equal(t, model.Price("60.00"), products[0].Price)
	assert.Len(t, app.api.RequestsTo(http.MethodPatch, fmt.Sprintf("%s%d/", api.PathProducts, p.ID)), 1)

	page := app.get("/dashboard")
	assert.NotContains(t, page.Body, fmt.Sprintf(`action="/dashboard/products/%d"`, p.ID), "editor is closed")
}

func TestUpdateProduct_APIErrorReopensEditor(t *testing.T) {
	app := newTestApp(t)
	maker := app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
	p := app.api.AddProduct(model.Product{Name: "Shelf", Description: "Maple", Price: "55.00", Carpenter: maker.ID})
	app.login("maker", "pw")
	app.api.Fail(http.MethodPatch, fmt.Sprintf("%s%d/", api.PathProducts, p.ID), http.StatusBadRequest,
		map[string][]string{"price": {"Ensure that there are no more than 10 digits in total."}})

	res := app.postMultipart(fmt.Sprintf("/dashboard/products/%d", p.ID),
		map[string]string{"name": "Shelf", "description": "Maple", "price": "99999999999"})
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Contains(t, res.Body, "Ensure that there are no more than 10 digits in total.")
	assert.Contains(t, res.Body, fmt.Sprintf(`action="/dashboard/products/%d"`, p.ID))
	assert.Contains(t, res.Body, `value="99999999999"`)
	assert.Equal(t, model.Price("55.00"), app.api.Products()[0].Price)
}

func TestDeleteProduct(t *testing.T) {
	app := newTestApp(t)
	maker := app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
	p := app.api.AddProduct(model.Product{Name: "Crate", Description: "Pine", Price: "12", Carpenter: maker.ID})
	app.login("maker", "pw")

	res := app.post(fmt.Sprintf("/dashboard/products/%d/delete", p.ID), url.Values{})
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Empty(t, app.api.Products())

	page := app.get("/dashboard")
	assert.Contains(t, page.Body, "Product deleted")
	assert.NotContains(t, page.Body, fmt.Sprintf(`id="product-%d"`, p.ID))
}

func TestDeleteProduct_ForeignShowsError(t *testing.T) {
	app := newTestApp(t)
	other := app.api.AddUser("rival", "pw", model.RoleCarpenter, "")
	app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
	p := app.api.AddProduct(model.Product{Name: "Crate", Description: "Pine", Price: "12", Carpenter: other.ID})
	app.login("maker", "pw")

	res := app.post(fmt.Sprintf("/dashboard/products/%d/delete", p.ID), url.Values{})
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Len(t, app.api.Products(), 1)

	page := app.get("/dashboard")
	assert.Contains(t, page.Body, "Error deleting product")
}

func TestPlaceOrder(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		want     int
	}{
		{"explicit", "3", 3},
		{"zero becomes one", "0", 1},
		{"garbage becomes one", "lots", 1},
		{"missing becomes one", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			maker := app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
			app.api.AddUser("buyer", "pw", model.RoleCustomer, "")
			p := app.api.AddProduct(model.Product{Name: "Chair", Description: "Oak", Price: "40", Carpenter: maker.ID})
			app.login("buyer", "pw")

			res := app.post(fmt.Sprintf("/dashboard/products/%d/order", p.ID), url.Values{"quantity": {tt.quantity}})
			require.Equal(t, http.StatusSeeOther, res.Status)

			orders := app.api.Orders()
			require.Len(t, orders, 1)
			assert.Equal(t, p.ID, orders[0].Product)
			assert.Equal(t, tt.want, orders[0].Quantity)

			page := app.get("/dashboard")
			assert.Contains(t, page.Body, "Order placed")
			assert.Contains(t, page.Body, fmt.Sprintf("Chair - Quantity: %d - Status: pending", tt.want))
		})
	}
}

func TestPlaceOrder_CarpenterRefused(t *testing.T) {
	app := newTestApp(t)
	maker := app.api.AddUser("maker", "pw", model.RoleCarpenter, "")
	p := app.api.AddProduct(model.Product{Name: "Chair", Description: "Oak", Price: "40", Carpenter: maker.ID})
	app.login("maker", "pw")

	res := app.post(fmt.Sprintf("/dashboard/products/%d/order", p.ID), url.Values{"quantity": {"1"}})
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Empty(t, app.api.RequestsTo(http.MethodPost, api.PathOrders))
}
