// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/olegiv/furnishop/internal/api"
	"github.com/olegiv/furnishop/internal/i18n"
	"github.com/olegiv/furnishop/internal/imaging"
	"github.com/olegiv/furnishop/internal/middleware"
)

// maxFieldBytes bounds a single non-file field of a product form.
const maxFieldBytes = 64 << 10

// formOverhead is the allowance for non-file fields on top of the image limit.
const formOverhead = 1 << 20

// errImageRejected marks an image that could not be accepted. The inline
// message has already been chosen.
var errImageRejected = errors.New("image rejected")

// CreateProduct handles POST /dashboard/products.
func (h *DashboardHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	sess := middleware.GetSession(r)

	form, image, err := h.readProductForm(w, r)
	if err != nil {
		h.renderCreateError(w, r, form)
		return
	}

	if form.Name == "" || form.Description == "" || form.Price == "" {
		form.Error = i18n.T(lang, "product.required")
		h.renderCreateError(w, r, form)
		return
	}

	product, err := h.client.CreateProduct(r.Context(), sess.Token, api.ProductInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Image:       image,
	})
	if err != nil {
		slog.WarnContext(r.Context(), "failed to create product", "error", err)
		form.Error = api.ErrorMessage(err, i18n.T(lang, "product.create_failed"), api.ProductErrorFields...)
		h.renderCreateError(w, r, form)
		return
	}

	slog.InfoContext(r.Context(), "product created", "product_id", product.ID, "user_id", sess.User.ID)
	flashSuccess(w, r, h.renderer, redirectDashboard, i18n.T(lang, "product.created"))
}

// UpdateProduct handles POST /dashboard/products/{id}. Success closes the
// editor; errors re-open it with the submitted values.
func (h *DashboardHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	sess := middleware.GetSession(r)

	id, ok := parseIDParam(r)
	if !ok {
		NotFound(h.renderer)(w, r)
		return
	}

	form, image, err := h.readProductForm(w, r)
	if err != nil {
		h.renderEditError(w, r, id, form)
		return
	}

	if form.Name == "" || form.Description == "" || form.Price == "" {
		form.Error = i18n.T(lang, "product.required")
		h.renderEditError(w, r, id, form)
		return
	}

	_, err = h.client.UpdateProduct(r.Context(), sess.Token, id, api.ProductInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Image:       image,
	})
	if err != nil {
		slog.WarnContext(r.Context(), "failed to update product", "product_id", id, "error", err)
		form.Error = api.ErrorMessage(err, i18n.T(lang, "product.update_failed"), api.ProductErrorFields...)
		h.renderEditError(w, r, id, form)
		return
	}

	slog.InfoContext(r.Context(), "product updated", "product_id", id, "user_id", sess.User.ID)
	http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
}

// DeleteProduct handles POST /dashboard/products/{id}/delete.
func (h *DashboardHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	sess := middleware.GetSession(r)

	id, ok := parseIDParam(r)
	if !ok {
		NotFound(h.renderer)(w, r)
		return
	}

	if err := h.client.DeleteProduct(r.Context(), sess.Token, id); err != nil {
		slog.WarnContext(r.Context(), "failed to delete product", "product_id", id, "error", err)
		flashError(w, r, h.renderer, redirectDashboard, i18n.T(lang, "product.delete_failed"))
		return
	}

	slog.InfoContext(r.Context(), "product deleted", "product_id", id, "user_id", sess.User.ID)
	flashSuccess(w, r, h.renderer, redirectDashboard, i18n.T(lang, "product.deleted"))
}

// PlaceOrder handles POST /dashboard/products/{id}/order.
func (h *DashboardHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	sess := middleware.GetSession(r)

	id, ok := parseIDParam(r)
	if !ok {
		NotFound(h.renderer)(w, r)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectDashboard) {
		return
	}

	quantity := parseQuantity(r.FormValue("quantity"))
	order, err := h.client.CreateOrder(r.Context(), sess.Token, id, quantity)
	if err != nil {
		slog.WarnContext(r.Context(), "failed to place order", "product_id", id, "quantity", quantity, "error", err)
		flashError(w, r, h.renderer, redirectDashboard, i18n.T(lang, "order.place_failed"))
		return
	}

	slog.InfoContext(r.Context(), "order placed", "order_id", order.ID, "product_id", id, "quantity", quantity)
	flashSuccess(w, r, h.renderer, redirectDashboard, i18n.T(lang, "order.placed"))
}

// readProductForm parses a product form and its optional image part by
// part. Field values are trimmed. On error the returned form carries the
// message and every value read before the failure.
func (h *DashboardHandler) readProductForm(w http.ResponseWriter, r *http.Request) (ProductForm, *api.Upload, error) {
	lang := middleware.GetLang(r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverhead)

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return ProductForm{Error: bodyErrorMessage(lang, err)}, nil, err
		}
		return productFormFrom(r.PostForm), nil, nil
	}
	if err != nil {
		return ProductForm{Error: i18n.T(lang, "form.invalid")}, nil, err
	}

	values := url.Values{}
	var imageName string
	var imageData []byte
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			form := productFormFrom(values)
			form.Error = bodyErrorMessage(lang, err)
			return form, nil, err
		}

		if part.FormName() == "image" && part.FileName() != "" {
			imageName = part.FileName()
			imageData, err = io.ReadAll(io.LimitReader(part, h.maxUploadBytes+1))
			if err == nil && int64(len(imageData)) > h.maxUploadBytes {
				slog.InfoContext(r.Context(), "product image rejected", "error", imaging.ErrTooLarge)
				form := productFormFrom(values)
				form.Error = i18n.T(lang, "product.image_too_large")
				return form, nil, errImageRejected
			}
		} else if part.FormName() != "" {
			var v []byte
			v, err = io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			if err == nil && len(v) > maxFieldBytes {
				err = errFieldTooLong
			}
			values.Add(part.FormName(), string(v))
		}
		_ = part.Close()
		if err != nil {
			form := productFormFrom(values)
			form.Error = bodyErrorMessage(lang, err)
			return form, nil, err
		}
	}

	form := productFormFrom(values)
	if len(imageData) == 0 {
		return form, nil, nil
	}

	img, err := h.images.Normalize(bytes.NewReader(imageData), imageName)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) {
			form.Error = i18n.T(lang, "product.image_too_large")
		} else {
			form.Error = i18n.T(lang, "product.invalid_image")
		}
		slog.InfoContext(r.Context(), "product image rejected", "error", err)
		return form, nil, errImageRejected
	}
	return form, &api.Upload{
		Filename:    img.Filename,
		ContentType: img.ContentType,
		Data:        img.Data,
	}, nil
}

// errFieldTooLong marks a text field over maxFieldBytes.
var errFieldTooLong = errors.New("form field too long")

// productFormFrom builds a form from submitted values.
func productFormFrom(values url.Values) ProductForm {
	return ProductForm{
		Name:        strings.TrimSpace(values.Get("name")),
		Description: strings.TrimSpace(values.Get("description")),
		Price:       strings.TrimSpace(values.Get("price")),
	}
}

// bodyErrorMessage maps a request body error to the inline message.
func bodyErrorMessage(lang string, err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return i18n.T(lang, "product.image_too_large")
	}
	return i18n.T(lang, "form.invalid")
}

func (h *DashboardHandler) renderCreateError(w http.ResponseWriter, r *http.Request, form ProductForm) {
	data := h.load(r)
	data.ProductForm = form
	h.render(w, r, http.StatusUnprocessableEntity, data)
}

func (h *DashboardHandler) renderEditError(w http.ResponseWriter, r *http.Request, id int64, form ProductForm) {
	data := h.load(r)
	data.EditProduct = &ProductEditor{ID: id, Form: form}
	h.render(w, r, http.StatusUnprocessableEntity, data)
}
