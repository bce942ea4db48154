// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/olegiv/furnishop/internal/model"
)

// Upload is a file sent as a multipart part.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProductInput is the form sent on product create and update.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Image       *Upload // optional
}

// ListProducts returns all products. Products are public, token may be empty.
func (c *Client) ListProducts(ctx context.Context, token string) ([]model.Product, error) {
	var products []model.Product
	if err := c.doJSON(ctx, http.MethodGet, PathProducts, token, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product as the token's user.
func (c *Client) CreateProduct(ctx context.Context, token string, in ProductInput) (*model.Product, error) {
	return c.sendProduct(ctx, http.MethodPost, PathProducts, token, in)
}

// UpdateProduct partially updates a product.
func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, in ProductInput) (*model.Product, error) {
	return c.sendProduct(ctx, http.MethodPatch, productPath(id), token, in)
}

// DeleteProduct deletes a product.
func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, productPath(id), token, nil, nil)
}

func (c *Client) sendProduct(ctx context.Context, method, path, token string, in ProductInput) (*model.Product, error) {
	body, contentType, err := encodeProductForm(in)
	if err != nil {
		return nil, fmt.Errorf("encoding product form: %w", err)
	}

	var out model.Product
	if err := c.do(ctx, method, path, token, body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func encodeProductForm(in ProductInput) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", in.Name},
		{"description", in.Description},
		{"price", in.Price},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if in.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, in.Image.Filename))
		ct := in.Image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(in.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func productPath(id int64) string {
	return PathProducts + strconv.FormatInt(id, 10) + "/"
}
