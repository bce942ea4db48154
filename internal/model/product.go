// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Price is a decimal amount. The API serializes prices as strings ("12.50")
// but some deployments send plain JSON numbers, so both are accepted.
type Price string

// UnmarshalJSON accepts a JSON string, number or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding price: %w", err)
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding price: %w", err)
	}
	*p = Price(n.String())
	return nil
}

// String returns the price as sent by the API.
func (p Price) String() string {
	return string(p)
}

// Product is a catalogue item posted by a carpenter.
type Product struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         Price  `json:"price"`
	Image         string `json:"image,omitempty"`
	Carpenter     int64  `json:"carpenter"`
	CarpenterName string `json:"carpenter_name,omitempty"`
}

// OwnedBy reports whether the product was posted by the given user.
func (p Product) OwnedBy(u *User) bool {
	return u != nil && p.Carpenter == u.ID
}
