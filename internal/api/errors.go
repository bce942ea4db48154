// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/jmespath-community/go-jmespath"
	"github.com/microcosm-cc/bluemonday"
)

// maxMessageRunes caps error text taken verbatim from a response body.
const maxMessageRunes = 300

// Field lists used to pick the message shown for a failed form submission.
var (
	RegisterErrorFields = []string{"email", "username", "password", "role", "phone"}
	ProductErrorFields  = []string{"name", "description", "price"}
	OrderErrorFields    = []string{"quantity", "status"}
)

var plainText = bluemonday.StrictPolicy()

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	Method     string
	Path       string
	// Body is the decoded JSON body, or the raw body as a string when it
	// is not JSON.
	Body any
}

func newError(method, path string, status int, raw []byte) *Error {
	e := &Error{StatusCode: status, Method: method, Path: path}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		e.Body = decoded
	} else {
		e.Body = string(raw)
	}
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// ErrorMessage returns the text to show for a failed call. A string body
// is shown as plain text. Otherwise the first element of the first listed
// field that carries an error is used. Anything else, including transport
// errors, yields fallback.
func ErrorMessage(err error, fallback string, fields ...string) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return fallback
	}

	if s, ok := apiErr.Body.(string); ok {
		if msg := toPlainText(s); msg != "" {
			return msg
		}
		return fallback
	}

	if len(fields) == 0 || apiErr.Body == nil {
		return fallback
	}

	result, err := jmespath.Search(firstErrorExpr(fields), apiErr.Body)
	if err != nil {
		return fallback
	}
	switch v := result.(type) {
	case string:
		if msg := toPlainText(v); msg != "" {
			return msg
		}
	case float64:
		return fmt.Sprint(v)
	}
	return fallback
}

// firstErrorExpr builds `"a"[0] || "b"[0] || ...`.
func firstErrorExpr(fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%q[0]", f)
	}
	return strings.Join(parts, " || ")
}

func toPlainText(s string) string {
	s = html.UnescapeString(plainText.Sanitize(s))
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxMessageRunes {
		s = string([]rune(s)[:maxMessageRunes]) + "…"
	}
	return s
}
