// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Session is the client-held pair of access token and user profile.
// A zero Session means the visitor is anonymous.
type Session struct {
	Token string
	User  *User
}

// Authenticated reports whether the session carries an access token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// CurrentUser returns the session user, or nil when there is none.
func (s *Session) CurrentUser() *User {
	if s == nil {
		return nil
	}
	return s.User
}
