// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n translates dashboard UI strings. Messages come from embedded
// JSON catalogs, one per language, and the request language is negotiated
// from the Accept-Language header.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// DefaultLanguage is used when nothing better matches.
const DefaultLanguage = "en"

// SupportedLanguages lists the UI languages; the first is the default.
var SupportedLanguages = []string{"en", "ru"}

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

var (
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> id -> text
	matcher      language.Matcher
	logger       *slog.Logger
)

// Init loads all catalogs. It may be called again, e.g. from tests.
func Init(l *slog.Logger) error {
	loaded := make(map[string]map[string]string, len(SupportedLanguages))
	tags := make([]language.Tag, 0, len(SupportedLanguages))

	for _, lang := range SupportedLanguages {
		msgs, err := readCatalog(lang)
		if err != nil {
			return fmt.Errorf("failed to load language %s: %w", lang, err)
		}
		loaded[lang] = msgs
		tags = append(tags, language.MustParse(lang))
	}

	mu.Lock()
	translations = loaded
	matcher = language.NewMatcher(tags)
	logger = l
	mu.Unlock()

	if l != nil {
		l.Info("i18n initialized", "languages", SupportedLanguages)
	}
	return nil
}

func readCatalog(lang string) (map[string]string, error) {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file MessageFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	msgs := make(map[string]string, len(file.Messages))
	for _, m := range file.Messages {
		msgs[m.ID] = m.Translation
	}
	return msgs, nil
}

// T translates key into lang, falling back to the default language and
// then to the key itself. Args are applied with fmt.Sprintf.
func T(lang, key string, args ...any) string {
	mu.RLock()
	text, ok := translations[lang][key]
	if !ok {
		text, ok = translations[DefaultLanguage][key]
		if ok && lang != DefaultLanguage && logger != nil {
			logger.Debug("missing translation, using default", "key", key, "lang", lang)
		}
	}
	mu.RUnlock()

	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// MatchLanguage returns the supported language that best fits an
// Accept-Language header or a bare language code.
func MatchLanguage(acceptLang string) string {
	mu.RLock()
	m := matcher
	mu.RUnlock()
	if m == nil || strings.TrimSpace(acceptLang) == "" {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}

	_, idx, conf := m.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(SupportedLanguages) {
		return DefaultLanguage
	}
	return SupportedLanguages[idx]
}

// IsSupported reports whether lang is one of the UI languages.
func IsSupported(lang string) bool {
	return slices.Contains(SupportedLanguages, strings.ToLower(lang))
}

// Has reports whether key is translated in lang or the default language.
func Has(lang, key string) bool {
	mu.RLock()
	defer mu.RUnlock()
	if _, ok := translations[lang][key]; ok {
		return true
	}
	_, ok := translations[DefaultLanguage][key]
	return ok
}

// TranslationCount returns the number of messages loaded for lang.
func TranslationCount(lang string) int {
	mu.RLock()
	defer mu.RUnlock()
	return len(translations[lang])
}
