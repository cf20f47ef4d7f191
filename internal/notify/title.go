// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultTitleKey = "Stygian - New notification"

func init() {
	_ = message.SetString(language.English, defaultTitleKey, "Stygian - New notification")
	_ = message.SetString(language.Italian, defaultTitleKey, "Stygian - Nuova notifica")
}

// DefaultTitle returns the fallback notification title for locale
// ("en", "it", "it-IT", ...). Unknown locales get English.
func DefaultTitle(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	matcher := language.NewMatcher([]language.Tag{language.English, language.Italian})
	_, idx, _ := matcher.Match(tag)
	supported := []language.Tag{language.English, language.Italian}
	return message.NewPrinter(supported[idx]).Sprintf(defaultTitleKey)
}
