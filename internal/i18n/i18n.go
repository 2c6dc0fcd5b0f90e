// Package i18n holds the catalog of user-facing bot messages, keyed by
// purpose (error.*, success.*, debug.*, bot.*) and translated per language.
package i18n

import (
	"fmt"
)

const (
	// DefaultLanguage is English, the reference catalog every other
	// language falls back to.
	DefaultLanguage = "en"
	// BerneseGermanMessages selects the Bärndütsch catalog.
	BerneseGermanMessages = "ch_be"
)

// Localizer resolves message keys to translated, formatted text.
type Localizer struct {
	language string
	messages map[string]string
}

// NewLocalizer creates a localizer for the given language code. Unknown
// codes resolve to English.
func NewLocalizer(language string) *Localizer {
	return &Localizer{
		language: language,
		messages: getMessages(language),
	}
}

// T looks up a message key and formats it with the given arguments. Keys
// missing from the selected catalog fall back to English, then to the key
// itself, so a catalog gap never produces an empty reply.
func (l *Localizer) T(key string, args ...any) string {
	if message, ok := l.messages[key]; ok {
		return format(message, args)
	}

	if l.language != DefaultLanguage {
		if message, ok := getMessages(DefaultLanguage)[key]; ok {
			return format(message, args)
		}
	}

	return key
}

func format(message string, args []any) string {
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf(message, args...)
}

// GetSupportedLanguages lists the language codes with a catalog.
func GetSupportedLanguages() []string {
	return []string{DefaultLanguage, BerneseGermanMessages}
}

func getMessages(language string) map[string]string {
	switch language {
	case BerneseGermanMessages:
		return berneseGermanMessages
	default:
		return englishMessages
	}
}
