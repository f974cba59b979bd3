package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// Translator is configured.
var ErrMissingTranslator = errors.New("validation: translator not configured")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate delegates to the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler picks the text used when a key cannot be
// translated. fallback is the built-in English message, already formatted.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

// Catalog is a static Translator backed by locale → key → format string.
type Catalog map[string]map[string]string

// Translate formats the catalog entry for key with args.
func (c Catalog) Translate(locale, key string, args ...any) (string, error) {
	messages, ok := c[locale]
	if !ok {
		return "", fmt.Errorf("validation: unknown locale %q", locale)
	}
	format, ok := messages[key]
	if !ok {
		return "", fmt.Errorf("validation: missing key %q for locale %q", key, locale)
	}
	return fmt.Sprintf(format, args...), nil
}

func translate(t Translator, locale, key, fallback string, onMissing MissingTranslationHandler, args ...any) string {
	fallback = fmt.Sprintf(fallback, args...)
	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, fallback, ErrMissingTranslator)
		}
		return fallback
	}

	result, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if onMissing != nil {
		return onMissing(locale, key, fallback, err)
	}
	return fallback
}
