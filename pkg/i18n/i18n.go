// Package i18n holds the dashboard's interface messages.
package i18n

import (
	"fmt"
	"sort"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
)

// Catalog resolves interface messages per locale.
type Catalog struct {
	uni *ut.UniversalTranslator
}

// Translator is the message set of one locale. Unknown keys render as the
// key itself.
type Translator struct {
	t ut.Translator
}

// New registers every message for every supported locale.
func New() (*Catalog, error) {
	fallback := en.New()
	uni := ut.New(fallback, fallback, ar.New())
	for _, loc := range []locales.Translator{en.New(), ar.New()} {
		t, _ := uni.GetTranslator(loc.Locale())
		for key, text := range messages[loc.Locale()] {
			if err := t.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("add %s message %q: %w", loc.Locale(), key, err)
			}
		}
	}
	return &Catalog{uni: uni}, nil
}

// Locales lists the supported locale codes.
func Locales() []string {
	out := make([]string, 0, len(messages))
	for l := range messages {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Translator returns the messages of locale, falling back to English.
func (c *Catalog) Translator(locale string) Translator {
	t, _ := c.uni.GetTranslator(locale)
	return Translator{t: t}
}

func (tr Translator) Locale() string { return tr.t.Locale() }

// Dir is the text direction of the locale for the html dir attribute.
func (tr Translator) Dir() string {
	if tr.t.Locale() == "ar" {
		return "rtl"
	}
	return "ltr"
}

// T renders key with positional params ({0}, {1}, ...).
func (tr Translator) T(key string, params ...string) string {
	s, err := tr.t.T(key, params...)
	if err != nil {
		return key
	}
	return s
}
