package valueobject

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	DefaultLocale = "es-ES"

	localeMinLen = 2
	localeMaxLen = 10
)

// Locale is a language tag of the form "es" or "es-CO".
type Locale struct {
	value string
}

func NewLocale(raw string) (Locale, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Locale{}, newError(CategoryLocale, KindEmpty)
	}
	v = strings.ReplaceAll(v, "_", "-")
	if len(v) < localeMinLen {
		return Locale{}, errTooShort(CategoryLocale, localeMinLen)
	}
	if len(v) > localeMaxLen {
		return Locale{}, errTooLong(CategoryLocale, localeMaxLen)
	}
	lang, region, hasRegion := strings.Cut(v, "-")
	v = strings.ToLower(lang)
	if hasRegion {
		v += "-" + strings.ToUpper(region)
	}
	if !localeRule.match(v) {
		return Locale{}, errFormat(CategoryLocale, localeRule.name)
	}
	if _, err := language.Parse(v); err != nil {
		return Locale{}, newError(CategoryLocale, KindNotSupported)
	}
	return Locale{value: v}, nil
}

// DefaultLocaleValue returns the locale applied when a profile has none.
func DefaultLocaleValue() Locale { return Locale{value: DefaultLocale} }

func (l Locale) String() string       { return l.value }
func (l Locale) Equals(o Locale) bool { return l.value == o.value }

func (l Locale) Language() string {
	lang, _, _ := strings.Cut(l.value, "-")
	return lang
}

// Region returns the region subtag, empty when the locale has none.
func (l Locale) Region() string {
	_, region, _ := strings.Cut(l.value, "-")
	return region
}

// Tag exposes the locale as an x/text language tag.
func (l Locale) Tag() language.Tag { return language.Make(l.value) }

func (l Locale) MarshalText() ([]byte, error) { return []byte(l.String()), nil }
