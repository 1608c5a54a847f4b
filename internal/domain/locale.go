package domain

import (
	"net/url"
	"strings"
)

// Locale identifies one of the two supported site locales.
type Locale string

const (
	// LocaleUA is the canonical locale. Code, brand, price and images
	// are always taken from this locale's page.
	LocaleUA Locale = "uk"
	// LocaleRU is the alternate locale.
	LocaleRU Locale = "ru"
)

func (l Locale) String() string {
	return string(l)
}

// CookieValue is the i18n_redirected cookie value selecting this locale.
func (l Locale) CookieValue() string {
	return string(l)
}

// AcceptLanguage returns the Accept-Language header value for this locale.
func (l Locale) AcceptLanguage() string {
	if l == LocaleRU {
		return "ru-RU,ru;q=0.9"
	}
	return "uk-UA,uk;q=0.9"
}

// Suffix is the locale qualifier used in export column names.
func (l Locale) Suffix() string {
	if l == LocaleRU {
		return "RU"
	}
	return "UA"
}

// CanonicalURL strips the leading /ru path segment, yielding the UA form
// of a product or category URL. Unparseable input is returned unchanged.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	switch {
	case u.Path == "/ru":
		u.Path = "/"
	case strings.HasPrefix(u.Path, "/ru/"):
		u.Path = strings.TrimPrefix(u.Path, "/ru")
	default:
		return raw
	}
	return u.String()
}

// AlternateURL inserts the leading /ru path segment, yielding the RU form
// of a URL. CanonicalURL and AlternateURL are mutual inverses.
func AlternateURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.Path == "/ru" || strings.HasPrefix(u.Path, "/ru/") {
		return raw
	}
	u.Path = "/ru" + u.Path
	return u.String()
}

// LocaleURL rewrites raw into the form addressed to the given locale.
func LocaleURL(raw string, locale Locale) string {
	if locale == LocaleRU {
		return AlternateURL(raw)
	}
	return CanonicalURL(raw)
}
