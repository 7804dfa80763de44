package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// LocaleKey stores the resolved BCP 47 language tag for the request.
var LocaleKey = localeContextKey{}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

var supportedLocales = []language.Tag{
	language.English, // default
	language.Spanish,
	language.French,
	language.German,
	language.Japanese,
	language.Indonesian,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// Locale resolves the shopper's language for the widget: an explicit X-Locale
// header wins, then Accept-Language matching, then a GeoIP country hint, then
// the configured fallback.
func Locale(fallback string, lookup CountryLookup) func(http.Handler) http.Handler {
	fallbackTag := parseLocale(fallback)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, fallbackTag, lookup)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback language.Tag, lookup CountryLookup) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if tag, err := language.Parse(v); err == nil {
			matched, _, _ := localeMatcher.Match(tag)
			return baseLocale(matched)
		}
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			matched, _, confidence := localeMatcher.Match(tags...)
			if confidence > language.No {
				return baseLocale(matched)
			}
		}
	}

	if lookup != nil {
		if ip := clientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil {
				if tag, ok := localeForCountry(country); ok {
					return baseLocale(tag)
				}
			}
		}
	}

	return baseLocale(fallback)
}

// localeForCountry maps a handful of widget markets onto their dominant
// language; everything else keeps the fallback.
func localeForCountry(country string) (language.Tag, bool) {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "ES", "MX", "AR", "CO":
		return language.Spanish, true
	case "FR":
		return language.French, true
	case "DE", "AT":
		return language.German, true
	case "JP":
		return language.Japanese, true
	case "ID":
		return language.Indonesian, true
	default:
		return language.Tag{}, false
	}
}

func parseLocale(v string) language.Tag {
	if tag, err := language.Parse(strings.TrimSpace(v)); err == nil {
		matched, _, _ := localeMatcher.Match(tag)
		return matched
	}
	return language.English
}

func baseLocale(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// LocaleFromContext returns the resolved locale, defaulting to English.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return "en"
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
