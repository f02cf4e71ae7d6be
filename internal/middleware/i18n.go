package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"server/internal/infra/geoip"
)

const localeContextKey contextKey = "i18n.locale"

// Countries whose requests default to Arabic reports when the client sends no
// explicit locale.
var arabicCountries = map[string]bool{
	"SA": true, "AE": true, "EG": true, "JO": true, "KW": true,
	"QA": true, "BH": true, "OM": true, "LB": true, "IQ": true,
	"YE": true, "SY": true, "PS": true, "MA": true, "DZ": true,
	"TN": true, "LY": true, "SD": true,
}

// Locale detects the preferred report language for a request. Precedence:
// X-Locale header, Accept-Language, then GeoIP country of the client address.
// Arabic is the final fallback. The resolver may be nil.
func Locale(resolver geoip.CountryResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, resolver)
			next.ServeHTTP(w, r.WithContext(ContextWithLocale(r.Context(), locale)))
		})
	}
}

// ContextWithLocale attaches a locale string to the context.
func ContextWithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey, locale)
}

// LocaleFromContext returns the detected locale, or "" when detection never
// ran.
func LocaleFromContext(ctx context.Context) string {
	locale, _ := ctx.Value(localeContextKey).(string)
	return locale
}

func detectLocale(r *http.Request, resolver geoip.CountryResolver) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get("Accept-Language")); v != "" {
		// First entry of the quality list is the client's top choice.
		if idx := strings.IndexAny(v, ",;"); idx > 0 {
			v = v[:idx]
		}
		return strings.TrimSpace(v)
	}
	if resolver != nil {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if code, err := resolver.CountryCode(host); err == nil && code != "" {
			if arabicCountries[strings.ToUpper(code)] {
				return "ar"
			}
			return "en"
		}
	}
	return "ar"
}
