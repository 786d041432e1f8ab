package middleware

import (
	"net/http"
	"strings"
)

// Fixed CORS response values. Browsers cache a preflight for corsMaxAge seconds.
const (
	corsAllowMethods  = "GET, POST, PATCH, DELETE, OPTIONS"
	corsAllowHeaders  = "Content-Type, Authorization, X-Request-ID, Accept, Accept-Language"
	corsExposeHeaders = "X-Request-ID"
	corsMaxAge        = "86400"
)

// CORSConfig lists the origins allowed to call the API from a browser.
// Entries are exact origins, "*.example.com" subdomain patterns, or "*".
// With AllowCredentials set, "*" is ignored and only listed origins pass.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// CORS answers preflight requests and tags responses for allowed origins.
// Requests from other origins pass through untagged, and their preflights
// get 403.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowed := newOriginMatcher(cfg.AllowedOrigins, cfg.AllowCredentials)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !allowed(origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func newOriginMatcher(origins []string, credentials bool) func(string) bool {
	exact := make(map[string]bool, len(origins))
	var suffixes []string
	allowAll := false

	for _, o := range origins {
		o = strings.ToLower(o)
		switch {
		case o == "*":
			allowAll = !credentials
		case strings.HasPrefix(o, "*."):
			suffixes = append(suffixes, o[1:])
		default:
			exact[o] = true
		}
	}

	return func(origin string) bool {
		if allowAll {
			return true
		}
		origin = strings.ToLower(origin)
		if exact[origin] {
			return true
		}
		// "*.example.com" matches "https://a.example.com" but not "https://notexample.com".
		for _, suffix := range suffixes {
			head, ok := strings.CutSuffix(origin, suffix)
			if !ok {
				continue
			}
			if _, sub, found := strings.Cut(head, "://"); found {
				head = sub
			}
			if head != "" {
				return true
			}
		}
		return false
	}
}
