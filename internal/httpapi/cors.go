package httpapi

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"companion_mock/internal/config"
)

// corsPolicy is config.CorsConfig with the header values joined once.
type corsPolicy struct {
	origins     []string
	anyOrigin   bool
	credentials bool
	headers     string
	methods     string
	expose      string
	maxAge      string
}

func newCORSPolicy(cfg config.CorsConfig) corsPolicy {
	p := corsPolicy{
		credentials: cfg.AllowCredentials,
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		methods:     strings.Join(cfg.AllowMethods, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
	}
	for _, o := range cfg.AllowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			p.anyOrigin = true
		default:
			p.origins = append(p.origins, strings.ToLower(o))
		}
	}
	if cfg.MaxAgeSeconds > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAgeSeconds)
	}
	return p
}

// allowOrigin is the Access-Control-Allow-Origin value for origin, "" when
// the origin is not allowed. With credentials on, the origin is echoed
// instead of "*".
func (p corsPolicy) allowOrigin(origin string) string {
	if p.anyOrigin {
		if p.credentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin != "" && slices.Contains(p.origins, strings.ToLower(origin)) {
		return origin
	}
	return ""
}

func (p corsPolicy) apply(h http.Header, origin string) bool {
	allowed := p.allowOrigin(origin)
	if allowed == "" {
		return false
	}
	h.Set("Access-Control-Allow-Origin", allowed)
	if allowed != "*" {
		h.Add("Vary", "Origin")
	}
	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if p.expose != "" {
		h.Set("Access-Control-Expose-Headers", p.expose)
	}
	return true
}

func (p corsPolicy) applyPreflight(h http.Header) {
	if p.headers != "" {
		h.Set("Access-Control-Allow-Headers", p.headers)
	}
	if p.methods != "" {
		h.Set("Access-Control-Allow-Methods", p.methods)
	}
	if p.maxAge != "" {
		h.Set("Access-Control-Max-Age", p.maxAge)
	}
}

// corsMiddleware answers every OPTIONS request itself with 204; the
// allow-* headers are only attached for origins the policy accepts.
func corsMiddleware(cfg config.CorsConfig, next http.Handler) http.Handler {
	policy := newCORSPolicy(cfg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok := policy.apply(w.Header(), r.Header.Get("Origin"))
		if r.Method == http.MethodOptions {
			if ok {
				policy.applyPreflight(w.Header())
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
