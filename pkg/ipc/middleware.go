package ipc

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"

	kerrors "github.com/odvcencio/kuberift/pkg/errors"
	"github.com/odvcencio/kuberift/pkg/identity"
)

type ctxKey string

const principalContextKey ctxKey = "principal"

// corsMiddleware adds CORS headers based on allowed origins configuration.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if allowed, wildcard := s.isOriginAllowed(origin); allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				if !wildcard {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
		}
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware adds standard security headers to responses.
func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// isOriginAllowed checks if the provided origin is in the allowed origins list.
func (s *Server) isOriginAllowed(origin string) (allowed bool, wildcard bool) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return false, false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false, false
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := parsed.Host
	normalized := scheme + "://" + host

	wildcardPresent := false
	for _, allowedOrigin := range s.cfg.AllowedOrigins {
		allowedOrigin = strings.TrimSpace(allowedOrigin)
		if allowedOrigin == "" {
			continue
		}
		if allowedOrigin == "*" {
			wildcardPresent = true
			continue
		}
		if strings.EqualFold(allowedOrigin, origin) || strings.EqualFold(allowedOrigin, normalized) {
			return true, false
		}
		allowedURL, err := url.Parse(allowedOrigin)
		if err != nil || allowedURL.Scheme == "" || allowedURL.Host == "" {
			continue
		}
		if !strings.EqualFold(allowedURL.Scheme, scheme) {
			continue
		}
		if originHostsMatch(allowedURL.Host, host, scheme) {
			return true, false
		}
	}

	if wildcardPresent {
		return true, true
	}
	return false, false
}

// originHostsMatch compares host:port combinations for origin matching.
func originHostsMatch(allowedHost, originHost, scheme string) bool {
	allowedName, allowedPort, allowedHasPort := splitHostPortLoose(allowedHost)
	originName, originPort, originHasPort := splitHostPortLoose(originHost)
	if allowedName == "" || originName == "" {
		return false
	}
	if !strings.EqualFold(allowedName, originName) {
		return false
	}

	originEffectivePort := originPort
	if !originHasPort {
		originEffectivePort = defaultPortForScheme(scheme)
	}

	if allowedHasPort {
		return allowedPort == originEffectivePort
	}

	// Loopback entries without a port match any local dev server.
	if strings.EqualFold(allowedName, "localhost") {
		return true
	}
	if ip := net.ParseIP(allowedName); ip != nil && ip.IsLoopback() {
		return true
	}

	return originEffectivePort == defaultPortForScheme(scheme)
}

func splitHostPortLoose(hostport string) (host, port string, hasPort bool) {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return "", "", false
	}
	host, port, err := net.SplitHostPort(hostport)
	if err == nil {
		return host, port, true
	}
	if strings.HasPrefix(hostport, "[") && strings.HasSuffix(hostport, "]") {
		return strings.TrimSuffix(strings.TrimPrefix(hostport, "["), "]"), "", false
	}
	return hostport, "", false
}

func defaultPortForScheme(scheme string) string {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "https":
		return "443"
	default:
		return "80"
	}
}

// isWebSocketOriginAllowed checks if a WebSocket upgrade request has an
// allowed origin. Non-browser clients send none.
func (s *Server) isWebSocketOriginAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err == nil && parsed.Host != "" && strings.EqualFold(parsed.Host, r.Host) {
		return true
	}
	allowed, _ := s.isOriginAllowed(origin)
	return allowed
}

// authMiddleware requires authentication and short-circuits if unauthorized.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.authorize(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, err)
			return
		}
		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authorize validates the request's bearer token. Without one the caller
// is anonymous, which is only accepted when tokens are not required or the
// endpoint is public.
func (s *Server) authorize(r *http.Request) (*identity.Principal, error) {
	if principal := principalFromContext(r.Context()); principal != nil {
		return principal, nil
	}
	token, fromQuery := extractBearerToken(r)
	if fromQuery && !isLoopbackBindAddress(s.cfg.BindAddress) {
		token = ""
	}
	if token != "" {
		if s.tokens == nil {
			return nil, kerrors.New(kerrors.ErrCodeAuth, "tokens are not accepted by this server")
		}
		principal, err := s.tokens.Authenticate(token)
		if err != nil {
			return nil, kerrors.Wrap(err, kerrors.ErrCodeAuth, "authenticate").WithUserMessage(err.Error())
		}
		return principal, nil
	}
	if s.cfg.RequireToken && !s.isUnauthenticatedEndpoint(r.URL.Path) {
		return nil, kerrors.Wrap(identity.ErrNoToken, kerrors.ErrCodeAuth, "authenticate").WithUserMessage("unauthorized")
	}
	return identity.AnonymousPrincipal(), nil
}

// isUnauthenticatedEndpoint returns true for endpoints that don't require auth.
func (s *Server) isUnauthenticatedEndpoint(path string) bool {
	switch strings.TrimSpace(path) {
	case "/healthz":
		return true
	case "/metrics":
		return s.cfg.PublicMetrics
	default:
		return false
	}
}

func principalFromContext(ctx context.Context) *identity.Principal {
	if ctx == nil {
		return nil
	}
	if p, ok := ctx.Value(principalContextKey).(*identity.Principal); ok {
		return p
	}
	return nil
}
