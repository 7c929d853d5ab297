// Package ipc serves dashboard sessions over websockets. Every connection
// gets its own dashboard, rendered for its own terminal and backed by a
// cluster client that acts as the connecting user.
package ipc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odvcencio/kuberift/pkg/dashboard"
	"github.com/odvcencio/kuberift/pkg/identity"
	"github.com/odvcencio/kuberift/pkg/kube"
	"github.com/odvcencio/kuberift/pkg/logging"
	"github.com/odvcencio/kuberift/pkg/session"
)

// Config controls the server behavior.
type Config struct {
	BindAddress    string
	AllowedOrigins []string
	PublicMetrics  bool
	RequireToken   bool
	MaxSessions    int
	ConnectRate    float64 // sessions per minute per user
	ConnectBurst   int
	PingInterval   time.Duration

	// InactivityTimeout ends a session that sent no input or resize for
	// this long. Zero disables it.
	InactivityTimeout time.Duration

	// Session settings.
	FPS       int
	Namespace string
	Term      string
	Version   string
}

// ClientFactory returns the cluster client a session of p uses.
type ClientFactory func(p *identity.Principal) (*kube.Client, error)

// ImpersonatingClients hands every authenticated user a client that
// impersonates them, so the cluster's RBAC decides what they can see.
// Anonymous callers and disabled impersonation share base.
func ImpersonatingClients(base *kube.Client, impersonate bool) ClientFactory {
	return func(p *identity.Principal) (*kube.Client, error) {
		if !impersonate || p == nil || p.Anonymous {
			return base, nil
		}
		return base.Impersonate(p.User, p.Groups)
	}
}

// Server hosts the dashboard websocket endpoint plus health and metrics.
type Server struct {
	cfg            Config
	tokens         *identity.TokenManager
	clients        ClientFactory
	sessions       *session.Registry
	sessionLimiter *connLimiter
	connectLimiter *principalLimiter
	logger         *logging.Logger
	httpServer     *http.Server

	// backend builds each session's terminal surface for a terminfo name.
	backend func(term string) dashboard.BackendFactory
}

// NewServer constructs a server. tokens may be nil when tokens are not
// required.
func NewServer(cfg Config, tokens *identity.TokenManager, clients ClientFactory, logger *logging.Logger) *Server {
	if cfg.BindAddress == "" {
		cfg.BindAddress = "127.0.0.1:8022"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost", "http://127.0.0.1"}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		cfg:            cfg,
		tokens:         tokens,
		clients:        clients,
		sessions:       session.NewRegistry(),
		sessionLimiter: newConnLimiter(cfg.MaxSessions),
		connectLimiter: newPrincipalLimiter(cfg.ConnectRate, cfg.ConnectBurst),
		logger:         logger.WithComponent("ipc"),
		backend:        dashboard.TcellBackend,
	}
}

// Sessions exposes the running sessions.
func (s *Server) Sessions() *session.Registry {
	return s.sessions
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(s.corsMiddleware)
	router.Use(s.securityHeadersMiddleware)

	router.Get("/healthz", s.handleHealthz)
	router.Get("/metrics", s.handleMetrics)
	router.Get(DashboardPath, s.handleDashboard)
	router.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/sessions", s.handleListSessions)
	})
	return router
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.validateStartupConfig(); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", s.cfg.BindAddress)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("serving dashboards", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func (s *Server) validateStartupConfig() error {
	if s.cfg.RequireToken && s.tokens == nil {
		return errors.New("tokens are required but no token manager is configured")
	}
	if !s.cfg.RequireToken && !isLoopbackBindAddress(s.cfg.BindAddress) {
		return errors.New("refusing to serve beyond loopback without tokens")
	}
	if s.clients == nil {
		return errors.New("no cluster client configured")
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]any{
		"status":   "ok",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"sessions": s.sessions.Len(),
		"version":  s.cfg.Version,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		httpError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	user := principal.User
	if principal.Anonymous {
		user = ""
	}
	respondJSON(w, map[string]any{"sessions": s.sessions.List(user)})
}

func isLoopbackBindAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return false
	}
	switch strings.ToLower(host) {
	case "localhost":
		return true
	case "0.0.0.0", "::":
		return false
	default:
		ip := net.ParseIP(host)
		if ip == nil {
			return false
		}
		return ip.IsLoopback()
	}
}
