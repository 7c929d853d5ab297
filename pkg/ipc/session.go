package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"nhooyr.io/websocket"

	"github.com/odvcencio/kuberift/pkg/dashboard"
	kerrors "github.com/odvcencio/kuberift/pkg/errors"
	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/kube"
	"github.com/odvcencio/kuberift/pkg/logging"
	"github.com/odvcencio/kuberift/pkg/observability"
	"github.com/odvcencio/kuberift/pkg/session"
	"github.com/odvcencio/kuberift/pkg/ui/panels"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

const (
	maxFrameBytes    = 64 << 10
	maxTerminalCells = 1000

	// sessionDrainTimeout bounds how long a disconnected client's dashboard
	// gets to shut down before its connection is dropped.
	sessionDrainTimeout = 10 * time.Second
)

// handleDashboard upgrades the request to a websocket and runs a dashboard
// session on it until either side ends it.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authorize(r)
	if err != nil {
		rejectSession("unauthorized")
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	if !s.isWebSocketOriginAllowed(r) {
		rejectSession("origin")
		httpError(w, "forbidden", http.StatusForbidden)
		return
	}
	if !s.connectLimiter.Allow(principal.User) {
		rejectSession("rate")
		httpError(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}
	if !s.sessionLimiter.Acquire() {
		rejectSession("capacity")
		httpError(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}
	defer s.sessionLimiter.Release()

	client, err := s.clients(principal)
	if err != nil {
		rejectSession("cluster")
		s.logger.Error("cluster client failed", slog.String("principal", principal.User), slog.String("error", err.Error()))
		respondError(w, http.StatusBadGateway, kerrors.Wrap(err, kerrors.ErrCodeTransport, "cluster client").WithUserMessage("cluster unavailable"))
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", slog.String("error", err.Error()))
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	cols, rows := parseSize(r)
	term := strings.TrimSpace(r.URL.Query().Get("term"))
	if term == "" {
		term = s.cfg.Term
	}

	id := session.GenerateSessionID(principal.User)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	ctx, span := observability.StartSpan(ctx, "dashboard.session", trace.WithAttributes(
		observability.AttrSessionID.String(id),
		observability.AttrPrincipal.String(principal.User),
		observability.AttrRemote.String(r.RemoteAddr),
		observability.AttrWidth.Int(cols),
		observability.AttrHeight.Int(rows),
	))
	defer span.End()
	logger := s.logger.WithSession(id).WithPrincipal(principal.User).WithContext(ctx)

	remove := s.sessions.Add(session.Info{
		ID:        id,
		User:      principal.User,
		Remote:    r.RemoteAddr,
		StartedAt: time.Now(),
		Width:     cols,
		Height:    rows,
	})
	defer remove()
	metricSessionsTotal.Inc()
	metricSessionsActive.Inc()
	defer metricSessionsActive.Dec()

	out := newWSWriter(conn)
	dash := dashboard.New(dashboard.Config{
		Root:    s.root(client, logger),
		Backend: s.backend(term),
		FPS:     s.cfg.FPS,
		Width:   cols,
		Height:  rows,
		Logger:  logger.WithComponent("dashboard"),
	})

	inputR, inputW := io.Pipe()
	tx, err := dash.Start(inputR, out)
	if err != nil {
		logger.Error("session failed to start", slog.String("error", err.Error()))
		span.SetStatus(codes.Error, err.Error())
		_ = conn.Write(ctx, websocket.MessageText, marshalError(errors.New(kerrors.UserMessage(err))))
		out.abort("session failed to start")
		return
	}

	started := time.Now()
	logger.SessionStarted(r.RemoteAddr, cols, rows)
	startWSPing(ctx, conn, s.cfg.PingInterval, func(err error) {
		logger.Warn("websocket ping failed", slog.String("error", err.Error()))
		cancel()
	})

	// Once the dashboard has said goodbye nothing reads input any more.
	go func() {
		<-out.Done()
		_ = inputR.Close()
	}()

	idle := watchInactivity(s.cfg.InactivityTimeout, tx, func() {
		logger.Info("session inactive", slog.Duration("timeout", s.cfg.InactivityTimeout))
	})
	recvErr := s.receive(ctx, conn, inputW, tx, id, out.Done(), idle)
	idle.stop()
	_ = inputW.Close()
	tx.Close()

	select {
	case <-out.Done():
	case <-time.After(sessionDrainTimeout):
		out.abort("session did not stop")
	}

	observability.RecordError(ctx, recvErr)
	if recvErr != nil {
		span.SetStatus(codes.Error, recvErr.Error())
	}
	logger.SessionEnded(time.Since(started), recvErr)
}

// root builds a session's widget tree on its render goroutine.
func (s *Server) root(client *kube.Client, logger *logging.Logger) func() widgets.Widget {
	return func() widgets.Widget {
		return panels.NewApex(client, panels.Options{
			Namespace: s.cfg.Namespace,
			Logger:    logger.WithComponent("panels"),
		})
	}
}

// receive feeds client frames into the session until the client closes,
// the connection drops or the session ends. A clean close returns nil. Input
// and resize frames count as activity for idle.
func (s *Server) receive(ctx context.Context, conn *websocket.Conn, input io.Writer, tx *dashboard.Sender, id string, ended <-chan struct{}, idle *inactivityWatch) error {
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			select {
			case <-ended:
				return nil
			default:
			}
			return readError(ctx, err)
		}
		if msgType != websocket.MessageText {
			continue
		}

		f, err := decodeFrame(data)
		if err != nil {
			frameReceived("")
			_ = tx.Send(events.Tunnel{Name: "transport", Err: err})
			continue
		}
		frameReceived(f.Type)

		switch f.Type {
		case FrameInput:
			b, err := f.Bytes()
			if err != nil {
				_ = tx.Send(events.Tunnel{Name: "transport", Err: err})
				continue
			}
			if len(b) == 0 {
				continue
			}
			idle.touch()
			if _, err := input.Write(b); err != nil {
				return nil
			}
		case FrameResize:
			if f.Rows <= 0 || f.Cols <= 0 || f.Rows > maxTerminalCells || f.Cols > maxTerminalCells {
				continue
			}
			idle.touch()
			s.sessions.Resize(id, f.Cols, f.Rows)
			if err := tx.Send(events.Resize{Width: f.Cols, Height: f.Rows}); err != nil {
				return nil
			}
		case FrameClose:
			return nil
		default:
			// ignore unknown frame types
		}
	}
}

func readError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return nil
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return kerrors.Wrap(err, kerrors.ErrCodeTransport, "read frame")
}
