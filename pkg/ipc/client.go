package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nhooyr.io/websocket"

	"github.com/odvcencio/kuberift/pkg/session"
)

// Endpoints served by Server.
const (
	DashboardPath = "/ws/dashboard"
	SessionsPath  = "/api/sessions"
)

// DialOptions configure a client connection.
type DialOptions struct {
	Token string
	Cols  int
	Rows  int
	Term  string
}

// Client is a terminal's connection to a remote dashboard.
type Client struct {
	conn *websocket.Conn
}

// Dial opens a dashboard session at server, a base URL such as
// "http://127.0.0.1:8022".
func Dial(ctx context.Context, server string, opts DialOptions) (*Client, error) {
	target, err := dashboardURL(server, opts)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}

	conn, resp, err := websocket.Dial(ctx, target, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", target, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	conn.SetReadLimit(maxFrameBytes)
	return &Client{conn: conn}, nil
}

func dashboardURL(server string, opts DialOptions) (string, error) {
	u, err := url.Parse(strings.TrimSpace(server))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server url %q", server)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = DashboardPath
	}
	q := u.Query()
	if opts.Cols > 0 && opts.Rows > 0 {
		q.Set("cols", strconv.Itoa(opts.Cols))
		q.Set("rows", strconv.Itoa(opts.Rows))
	}
	if opts.Term != "" {
		q.Set("term", opts.Term)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ListSessions fetches the live sessions visible to token's user.
func ListSessions(ctx context.Context, server, token string) ([]session.Info, error) {
	u, err := url.Parse(strings.TrimSpace(server))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", server)
	}
	u.Path = SessionsPath
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list sessions: %s", resp.Status)
	}

	var payload struct {
		Sessions []session.Info `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return payload.Sessions, nil
}

func (c *Client) send(ctx context.Context, f Frame) error {
	return c.conn.Write(ctx, websocket.MessageText, f.marshal())
}

// SendInput forwards raw terminal bytes.
func (c *Client) SendInput(ctx context.Context, p []byte) error {
	return c.send(ctx, DataFrame(FrameInput, p))
}

// Resize reports new terminal dimensions.
func (c *Client) Resize(ctx context.Context, cols, rows int) error {
	return c.send(ctx, Frame{Type: FrameResize, Cols: cols, Rows: rows})
}

// Receive returns the next frame from the server.
func (c *Client) Receive(ctx context.Context) (Frame, error) {
	for {
		msgType, data, err := c.conn.Read(ctx)
		if err != nil {
			return Frame{}, err
		}
		if msgType != websocket.MessageText {
			continue
		}
		return decodeFrame(data)
	}
}

// Run copies in to the session and the session's output to out until the
// server ends it. It returns the server's exit message.
func (c *Client) Run(ctx context.Context, in io.Reader, out io.Writer) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if in != nil {
		go func() {
			buf := make([]byte, 4096)
			for {
				n, err := in.Read(buf)
				if n > 0 {
					if werr := c.SendInput(ctx, buf[:n]); werr != nil {
						return
					}
				}
				if err != nil {
					_ = c.send(ctx, Frame{Type: FrameClose})
					return
				}
			}
		}()
	}

	for {
		f, err := c.Receive(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return "", nil
			}
			return "", err
		}
		switch f.Type {
		case FrameData:
			b, err := f.Bytes()
			if err != nil {
				return "", err
			}
			if _, err := out.Write(b); err != nil {
				return "", err
			}
		case FrameExit:
			return f.Data, nil
		case FrameError:
			return "", errors.New(f.Data)
		}
	}
}

// Close ends the session from the client side.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
	defer cancel()
	_ = c.send(ctx, Frame{Type: FrameClose})
	return c.conn.Close(websocket.StatusNormalClosure, "client closed")
}
