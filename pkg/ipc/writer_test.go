package ipc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func TestWSWriterKeepsOrderAndSendsExit(t *testing.T) {
	afterShutdown := make(chan error, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		out := newWSWriter(conn)
		_, _ = out.NonBlocking().Write([]byte("a"))
		_, _ = out.Blocking().Write([]byte("b"))
		_, _ = out.NonBlocking().Write([]byte("c"))
		_, _ = out.NonBlocking().Write(nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = out.Shutdown(ctx, "bye")
		<-out.Done()
		_, err = out.Blocking().Write([]byte("late"))
		afterShutdown <- err
	}))
	defer ts.Close()

	c := dial(t, ts.URL, DialOptions{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	for {
		f, err := c.Receive(ctx)
		require.NoError(t, err)
		if f.Type == FrameExit {
			assert.Equal(t, "bye", f.Data)
			break
		}
		require.Equal(t, FrameData, f.Type)
		b, err := f.Bytes()
		require.NoError(t, err)
		got = append(got, string(b))
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)

	_, err := c.Receive(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
	assert.ErrorIs(t, <-afterShutdown, errWriterClosed)
}

func TestClientRunBridgesTerminal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()
		out := newWSWriter(conn)
		defer func() { _ = out.Shutdown(context.Background(), "done") }()

		assert.Equal(t, "100", r.URL.Query().Get("cols"))
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			f, err := decodeFrame(data)
			if err != nil || f.Type != FrameInput {
				continue
			}
			b, _ := f.Bytes()
			_, _ = out.Blocking().Write(append([]byte("echo:"), b...))
			if string(b) == "q" {
				return
			}
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, ts.URL, DialOptions{Cols: 100, Rows: 30})
	require.NoError(t, err)

	var out safeBuffer
	message, err := c.Run(ctx, stringsReader("q"), &out)
	require.NoError(t, err)
	assert.Equal(t, "done", message)
	assert.Equal(t, "echo:q", out.String())
}

func TestDashboardURL(t *testing.T) {
	u, err := dashboardURL("http://127.0.0.1:8022", DialOptions{Cols: 80, Rows: 24, Term: "xterm"})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8022/ws/dashboard?cols=80&rows=24&term=xterm", u)

	u, err = dashboardURL("wss://rift.example.com/custom", DialOptions{})
	require.NoError(t, err)
	assert.Equal(t, "wss://rift.example.com/custom", u)

	_, err = dashboardURL("not a url", DialOptions{})
	assert.Error(t, err)
}
