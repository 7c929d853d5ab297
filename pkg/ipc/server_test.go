package ipc

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"

	"github.com/odvcencio/kuberift/pkg/identity"
	"github.com/odvcencio/kuberift/pkg/kube"
	"github.com/odvcencio/kuberift/pkg/logging"
	"github.com/odvcencio/kuberift/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testPod() *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "web-0", Namespace: "default"},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "app"}}},
		Status:     corev1.PodStatus{Phase: corev1.PodRunning},
	}
}

func newTestServer(t *testing.T, cfg Config, tokens *identity.TokenManager) (*Server, *httptest.Server) {
	t.Helper()
	if cfg.FPS == 0 {
		cfg.FPS = 50
	}
	client := kube.FromInterface(fake.NewSimpleClientset(testPod()), nil)
	s := NewServer(cfg, tokens, ImpersonatingClients(client, false), logging.Discard())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + DashboardPath
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, Config{Version: "v1.2.3"}, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["sessions"])
	assert.Equal(t, "v1.2.3", body["version"])
}

func TestMetricsRequireTokenUnlessPublic(t *testing.T) {
	tokens := identity.NewTokenManager(testSecret, "")
	_, ts := newTestServer(t, Config{RequireToken: true}, tokens)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := tokens.Mint("ada", "", nil, time.Hour)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "kuberift_ipc_sessions_total")

	_, public := newTestServer(t, Config{RequireToken: true, PublicMetrics: true}, tokens)
	resp, err = http.Get(public.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthorizeQueryTokenOnlyOnLoopback(t *testing.T) {
	tokens := identity.NewTokenManager(testSecret, "")
	token, err := tokens.Mint("ada", "", nil, time.Hour)
	require.NoError(t, err)

	loopback := NewServer(Config{BindAddress: "127.0.0.1:8022", RequireToken: true}, tokens, nil, nil)
	p, err := loopback.authorize(httptest.NewRequest(http.MethodGet, DashboardPath+"?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, "ada", p.User)

	remote := NewServer(Config{BindAddress: "0.0.0.0:8022", RequireToken: true}, tokens, nil, nil)
	_, err = remote.authorize(httptest.NewRequest(http.MethodGet, DashboardPath+"?token="+token, nil))
	assert.Error(t, err)

	open := NewServer(Config{}, nil, nil, nil)
	p, err = open.authorize(httptest.NewRequest(http.MethodGet, DashboardPath, nil))
	require.NoError(t, err)
	assert.True(t, p.Anonymous)

	req := httptest.NewRequest(http.MethodGet, DashboardPath, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err = open.authorize(req)
	assert.Error(t, err, "a server without a token manager rejects tokens")
}

func TestValidateStartupConfig(t *testing.T) {
	clients := ImpersonatingClients(kube.FromInterface(fake.NewSimpleClientset(), nil), false)

	s := NewServer(Config{RequireToken: true}, nil, clients, nil)
	assert.Error(t, s.validateStartupConfig())

	s = NewServer(Config{BindAddress: "0.0.0.0:8022"}, nil, clients, nil)
	assert.Error(t, s.validateStartupConfig())

	s = NewServer(Config{}, nil, nil, nil)
	assert.Error(t, s.validateStartupConfig())

	s = NewServer(Config{}, nil, clients, nil)
	assert.NoError(t, s.validateStartupConfig())
}

func TestServeStopsWithContext(t *testing.T) {
	s := NewServer(Config{}, nil, ImpersonatingClients(kube.FromInterface(fake.NewSimpleClientset(), nil), false), nil)
	ctx, cancel := context.WithCancel(context.Background())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestImpersonatingClients(t *testing.T) {
	base := kube.FromInterface(fake.NewSimpleClientset(), &rest.Config{Host: "https://cluster.invalid"})

	clients := ImpersonatingClients(base, true)
	c, err := clients(&identity.Principal{User: "ada", Groups: []string{"devs"}})
	require.NoError(t, err)
	assert.Equal(t, "ada", c.Config.Impersonate.UserName)
	assert.Equal(t, []string{"devs"}, c.Config.Impersonate.Groups)
	assert.Empty(t, base.Config.Impersonate.UserName, "the base config is not modified")

	c, err = clients(identity.AnonymousPrincipal())
	require.NoError(t, err)
	assert.Same(t, base, c)

	c, err = ImpersonatingClients(base, false)(&identity.Principal{User: "ada"})
	require.NoError(t, err)
	assert.Same(t, base, c)
}

func TestOriginMatching(t *testing.T) {
	s := NewServer(Config{AllowedOrigins: []string{"https://ops.example.com", "http://localhost"}}, nil, nil, nil)

	allowed, _ := s.isOriginAllowed("https://ops.example.com")
	assert.True(t, allowed)
	allowed, _ = s.isOriginAllowed("https://ops.example.com:443")
	assert.True(t, allowed)
	allowed, _ = s.isOriginAllowed("http://localhost:5173")
	assert.True(t, allowed)
	allowed, _ = s.isOriginAllowed("https://evil.example")
	assert.False(t, allowed)

	wild := NewServer(Config{AllowedOrigins: []string{"*"}}, nil, nil, nil)
	allowed, wildcard := wild.isOriginAllowed("https://anything.example")
	assert.True(t, allowed)
	assert.True(t, wildcard)
}

func TestDashboardRejectsForeignOrigin(t *testing.T) {
	_, ts := newTestServer(t, Config{}, nil)

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestListSessionsScopedToUser(t *testing.T) {
	tokens := identity.NewTokenManager(testSecret, "")
	s, ts := newTestServer(t, Config{RequireToken: true}, tokens)
	remove := s.Sessions().Add(session.Info{ID: "a", User: "ada"})
	defer remove()
	removeB := s.Sessions().Add(session.Info{ID: "b", User: "bob"})
	defer removeB()

	resp, err := http.Get(ts.URL + "/api/sessions")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := tokens.Mint("ada", "", nil, time.Hour)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Sessions []session.Info `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, "a", body.Sessions[0].ID)

	infos, err := ListSessions(context.Background(), ts.URL, token)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "ada", infos[0].User)

	_, err = ListSessions(context.Background(), ts.URL, "")
	assert.ErrorContains(t, err, "401")
	_, err = ListSessions(context.Background(), "::bad", token)
	assert.Error(t, err)
}

func TestIsLoopbackBindAddress(t *testing.T) {
	assert.True(t, isLoopbackBindAddress("127.0.0.1:8022"))
	assert.True(t, isLoopbackBindAddress("localhost:8022"))
	assert.True(t, isLoopbackBindAddress("[::1]:8022"))
	assert.False(t, isLoopbackBindAddress("0.0.0.0:8022"))
	assert.False(t, isLoopbackBindAddress(":8022"))
	assert.False(t, isLoopbackBindAddress(""))
}
