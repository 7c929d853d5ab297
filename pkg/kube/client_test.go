package kube

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"
)

const kubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: dev
  cluster:
    server: https://dev.example.com
- name: prod
  cluster:
    server: https://prod.example.com
contexts:
- name: dev
  context:
    cluster: dev
    user: ada
- name: prod
  context:
    cluster: prod
    user: ada
current-context: dev
users:
- name: ada
  user:
    token: secret
`

func writeKubeconfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(kubeconfig), 0o600))
	return path
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := writeKubeconfig(t)

	cfg, err := LoadConfig(Options{Kubeconfig: path, QPS: 50, Burst: 100})
	require.NoError(t, err)
	assert.Equal(t, "https://dev.example.com", cfg.Host)
	assert.Equal(t, float32(50), cfg.QPS)
	assert.Equal(t, 100, cfg.Burst)
	assert.Equal(t, "kuberift", cfg.UserAgent)
}

func TestLoadConfigContextOverride(t *testing.T) {
	path := writeKubeconfig(t)

	cfg, err := LoadConfig(Options{Kubeconfig: path, Context: "prod"})
	require.NoError(t, err)
	assert.Equal(t, "https://prod.example.com", cfg.Host)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(Options{Kubeconfig: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestImpersonate(t *testing.T) {
	base := FromInterface(fake.NewSimpleClientset(), &rest.Config{Host: "https://dev.example.com"})

	user, err := base.Impersonate("ada@example.com", []string{"devs"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Config.Impersonate.UserName)
	assert.Equal(t, []string{"devs"}, user.Config.Impersonate.Groups)
	assert.Empty(t, base.Config.Impersonate.UserName, "base config must not be modified")
}

func TestDetectNamespace(t *testing.T) {
	t.Setenv("KUBERIFT_NAMESPACE", "")
	assert.Equal(t, "team-a", DetectNamespace(" team-a "))
	assert.Equal(t, "", DetectNamespace("*"))
	assert.Equal(t, "", DetectNamespace(""))

	t.Setenv("KUBERIFT_NAMESPACE", "from-env")
	assert.Equal(t, "from-env", DetectNamespace(""))
}
