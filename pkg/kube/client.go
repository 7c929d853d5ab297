// Package kube builds the cluster clients used by dashboard sessions.
package kube

import (
	"fmt"
	"os"
	"strings"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client bundles the typed clientset with the config it was built from. The
// config is needed for streaming subresources such as exec.
type Client struct {
	kubernetes.Interface
	Config *rest.Config
}

// Options selects the cluster to talk to.
type Options struct {
	Kubeconfig string
	Context    string
	QPS        float32
	Burst      int
}

// LoadConfig resolves a rest config. An explicit kubeconfig or context wins;
// otherwise the in-cluster config is tried before the default loading rules
// (KUBECONFIG, then ~/.kube/config).
func LoadConfig(opts Options) (*rest.Config, error) {
	explicit := strings.TrimSpace(opts.Kubeconfig) != "" || strings.TrimSpace(opts.Context) != ""

	var (
		cfg *rest.Config
		err error
	)
	if !explicit {
		cfg, err = rest.InClusterConfig()
	}
	if explicit || err != nil {
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		if opts.Kubeconfig != "" {
			rules.ExplicitPath = opts.Kubeconfig
		}
		overrides := &clientcmd.ConfigOverrides{CurrentContext: opts.Context}
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
	}

	if opts.QPS > 0 {
		cfg.QPS = opts.QPS
	}
	if opts.Burst > 0 {
		cfg.Burst = opts.Burst
	}
	cfg.UserAgent = "kuberift"
	return cfg, nil
}

// New creates a client for cfg.
func New(cfg *rest.Config) (*Client, error) {
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return &Client{Interface: clientset, Config: cfg}, nil
}

// FromInterface wraps an existing clientset, such as a fake one in tests.
func FromInterface(iface kubernetes.Interface, cfg *rest.Config) *Client {
	if cfg == nil {
		cfg = &rest.Config{}
	}
	return &Client{Interface: iface, Config: cfg}
}

// Impersonate returns a client that acts as user. Every request the session
// makes is then authorized by the cluster as that user.
func (c *Client) Impersonate(user string, groups []string) (*Client, error) {
	cfg := rest.CopyConfig(c.Config)
	cfg.Impersonate = rest.ImpersonationConfig{
		UserName: user,
		Groups:   append([]string(nil), groups...),
	}
	return New(cfg)
}

// DetectNamespace picks the namespace to scope to when none is configured.
// An empty result means all namespaces.
func DetectNamespace(explicit string) string {
	if ns := strings.TrimSpace(explicit); ns != "" {
		if ns == "*" || ns == "all" {
			return ""
		}
		return ns
	}
	if ns := strings.TrimSpace(os.Getenv("KUBERIFT_NAMESPACE")); ns != "" {
		return ns
	}
	return ""
}
