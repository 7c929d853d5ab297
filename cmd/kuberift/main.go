package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/odvcencio/kuberift/pkg/config"
	"github.com/odvcencio/kuberift/pkg/kube"
	"github.com/odvcencio/kuberift/pkg/terminal"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const defaultServerURL = "http://127.0.0.1:8022"

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"dashboard"}
	}
	handled, code := dispatchSubcommand(args)
	if !handled {
		terminal.NewWithOutput(stderr).Error("unknown command %q", args[0])
		fmt.Fprintln(stderr)
		printHelp()
		code = 2
	}
	os.Exit(code)
}

func dispatchSubcommand(args []string) (bool, int) {
	if len(args) == 0 {
		return false, 0
	}
	switch args[0] {
	case "--version", "-v", "version":
		printVersion()
		return true, 0
	case "--help", "-h", "help":
		printHelp()
		return true, 0
	case "serve":
		return true, runCommand(runServeCommand, args[1:])
	case "dashboard":
		return true, runCommand(runDashboardCommand, args[1:])
	case "connect":
		return true, runCommand(runConnectCommand, args[1:])
	case "sessions":
		return true, runCommand(runSessionsCommand, args[1:])
	case "token":
		return true, runCommand(runTokenCommand, args[1:])
	}
	return false, 0
}

func runCommand(handler func([]string) error, args []string) int {
	if err := handler(args); err != nil {
		terminal.NewWithOutput(stderr).Error("%v", err)
		return exitCodeForError(err)
	}
	return 0
}

func printHelp() {
	fmt.Fprintln(stdout, "kuberift - live cluster dashboards in your terminal")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "USAGE:")
	fmt.Fprintln(stdout, "  kuberift [COMMAND] [FLAGS]")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "COMMANDS:")
	fmt.Fprintln(stdout, "  dashboard                        Browse the cluster in this terminal (default)")
	fmt.Fprintln(stdout, "  serve [--bind host:port]         Serve dashboards over websockets")
	fmt.Fprintln(stdout, "  connect --server <url>           Open a dashboard served by kuberift serve")
	fmt.Fprintln(stdout, "  sessions --server <url>          List live sessions on a server")
	fmt.Fprintln(stdout, "  token --sub <user> [--group g]   Mint an access token")
	fmt.Fprintln(stdout, "  version                          Show version information")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Every command accepts --config <path>; otherwise ~/.kuberift/config.yaml and")
	fmt.Fprintln(stdout, "./.kuberift/config.yaml are read, then KUBERIFT_* environment variables.")
}

func printVersion() {
	fmt.Fprintf(stdout, "kuberift %s\n", version)
	if commit != "unknown" {
		fmt.Fprintf(stdout, "  Commit:     %s\n", commit)
	}
	if buildDate != "unknown" {
		fmt.Fprintf(stdout, "  Built:      %s\n", buildDate)
	}
	fmt.Fprintf(stdout, "  Go version: %s\n", runtime.Version())
}

var loadConfigFn = loadConfig

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if strings.TrimSpace(path) != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, withExitCode(err, exitConfig)
	}
	return cfg, nil
}

// newKubeClientFn allows tests to substitute a fake cluster.
var newKubeClientFn = func(cfg *config.Config) (*kube.Client, error) {
	restCfg, err := kube.LoadConfig(kube.Options{
		Kubeconfig: cfg.Kube.Kubeconfig,
		Context:    cfg.Kube.Context,
		QPS:        cfg.Kube.QPS,
		Burst:      cfg.Kube.Burst,
	})
	if err != nil {
		return nil, withExitCode(err, exitCluster)
	}
	client, err := kube.New(restCfg)
	if err != nil {
		return nil, withExitCode(err, exitCluster)
	}
	return client, nil
}

type stringListValue struct {
	target *[]string
}

func (s *stringListValue) String() string {
	if s == nil || s.target == nil {
		return ""
	}
	return strings.Join(*s.target, ",")
}

func (s *stringListValue) Set(value string) error {
	if s.target == nil {
		return fmt.Errorf("no target slice configured")
	}
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		*s.target = append(*s.target, trimmed)
	}
	return nil
}
