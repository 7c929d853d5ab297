package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/odvcencio/kuberift/pkg/ipc"
	"github.com/odvcencio/kuberift/pkg/terminal"
)

func runSessionsCommand(args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", defaultServerURL, "kuberift server URL")
	token := fs.String("token", "", "Access token (default $KUBERIFT_TOKEN)")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return withExitCode(err, exitUsage)
	}
	if *token == "" {
		*token = strings.TrimSpace(os.Getenv("KUBERIFT_TOKEN"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	infos, err := ipc.ListSessions(ctx, *server, *token)
	if err != nil {
		return err
	}
	terminal.NewWithOutput(stdout).Sessions(infos, time.Now())
	return nil
}
