package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/odvcencio/kuberift/pkg/ipc"
	"github.com/odvcencio/kuberift/pkg/terminal"
)

func runConnectCommand(args []string) error {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", defaultServerURL, "kuberift server URL")
	token := fs.String("token", "", "Access token (default $KUBERIFT_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return withExitCode(err, exitUsage)
	}
	if *token == "" {
		*token = strings.TrimSpace(os.Getenv("KUBERIFT_TOKEN"))
	}

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return withExitCode(fmt.Errorf("connect needs an interactive terminal"), exitUsage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	cols, rows := terminalSize()
	spinner := terminal.NewSpinner(stderr, "connecting to "+*server)
	if terminal.IsTerminal(os.Stderr) {
		spinner.Start()
	}
	client, err := ipc.Dial(ctx, *server, ipc.DialOptions{
		Token: *token,
		Cols:  cols,
		Rows:  rows,
		Term:  os.Getenv("TERM"),
	})
	spinner.Stop()
	if err != nil {
		return err
	}
	defer client.Close()

	state, err := term.MakeRaw(stdinFd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	restore := func() { _ = term.Restore(stdinFd, state) }
	defer restore()

	resize := make(chan os.Signal, 1)
	defer notifyResize(resize)()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-resize:
				w, h := terminalSize()
				_ = client.Resize(ctx, w, h)
			}
		}
	}()

	message, err := client.Run(ctx, os.Stdin, os.Stdout)
	restore()
	if message != "" {
		terminal.NewWithOutput(stderr).Dim("%s", message)
	}
	return err
}
