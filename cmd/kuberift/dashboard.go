package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/odvcencio/kuberift/pkg/dashboard"
	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/kube"
	"github.com/odvcencio/kuberift/pkg/logging"
	"github.com/odvcencio/kuberift/pkg/termio"
	"github.com/odvcencio/kuberift/pkg/ui/panels"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

// localOutput is the local terminal. done closes once the session has
// written its exit message.
type localOutput struct {
	*termio.Stdio
	done chan struct{}
}

func newLocalOutput(out io.Writer) *localOutput {
	return &localOutput{Stdio: termio.NewStdio(out), done: make(chan struct{})}
}

func (o *localOutput) Shutdown(ctx context.Context, message string) error {
	err := o.Stdio.Shutdown(ctx, message)
	select {
	case <-o.done:
	default:
		close(o.done)
	}
	return err
}

func runDashboardCommand(args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a config file")
	namespace := fs.String("namespace", "", "Namespace to show (* for all)")
	fps := fs.Int("fps", 0, "Frames per second")
	kubeconfig := fs.String("kubeconfig", "", "Path to the kubeconfig file")
	kubeContext := fs.String("context", "", "Kubeconfig context to use")
	logFile := fs.String("log-file", "", "Write logs to this file (discarded by default)")
	if err := fs.Parse(args); err != nil {
		return withExitCode(err, exitUsage)
	}

	cfg, err := loadConfigFn(*configPath)
	if err != nil {
		return err
	}
	if *namespace != "" {
		cfg.Dashboard.Namespace = *namespace
	}
	if *fps > 0 {
		cfg.Dashboard.FPS = *fps
	}
	if *kubeconfig != "" {
		cfg.Kube.Kubeconfig = *kubeconfig
	}
	if *kubeContext != "" {
		cfg.Kube.Context = *kubeContext
	}
	if err := cfg.Validate(); err != nil {
		return withExitCode(err, exitConfig)
	}

	// The dashboard owns the terminal, so logs only go to a file.
	logger := logging.Discard()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		opts := cfg.LoggerOptions()
		opts.Output = f
		logger = logging.New(opts)
	}

	client, err := newKubeClientFn(cfg)
	if err != nil {
		return err
	}

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return withExitCode(fmt.Errorf("dashboard needs an interactive terminal"), exitUsage)
	}
	width, height := terminalSize()

	state, err := term.MakeRaw(stdinFd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() { _ = term.Restore(stdinFd, state) }()

	ns := kube.DetectNamespace(cfg.Dashboard.Namespace)
	dash := dashboard.New(dashboard.Config{
		Root: func() widgets.Widget {
			return panels.NewApex(client, panels.Options{Namespace: ns, Logger: logger.WithComponent("panels")})
		},
		Backend: dashboard.TcellBackend(os.Getenv("TERM")),
		FPS:     cfg.Dashboard.FPS,
		Width:   width,
		Height:  height,
		Logger:  logger.WithComponent("dashboard"),
	})

	out := newLocalOutput(os.Stdout)
	tx, err := dash.Start(os.Stdin, out)
	if err != nil {
		return err
	}
	defer tx.Close()

	resize := make(chan os.Signal, 1)
	defer notifyResize(resize)()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(stop)

	for {
		select {
		case <-out.done:
			return nil
		case <-resize:
			w, h := terminalSize()
			_ = tx.Send(events.Resize{Width: w, Height: h})
		case <-stop:
			_ = tx.Send(events.Shutdown{})
		}
	}
}

func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
