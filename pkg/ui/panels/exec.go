package panels

import (
	"context"
	"fmt"
	"io"
	"math"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/kube"
)

// DefaultShell prefers bash and falls back to sh.
var DefaultShell = []string{"/bin/sh", "-c", "command -v bash >/dev/null && exec bash || exec sh"}

type streamFunc func(ctx context.Context, opts remotecommand.StreamOptions) error

// Exec runs an interactive command in a container with the session's
// terminal attached.
type Exec struct {
	Namespace string
	Pod       string
	Container string
	Command   []string

	client *kube.Client
	stream streamFunc
}

// NewExec targets the first container of pod.
func NewExec(client *kube.Client, pod *corev1.Pod) *Exec {
	e := &Exec{
		Namespace: pod.Namespace,
		Pod:       pod.Name,
		Command:   DefaultShell,
		client:    client,
	}
	if len(pod.Spec.Containers) > 0 {
		e.Container = pod.Spec.Containers[0].Name
	}
	return e
}

func (e *Exec) connect() (streamFunc, error) {
	req := e.client.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(e.Namespace).
		Name(e.Pod).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: e.Container,
			Command:   e.Command,
			Stdin:     true,
			Stdout:    true,
			TTY:       true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(e.client.Config, "POST", req.URL())
	if err != nil {
		return nil, err
	}
	return executor.StreamWithContext, nil
}

// Start streams input to the container and its output to out until the
// command exits, ctx is cancelled, or input is closed.
func (e *Exec) Start(ctx context.Context, input <-chan events.Event, out io.Writer) error {
	stream := e.stream
	if stream == nil {
		var err error
		if stream, err = e.connect(); err != nil {
			return fmt.Errorf("exec %s/%s: %w", e.Namespace, e.Pod, err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stdinR, stdinW := io.Pipe()
	defer stdinR.Close()
	sizes := &sizeQueue{ctx: ctx, ch: make(chan remotecommand.TerminalSize, 1)}

	go func() {
		defer stdinW.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-input:
				if !ok {
					cancel()
					return
				}
				switch ev := ev.(type) {
				case events.Input:
					if _, err := stdinW.Write(ev.Raw); err != nil {
						return
					}
				case events.Resize:
					sizes.push(ev.Width, ev.Height)
				case events.Shutdown:
					cancel()
					return
				}
			}
		}
	}()

	err := stream(ctx, remotecommand.StreamOptions{
		Stdin:             stdinR,
		Stdout:            out,
		Tty:               true,
		TerminalSizeQueue: sizes,
	})
	if err != nil {
		return fmt.Errorf("exec %s/%s: %w", e.Namespace, e.Pod, err)
	}
	return nil
}

// sizeQueue hands the latest terminal size to the executor. Only the most
// recent size is kept.
type sizeQueue struct {
	ctx context.Context
	ch  chan remotecommand.TerminalSize
}

func (q *sizeQueue) push(width, height int) {
	select {
	case <-q.ch:
	default:
	}
	q.ch <- remotecommand.TerminalSize{Width: clampUint16(width), Height: clampUint16(height)}
}

func clampUint16(n int) uint16 {
	switch {
	case n < 0:
		return 0
	case n > math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(n)
}

func (q *sizeQueue) Next() *remotecommand.TerminalSize {
	select {
	case size := <-q.ch:
		return &size
	case <-q.ctx.Done():
		return nil
	}
}
