package dashboard

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/logging"
)

const readChunk = 4096

// forward decodes input into events until input ends or the session stops
// receiving. It owns tx and releases it on return. A reader blocked in Read
// stays blocked until input is closed by its owner.
func forward(input io.Reader, tx *Sender, logger *logging.Logger) {
	defer tx.Close()

	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(chunks)
		buf := make([]byte, readChunk)
		for {
			n, err := input.Read(buf)
			if n > 0 {
				select {
				case chunks <- bytes.Clone(buf[:n]):
				case <-tx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-tx.Done():
			return
		case chunk, ok := <-chunks:
			if !ok {
				select {
				case err := <-readErr:
					logger.Warn("session input failed", slog.String("error", err.Error()))
				default:
				}
				return
			}
			for _, ev := range events.FromChunk(chunk) {
				if tx.Send(ev) != nil {
					return
				}
			}
		}
	}
}
