package ipc

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// stringsReader yields s and then blocks like an idle terminal.
func stringsReader(s string) io.Reader {
	return io.MultiReader(strings.NewReader(s), blockingReader{})
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}
