package session

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewIDIsUniqueAndSortable(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		next := NewID()
		if next <= prev {
			t.Fatalf("expected monotonic ids, got %s after %s", next, prev)
		}
		prev = next
	}
}

func TestNewIDConcurrent(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := NewID()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %s", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestGenerateSessionIDSanitizesBase(t *testing.T) {
	id := GenerateSessionID("Ada Lovelace@example.com")
	if !strings.HasPrefix(id, "ada-lovelace-example-com-") {
		t.Fatalf("unexpected id %s", id)
	}

	id = GenerateSessionID("  ***  ")
	if !strings.HasPrefix(id, "session-") {
		t.Fatalf("expected fallback base, got %s", id)
	}
}

func TestStartedDecodesTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	started, ok := Started(GenerateSessionID("ada"))
	if !ok {
		t.Fatalf("expected timestamp to decode")
	}
	if started.Before(before) || started.After(time.Now().Add(time.Second)) {
		t.Fatalf("unexpected start time %s", started)
	}

	if _, ok := Started("not-an-id"); ok {
		t.Fatalf("expected garbage to fail")
	}
}
