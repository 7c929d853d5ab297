package ipc

import (
	"context"
	"testing"
	"time"
)

func TestStartWSPingNilConn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startWSPing(ctx, nil, time.Millisecond, func(error) {
		t.Errorf("nil conn must not be pinged")
	})
	time.Sleep(10 * time.Millisecond)
}

func TestWSPingConstants(t *testing.T) {
	if wsPingInterval < 10*time.Second {
		t.Errorf("wsPingInterval too short: %v", wsPingInterval)
	}
	if wsPingTimeout < 1*time.Second {
		t.Errorf("wsPingTimeout too short: %v", wsPingTimeout)
	}
	if wsPingTimeout >= wsPingInterval {
		t.Errorf("wsPingTimeout (%v) should be less than wsPingInterval (%v)", wsPingTimeout, wsPingInterval)
	}
}
