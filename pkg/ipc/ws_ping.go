package ipc

import (
	"context"
	"time"

	"nhooyr.io/websocket"
)

const (
	wsPingInterval = 20 * time.Second
	wsPingTimeout  = 5 * time.Second
)

// startWSPing keeps conn alive until ctx ends. A failed ping cancels the
// session through onFail.
func startWSPing(ctx context.Context, conn *websocket.Conn, interval time.Duration, onFail func(error)) {
	if conn == nil {
		return
	}
	if interval <= 0 {
		interval = wsPingInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, wsPingTimeout)
				err := conn.Ping(pingCtx)
				cancel()
				if err != nil && ctx.Err() == nil {
					if onFail != nil {
						onFail(err)
					}
					return
				}
			}
		}
	}()
}
