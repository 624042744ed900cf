package mcp

import (
	"context"
	"os"
	"time"

	"rnse/internal/logging"
)

// DefaultWatchInterval is how often WatchParent polls the parent PID.
const DefaultWatchInterval = 2 * time.Second

// WatchParent calls cancel when the parent process exits, so a server
// launched by an MCP client does not outlive it. It never reads stdin, which
// the stdio transport owns. The goroutine exits when ctx is done.
func WatchParent(ctx context.Context, interval time.Duration, cancel context.CancelFunc) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ppid := os.Getppid()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process exited, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
