package mcp

import (
	"context"
	"os"
	"time"

	"flakestorm/internal/logging"
)

// watchdogInterval is how often the parent process is polled.
var watchdogInterval = 2 * time.Second

// WatchParent monitors for parent process death in a background goroutine.
// When the parent PID changes (the editor or agent framework that spawned us
// disconnected), it calls cancelFn to trigger graceful shutdown. This prevents
// zombie MCP server processes from accumulating.
//
// It must NOT read from stdin: the SDK's StdioTransport owns stdin
// exclusively, and stealing bytes here would corrupt the JSON-RPC stream.
func WatchParent(ctx context.Context, cancelFn context.CancelFunc) {
	ppid := os.Getppid()
	logger := logging.New("mcp")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(watchdogInterval):
				if os.Getppid() != ppid {
					logger.Warn("parent process died, shutting down", "was_pid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
