package util

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptContext returns a context that is cancelled on SIGINT or SIGTERM.
// Passing it to fetch or transport calls makes them abort on shutdown. The
// stop function releases the signal registration.
func InterruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// WaitForInterrupt blocks until SIGINT or SIGTERM is received.
func WaitForInterrupt() {
	ctx, stop := InterruptContext(context.Background())
	defer stop()
	<-ctx.Done()
}
