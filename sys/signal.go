package sys

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// CancelOnSignal calls cancel when the process receives SIGINT or SIGTERM.
// The returned function stops the notifications.
func CancelOnSignal(cancel context.CancelFunc) func() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigchan:
			cancel()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigchan)
		close(done)
	}
}
