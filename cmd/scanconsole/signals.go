package main

import (
	"context"
	"os"
)

// notifyOnSignal runs onSignal for the first signal that arrives before ctx ends.
// The returned channel closes once the watcher has exited.
func notifyOnSignal(ctx context.Context, sigChan <-chan os.Signal, onSignal func(os.Signal)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-sigChan:
			onSignal(sig)
		case <-ctx.Done():
		}
	}()
	return done
}
