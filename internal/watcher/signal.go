package watcher

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// RunUntilSignal starts the watcher and blocks until SIGINT/SIGTERM is
// received or ctx is cancelled, then stops it.
func (w *Watcher) RunUntilSignal(ctx context.Context) error {
	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	select {
	case sig := <-sigCh:
		w.log.WithField("signal", sig.String()).Info("shutting down")
	case <-ctx.Done():
	}

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	return nil
}
