package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// serve runs srv on ln until ctx is cancelled. It returns only after
// Shutdown has waited for in-flight requests (bounded by timeout) and
// onStopped has run, so callers can drain background work afterwards.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, onStopped func(context.Context)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutting down http server", "timeout", timeout)
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if onStopped != nil {
			onStopped(shutdownCtx)
		}
	}()

	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	cancel()
	<-shutdownDone
	return err
}
