package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/desertthunder/streamz/internal/mockapi"
	"github.com/urfave/cli/v3"
)

// DevServe runs the in-memory backend until interrupted.
func (r *Runner) DevServe(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Dev.Host
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	port := r.config.Dev.Port
	if cmd.IsSet("port") {
		port = int(cmd.Int("port"))
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           mockapi.New(r.logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	r.logger.Info("dev backend listening", "addr", addr)
	r.writePlain("✓ Serving http://%s/api\n", addr)
	r.writePlain("Metrics at http://%s/metrics\n", addr)
	r.writePlain("Demo account: %s / %s\n", mockapi.DemoUsername, mockapi.DemoPassword)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dev backend failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop dev backend: %w", err)
	}
	r.logger.Info("dev backend stopped")
	return nil
}
