// Command testserver runs a mock web application exposing every route the
// built-in loadprobe catalogs probe.
//
// Usage:
//
//	testserver [flags]
//
// Flags:
//
//	--port       Port to listen on (default: 3004)
//	--host       Host to bind to (default: localhost)
//	--delay      Artificial latency added to every response
//	--jitter     Random extra latency in [0, jitter)
//	--fail-rate  Percentage of requests answered with 500
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"loadprobe/testserver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port int
		host string
		opts testserver.Options
	)

	cmd := &cobra.Command{
		Use:           "testserver",
		Short:         "Run a mock target application for loadprobe",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.FailRate < 0 || opts.FailRate > 100 {
				return fmt.Errorf("--fail-rate must be between 0 and 100, got %d", opts.FailRate)
			}
			return serve(fmt.Sprintf("%s:%d", host, port), opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&port, "port", 3004, "port to listen on")
	f.StringVar(&host, "host", "localhost", "host to bind to")
	f.DurationVar(&opts.Delay, "delay", 0, "artificial latency added to every response")
	f.DurationVar(&opts.Jitter, "jitter", 0, "random extra latency in [0, jitter)")
	f.IntVar(&opts.FailRate, "fail-rate", 0, "percentage of requests answered with 500")
	return cmd
}

func serve(addr string, opts testserver.Options) error {
	log := logrus.WithField("addr", addr)
	server := testserver.NewServerWithOptions(opts)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Println("loadprobe Test Server")
	fmt.Println("=====================")
	fmt.Printf("Listening on http://%s\n\n", addr)
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /                    - Home page")
	fmt.Println("  GET  /login               - Login page")
	fmt.Println("  GET  /dashboard           - Dashboard (401 without Authorization)")
	fmt.Println("  GET  /api/health          - Health check (405 for other methods)")
	fmt.Println("  GET  /api/status          - Service status")
	fmt.Println("  GET  /api/metrics         - Request counters")
	fmt.Println("  GET  /api/user/profile    - Profile (401 without Authorization)")
	fmt.Println("  GET  /api/admin/users     - Admin API (401, or 403 with Authorization)")
	fmt.Println("  GET  /status/{code}       - Return specific status code")
	fmt.Println("  GET  /delay/{ms}          - Delay response by milliseconds")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.WithField("requests", server.Requests()).Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
