package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/boardwalk"
	httpAdapter "github.com/aretw0/boardwalk/pkg/adapters/http"
	"github.com/aretw0/boardwalk/pkg/observability"
	"github.com/aretw0/boardwalk/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP board server",
	Long: `Hosts any number of boards, each driven by its own clock, and exposes them as a
JSON API over HTTP with Server-Sent Events for frame diffs and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.Server.Addr = addr
		}

		boardOpts, err := a.boardOptions()
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}
		boardOpts = append(boardOpts, boardwalk.WithLifecycleHooks(observability.ChainHooks(
			observability.LoggingHooks(a.logger),
			metrics.Hooks(),
		)))

		book, err := openBook(a.cfg.Positions.Dir, false)
		if err != nil {
			return err
		}

		// Context that cancels on interrupt signal
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		manager := session.NewManager(ctx,
			session.WithLogger(a.logger),
			session.WithBoardOptions(boardOpts...),
			session.WithOnDelete(metrics.Forget),
			session.WithDriverOptions(
				session.WithTickInterval(a.cfg.Animation.TickInterval),
				session.WithDriverLogger(a.logger),
			),
		)
		defer manager.Close()

		serverOpts := []httpAdapter.Option{
			httpAdapter.WithPositionBook(book),
			httpAdapter.WithLogger(a.logger),
		}
		if a.cfg.Server.Metrics {
			serverOpts = append(serverOpts, httpAdapter.WithMetrics(reg))
		}

		srv := &http.Server{
			Addr:              a.cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(manager, serverOpts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("Starting Boardwalk Server", "address", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return err
		case <-ctx.Done():
			a.logger.Info("Shutdown signal received")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Warn("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			a.logger.Info("Boardwalk Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
}
