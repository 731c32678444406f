package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/teamwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the role contracts and runtime metrics over HTTP",
	Long:  `Starts a read-only HTTP server exposing /roles, /components, /graph and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		reg, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		metrics := prometheus.NewRegistry()
		metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		// The registry already carries the custom roles.
		rtCfg := *cfg
		rtCfg.RolesFile = ""
		rt, err := teamwork.FromConfig(&rtCfg,
			teamwork.WithLogger(logger),
			teamwork.WithRegistry(reg),
			teamwork.WithMetrics(metrics),
		)
		if err != nil {
			return err
		}
		defer rt.Close()

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		srv := &http.Server{Handler: rt.Handler(), ReadHeaderTimeout: 5 * time.Second}

		fmt.Fprintf(cmd.OutOrStdout(), "Serving teamwork on %s\n", ln.Addr())
		serverErrors := make(chan error, 1)
		go func() {
			serverErrors <- srv.Serve(ln)
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Info("shutting down", "timeout", shutdownTimeout)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
