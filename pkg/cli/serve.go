package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/grove/internal/presentation/tui"
	httpAdapter "github.com/aretw0/grove/pkg/adapters/http"
	"github.com/aretw0/grove/pkg/reporter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Serves the suite over HTTP: GET /nodes lists the tree, POST /runs runs it,
GET /events streams run events (SSE) and GET /metrics exposes Prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := a.setup(cmd)
			if err != nil {
				return err
			}
			if _, err := suite.Tree(); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := reporter.NewMetrics(reg)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr: a.cfg.Listen,
				Handler: httpAdapter.NewHandler(suite,
					httpAdapter.WithLogger(a.logger),
					httpAdapter.WithMetrics(reg, metrics),
				),
			}

			ctx, stop := interruptContext(cmd.Context())
			defer stop()

			tui.PrintBanner(cmd.ErrOrStderr())
			return serve(ctx, srv, func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Serving %s on %s\n", a.name, srv.Addr)
			})
		},
	}

	cmd.Flags().StringP("listen", "l", "", "Address to listen on (overrides the config file)")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, started func()) error {
	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		started()
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		return nil
	}
}
