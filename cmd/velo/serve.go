package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	velo "github.com/velo-dev/velo"
	"github.com/velo-dev/velo/pkg/markdown"
	"github.com/velo-dev/velo/pkg/middleware"
	"github.com/velo-dev/velo/pkg/router"
	"github.com/velo-dev/velo/pkg/serve"
)

// serveCmd serves a route manifest over HTTP. Module loaders cannot be
// declared in the manifest file, so file-backed routes render from their
// companion content; this is the content-site mode of the core.
func serveCmd() *cobra.Command {
	var (
		addr     string
		manifest string
		metrics  bool
		tracing  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a route manifest as HTML and Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			m, err := router.LoadManifestFile(manifest, nil)
			if err != nil {
				return err
			}

			app := velo.New(velo.Config{
				Manifest:   m,
				Markdown:   markdown.New(markdown.Config{Logger: logger}),
				FileLoader: diskFileLoader,
				Logger:     logger,
			})

			html := app.HTML()
			md := app.Markdown()
			if metrics {
				html = middleware.Metrics(html, middleware.WithRendererName("html"))
				md = middleware.Metrics(md, middleware.WithRendererName("markdown"))
			}
			if tracing {
				html = middleware.Trace(html, middleware.WithOTelRendererName("html"))
				md = middleware.Trace(md, middleware.WithOTelRendererName("markdown"))
			}

			srv := &http.Server{
				Addr: addr,
				Handler: serve.New(serve.Config{
					HTML:          html,
					Markdown:      md,
					EnableMetrics: metrics,
					Logger:        logger,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			logger.Info("velo: serving", "addr", addr, "manifest", manifest)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&manifest, "manifest", "routes.yaml", "route manifest file")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "expose Prometheus metrics at /metrics")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "trace render passes with OpenTelemetry")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("velo %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
