package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	pkgio "github.com/matzehuels/versionsync/pkg/io"
	"github.com/matzehuels/versionsync/pkg/pipeline"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the result map over HTTP",
		Long: `Serve starts an HTTP server. Every GET /versions request runs the pipeline
and returns the result map as JSON, or YAML with ?format=yaml.
GET /healthz reports liveness.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := flagEnv(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, err := loadSetup(ctx, env.GetString("config"))
			if err != nil {
				return err
			}
			runner := c.runner(s, logger, env.GetInt("concurrency"), env.GetDuration("deadline"))
			run := func(ctx context.Context) (*pipeline.ResultMap, error) {
				return runner.Run(ctx, s.specs)
			}
			return serve(ctx, env.GetString("addr"), newRouter(run, logger), logger)
		},
	}
	addConfigFlag(cmd)
	cmd.Flags().String("addr", ":8080", "listen address")
	addRunFlags(cmd)
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runFunc runs the pipeline once.
type runFunc func(ctx context.Context) (*pipeline.ResultMap, error)

var contentTypes = map[pkgio.Format]string{
	pkgio.FormatJSON: "application/json",
	pkgio.FormatYAML: "application/yaml",
}

// newRouter creates the HTTP API.
func newRouter(run runFunc, logger *log.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/versions", versionsHandler(run, logger))
	return r
}

func versionsHandler(run runFunc, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := pkgio.FormatJSON
		if q := r.URL.Query().Get("format"); q != "" {
			f, err := pkgio.ParseFormat(q)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": errs.UserMessage(err)})
				return
			}
			format = f
		}

		results, err := run(r.Context())
		if err != nil {
			logger.Error("run failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": errs.UserMessage(err)})
			return
		}
		if !results.Complete() {
			w.Header().Set("Cache-Control", "no-store")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": fmt.Sprintf("run interrupted after %d services resolved", results.Len()),
			})
			return
		}

		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("X-Run-Id", results.RunID())
		if err := pkgio.Write(results, w, format); err != nil {
			logger.Error("write response", "err", err)
		}
	}
}

// requestLogger logs every request at debug level.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).Round(time.Millisecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
