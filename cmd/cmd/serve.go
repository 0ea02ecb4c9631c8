package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rcliao/recoengine/internal/httpapi"
	"github.com/rcliao/recoengine/internal/logger"
	"github.com/rcliao/recoengine/internal/optimize"
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled optimization cycle",
	Long: `serve hosts GET /recommendations, POST /feedback, GET /stats, and
POST /optimize over gin, and starts the cron-scheduled Optimization Cycle
(spec §4.6, default 03:00 local daily) in the background. The two share one
appDeps: the cron job and any concurrent POST /optimize call are still
serialized by the store's Postgres advisory lock.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, deps *appDeps) error {
			schedule := deps.cfg.Learning.ConsolidationSchedule
			if schedule == "" {
				schedule = optimize.DefaultSchedule
			}
			scheduler, err := optimize.NewScheduler(deps.cycle, schedule)
			if err != nil {
				return fmt.Errorf("construct scheduler: %w", err)
			}
			scheduler.Start()
			defer scheduler.Stop()

			zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()
			server := httpapi.New(deps.store, deps.rec, deps.learn, deps.cycle, deps.reflex, zlog, defaultCLIPoolSize)

			addr := fmt.Sprintf("%s:%d", deps.cfg.Server.Host, deps.cfg.Server.Port)
			httpSrv := &http.Server{Addr: addr, Handler: server.Router()}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", "addr", addr)
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return fmt.Errorf("http server: %w", err)
			case sig := <-sigCh:
				logger.Info("shutting down", "signal", sig.String())
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
