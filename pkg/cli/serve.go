package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/cli/config"
	httpctrl "github.com/secmon-lab/riskregister/pkg/controller/http"
	"github.com/secmon-lab/riskregister/pkg/service/querycache"
	"github.com/secmon-lab/riskregister/pkg/service/worker"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var configPath string
	var cacheTTL time.Duration
	var reminderInterval time.Duration
	var repoCfg config.Repository
	var authCfg config.Auth
	var slackCfg config.Slack
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISKREGISTER_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Seed file applied before the server starts (categories, frameworks, users)",
			Sources:     cli.EnvVars("RISKREGISTER_CONFIG"),
			Destination: &configPath,
		},
		&cli.DurationFlag{
			Name:        "query-cache-ttl",
			Usage:       "Lifetime of cached listings and dashboards (0 disables the cache)",
			Value:       querycache.DefaultTTL,
			Sources:     cli.EnvVars("RISKREGISTER_QUERY_CACHE_TTL"),
			Destination: &cacheTTL,
		},
		&cli.DurationFlag{
			Name:        "review-reminder-interval",
			Usage:       "Interval between overdue review reminders (0 disables reminders)",
			Value:       worker.DefaultReviewInterval,
			Sources:     cli.EnvVars("RISKREGISTER_REVIEW_REMINDER_INTERVAL"),
			Destination: &reminderInterval,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"addr", addr,
				"repository", repoCfg,
				"auth", authCfg,
				"slack", slackCfg,
				"sentry", sentryCfg,
			)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(ctx); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			if configPath != "" {
				appCfg, err := config.LoadAppConfiguration(configPath)
				if err != nil {
					return err
				}
				if err := seed(ctx, repo, authCfg.AuthUseCase(repo), appCfg); err != nil {
					return err
				}
			}

			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logger.Warn("Running in no-auth mode (development only)")
			}

			ucOpts := []usecase.Option{
				usecase.WithAuth(authUC),
			}
			if cacheTTL > 0 {
				ucOpts = append(ucOpts, usecase.WithQueryCache(querycache.New(querycache.WithTTL(cacheTTL))))
			}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				logger.Info("Slack notifications enabled", "channel", notifier.ChannelLabel(ctx))
			}

			uc := usecase.New(repo, ucOpts...)

			var reminder *worker.ReviewReminderWorker
			if reminderInterval > 0 && notifier != nil {
				reminder = worker.NewReviewReminderWorker(repo, notifier, reminderInterval)
				if err := reminder.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start review reminder worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithVersion(version)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				if reminder != nil {
					reminder.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
