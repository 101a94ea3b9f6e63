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
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/tributary/pkg/cli/config"
	httpctrl "github.com/secmon-lab/tributary/pkg/controller/http"
	"github.com/secmon-lab/tributary/pkg/service/worker"
	"github.com/secmon-lab/tributary/pkg/usecase"
	"github.com/secmon-lab/tributary/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var seedPath string
	var tickUnit time.Duration
	var historyLimit int
	var repoCfg config.Repository
	var fetcherCfg config.Fetcher
	var notionCfg config.Notion
	var geminiCfg config.Gemini
	var slackCfg config.Slack
	var archiveCfg config.Archive

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TRIBUTARY_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "seed",
			Usage:       "TOML file of sync configurations and lookup lists stored at startup",
			Sources:     cli.EnvVars("TRIBUTARY_SEED"),
			Destination: &seedPath,
		},
		&cli.DurationFlag{
			Name:        "scheduler-tick",
			Usage:       "Duration of one sync interval unit",
			Value:       time.Minute,
			Hidden:      true,
			Sources:     cli.EnvVars("TRIBUTARY_SCHEDULER_TICK"),
			Destination: &tickUnit,
		},
		&cli.IntFlag{
			Name:        "history-limit",
			Usage:       "Default number of entries returned by history endpoints",
			Value:       httpctrl.DefaultHistoryLimit,
			Sources:     cli.EnvVars("TRIBUTARY_HISTORY_LIMIT"),
			Destination: &historyLimit,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, fetcherCfg.Flags()...)
	flags = append(flags, notionCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP API server and sync scheduler",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			scheduler := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tickUnit))

			ucOpts, cleanup, err := configureUseCaseOptions(ctx, &repoCfg, &fetcherCfg, &notionCfg, &geminiCfg, &slackCfg, &archiveCfg)
			if err != nil {
				return err
			}
			defer cleanup()
			ucOpts = append(ucOpts, usecase.WithScheduler(scheduler))

			uc := usecase.New(repo, ucOpts...)

			if seedPath != "" {
				seed, err := config.LoadSeed(seedPath)
				if err != nil {
					return err
				}
				if err := seed.Apply(ctx, uc); err != nil {
					return goerr.Wrap(err, "failed to apply seed", goerr.V(config.SeedPathKey, seedPath))
				}
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := scheduler.Start(ctx, uc.Sync.Sync); err != nil {
				return goerr.Wrap(err, "failed to start sync scheduler")
			}
			defer scheduler.Stop()

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithHistoryLimit(historyLimit)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				logger.Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}
			logger.Info("Server shutdown completed")
			return nil
		},
	}
}

// configureUseCaseOptions builds the optional integrations. cleanup releases
// every client created and is never nil.
func configureUseCaseOptions(
	ctx context.Context,
	repoCfg *config.Repository,
	fetcherCfg *config.Fetcher,
	notionCfg *config.Notion,
	geminiCfg *config.Gemini,
	slackCfg *config.Slack,
	archiveCfg *config.Archive,
) ([]usecase.Option, func(), error) {
	logger := logging.Default()
	var opts []usecase.Option
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) ([]usecase.Option, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	content, closeContent, err := repoCfg.ConfigureContent(ctx)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeContent)
	if content != nil {
		opts = append(opts, usecase.WithContentRepository(content))
	}

	fetcherSvc, err := fetcherCfg.Configure()
	if err != nil {
		return fail(err)
	}
	opts = append(opts, usecase.WithFetcher(fetcherSvc))

	notionSvc, err := notionCfg.Configure()
	if err != nil {
		return fail(err)
	}
	if notionSvc != nil {
		opts = append(opts, usecase.WithNotion(notionSvc))
		logger.Info("Notion source enabled")
	} else {
		logger.Info("Notion API token not configured, notion sources will fail")
	}

	transformer, err := geminiCfg.Configure(ctx)
	if err != nil {
		return fail(err)
	}
	if transformer != nil {
		opts = append(opts, usecase.WithTextTransformer(transformer))
		logger.Info("AI transform enabled", "gemini", geminiCfg)
	}

	notifier, err := slackCfg.Configure()
	if err != nil {
		return fail(err)
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
		logger.Info("Slack failure notification enabled", "slack", slackCfg)
	}

	archiver, err := archiveCfg.Configure(ctx)
	if err != nil {
		return fail(err)
	}
	if archiver != nil {
		opts = append(opts, usecase.WithArchiver(archiver))
		cleanups = append(cleanups, func() {
			if err := archiver.Close(); err != nil {
				logger.Error("failed to close history archive", "error", err.Error())
			}
		})
		logger.Info("History archive enabled", "archive", archiveCfg)
	}

	return opts, cleanup, nil
}
