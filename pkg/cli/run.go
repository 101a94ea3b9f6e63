package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/cli/config"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/repository/memory"
	"github.com/secmon-lab/tributary/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// ErrSyncFailed is returned by the run command when the sync result is not successful
var ErrSyncFailed = goerr.New("sync failed")

func cmdRun() *cli.Command {
	var seedPath string
	var target string
	var fetcherCfg config.Fetcher
	var notionCfg config.Notion
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "seed",
			Usage:       "TOML file of sync configurations and lookup lists",
			Required:    true,
			Sources:     cli.EnvVars("TRIBUTARY_SEED"),
			Destination: &seedPath,
		},
		&cli.StringFlag{
			Name:        "sync",
			Usage:       "Name or ID of the [[sync]] table to run (defaults to the only one)",
			Destination: &target,
		},
	}
	flags = append(flags, fetcherCfg.Flags()...)
	flags = append(flags, notionCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:  "run",
		Usage: "Run one sync from a seed file against an in-memory store and print the result",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			seed, err := config.LoadSeed(seedPath)
			if err != nil {
				return err
			}

			entry, err := selectSync(seed, target)
			if err != nil {
				return err
			}

			var opts []usecase.Option
			fetcherSvc, err := fetcherCfg.Configure()
			if err != nil {
				return err
			}
			opts = append(opts, usecase.WithFetcher(fetcherSvc))

			notionSvc, err := notionCfg.Configure()
			if err != nil {
				return err
			}
			if notionSvc != nil {
				opts = append(opts, usecase.WithNotion(notionSvc))
			}

			transformer, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if transformer != nil {
				opts = append(opts, usecase.WithTextTransformer(transformer))
			}

			uc := usecase.New(memory.New(), opts...)
			if err := seed.Apply(ctx, uc); err != nil {
				return goerr.Wrap(err, "failed to apply seed", goerr.V(config.SeedPathKey, seedPath))
			}

			id, err := findStored(ctx, uc, entry)
			if err != nil {
				return err
			}

			result := uc.Sync.Sync(ctx, id, types.TriggerManual)
			printResult(c.Root().Writer, entry.Name, result)

			if !result.Success {
				return goerr.Wrap(ErrSyncFailed, "sync run was not successful",
					goerr.V("name", entry.Name), goerr.V("failed", result.RecordsFailed))
			}
			return nil
		},
	}
}

func selectSync(seed *config.Seed, target string) (*config.SeedSync, error) {
	if target == "" {
		if len(seed.Syncs) != 1 {
			return nil, goerr.Wrap(config.ErrMissingFlag, "--sync is required when the seed has several sync tables",
				goerr.V(config.FlagKey, "sync"), goerr.V("count", len(seed.Syncs)))
		}
		return &seed.Syncs[0], nil
	}

	entry, ok := seed.FindSync(target)
	if !ok {
		return nil, goerr.Wrap(config.ErrInvalidFlag, "no sync table matches",
			goerr.V(config.FlagKey, "sync"), goerr.V("value", target))
	}
	return entry, nil
}

// findStored returns the ID the seeded table was stored under
func findStored(ctx context.Context, uc *usecase.UseCases, entry *config.SeedSync) (model.SyncConfigID, error) {
	if entry.ID != "" {
		return model.SyncConfigID(entry.ID), nil
	}

	configs, err := uc.SyncConfig.List(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list sync configs")
	}
	for _, cfg := range configs {
		if cfg.Name == entry.Name {
			return cfg.ID, nil
		}
	}
	return "", goerr.Wrap(interfaces.ErrNotFound, "seeded sync config not found", goerr.V("name", entry.Name))
}
