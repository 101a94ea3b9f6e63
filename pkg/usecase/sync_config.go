package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/service/transform"
)

// SyncConfigUseCase manages sync configurations and keeps the scheduler in step with them
type SyncConfigUseCase struct {
	repo      interfaces.Repository
	pipeline  *transform.Pipeline
	scheduler Scheduler

	// onDelete is called after a configuration is removed
	onDelete func(id model.SyncConfigID)
}

func NewSyncConfigUseCase(repo interfaces.Repository, pipeline *transform.Pipeline, scheduler Scheduler) *SyncConfigUseCase {
	return &SyncConfigUseCase{
		repo:      repo,
		pipeline:  pipeline,
		scheduler: scheduler,
	}
}

func (uc *SyncConfigUseCase) validate(cfg *model.SyncConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := uc.pipeline.Compile(cfg.TransformRules); err != nil {
		return goerr.Wrap(err, "invalid transform rules", goerr.V(model.SyncConfigIDKey, cfg.ID))
	}
	return nil
}

func (uc *SyncConfigUseCase) schedule(cfg *model.SyncConfig) {
	if uc.scheduler != nil {
		uc.scheduler.Schedule(cfg)
	}
}

func (uc *SyncConfigUseCase) Create(ctx context.Context, cfg *model.SyncConfig) (*model.SyncConfig, error) {
	if cfg == nil {
		return nil, goerr.Wrap(model.ErrInvalidSyncConfig, "sync config is required")
	}
	if err := uc.validate(cfg); err != nil {
		return nil, err
	}

	created, err := uc.repo.SyncConfig().Create(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sync config")
	}

	uc.schedule(created)
	return created, nil
}

// Update replaces a configuration. The scheduler entry is re-armed, or dropped
// when the new configuration is no longer schedulable.
func (uc *SyncConfigUseCase) Update(ctx context.Context, cfg *model.SyncConfig) (*model.SyncConfig, error) {
	if cfg == nil {
		return nil, goerr.Wrap(model.ErrInvalidSyncConfig, "sync config is required")
	}
	if err := uc.validate(cfg); err != nil {
		return nil, err
	}

	updated, err := uc.repo.SyncConfig().Update(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update sync config", goerr.V(model.SyncConfigIDKey, cfg.ID))
	}

	uc.schedule(updated)
	return updated, nil
}

// Delete cancels the scheduler entry before removing the configuration
func (uc *SyncConfigUseCase) Delete(ctx context.Context, id model.SyncConfigID) error {
	if uc.scheduler != nil {
		uc.scheduler.Cancel(id)
	}

	if err := uc.repo.SyncConfig().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete sync config", goerr.V(model.SyncConfigIDKey, id))
	}
	if uc.onDelete != nil {
		uc.onDelete(id)
	}
	return nil
}

func (uc *SyncConfigUseCase) Get(ctx context.Context, id model.SyncConfigID) (*model.SyncConfig, error) {
	cfg, err := uc.repo.SyncConfig().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get sync config", goerr.V(model.SyncConfigIDKey, id))
	}
	return cfg, nil
}

func (uc *SyncConfigUseCase) List(ctx context.Context) ([]*model.SyncConfig, error) {
	configs, err := uc.repo.SyncConfig().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sync configs")
	}
	return configs, nil
}

// SetEnabled toggles a configuration on or off
func (uc *SyncConfigUseCase) SetEnabled(ctx context.Context, id model.SyncConfigID, enabled bool) (*model.SyncConfig, error) {
	cfg, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cfg.Enabled == enabled {
		return cfg, nil
	}

	cfg.Enabled = enabled
	return uc.Update(ctx, cfg)
}
