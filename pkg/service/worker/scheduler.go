package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/utils/async"
	"github.com/secmon-lab/tributary/pkg/utils/logging"
)

// Executor runs one sync of a configuration
type Executor func(ctx context.Context, id model.SyncConfigID, trigger types.Trigger) *model.SyncResult

// Scheduler keeps one recurring timer per schedulable sync configuration.
//
// Architecture assumptions:
// - Single server instance (timers are in-process and not coordinated)
// - A timer only holds the configuration ID; the configuration is re-read on every fire
type Scheduler struct {
	repo     interfaces.SyncConfigRepository
	tickUnit time.Duration

	mu         sync.Mutex
	entries    map[model.SyncConfigID]*entry
	generation uint64
	ctx        context.Context
	executor   Executor
	running    sync.WaitGroup
}

type entry struct {
	timer      *time.Timer
	generation uint64
}

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithTickUnit sets the duration of one interval unit. Defaults to one minute.
func WithTickUnit(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.tickUnit = d
	}
}

// NewScheduler creates a scheduler reading configurations from repo
func NewScheduler(repo interfaces.SyncConfigRepository, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		repo:     repo,
		tickUnit: time.Minute,
		entries:  make(map[model.SyncConfigID]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start arms a timer for every stored configuration that is schedulable.
// Timers fire executor with the auto trigger.
func (s *Scheduler) Start(ctx context.Context, executor Executor) error {
	s.mu.Lock()
	s.ctx = ctx
	s.executor = executor
	s.mu.Unlock()

	configs, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	for _, cfg := range configs {
		s.Schedule(cfg)
	}

	logging.Default().Info("sync scheduler started",
		"active", s.ActiveCount(),
		"tick_unit", s.tickUnit.String())
	return nil
}

// Stop cancels every timer and waits for runs already dispatched to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for id, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, id)
	}
	s.executor = nil
	s.mu.Unlock()

	s.running.Wait()
	logging.Default().Info("sync scheduler stopped")
}

// Schedule cancels the current timer of cfg and arms a new one when cfg is
// schedulable. It does nothing before Start.
func (s *Scheduler) Schedule(cfg *model.SyncConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(cfg.ID)

	if s.executor == nil || !cfg.Schedulable() {
		return
	}

	s.generation++
	e := &entry{generation: s.generation}
	s.entries[cfg.ID] = e
	s.armLocked(cfg.ID, e, s.interval(cfg))
}

// Cancel removes the timer of id, if any
func (s *Scheduler) Cancel(id model.SyncConfigID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(id)
}

// IsActive reports whether a timer is armed for id
func (s *Scheduler) IsActive(id model.SyncConfigID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// ActiveCount returns the number of armed timers
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) interval(cfg *model.SyncConfig) time.Duration {
	return time.Duration(cfg.SyncIntervalMinutes) * s.tickUnit
}

func (s *Scheduler) cancelLocked(id model.SyncConfigID) {
	if e, ok := s.entries[id]; ok {
		e.timer.Stop()
		delete(s.entries, id)
	}
}

func (s *Scheduler) armLocked(id model.SyncConfigID, e *entry, d time.Duration) {
	generation := e.generation
	e.timer = time.AfterFunc(d, func() {
		s.fire(id, generation)
	})
}

// current returns the live entry of id when it still belongs to generation
func (s *Scheduler) current(id model.SyncConfigID, generation uint64) (*entry, bool) {
	e, ok := s.entries[id]
	if !ok || e.generation != generation {
		return nil, false
	}
	return e, true
}

func (s *Scheduler) fire(id model.SyncConfigID, generation uint64) {
	s.mu.Lock()
	if _, ok := s.current(id, generation); !ok || s.executor == nil {
		s.mu.Unlock()
		return
	}
	ctx, executor := s.ctx, s.executor
	s.mu.Unlock()

	logger := logging.Default().With("sync_config_id", id)

	cfg, err := s.repo.Get(ctx, id)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, ok := s.current(id, generation)
		if !ok {
			return
		}
		if errors.Is(err, interfaces.ErrNotFound) {
			logger.Info("sync config removed, dropping timer")
			delete(s.entries, id)
			return
		}
		logger.Warn("failed to read sync config, retrying after one tick", "error", err)
		e.timer.Reset(s.tickUnit)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.current(id, generation)
	if !ok {
		return
	}
	if !cfg.Schedulable() {
		logger.Info("sync config no longer schedulable, dropping timer")
		delete(s.entries, id)
		return
	}

	s.running.Add(1)
	async.Dispatch(logging.With(ctx, logger), "scheduled sync", func(ctx context.Context) error {
		defer s.running.Done()
		executor(ctx, id, types.TriggerAuto)
		return nil
	})

	s.armLocked(id, e, s.interval(cfg))
}
