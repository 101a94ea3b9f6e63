package worker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/repository/memory"
	"github.com/secmon-lab/tributary/pkg/service/worker"
)

const tick = 10 * time.Millisecond

type recorder struct {
	mu       sync.Mutex
	calls    map[model.SyncConfigID]int
	triggers []types.Trigger
	panics   bool
}

func newRecorder() *recorder {
	return &recorder{calls: make(map[model.SyncConfigID]int)}
}

func (r *recorder) execute(ctx context.Context, id model.SyncConfigID, trigger types.Trigger) *model.SyncResult {
	r.mu.Lock()
	r.calls[id]++
	r.triggers = append(r.triggers, trigger)
	shouldPanic := r.panics
	r.mu.Unlock()

	if shouldPanic {
		panic("executor failure")
	}
	return &model.SyncResult{Success: true}
}

func (r *recorder) count(id model.SyncConfigID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[id]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(tick / 2)
	}
	t.Fatal("condition not met before deadline")
}

func createConfig(t *testing.T, repo *memory.Memory, name string, autoSync bool, interval int) *model.SyncConfig {
	t.Helper()
	cfg, err := repo.SyncConfig().Create(context.Background(), &model.SyncConfig{
		Name:                name,
		Source:              model.SourceDescriptor{Kind: types.SourceKindInline, Payload: map[string]any{"Title": name}},
		Destination:         model.DestinationDescriptor{Kind: types.DestinationKindPage},
		AutoSync:            autoSync,
		SyncIntervalMinutes: interval,
		Enabled:             true,
	})
	gt.NoError(t, err).Required()
	return cfg
}

func TestScheduler_StartArmsSchedulableConfigs(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	auto := createConfig(t, repo, "auto", true, 1)
	manual := createConfig(t, repo, "manual", false, 1)
	noInterval := createConfig(t, repo, "no interval", true, 0)

	rec := newRecorder()
	s := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tick))

	s.Schedule(auto)
	gt.Value(t, s.ActiveCount()).Equal(0)

	gt.NoError(t, s.Start(ctx, rec.execute)).Required()
	defer s.Stop()

	gt.Bool(t, s.IsActive(auto.ID)).True()
	gt.Bool(t, s.IsActive(manual.ID)).False()
	gt.Bool(t, s.IsActive(noInterval.ID)).False()
	gt.Value(t, s.ActiveCount()).Equal(1)
}

func TestScheduler_FiresAndRearms(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	cfg := createConfig(t, repo, "auto", true, 1)

	rec := newRecorder()
	s := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tick))
	gt.NoError(t, s.Start(ctx, rec.execute)).Required()
	defer s.Stop()

	waitFor(t, func() bool { return rec.count(cfg.ID) >= 3 })
	gt.Bool(t, s.IsActive(cfg.ID)).True()

	rec.mu.Lock()
	gt.Value(t, rec.triggers[0]).Equal(types.TriggerAuto)
	rec.mu.Unlock()
}

func TestScheduler_DisablingAutoSyncLeavesNoTimer(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	cfg := createConfig(t, repo, "auto", true, 5)

	s := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tick))
	gt.NoError(t, s.Start(ctx, newRecorder().execute)).Required()
	defer s.Stop()
	gt.Bool(t, s.IsActive(cfg.ID)).True()

	cfg.AutoSync = false
	updated, err := repo.SyncConfig().Update(ctx, cfg)
	gt.NoError(t, err).Required()
	s.Schedule(updated)

	gt.Bool(t, s.IsActive(cfg.ID)).False()
	gt.Value(t, s.ActiveCount()).Equal(0)
}

func TestScheduler_RescheduleReplacesTimer(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	cfg := createConfig(t, repo, "auto", true, 1000)

	rec := newRecorder()
	s := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tick))
	gt.NoError(t, s.Start(ctx, rec.execute)).Required()
	defer s.Stop()

	cfg.SyncIntervalMinutes = 1
	updated, err := repo.SyncConfig().Update(ctx, cfg)
	gt.NoError(t, err).Required()
	s.Schedule(updated)
	s.Schedule(updated)

	gt.Value(t, s.ActiveCount()).Equal(1)
	waitFor(t, func() bool { return rec.count(cfg.ID) >= 1 })
}

func TestScheduler_Cancel(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	cfg := createConfig(t, repo, "auto", true, 5)

	rec := newRecorder()
	s := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tick))
	gt.NoError(t, s.Start(ctx, rec.execute)).Required()
	defer s.Stop()

	s.Cancel(cfg.ID)
	gt.Bool(t, s.IsActive(cfg.ID)).False()

	time.Sleep(5 * tick)
	gt.Value(t, rec.count(cfg.ID)).Equal(0)
}

func TestScheduler_DropsTimerOfDeletedConfig(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	cfg := createConfig(t, repo, "auto", true, 5)

	rec := newRecorder()
	s := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tick))
	gt.NoError(t, s.Start(ctx, rec.execute)).Required()
	defer s.Stop()

	gt.NoError(t, repo.SyncConfig().Delete(ctx, cfg.ID)).Required()

	waitFor(t, func() bool { return !s.IsActive(cfg.ID) })
	gt.Value(t, rec.count(cfg.ID)).Equal(0)
}

func TestScheduler_DropsTimerOfDisabledConfig(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	cfg := createConfig(t, repo, "auto", true, 5)

	rec := newRecorder()
	s := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tick))
	gt.NoError(t, s.Start(ctx, rec.execute)).Required()
	defer s.Stop()

	cfg.Enabled = false
	_, err := repo.SyncConfig().Update(ctx, cfg)
	gt.NoError(t, err).Required()

	waitFor(t, func() bool { return !s.IsActive(cfg.ID) })
	gt.Value(t, rec.count(cfg.ID)).Equal(0)
}

func TestScheduler_PanickingExecutorKeepsSchedule(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	cfg := createConfig(t, repo, "auto", true, 1)

	rec := newRecorder()
	rec.panics = true
	s := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tick))
	gt.NoError(t, s.Start(ctx, rec.execute)).Required()
	defer s.Stop()

	waitFor(t, func() bool { return rec.count(cfg.ID) >= 2 })
	gt.Bool(t, s.IsActive(cfg.ID)).True()
}

func TestScheduler_StopWaitsForRuns(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	createConfig(t, repo, "auto", true, 1)

	var finished atomic.Int32
	var started atomic.Int32
	s := worker.NewScheduler(repo.SyncConfig(), worker.WithTickUnit(tick))
	gt.NoError(t, s.Start(ctx, func(ctx context.Context, id model.SyncConfigID, trigger types.Trigger) *model.SyncResult {
		started.Add(1)
		time.Sleep(3 * tick)
		finished.Add(1)
		return &model.SyncResult{Success: true}
	})).Required()

	waitFor(t, func() bool { return started.Load() >= 1 })
	s.Stop()

	gt.Value(t, s.ActiveCount()).Equal(0)
	gt.Value(t, finished.Load()).Equal(started.Load())
}
