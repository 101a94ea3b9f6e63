package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/usecase"
)

type schedulerCall struct {
	Op       string
	ID       model.SyncConfigID
	Eligible bool
}

type fakeScheduler struct {
	mu    sync.Mutex
	calls []schedulerCall
}

func (s *fakeScheduler) Schedule(cfg *model.SyncConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, schedulerCall{Op: "schedule", ID: cfg.ID, Eligible: cfg.Schedulable()})
}

func (s *fakeScheduler) Cancel(id model.SyncConfigID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, schedulerCall{Op: "cancel", ID: id})
}

func (s *fakeScheduler) last() schedulerCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func autoConfig() *model.SyncConfig {
	cfg := inlineConfig(map[string]any{"Title": "Hello"})
	cfg.AutoSync = true
	cfg.SyncIntervalMinutes = 15
	return cfg
}

func TestSyncConfigUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and schedules", func(t *testing.T) {
		sched := &fakeScheduler{}
		uc, _ := setup(t, usecase.WithScheduler(sched))

		created, err := uc.SyncConfig.Create(ctx, autoConfig())
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual(model.SyncConfigID(""))
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Value(t, sched.last()).Equal(schedulerCall{Op: "schedule", ID: created.ID, Eligible: true})
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		sched := &fakeScheduler{}
		uc, _ := setup(t, usecase.WithScheduler(sched))

		cfg := autoConfig()
		cfg.Name = ""
		_, err := uc.SyncConfig.Create(ctx, cfg)
		gt.Error(t, err).Is(model.ErrInvalidSyncConfig)
		gt.Array(t, sched.calls).Length(0)
	})

	t.Run("rejects expression that does not compile", func(t *testing.T) {
		uc, _ := setup(t)

		cfg := autoConfig()
		cfg.TransformRules = []model.TransformRule{
			{Field: "Title", Type: types.RuleTypeExpression, Params: map[string]any{"expression": "value +"}},
		}
		_, err := uc.SyncConfig.Create(ctx, cfg)
		gt.Error(t, err).Is(model.ErrInvalidTransformRule)
	})

	t.Run("rejects nil", func(t *testing.T) {
		uc, _ := setup(t)
		_, err := uc.SyncConfig.Create(ctx, nil)
		gt.Error(t, err).Is(model.ErrInvalidSyncConfig)
	})
}

func TestSyncConfigUseCase_Update(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	uc, _ := setup(t, usecase.WithScheduler(sched))

	created, err := uc.SyncConfig.Create(ctx, autoConfig())
	gt.NoError(t, err).Required()

	t.Run("disabling auto sync reschedules as ineligible", func(t *testing.T) {
		created.AutoSync = false
		updated, err := uc.SyncConfig.Update(ctx, created)
		gt.NoError(t, err).Required()
		gt.Bool(t, updated.AutoSync).False()
		gt.Value(t, sched.last()).Equal(schedulerCall{Op: "schedule", ID: created.ID, Eligible: false})
	})

	t.Run("clearing the interval reschedules as ineligible", func(t *testing.T) {
		created.AutoSync = true
		created.SyncIntervalMinutes = 0
		_, err := uc.SyncConfig.Update(ctx, created)
		gt.NoError(t, err).Required()
		gt.Bool(t, sched.last().Eligible).False()
	})

	t.Run("unknown config", func(t *testing.T) {
		missing := autoConfig()
		missing.ID = model.NewSyncConfigID()
		_, err := uc.SyncConfig.Update(ctx, missing)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}

func TestSyncConfigUseCase_SetEnabled(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	uc, _ := setup(t, usecase.WithScheduler(sched))

	created, err := uc.SyncConfig.Create(ctx, autoConfig())
	gt.NoError(t, err).Required()

	disabled, err := uc.SyncConfig.SetEnabled(ctx, created.ID, false)
	gt.NoError(t, err).Required()
	gt.Bool(t, disabled.Enabled).False()
	gt.Value(t, sched.last()).Equal(schedulerCall{Op: "schedule", ID: created.ID, Eligible: false})

	enabled, err := uc.SyncConfig.SetEnabled(ctx, created.ID, true)
	gt.NoError(t, err).Required()
	gt.Bool(t, enabled.Enabled).True()
	gt.Bool(t, sched.last().Eligible).True()

	_, err = uc.SyncConfig.SetEnabled(ctx, model.NewSyncConfigID(), true)
	gt.Error(t, err).Is(interfaces.ErrNotFound)
}

func TestSyncConfigUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	uc, _ := setup(t, usecase.WithScheduler(sched))

	created, err := uc.SyncConfig.Create(ctx, autoConfig())
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.SyncConfig.Delete(ctx, created.ID)).Required()
	gt.Value(t, sched.last()).Equal(schedulerCall{Op: "cancel", ID: created.ID})

	_, err = uc.SyncConfig.Get(ctx, created.ID)
	gt.Error(t, err).Is(interfaces.ErrNotFound)

	err = uc.SyncConfig.Delete(ctx, created.ID)
	gt.Error(t, err).Is(interfaces.ErrNotFound)
}

func TestSyncConfigUseCase_List(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)

	for _, name := range []string{"beta", "alpha"} {
		cfg := autoConfig()
		cfg.Name = name
		_, err := uc.SyncConfig.Create(ctx, cfg)
		gt.NoError(t, err).Required()
	}

	configs, err := uc.SyncConfig.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, configs).Length(2).Required()
	gt.Value(t, configs[0].Name).Equal("alpha")
}

func TestLookupUseCase_PutList(t *testing.T) {
	ctx := context.Background()
	uc, repo := setup(t)

	gt.NoError(t, uc.Lookup.PutList(ctx, &model.LookupList{
		Name:  "authors",
		Items: map[string]map[string]any{"1": {"name": "Ana"}},
	})).Required()

	item, err := repo.LookupList().GetItem(ctx, "authors", "1")
	gt.NoError(t, err).Required()
	gt.Value(t, item["name"]).Equal("Ana")

	err = uc.Lookup.PutList(ctx, &model.LookupList{})
	gt.Error(t, err).Is(usecase.ErrEmptyLookupListName)
}

func TestSchemaUseCase_Preview(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)

	mapping, err := uc.Schema.Preview(ctx, []byte(`[{"Title":"Hello","CampoDataPublicacao":"2024-01-15","Count":"3"}]`))
	gt.NoError(t, err).Required()
	gt.Array(t, mapping.Fields).Length(3).Required()

	title := mapping.FieldByName("Title")
	gt.Value(t, title).NotNil()
	gt.Value(t, title.Type).Equal(types.FieldTypeText)

	published := mapping.FieldByName("CampoDataPublicacao")
	gt.Value(t, published).NotNil()
	gt.Value(t, published.Type).Equal(types.FieldTypeDate)
	gt.Value(t, published.Name).Equal("Data Publicacao")

	_, err = uc.Schema.Preview(ctx, []byte(`42`))
	gt.Error(t, err).Is(model.ErrInvalidSourceDocument)
}
