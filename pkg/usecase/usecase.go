package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/service/fetcher"
	"github.com/secmon-lab/tributary/pkg/service/notion"
	"github.com/secmon-lab/tributary/pkg/service/transform"
)

// Scheduler keeps recurring timers for sync configurations
type Scheduler interface {
	// Schedule cancels any timer of cfg and arms a new one when cfg is schedulable
	Schedule(cfg *model.SyncConfig)
	Cancel(id model.SyncConfigID)
}

// Notifier reports failed sync runs to operators
type Notifier interface {
	NotifySyncFailure(ctx context.Context, cfg *model.SyncConfig, entry *model.HistoryEntry) error
}

// HistoryArchiver keeps history entries beyond the bounded history log
type HistoryArchiver interface {
	Archive(ctx context.Context, entry *model.HistoryEntry) error
}

type UseCases struct {
	repo interfaces.Repository

	content   interfaces.ContentRepository
	fetcher   fetcher.Service
	notion    notion.Service
	text      transform.TextTransformer
	scheduler Scheduler
	notifier  Notifier
	archiver  HistoryArchiver
	now       func() time.Time

	SyncConfig *SyncConfigUseCase
	Sync       *SyncUseCase
	Schema     *SchemaUseCase
	Lookup     *LookupUseCase
}

type Option func(*UseCases)

// WithContentRepository writes destination records somewhere other than repo.Content()
func WithContentRepository(content interfaces.ContentRepository) Option {
	return func(uc *UseCases) {
		uc.content = content
	}
}

func WithFetcher(f fetcher.Service) Option {
	return func(uc *UseCases) {
		uc.fetcher = f
	}
}

// WithNotion enables the notion source kind
func WithNotion(svc notion.Service) Option {
	return func(uc *UseCases) {
		uc.notion = svc
	}
}

// WithTextTransformer sets the delegate of ai_transform rules
func WithTextTransformer(t transform.TextTransformer) Option {
	return func(uc *UseCases) {
		uc.text = t
	}
}

func WithScheduler(s Scheduler) Option {
	return func(uc *UseCases) {
		uc.scheduler = s
	}
}

func WithNotifier(n Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func WithArchiver(a HistoryArchiver) Option {
	return func(uc *UseCases) {
		uc.archiver = a
	}
}

// WithClock replaces time.Now for run timestamps and durations
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.content == nil {
		uc.content = repo.Content()
	}
	if uc.fetcher == nil {
		uc.fetcher = fetcher.New()
	}

	pipelineOpts := []transform.Option{
		transform.WithLookupResolver(repo.LookupList()),
	}
	if uc.text != nil {
		pipelineOpts = append(pipelineOpts, transform.WithTextTransformer(uc.text))
	}
	pipeline := transform.New(pipelineOpts...)

	uc.SyncConfig = NewSyncConfigUseCase(repo, pipeline, uc.scheduler)
	uc.Sync = &SyncUseCase{
		repo:     repo,
		content:  uc.content,
		fetcher:  uc.fetcher,
		notion:   uc.notion,
		pipeline: pipeline,
		notifier: uc.notifier,
		archiver: uc.archiver,
		now:      uc.now,
	}
	uc.SyncConfig.onDelete = uc.Sync.forget
	uc.Schema = NewSchemaUseCase()
	uc.Lookup = NewLookupUseCase(repo)

	return uc
}
