package memory

import (
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
)

// Memory is an in-process repository. Data is lost on restart.
type Memory struct {
	syncConfig  *syncConfigRepository
	syncHistory *syncHistoryRepository
	content     *contentRepository
	lookupList  *lookupListRepository
}

var _ interfaces.Repository = &Memory{}

type Option func(*Memory)

// WithHistoryCapacity sets how many history entries are retained
func WithHistoryCapacity(capacity int) Option {
	return func(m *Memory) {
		if capacity > 0 {
			m.syncHistory.capacity = capacity
		}
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		syncConfig:  newSyncConfigRepository(),
		syncHistory: newSyncHistoryRepository(model.DefaultHistoryCapacity),
		content:     newContentRepository(),
		lookupList:  newLookupListRepository(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Memory) SyncConfig() interfaces.SyncConfigRepository {
	return m.syncConfig
}

func (m *Memory) SyncHistory() interfaces.SyncHistoryRepository {
	return m.syncHistory
}

func (m *Memory) Content() interfaces.ContentRepository {
	return m.content
}

func (m *Memory) LookupList() interfaces.LookupListRepository {
	return m.lookupList
}

func (m *Memory) Close() error {
	return nil
}
