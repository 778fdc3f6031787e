package repository

import (
	"context"
	"sync"

	"github.com/m-mizutani/omnix/pkg/model"
)

// Memory is an in-process evidence cache. Entries do not survive a restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[model.ProductKey]*model.CacheEntry
	opts    *options
}

func NewMemory(opts ...Option) *Memory {
	return &Memory{
		entries: make(map[model.ProductKey]*model.CacheEntry),
		opts:    newOptions(opts),
	}
}

func (m *Memory) GetEvidence(ctx context.Context, key model.ProductKey) (*model.ResearchResult, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if entry.Expired(m.opts.now()) {
		m.mu.Lock()
		// A concurrent writer may have replaced the entry meanwhile
		if m.entries[key] == entry {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, nil
	}

	return entry.Result(), nil
}

func (m *Memory) PutEvidence(ctx context.Context, key model.ProductKey, result *model.ResearchResult) error {
	entry := model.NewCacheEntry(key, result, m.opts.now())

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries including expired ones not yet read
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
