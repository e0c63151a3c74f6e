package ops

import (
	"context"
	"sort"
	"sync"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/spawnpick/api"
	"github.com/luno/spawnpick/server/db"
)

type MemDB struct {
	mu     sync.RWMutex
	tables map[string][]api.Choice
	draws  map[string]map[string]int64
}

func NewMemDB() *MemDB {
	return &MemDB{
		tables: make(map[string][]api.Choice),
		draws:  make(map[string]map[string]int64),
	}
}

func (m *MemDB) ListTables(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ret := make([]string, 0, len(m.tables))
	for name := range m.tables {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret, nil
}

func (m *MemDB) LoadTable(_ context.Context, name string) ([]api.Choice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cs, ok := m.tables[name]
	if !ok {
		return nil, errors.Wrap(db.ErrTableNotStored, "", j.KV("table", name))
	}
	ret := make([]api.Choice, len(cs))
	copy(ret, cs)
	return ret, nil
}

func (m *MemDB) StoreTable(_ context.Context, name string, choices []api.Choice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs := make([]api.Choice, 0, len(choices))
	for _, c := range choices {
		cs = append(cs, api.Choice{Value: c.Value, Weight: c.Weight})
	}
	m.tables[name] = cs
	return nil
}

func (m *MemDB) IncrDraw(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts, ok := m.draws[name]
	if !ok {
		counts = make(map[string]int64)
		m.draws[name] = counts
	}
	counts[value]++
	return nil
}

func (m *MemDB) GetDrawCounts(_ context.Context, name string) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ret := make(map[string]int64, len(m.draws[name]))
	for k, v := range m.draws[name] {
		ret[k] = v
	}
	return ret, nil
}

func (m *MemDB) ResetDrawCounts(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.draws, name)
	return nil
}

var _ TableDB = (*MemDB)(nil)
