// Package nostrindex implements drive.Index against an in-memory map and
// against SQLite (via mattn/go-sqlite3 and golang-migrate embedded
// migrations).
package nostrindex

import (
	"sort"
	"sync"

	"nostrdrive/internal/drive"
)

// Memory is an in-memory drive.Index, used by tests and by the stub
// end-to-end scenarios in the design's testable-properties section.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*drive.IndexRecord
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*drive.IndexRecord)}
}

func (m *Memory) Put(record *drive.IndexRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.records[record.Event.ID] = &cp
	return nil
}

func (m *Memory) Get(id string) (*drive.IndexRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) Has(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[id]
	return ok, nil
}

func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *Memory) Query(filters []drive.Filter, predicate drive.Predicate, limit int) ([]*drive.IndexRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*drive.IndexRecord
	for _, r := range m.records {
		if !drive.MatchAll(r, filters) {
			continue
		}
		if predicate != nil && !predicate(r) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Event.CreatedAt != out[j].Event.CreatedAt {
			return out[i].Event.CreatedAt > out[j].Event.CreatedAt
		}
		return out[i].Event.ID < out[j].Event.ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Watermark() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var max int64
	for _, r := range m.records {
		if r.Event.CreatedAt > max {
			max = r.Event.CreatedAt
		}
	}
	return max, nil
}

func (m *Memory) Scan() ([]*drive.IndexRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*drive.IndexRecord, 0, len(m.records))
	for _, r := range m.records {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

var _ drive.Index = (*Memory)(nil)
