package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"trend-signal-bot/internal/interfaces"
)

// Memory is an in-process store with the same semantics as the Postgres
// backend. Safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

var _ interfaces.DocStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, collection, key string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	raw, ok := col[key]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (m *Memory) Query(ctx context.Context, collection string, filters map[string]any) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col := m.collections[collection]
	keys := make([]string, 0, len(col))
	for k := range col {
		keys = append(keys, k)
	}
	// Deterministic iteration order for the sequential batch loops.
	sort.Strings(keys)

	var out []json.RawMessage
	for _, k := range keys {
		raw := col[k]
		ok, err := matches(raw, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			cp := make(json.RawMessage, len(raw))
			copy(cp, raw)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *Memory) Upsert(ctx context.Context, collection, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document %s/%s: %w", collection, key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[collection]
	if !ok {
		col = make(map[string][]byte)
		m.collections[collection] = col
	}
	col[key] = raw
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if col, ok := m.collections[collection]; ok {
		delete(col, key)
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// matches applies equality filters the way JSONB containment does: every
// filter key must be present in the document with an equal value.
func matches(raw []byte, filters map[string]any) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, err
	}
	for k, want := range filters {
		got, ok := doc[k]
		if !ok {
			return false, nil
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false, nil
		}
	}
	return true, nil
}
