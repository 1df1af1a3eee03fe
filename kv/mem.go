package kv

import (
	"sort"
	"sync"
)

// MemStore is an in-memory kv.Store used by engine unit tests that want
// to exercise the scan/batch contract without paying for a bolt file on
// disk. It is not a production backend.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return DecodeValue(v), ok, nil
}

func (s *MemStore) Scan(gte, lt string, fn func(key, value string) error) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if k < gte {
			continue
		}
		if lt != "" && k >= lt {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	snapshot := make(map[string]string, len(keys))
	for _, k := range keys {
		snapshot[k] = s.data[k]
	}
	s.mu.RUnlock()

	for _, k := range keys {
		if err := fn(k, DecodeValue(snapshot[k])); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemStore) Batch(writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range writes {
		switch w.Kind {
		case Put:
			s.data[w.Key] = EncodeValue(w.Value)
		case Delete:
			delete(s.data, w.Key)
		}
	}
	return nil
}

func (s *MemStore) Close() error { return nil }
