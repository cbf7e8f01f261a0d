// Package memory provides an in-process cachestore.Store, useful in tests
// and in environments without a durable platform cache.
package memory

import (
	"context"
	"strings"
	"sync"

	cs "github.com/unkn0wn-root/cachevault/cachestore"
)

type Store struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ cs.Store = (*Store)(nil)

func New() *Store {
	return &Store{m: make(map[string][]byte)}
}

func (s *Store) Put(_ context.Context, url string, rec cs.Record) error {
	b := cs.MarshalRecord(rec)
	s.mu.Lock()
	s.m[url] = b
	s.mu.Unlock()
	return nil
}

func (s *Store) Match(_ context.Context, url string) (cs.Record, bool, error) {
	s.mu.RLock()
	b, ok := s.m[url]
	s.mu.RUnlock()
	if !ok {
		return cs.Record{}, false, nil
	}
	rec, err := cs.UnmarshalRecord(b)
	if err != nil {
		// self-heal: drop foreign or corrupt bytes
		s.mu.Lock()
		delete(s.m, url)
		s.mu.Unlock()
		return cs.Record{}, false, nil
	}
	return rec, true, nil
}

func (s *Store) Delete(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	_, ok := s.m[url]
	delete(s.m, url)
	s.mu.Unlock()
	return ok, nil
}

func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	var out []string
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Store) Close(_ context.Context) error { return nil }

// Len reports the number of stored entries (all namespaces).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
