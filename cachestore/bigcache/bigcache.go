// Package bigcache adapts allegro/bigcache as an embedded cachestore.Store.
package bigcache

import (
	"context"
	"strings"
	"time"

	bc "github.com/allegro/bigcache/v3"

	cs "github.com/unkn0wn-root/cachevault/cachestore"
)

type Store struct {
	c *bc.BigCache
}

var _ cs.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Put(_ context.Context, url string, rec cs.Record) error {
	// BigCache has no per-entry TTL; MaxAge stays advisory inside the frame.
	return s.c.Set(url, cs.MarshalRecord(rec))
}

func (s *Store) Match(_ context.Context, url string) (cs.Record, bool, error) {
	b, err := s.c.Get(url)
	if err == bc.ErrEntryNotFound {
		return cs.Record{}, false, nil
	}
	if err != nil {
		return cs.Record{}, false, err
	}
	rec, err := cs.UnmarshalRecord(b)
	if err != nil {
		_ = s.c.Delete(url) // self-heal corrupt
		return cs.Record{}, false, nil
	}
	return rec, true, nil
}

func (s *Store) Delete(_ context.Context, url string) (bool, error) {
	err := s.c.Delete(url)
	if err == bc.ErrEntryNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	var out []string
	it := s.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			continue
		}
		if strings.HasPrefix(e.Key(), prefix) {
			out = append(out, e.Key())
		}
	}
	return out, nil
}

func (s *Store) Close(_ context.Context) error {
	return s.c.Close()
}
