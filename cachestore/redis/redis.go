// Package redis adapts a redis client as a shared cachestore.Store, for
// deployments where the persistent cache must outlive the process.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	cs "github.com/unkn0wn-root/cachevault/cachestore"
)

var ErrNilClient = errors.New("redis store: nil client")

type Store struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ cs.Store = (*Store)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Store{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (s *Store) Put(ctx context.Context, url string, rec cs.Record) error {
	// MaxAge doubles as the redis TTL; non-positive means no expiry.
	var ttl time.Duration
	if rec.MaxAge > 0 {
		ttl = time.Duration(rec.MaxAge) * time.Second
	}
	return s.rdb.Set(ctx, url, cs.MarshalRecord(rec), ttl).Err()
}

func (s *Store) Match(ctx context.Context, url string) (cs.Record, bool, error) {
	b, err := s.rdb.Get(ctx, url).Bytes()
	if err == goredis.Nil {
		return cs.Record{}, false, nil // miss
	}
	if err != nil {
		return cs.Record{}, false, err // transport/server error
	}
	rec, err := cs.UnmarshalRecord(b)
	if err != nil {
		_ = s.rdb.Del(ctx, url).Err() // self-heal corrupt
		return cs.Record{}, false, nil
	}
	return rec, true, nil
}

func (s *Store) Delete(ctx context.Context, url string) (bool, error) {
	n, err := s.rdb.Del(ctx, url).Result()
	return n > 0, err
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	return out, iter.Err()
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
