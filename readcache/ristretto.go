package readcache

import (
	"errors"

	rc "github.com/dgraph-io/ristretto"
)

// Ristretto is a bounded read cache for large working sets. Admission is
// best-effort: under pressure ristretto may decline a Set, so a read can
// fall through to the backend where Map would have hit. Use Map when every
// write must be readable back immediately.
type Ristretto struct {
	c *rc.Cache
}

var _ Cache = (*Ristretto)(nil)

type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

func NewRistretto(cfg RistrettoConfig) (*Ristretto, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("readcache: invalid ristretto config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{c: c}, nil
}

func (r *Ristretto) Get(key string) (any, bool) {
	return r.c.Get(key)
}

func (r *Ristretto) Set(key string, v any) {
	r.c.Set(key, v, 1)
	r.c.Wait() // flush the set buffer so our own reads see it
}

func (r *Ristretto) Del(key string) {
	r.c.Del(key)
}

func (r *Ristretto) Clear() {
	r.c.Clear()
}

func (r *Ristretto) Close() {
	r.c.Close()
}
