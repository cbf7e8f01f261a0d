package cachevault

import (
	"context"
	"errors"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/cachevault/cachestore"
	"github.com/unkn0wn-root/cachevault/cachestore/memory"
	"github.com/unkn0wn-root/cachevault/codec"
	"github.com/unkn0wn-root/cachevault/compress"
	"github.com/unkn0wn-root/cachevault/crypto"
	"github.com/unkn0wn-root/cachevault/readcache"
	"github.com/unkn0wn-root/cachevault/schema"
	"github.com/unkn0wn-root/cachevault/worker"
)

// Store is the public entry point: it composes the codec pipeline, quota
// accounting, the local read cache, and one of the two storage backends
// into a coherent lifecycle per operation.
//
// All operations wait on a one-time initialization (worker ping plus the
// initial size computation) that runs on the first call; operations issued
// before it completes queue behind it.
type Store struct {
	ns            string
	cacheDuration int
	log           Logger

	pipeline *codec.Pipeline
	cache    cachestore.Store
	read     readcache.Cache
	wkr      *worker.Worker

	backend backend
	acct    *accountant

	initOnce sync.Once
	initErr  error
	closed   atomic.Bool
}

// New resolves options against their defaults and builds the store. The
// backend choice (worker vs. direct) is settled during the first operation,
// when the worker is pinged.
func New(opts Options) (*Store, error) {
	log := coalesce[Logger](opts.Logger, NopLogger{})

	comp, err := compress.New(compress.Config{
		Enabled:   opts.Compression.Enabled,
		Level:     opts.Compression.Level,
		Threshold: opts.Compression.Threshold,
	})
	if err != nil {
		return nil, err
	}

	encrypt := opts.EncryptionKey != ""
	var cipher *crypto.Cipher
	if encrypt {
		cipher, err = crypto.New(opts.EncryptionKey)
		if err != nil {
			// capability missing: operations will fail with ErrCryptoUnavailable
			log.Warn("cipher construction failed; encryption unavailable", Fields{"err": err})
			cipher = nil
		}
	}

	ser := opts.Serializer
	if ser == nil {
		ser = codec.JSON{}
	}
	cache := opts.CacheStore
	if cache == nil {
		cache = memory.New()
	}
	read := opts.ReadCache
	if read == nil {
		read = readcache.NewMap()
	}

	return &Store{
		ns:            coalesce(opts.Namespace, DefaultNamespace),
		cacheDuration: coalesce(opts.CacheDuration, DefaultCacheDuration),
		log:           log,
		pipeline:      codec.NewPipeline(ser, comp, cipher, encrypt),
		cache:         cache,
		read:          read,
		wkr:           opts.Worker,
		acct:          newAccountant(coalesce(opts.MaxSize, DefaultMaxSize)),
	}, nil
}

// Close releases the underlying cache store. Close the worker (if any)
// first; it borrows the same store for its mirror writes.
func (s *Store) Close(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.cache.Close(ctx)
}

func (s *Store) ensureInit(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.initOnce.Do(func() { s.initErr = s.init(ctx) })
	return s.initErr
}

func (s *Store) init(ctx context.Context) error {
	if s.wkr != nil {
		// the ping doubles as the initial size computation
		resp, err := s.wkr.Send(ctx, worker.Request{Type: worker.TypeGetSize})
		if err == nil {
			s.backend = &workerBackend{w: s.wkr, ns: s.ns, cacheDuration: s.cacheDuration}
			s.acct.setUsed(resp.Size)
			return nil
		}
		// one-time downgrade; never revisited mid-session
		s.log.Warn("worker unavailable, using direct backend", Fields{"err": err})
	}
	s.backend = &directBackend{store: s.cache, ns: s.ns}
	total, err := s.backend.totalSize(ctx)
	if err != nil {
		s.log.Warn("initial size computation failed", Fields{"err": err})
		return nil
	}
	s.acct.setUsed(total)
	return nil
}

// SetItem validates (when a schema is given), encodes, quota-checks, and
// persists value under key. On success the original value is attached to
// the result and the local read cache is updated. Any failure leaves stored
// state unchanged.
func (s *Store) SetItem(ctx context.Context, key string, value any, sch schema.Schema) Result {
	if err := s.ensureInit(ctx); err != nil {
		return failure(err)
	}
	if sch != nil {
		if err := sch.Validate(value); err != nil {
			return failure(asValidationError(err))
		}
	}

	payload, md, err := s.pipeline.Encode(value)
	if err != nil {
		return failure(err)
	}
	size := int64(md.CompressedSize)

	// replacing an entry credits back its recorded size
	var oldSize int64
	if old, found, err := s.lookupEntry(ctx, key); err == nil && found {
		oldSize = int64(old.Metadata.CompressedSize)
	}

	if !s.acct.wouldFit(size - oldSize) {
		return failure(ErrQuotaExceeded)
	}

	rec, err := s.newRecord(Entry{
		Key:       key,
		Payload:   payload,
		Metadata:  md,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return failure(err)
	}
	if err := s.backend.put(ctx, key, rec, size); err != nil {
		return failure(err)
	}

	s.acct.commit(size - oldSize)
	s.read.Set(key, value)
	s.log.Debug("stored entry", Fields{"key": key, "size": size, "compressed": md.Compressed})
	return success(value)
}

// GetItem returns the decoded value for key. A local read-cache hit
// short-circuits without a backend call; a miss reads through and
// repopulates the read cache.
func (s *Store) GetItem(ctx context.Context, key string) Result {
	if err := s.ensureInit(ctx); err != nil {
		return failure(err)
	}
	if v, hit := s.read.Get(key); hit {
		return success(v)
	}

	rec, found, err := s.backend.get(ctx, key)
	if err != nil {
		return failure(err)
	}
	if !found {
		return failure(ErrNotFound)
	}
	e, err := decodeEntry(key, rec)
	if err != nil {
		return failure(err)
	}
	v, err := s.pipeline.Decode(e.Payload, e.Metadata)
	if err != nil {
		return failure(err)
	}
	s.read.Set(key, v)
	return success(v)
}

// UpdateItem shallow-merges partial over the existing decoded value and
// writes the result back through SetItem. It is a read-modify-write with no
// atomicity beyond what SetItem alone provides; concurrent updates on the
// same key may race.
func (s *Store) UpdateItem(ctx context.Context, key string, partial map[string]any, sch schema.Schema) Result {
	res := s.GetItem(ctx, key)
	if !res.Success {
		return res
	}
	existing, isObj := res.Data.(map[string]any)
	if !isObj {
		return failure(&ValidationError{Reason: "existing value is not an object"})
	}

	merged := make(map[string]any, len(existing)+len(partial))
	maps.Copy(merged, existing)
	maps.Copy(merged, partial)

	return s.SetItem(ctx, key, merged, sch)
}

// RemoveItem deletes key from the backend and the local read cache and
// credits the entry's recorded size back to the quota. The result's Data is
// a bool reporting whether an entry existed.
func (s *Store) RemoveItem(ctx context.Context, key string) Result {
	if err := s.ensureInit(ctx); err != nil {
		return failure(err)
	}

	var recorded int64
	if e, found, err := s.lookupEntry(ctx, key); err == nil && found {
		recorded = int64(e.Metadata.CompressedSize)
	}

	removed, err := s.backend.remove(ctx, key)
	if err != nil {
		return failure(err)
	}
	s.read.Del(key)
	if removed {
		s.acct.release(recorded)
	}
	return success(removed)
}

// Clear deletes the entire namespace, empties the local read cache, and
// resets the quota counter.
func (s *Store) Clear(ctx context.Context) Result {
	if err := s.ensureInit(ctx); err != nil {
		return failure(err)
	}
	if err := s.backend.clearAll(ctx); err != nil {
		return failure(err)
	}
	s.read.Clear()
	s.acct.reset()
	return success(true)
}

// Stats forces a size recompute from the backend (drift correction for the
// optimistic counter) and reports quota usage.
func (s *Store) Stats(ctx context.Context) Result {
	if err := s.ensureInit(ctx); err != nil {
		return failure(err)
	}
	total, err := s.backend.totalSize(ctx)
	if err != nil {
		return failure(err)
	}
	s.acct.setUsed(total)
	used, max := s.acct.snapshot()
	return success(Stats{
		Used:        used,
		Total:       max,
		Available:   max - used,
		PercentUsed: float64(used) / float64(max) * 100,
	})
}

// CompressionStats reads key's stored metadata without decoding the
// payload. Data is nil when the key is absent.
func (s *Store) CompressionStats(ctx context.Context, key string) Result {
	if err := s.ensureInit(ctx); err != nil {
		return failure(err)
	}
	e, found, err := s.lookupEntry(ctx, key)
	if err != nil {
		return failure(err)
	}
	if !found {
		return success(nil)
	}
	md := e.Metadata
	var savings float64
	if md.OriginalSize > 0 {
		savings = float64(md.OriginalSize-md.CompressedSize) / float64(md.OriginalSize) * 100
	}
	return success(&CompressionStats{
		Compressed:     md.Compressed,
		OriginalSize:   md.OriginalSize,
		CompressedSize: md.CompressedSize,
		SavingsPercent: savings,
	})
}

func (s *Store) lookupEntry(ctx context.Context, key string) (Entry, bool, error) {
	rec, found, err := s.backend.get(ctx, key)
	if err != nil || !found {
		return Entry{}, false, err
	}
	e, err := decodeEntry(key, rec)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func asValidationError(err error) error {
	var fe *schema.FieldError
	if errors.As(err, &fe) {
		return &ValidationError{Field: fe.Field, Reason: fe.Reason}
	}
	if errors.Is(err, schema.ErrNotObject) {
		return &ValidationError{Reason: "value is not an object"}
	}
	return &ValidationError{Reason: err.Error()}
}
