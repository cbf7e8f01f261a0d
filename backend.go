package cachevault

import (
	"context"

	"github.com/unkn0wn-root/cachevault/cachestore"
	"github.com/unkn0wn-root/cachevault/worker"
)

// backend is the logical storage surface behind the facade. Two variants
// exist: the worker-backed one speaking the actor's message protocol, and
// the direct one acting straight on the persistent cache. Selection happens
// once per Store at initialization.
type backend interface {
	put(ctx context.Context, key string, rec cachestore.Record, size int64) error
	get(ctx context.Context, key string) (cachestore.Record, bool, error)
	remove(ctx context.Context, key string) (existed bool, err error)
	clearAll(ctx context.Context) error
	totalSize(ctx context.Context) (int64, error)
}

// directBackend reads and writes the persistent cache under the namespace's
// URL scheme with no intermediary.
type directBackend struct {
	store cachestore.Store
	ns    string
}

var _ backend = (*directBackend)(nil)

func (b *directBackend) put(ctx context.Context, key string, rec cachestore.Record, _ int64) error {
	return b.store.Put(ctx, cachestore.URL(b.ns, key), rec)
}

func (b *directBackend) get(ctx context.Context, key string) (cachestore.Record, bool, error) {
	return b.store.Match(ctx, cachestore.URL(b.ns, key))
}

func (b *directBackend) remove(ctx context.Context, key string) (bool, error) {
	return b.store.Delete(ctx, cachestore.URL(b.ns, key))
}

func (b *directBackend) clearAll(ctx context.Context) error {
	urls, err := b.store.Keys(ctx, cachestore.Root(b.ns))
	if err != nil {
		return err
	}
	for _, u := range urls {
		if _, err := b.store.Delete(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// totalSize enumerates every key in the namespace and sums matched body
// lengths.
func (b *directBackend) totalSize(ctx context.Context) (int64, error) {
	urls, err := b.store.Keys(ctx, cachestore.Root(b.ns))
	if err != nil {
		return 0, err
	}
	var total int64
	for _, u := range urls {
		rec, ok, err := b.store.Match(ctx, u)
		if err != nil {
			return 0, err
		}
		if ok {
			total += int64(len(rec.Body))
		}
	}
	return total, nil
}

// workerBackend forwards every operation to the background actor. The
// actor's map is the source of truth while it is active; durable mirrors
// land asynchronously.
type workerBackend struct {
	w             *worker.Worker
	ns            string
	cacheDuration int
}

var _ backend = (*workerBackend)(nil)

func (b *workerBackend) put(ctx context.Context, key string, rec cachestore.Record, size int64) error {
	_, err := b.w.Send(ctx, worker.Request{
		Type:          worker.TypeStore,
		Key:           key,
		Data:          rec,
		Size:          size,
		Namespace:     b.ns,
		CacheDuration: b.cacheDuration,
	})
	return err
}

func (b *workerBackend) get(ctx context.Context, key string) (cachestore.Record, bool, error) {
	resp, err := b.w.Send(ctx, worker.Request{Type: worker.TypeRetrieve, Key: key})
	if err != nil {
		return cachestore.Record{}, false, err
	}
	if resp.Data == nil {
		return cachestore.Record{}, false, nil
	}
	return *resp.Data, true, nil
}

func (b *workerBackend) remove(ctx context.Context, key string) (bool, error) {
	resp, err := b.w.Send(ctx, worker.Request{
		Type:          worker.TypeDelete,
		Key:           key,
		Namespace:     b.ns,
		CacheDuration: b.cacheDuration,
	})
	if err != nil {
		return false, err
	}
	return resp.Removed, nil
}

func (b *workerBackend) clearAll(ctx context.Context) error {
	_, err := b.w.Send(ctx, worker.Request{
		Type:          worker.TypeClear,
		Namespace:     b.ns,
		CacheDuration: b.cacheDuration,
	})
	return err
}

func (b *workerBackend) totalSize(ctx context.Context) (int64, error) {
	resp, err := b.w.Send(ctx, worker.Request{Type: worker.TypeGetSize})
	if err != nil {
		return 0, err
	}
	return resp.Size, nil
}
