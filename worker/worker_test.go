package worker

import (
	"context"
	"testing"
	"time"

	cs "github.com/unkn0wn-root/cachevault/cachestore"
	"github.com/unkn0wn-root/cachevault/cachestore/memory"
)

func rec(body string) cs.Record {
	return cs.Record{
		Body:         []byte(body),
		ContentType:  "application/json",
		MaxAge:       60,
		LastModified: time.Unix(1700000000, 0).UTC(),
	}
}

func storeReq(key, body string, size int64) Request {
	return Request{
		Type:          TypeStore,
		Key:           key,
		Data:          rec(body),
		Size:          size,
		Namespace:     "ns",
		CacheDuration: 60,
	}
}

func newTestWorker(t *testing.T, store cs.Store) *Worker {
	t.Helper()
	w, err := New(Config{Store: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestStoreRetrieve(t *testing.T) {
	ctx := context.Background()
	w := newTestWorker(t, memory.New())
	defer w.Close()

	resp, err := w.Send(ctx, storeReq("k1", "v1", 2))
	if err != nil || !resp.Success {
		t.Fatalf("store: success=%v err=%v", resp.Success, err)
	}

	resp, err = w.Send(ctx, Request{Type: TypeRetrieve, Key: "k1"})
	if err != nil || !resp.Success {
		t.Fatalf("retrieve: success=%v err=%v", resp.Success, err)
	}
	if resp.Data == nil || string(resp.Data.Body) != "v1" {
		t.Fatalf("retrieve payload: %+v", resp.Data)
	}

	// absent key answers success with nil data
	resp, err = w.Send(ctx, Request{Type: TypeRetrieve, Key: "missing"})
	if err != nil || !resp.Success || resp.Data != nil {
		t.Fatalf("retrieve missing: %+v err=%v", resp, err)
	}
}

func TestGetSizeSumsRecordedSizes(t *testing.T) {
	ctx := context.Background()
	w := newTestWorker(t, memory.New())
	defer w.Close()

	_, _ = w.Send(ctx, storeReq("k1", "v1", 10))
	_, _ = w.Send(ctx, storeReq("k2", "v2", 32))

	resp, err := w.Send(ctx, Request{Type: TypeGetSize})
	if err != nil || !resp.Success {
		t.Fatalf("getSize: %v", err)
	}
	if resp.Size != 42 {
		t.Fatalf("size: got %d want 42", resp.Size)
	}

	// overwrite replaces, not accumulates
	_, _ = w.Send(ctx, storeReq("k1", "v1b", 20))
	resp, _ = w.Send(ctx, Request{Type: TypeGetSize})
	if resp.Size != 52 {
		t.Fatalf("size after overwrite: got %d want 52", resp.Size)
	}
}

// Mirror writes are fire-and-forget; Close drains them, after which the
// persistent cache must hold one entry per key under the URL scheme.
func TestMirrorLandsAfterClose(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := newTestWorker(t, store)

	_, _ = w.Send(ctx, storeReq("k1", "v1", 2))
	_, _ = w.Send(ctx, storeReq("k2", "v2", 2))
	w.Close()

	for _, key := range []string{"k1", "k2"} {
		got, ok, err := store.Match(ctx, cs.URL("ns", key))
		if err != nil || !ok {
			t.Fatalf("mirrored %s missing: ok=%v err=%v", key, ok, err)
		}
		if got.ContentType != "application/json" || got.MaxAge != 60 {
			t.Fatalf("mirrored headers: %+v", got)
		}
	}
}

func TestDeleteRemovesFromMapAndCache(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := newTestWorker(t, store)

	_, _ = w.Send(ctx, storeReq("k1", "v1", 2))
	resp, err := w.Send(ctx, Request{Type: TypeDelete, Key: "k1", Namespace: "ns"})
	if err != nil || !resp.Success || !resp.Removed {
		t.Fatalf("delete: %+v err=%v", resp, err)
	}

	resp, _ = w.Send(ctx, Request{Type: TypeRetrieve, Key: "k1"})
	if resp.Data != nil {
		t.Fatalf("retrieve after delete should be nil")
	}

	resp, _ = w.Send(ctx, Request{Type: TypeDelete, Key: "k1", Namespace: "ns"})
	if resp.Removed {
		t.Fatalf("second delete should report not held")
	}

	w.Close()
	if _, ok, _ := store.Match(ctx, cs.URL("ns", "k1")); ok {
		t.Fatalf("persisted entry survived delete")
	}
}

// Clear drops the namespace from the map and purges persisted keys,
// including ones mirrored by a previous worker over the same store.
func TestClearPurgesNamespace(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	prev := newTestWorker(t, store)
	_, _ = prev.Send(ctx, storeReq("stale", "old", 3))
	prev.Close()

	w := newTestWorker(t, store)
	_, _ = w.Send(ctx, storeReq("k1", "v1", 2))
	resp, err := w.Send(ctx, Request{Type: TypeClear, Namespace: "ns"})
	if err != nil || !resp.Success {
		t.Fatalf("clear: %v", err)
	}

	resp, _ = w.Send(ctx, Request{Type: TypeGetSize})
	if resp.Size != 0 {
		t.Fatalf("size after clear: %d", resp.Size)
	}
	w.Close()

	keys, err := store.Keys(ctx, cs.Root("ns"))
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("namespace not purged: %v", keys)
	}
}

func TestSendAfterClose(t *testing.T) {
	w := newTestWorker(t, memory.New())
	w.Close()
	if _, err := w.Send(context.Background(), Request{Type: TypeGetSize}); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSendHonorsContext(t *testing.T) {
	w := newTestWorker(t, memory.New())
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Send(ctx, Request{Type: TypeGetSize}); err == nil {
		t.Fatalf("expected context error")
	}
}
