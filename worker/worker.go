// Package worker runs the background storage actor: a single goroutine that
// owns the canonical in-memory entry map and answers an asynchronous
// request/response protocol. There is no shared memory with callers - the
// map is reachable only through messages.
//
// Writes mirror the map into the persistent cache without the caller
// waiting ("fire-and-forget"): a store can report success before the durable
// copy lands. Close drains in-flight mirror writes.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sourcegraph/conc"

	cs "github.com/unkn0wn-root/cachevault/cachestore"
)

// Type discriminates protocol messages.
type Type string

const (
	TypeStore    Type = "store"
	TypeRetrieve Type = "retrieve"
	TypeDelete   Type = "delete"
	TypeClear    Type = "clear"
	TypeGetSize  Type = "getSize"
)

var ErrClosed = errors.New("worker: closed")

// Request is one protocol message. Fields beyond Type are set per message
// kind: Store uses all of them, Retrieve only Key, Delete Key+Namespace,
// Clear Namespace, GetSize none.
type Request struct {
	Type          Type
	Key           string
	Data          cs.Record
	Size          int64
	Namespace     string
	CacheDuration int
}

// Response answers a Request on its per-call reply channel.
type Response struct {
	Success bool
	Data    *cs.Record // Retrieve: nil when absent
	Size    int64      // GetSize
	Removed bool       // Delete: whether the key was held
}

type item struct {
	rec       cs.Record
	size      int64
	namespace string
}

type envelope struct {
	req   Request
	reply chan Response
}

// Config wires the worker to its persistent cache. OnMirrorError observes
// failures of detached mirror writes (they are reported nowhere else); it
// must be cheap and safe for concurrent use.
type Config struct {
	Store         cs.Store
	OnMirrorError func(url string, err error)
	QueueLen      int // pending requests; 0 => 64
}

// Worker is the storage actor. Construct with New, release with Close.
type Worker struct {
	store    cs.Store
	onErr    func(url string, err error)
	requests chan envelope

	// owned exclusively by the actor goroutine
	items map[string]item

	// mirror tasks run detached from requests but in submission order, so a
	// clear's purge can never be overtaken by an earlier store's mirror
	mirrorQ chan func()
	mirrors conc.WaitGroup

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func New(cfg Config) (*Worker, error) {
	if cfg.Store == nil {
		return nil, errors.New("worker: store is required")
	}
	qlen := cfg.QueueLen
	if qlen <= 0 {
		qlen = 64
	}
	onErr := cfg.OnMirrorError
	if onErr == nil {
		onErr = func(string, error) {}
	}
	w := &Worker{
		store:    cfg.Store,
		onErr:    onErr,
		requests: make(chan envelope, qlen),
		items:    make(map[string]item),
		mirrorQ:  make(chan func(), 256),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	w.mirrors.Go(w.mirrorLoop)
	go w.loop()
	return w, nil
}

// Send delivers one request and awaits its reply. Requests from one caller
// preserve send order; mirror writes triggered by them may complete later.
func (w *Worker) Send(ctx context.Context, req Request) (Response, error) {
	env := envelope{req: req, reply: make(chan Response, 1)}
	select {
	case w.requests <- env:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-w.done:
		return Response{}, ErrClosed
	}
	select {
	case resp := <-env.reply:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-w.done:
		return Response{}, ErrClosed
	}
}

// Close stops the actor and waits for in-flight mirror writes to land.
// It does not close the underlying store, which the caller owns.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.stop)
		<-w.done
		close(w.mirrorQ)
		w.mirrors.Wait()
	})
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case env := <-w.requests:
			env.reply <- w.handle(env.req)
		case <-w.stop:
			return
		}
	}
}

func (w *Worker) handle(req Request) Response {
	switch req.Type {
	case TypeStore:
		w.items[req.Key] = item{rec: req.Data, size: req.Size, namespace: req.Namespace}
		w.mirror(req.Namespace)
		return Response{Success: true}

	case TypeRetrieve:
		it, ok := w.items[req.Key]
		if !ok {
			return Response{Success: true, Data: nil}
		}
		rec := it.rec
		return Response{Success: true, Data: &rec}

	case TypeDelete:
		it, ok := w.items[req.Key]
		delete(w.items, req.Key)
		if ok {
			w.purge([]string{cs.URL(it.namespace, req.Key)})
			w.mirror(req.Namespace)
		}
		return Response{Success: true, Removed: ok}

	case TypeClear:
		for k, it := range w.items {
			if it.namespace == req.Namespace {
				delete(w.items, k)
			}
		}
		w.purgeNamespace(req.Namespace)
		return Response{Success: true}

	case TypeGetSize:
		var total int64
		for _, it := range w.items {
			total += it.size
		}
		return Response{Success: true, Size: total}

	default:
		return Response{Success: false}
	}
}

func (w *Worker) mirrorLoop() {
	for f := range w.mirrorQ {
		f()
	}
}

type mirrorPut struct {
	url string
	rec cs.Record
}

// mirror snapshots the namespace's entries and persists them detached from
// the triggering request.
func (w *Worker) mirror(namespace string) {
	puts := make([]mirrorPut, 0, len(w.items))
	for k, it := range w.items {
		if it.namespace == namespace {
			puts = append(puts, mirrorPut{url: cs.URL(it.namespace, k), rec: it.rec})
		}
	}
	w.mirrorQ <- func() {
		ctx := context.Background()
		for _, p := range puts {
			if err := w.store.Put(ctx, p.url, p.rec); err != nil {
				w.onErr(p.url, err)
			}
		}
	}
}

func (w *Worker) purge(urls []string) {
	w.mirrorQ <- func() {
		ctx := context.Background()
		for _, u := range urls {
			if _, err := w.store.Delete(ctx, u); err != nil {
				w.onErr(u, err)
			}
		}
	}
}

// purgeNamespace deletes every persisted key under the namespace, including
// entries mirrored by earlier processes that this worker never held.
func (w *Worker) purgeNamespace(namespace string) {
	root := cs.Root(namespace)
	w.mirrorQ <- func() {
		ctx := context.Background()
		keys, err := w.store.Keys(ctx, root)
		if err != nil {
			w.onErr(root, err)
			return
		}
		for _, u := range keys {
			if _, err := w.store.Delete(ctx, u); err != nil {
				w.onErr(u, err)
			}
		}
	}
}
