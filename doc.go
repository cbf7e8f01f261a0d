// Package cachevault implements a persistent, quota-bounded key/value store
// layered over a response-cache shaped byte store, with optional schema
// validation, compression, and encryption.
//
// Components:
//   - codec.Pipeline: serialize -> compress (best-effort, thresholded) ->
//     encrypt; decoded symmetrically on read.
//   - schema.Schema: declarative validation gating writes.
//   - cachestore.Store: the persistent cache capability (memory, bigcache,
//     redis), addressed as cachevault://<namespace>/<key>.
//   - worker.Worker: an optional background actor owning the canonical
//     in-memory map, mirroring it asynchronously into the persistent cache.
//   - readcache: a process-local key -> decoded value map short-circuiting
//     repeated reads.
//
// Every public operation returns a Result rather than an error: validation,
// quota, and codec failures are carried in Result.Err, never thrown past
// the boundary.
//
//	store, _ := cachevault.New(cachevault.Options{
//	    Namespace:   "profiles",
//	    MaxSize:     10 << 20,
//	    Compression: cachevault.Compression{Enabled: true},
//	})
//	res := store.SetItem(ctx, "u:1", map[string]any{"name": "Ada"}, nil)
//	if !res.Success { ... }
package cachevault
