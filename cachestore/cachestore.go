// Package cachestore defines the persistent-cache capability the library
// stores entries in, keyed by URL.
//
// Implementations MUST be byte-for-byte transparent: Match must return
// exactly the Record previously passed to Put for a URL (no re-encoding, no
// mutation). The keyspace under "cachevault://<namespace>/" is owned by the
// library; foreign writes under it may be treated as corruption and deleted.
package cachestore

import (
	"context"
	"strings"
	"time"

	"github.com/unkn0wn-root/cachevault/internal/wire"
)

// Scheme prefixes every entry URL.
const Scheme = "cachevault://"

// Record is one cache entry: the JSON body of {data, metadata, timestamp}
// plus the headers the platform cache carries for it.
type Record struct {
	Body         []byte
	ContentType  string
	MaxAge       int // seconds, advisory
	LastModified time.Time
}

// Store is a namespaced persistent cache addressed by URL.
// Must be safe for concurrent use.
type Store interface {
	// Put inserts or overwrites the record under url.
	Put(ctx context.Context, url string, rec Record) error

	// Match returns (record, true, nil) on hit; (zero, false, nil) on miss.
	// IO/remote errors return (zero, false, err).
	Match(ctx context.Context, url string) (Record, bool, error)

	// Delete removes url, reporting whether an entry existed.
	Delete(ctx context.Context, url string) (bool, error)

	// Keys returns every stored URL with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// URL builds the entry URL for key within namespace.
func URL(namespace, key string) string {
	return Scheme + namespace + "/" + key
}

// Root returns the URL prefix owning every key of namespace.
func Root(namespace string) string {
	return Scheme + namespace + "/"
}

// Key recovers the bare key from an entry URL within namespace.
func Key(namespace, url string) string {
	return strings.TrimPrefix(url, Root(namespace))
}

// MarshalRecord frames a record for byte-oriented stores.
func MarshalRecord(r Record) []byte {
	return wire.EncodeRecord(wire.Record{
		Body:         r.Body,
		ContentType:  r.ContentType,
		MaxAge:       r.MaxAge,
		LastModified: r.LastModified,
	})
}

// UnmarshalRecord reverses MarshalRecord. Malformed frames report
// wire.ErrCorrupt.
func UnmarshalRecord(b []byte) (Record, error) {
	w, err := wire.DecodeRecord(b)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Body:         w.Body,
		ContentType:  w.ContentType,
		MaxAge:       w.MaxAge,
		LastModified: w.LastModified,
	}, nil
}
