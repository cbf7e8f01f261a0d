package cachevault

import (
	"github.com/caarlos0/env/v11"

	"github.com/unkn0wn-root/cachevault/cachestore"
	"github.com/unkn0wn-root/cachevault/codec"
	"github.com/unkn0wn-root/cachevault/readcache"
	"github.com/unkn0wn-root/cachevault/worker"
)

const (
	// DefaultMaxSize is the per-namespace quota: 50 MiB.
	DefaultMaxSize int64 = 50 << 20

	// DefaultNamespace partitions entries when none is configured.
	DefaultNamespace = "cachevault"

	// DefaultCacheDuration is the advisory max-age: one year, in seconds.
	DefaultCacheDuration = 365 * 24 * 60 * 60
)

// Compression tunes the optional compression stage of the codec pipeline.
type Compression struct {
	Enabled   bool
	Level     int // gzip level 1..9; 0 => 6
	Threshold int // minimum serialized size in bytes; 0 => 1024
}

// Options configure a Store. They are resolved once at construction and
// never mutated afterward; zero values fall back to the defaults above.
// Only CacheStore is required when no Worker is given (the default is an
// in-process memory store, which does not survive the process).
type Options struct {
	MaxSize       int64  // quota in bytes; 0 => DefaultMaxSize
	Namespace     string // "" => DefaultNamespace
	CacheDuration int    // advisory max-age seconds; 0 => DefaultCacheDuration
	EncryptionKey string // shared secret; "" disables encryption
	Compression   Compression

	Serializer codec.Serializer // nil => codec.JSON{}
	CacheStore cachestore.Store // nil => in-process memory store
	ReadCache  readcache.Cache  // nil => readcache.NewMap()
	Worker     *worker.Worker   // nil => direct backend
	Logger     Logger           // nil => NopLogger
}

// envOptions is the environment surface of Options.
type envOptions struct {
	MaxSize              int64  `env:"CACHEVAULT_MAX_SIZE"`
	Namespace            string `env:"CACHEVAULT_NAMESPACE"`
	CacheDuration        int    `env:"CACHEVAULT_CACHE_DURATION"`
	EncryptionKey        string `env:"CACHEVAULT_ENCRYPTION_KEY"`
	CompressionEnabled   bool   `env:"CACHEVAULT_COMPRESSION_ENABLED"`
	CompressionLevel     int    `env:"CACHEVAULT_COMPRESSION_LEVEL"`
	CompressionThreshold int    `env:"CACHEVAULT_COMPRESSION_THRESHOLD"`
}

// OptionsFromEnv reads the CACHEVAULT_* variables into an Options value.
// Capabilities (serializer, stores, worker, logger) are code-level wiring
// and stay nil for the caller to fill in.
func OptionsFromEnv() (Options, error) {
	var e envOptions
	if err := env.Parse(&e); err != nil {
		return Options{}, err
	}
	return Options{
		MaxSize:       e.MaxSize,
		Namespace:     e.Namespace,
		CacheDuration: e.CacheDuration,
		EncryptionKey: e.EncryptionKey,
		Compression: Compression{
			Enabled:   e.CompressionEnabled,
			Level:     e.CompressionLevel,
			Threshold: e.CompressionThreshold,
		},
	}, nil
}
