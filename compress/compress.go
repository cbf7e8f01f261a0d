// Package compress wraps klauspost/compress gzip behind the small
// best-effort surface the codec pipeline needs: payloads below the threshold
// or that do not shrink are passed through unchanged.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

const (
	DefaultLevel     = 6
	DefaultThreshold = 1024
)

type Compressor struct {
	level     int
	threshold int
	enabled   bool
}

type Config struct {
	Enabled   bool
	Level     int // gzip level 1..9; 0 => DefaultLevel
	Threshold int // minimum payload size in bytes; 0 => DefaultThreshold
}

func New(cfg Config) (*Compressor, error) {
	level := cfg.Level
	if level == 0 {
		level = DefaultLevel
	}
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		return nil, fmt.Errorf("compress: invalid level %d", level)
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return &Compressor{level: level, threshold: threshold, enabled: cfg.Enabled}, nil
}

func (c *Compressor) Enabled() bool  { return c.enabled }
func (c *Compressor) Threshold() int { return c.threshold }

// Compress returns (compressed, true) when data was compressed, or
// (data, false) when disabled, below threshold, failing, or not shrinking.
// Compression is best-effort and never returns an error to the caller.
func (c *Compressor) Compress(data []byte) ([]byte, bool) {
	if !c.enabled || len(data) < c.threshold {
		return data, false
	}
	var buf bytes.Buffer
	buf.Grow(len(data) / 2)
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return data, false
	}
	if _, err := w.Write(data); err != nil {
		return data, false
	}
	if err := w.Close(); err != nil {
		return data, false
	}
	if buf.Len() >= len(data) {
		return data, false
	}
	return buf.Bytes(), true
}

// Decompress reverses Compress. Unlike Compress it is not best-effort:
// an entry marked compressed that fails to inflate is corrupt.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return out, nil
}
